package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/planline/internal/planning/application/commands"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a schedule for the current project",
	Long: `Create an empty schedule for the selected project.

Every project carries exactly one schedule. Select the project with
--project or the PLANLINE_PROJECT_ID environment variable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.CreateScheduleHandler == nil {
			fmt.Println("This command requires a database connection.")
			return nil
		}

		projectID, err := currentProjectID()
		if err != nil {
			return err
		}

		scheduleID, err := app.CreateScheduleHandler.Handle(cmd.Context(), commands.CreateScheduleCommand{
			ProjectID: projectID,
			ActorID:   app.CurrentActorID,
		})
		if err != nil {
			if errors.Is(err, commands.ErrScheduleExists) {
				fmt.Printf("Project %s already has a schedule.\n", projectID)
				return nil
			}
			return fmt.Errorf("failed to create schedule: %w", err)
		}

		fmt.Println("Schedule created!")
		fmt.Printf("  Project:  %s\n", projectID)
		fmt.Printf("  Schedule: %s\n", scheduleID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
