package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/planline/internal/planning/application/commands"
	"github.com/spf13/cobra"
)

var unlinkCmd = &cobra.Command{
	Use:   "unlink <task-id>",
	Short: "Take a task out of its linked group",
	Long: `Remove a task from its linked group.

The task keeps its current date and becomes manually pinned. If only
one other member remains, the group is dissolved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.UnlinkTaskHandler == nil {
			fmt.Println("This command requires a database connection.")
			return nil
		}

		projectID, err := currentProjectID()
		if err != nil {
			return err
		}
		taskID, err := resolveTaskID(cmd, app, projectID, args[0])
		if err != nil {
			return err
		}

		err = app.UnlinkTaskHandler.Handle(cmd.Context(), commands.UnlinkTaskCommand{
			ProjectID: projectID,
			ActorID:   app.CurrentActorID,
			TaskID:    taskID,
		})
		if err != nil {
			if errors.Is(err, commands.ErrScheduleNotFound) {
				fmt.Println("No schedule for this project. Run: planline init")
				return nil
			}
			return fmt.Errorf("failed to unlink task: %w", err)
		}

		fmt.Printf("Task %s unlinked.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unlinkCmd)
}
