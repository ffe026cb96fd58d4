package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/planline/internal/planning/application/commands"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <task-id>",
	Short: "Remove a task from the schedule",
	Long: `Delete a task from the schedule.

Remaining tasks are renumbered and realigned. If the task was in a
linked group of two, the group is dissolved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.RemoveTaskHandler == nil {
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

		err = app.RemoveTaskHandler.Handle(cmd.Context(), commands.RemoveTaskCommand{
			ProjectID: projectID,
			ActorID:   app.CurrentActorID,
			TaskID:    taskID,
		})
		if err != nil {
			if errors.Is(err, commands.ErrScheduleNotFound) {
				fmt.Println("No schedule for this project. Run: planline init")
				return nil
			}
			return fmt.Errorf("failed to remove task: %w", err)
		}

		fmt.Printf("Task %s removed.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
