package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/felixgeelhaar/planline/internal/planning/application/commands"
	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move <task-id> <position>",
	Short: "Move a task to a new position",
	Long: `Move a task to a new position in the schedule (1-based).

Positions are renumbered densely and the whole schedule is realigned,
since a move can change which task follows which.

Examples:
  planline move 3f2a1b90 1
  planline move 3f2a1b90 4`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.MoveTaskHandler == nil {
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
		position, err := strconv.Atoi(args[1])
		if err != nil || position < 1 {
			return fmt.Errorf("invalid position %q: must be a positive number", args[1])
		}

		err = app.MoveTaskHandler.Handle(cmd.Context(), commands.MoveTaskCommand{
			ProjectID: projectID,
			ActorID:   app.CurrentActorID,
			TaskID:    taskID,
			NewIndex:  position - 1,
		})
		if err != nil {
			if errors.Is(err, commands.ErrScheduleNotFound) {
				fmt.Println("No schedule for this project. Run: planline init")
				return nil
			}
			return fmt.Errorf("failed to move task: %w", err)
		}

		fmt.Printf("Task %s moved to position %d.\n", args[0], position)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
}
