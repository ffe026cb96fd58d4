package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/planline/internal/planning/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var dateCmd = &cobra.Command{
	Use:   "date <task-id> <date>",
	Short: "Set a task's date by hand",
	Long: `Pin a task to a specific date.

The new date is pushed to the task's linked group, and every task
after it that follows its predecessor is realigned.

Examples:
  planline date 3f2a1b90 2025-06-09
  planline date 3f2a1b90 monday`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.ChangeTaskDateHandler == nil {
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
		date, err := parseDate(args[1])
		if err != nil {
			return err
		}

		err = app.ChangeTaskDateHandler.Handle(cmd.Context(), commands.ChangeTaskDateCommand{
			ProjectID: projectID,
			ActorID:   app.CurrentActorID,
			TaskID:    taskID,
			NewDate:   date,
		})
		if err != nil {
			if errors.Is(err, commands.ErrScheduleNotFound) {
				fmt.Println("No schedule for this project. Run: planline init")
				return nil
			}
			return fmt.Errorf("failed to change date: %w", err)
		}

		fmt.Printf("Task %s moved to %s.\n", args[0], date.Format("Mon, Jan 2 2006"))
		return nil
	},
}

// resolveTaskID accepts a full UUID or an unambiguous id prefix.
func resolveTaskID(cmd *cobra.Command, app *App, projectID uuid.UUID, raw string) (uuid.UUID, error) {
	if id, err := uuid.Parse(raw); err == nil {
		return id, nil
	}

	if app.GetScheduleHandler == nil {
		return uuid.Nil, fmt.Errorf("invalid task id %q", raw)
	}
	schedule, err := app.GetScheduleHandler.Handle(cmd.Context(), scheduleQuery(projectID))
	if err != nil || schedule == nil {
		return uuid.Nil, fmt.Errorf("invalid task id %q", raw)
	}

	var match uuid.UUID
	for _, task := range schedule.Tasks {
		if len(raw) >= 4 && task.ID.String()[:len(raw)] == raw {
			if match != uuid.Nil {
				return uuid.Nil, fmt.Errorf("task id prefix %q is ambiguous", raw)
			}
			match = task.ID
		}
	}
	if match == uuid.Nil {
		return uuid.Nil, fmt.Errorf("no task matches %q", raw)
	}
	return match, nil
}

func init() {
	rootCmd.AddCommand(dateCmd)
}
