package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/planline/internal/planning/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var linkDate string

var linkCmd = &cobra.Command{
	Use:   "link <task-id> <task-id>...",
	Short: "Link tasks to run on the same day",
	Long: `Join two or more tasks into a linked group sharing one date.

Linked tasks always move together: changing the date of any member
moves the whole group. Without --date the group takes the date of
the first named task.

Examples:
  planline link 3f2a1b90 7c41e3aa
  planline link 3f2a1b90 7c41e3aa --date 2025-06-12`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.LinkTasksHandler == nil {
			fmt.Println("This command requires a database connection.")
			return nil
		}

		projectID, err := currentProjectID()
		if err != nil {
			return err
		}

		taskIDs := make([]uuid.UUID, 0, len(args))
		for _, arg := range args {
			id, err := resolveTaskID(cmd, app, projectID, arg)
			if err != nil {
				return err
			}
			taskIDs = append(taskIDs, id)
		}

		linkCommand := commands.LinkTasksCommand{
			ProjectID: projectID,
			ActorID:   app.CurrentActorID,
			TaskIDs:   taskIDs,
		}
		if linkDate != "" {
			date, err := parseDate(linkDate)
			if err != nil {
				return err
			}
			linkCommand.TargetDate = date
		} else {
			schedule, err := app.GetScheduleHandler.Handle(cmd.Context(), scheduleQuery(projectID))
			if err != nil || schedule == nil {
				return fmt.Errorf("failed to load schedule for default link date")
			}
			for _, task := range schedule.Tasks {
				if task.ID == taskIDs[0] {
					linkCommand.TargetDate = task.Date
					break
				}
			}
		}

		groupID, err := app.LinkTasksHandler.Handle(cmd.Context(), linkCommand)
		if err != nil {
			if errors.Is(err, commands.ErrScheduleNotFound) {
				fmt.Println("No schedule for this project. Run: planline init")
				return nil
			}
			return fmt.Errorf("failed to link tasks: %w", err)
		}
		if groupID == uuid.Nil {
			fmt.Println("Nothing linked: fewer than two of the named tasks exist.")
			return nil
		}

		fmt.Printf("Linked %d tasks into group %s.\n", len(taskIDs), groupID.String()[:8])
		return nil
	},
}

func init() {
	linkCmd.Flags().StringVarP(&linkDate, "date", "d", "", "date for the linked group (defaults to the first task's date)")
	rootCmd.AddCommand(linkCmd)
}
