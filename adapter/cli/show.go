package cli

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/planline/internal/planning/application/queries"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the project schedule",
	Long: `Print the project schedule in order.

Each line shows the position, date, title, trade, and how the date is
derived: pinned by hand, following the previous task, or linked to a
group.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.GetScheduleHandler == nil {
			fmt.Println("This command requires a database connection.")
			return nil
		}

		projectID, err := currentProjectID()
		if err != nil {
			return err
		}

		schedule, err := app.GetScheduleHandler.Handle(cmd.Context(), scheduleQuery(projectID))
		if err != nil {
			return fmt.Errorf("failed to load schedule: %w", err)
		}
		if schedule == nil {
			fmt.Println("No schedule for this project. Run: planline init")
			return nil
		}
		if len(schedule.Tasks) == 0 {
			fmt.Println("Schedule is empty. Add tasks with: planline add")
			return nil
		}

		fmt.Printf("Schedule for project %s (%d tasks)\n\n", projectID, len(schedule.Tasks))
		for _, task := range schedule.Tasks {
			fmt.Printf("  %2d. %s  %-30s %s\n",
				task.Position+1,
				task.Date.Format("Mon 2006-01-02"),
				truncate(task.Title, 30),
				taskAnnotations(task),
			)
		}
		return nil
	},
}

func taskAnnotations(task queries.TaskDTO) string {
	parts := []string{task.ID.String()[:8]}
	if task.Trade != "" {
		parts = append(parts, task.Trade)
	}
	switch {
	case task.LinkedGroupID != nil:
		parts = append(parts, "linked:"+task.LinkedGroupID.String()[:8])
	case task.DependsOnPrevious:
		parts = append(parts, "follows previous")
	default:
		parts = append(parts, "pinned")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	rootCmd.AddCommand(showCmd)
}
