package cli

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/planline/internal/planning/application/commands"
	"github.com/spf13/cobra"
)

var (
	addTrade     string
	addDate      string
	addDependent bool
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Append a task to the schedule",
	Long: `Append a task to the end of the project schedule.

By default the new task follows the previous task by one business day.
Pass --date to pin it to a specific day instead.

Examples:
  planline add "Pour foundation" --trade concrete --date 2025-06-02
  planline add "Frame walls"
  planline add "Inspection" --date friday`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.AddTaskHandler == nil {
			fmt.Println("This command requires a database connection.")
			return nil
		}

		projectID, err := currentProjectID()
		if err != nil {
			return err
		}

		title := strings.Join(args, " ")
		dependent := addDate == "" || addDependent

		addTaskCmd := commands.AddTaskCommand{
			ProjectID: projectID,
			ActorID:   app.CurrentActorID,
			Title:     title,
			Trade:     addTrade,
			Dependent: dependent,
		}
		if addDate != "" {
			date, err := parseDate(addDate)
			if err != nil {
				return err
			}
			addTaskCmd.Date = date
		} else {
			// The first task of a schedule is never dependent, so it
			// still needs a concrete starting date.
			today, _ := parseDate("today")
			addTaskCmd.Date = today
		}

		taskID, err := app.AddTaskHandler.Handle(cmd.Context(), addTaskCmd)
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		fmt.Println("Task added!")
		fmt.Printf("  Title: %s\n", title)
		fmt.Printf("  ID:    %s\n", taskID.String()[:8])
		if addTrade != "" {
			fmt.Printf("  Trade: %s\n", addTrade)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addTrade, "trade", "t", "", "trade responsible for the task")
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "pin the task to a date (YYYY-MM-DD, today, tomorrow, weekday)")
	addCmd.Flags().BoolVar(&addDependent, "dependent", false, "follow the previous task even when a date is given")
	rootCmd.AddCommand(addCmd)
}
