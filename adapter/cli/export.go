package cli

import (
	"fmt"

	"github.com/felixgeelhaar/planline/pkg/observability"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the schedule to a CalDAV calendar",
	Long: `Push the project schedule to the configured CalDAV calendar as
all-day events, one per task.

Events created by Planline are marked and upserted by task id, so
repeated exports update in place and never touch foreign events.

Configure the target with CALDAV_URL, CALDAV_USERNAME, CALDAV_PASSWORD,
and optionally CALDAV_CALENDAR_PATH and CALDAV_DELETE_MISSING.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.GetScheduleHandler == nil {
			fmt.Println("This command requires a database connection.")
			return nil
		}
		if app.Exporter == nil {
			fmt.Println("CalDAV export is not configured. Set CALDAV_URL, CALDAV_USERNAME, and CALDAV_PASSWORD.")
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

		timer := observability.StartTimer("schedule.export").WithLogger(logger)
		if app.Metrics != nil {
			timer = timer.WithMetrics(app.Metrics)
		}
		result, err := app.Exporter.Export(cmd.Context(), schedule)
		timer.StopWithError(err)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if app.Metrics != nil {
			app.Metrics.Counter(observability.MetricExportEvents, int64(result.Created+result.Updated+result.Deleted))
			if result.Failed > 0 {
				app.Metrics.Counter(observability.MetricExportErrors, int64(result.Failed))
			}
		}

		fmt.Println("Export complete!")
		fmt.Printf("  Created: %d\n", result.Created)
		fmt.Printf("  Updated: %d\n", result.Updated)
		if result.Deleted > 0 {
			fmt.Printf("  Deleted: %d\n", result.Deleted)
		}
		if result.Failed > 0 {
			fmt.Printf("  Failed:  %d\n", result.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
