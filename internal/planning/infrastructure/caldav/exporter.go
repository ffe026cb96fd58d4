package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/planline/internal/planning/application/queries"
	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
)

// PropXPlanline marks events owned by the exporter so foreign events in a
// shared site calendar are never touched.
const PropXPlanline = "X-PLANLINE"

const dateLayout = "20060102"

// ExportResult summarizes one export run.
type ExportResult struct {
	Created int
	Updated int
	Deleted int
	Failed  int
}

// Exporter pushes schedule tasks to a CalDAV calendar as all-day events,
// one per task, keyed by task id.
type Exporter struct {
	baseURL       string
	username      string
	password      string
	calendarPath  string
	logger        *slog.Logger
	deleteMissing bool
}

// NewExporter creates a CalDAV schedule exporter.
func NewExporter(baseURL, username, password string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		baseURL:  baseURL,
		username: username,
		password: password,
		logger:   logger,
	}
}

// WithDeleteMissing enables deletion of exporter-owned events that are no
// longer in the schedule.
func (e *Exporter) WithDeleteMissing(enabled bool) *Exporter {
	e.deleteMissing = enabled
	return e
}

// WithCalendarPath sets the specific calendar path to use.
func (e *Exporter) WithCalendarPath(path string) *Exporter {
	e.calendarPath = path
	return e
}

// Export pushes all tasks of the schedule into the CalDAV calendar.
func (e *Exporter) Export(ctx context.Context, schedule *queries.ScheduleDTO) (*ExportResult, error) {
	client, err := e.getClient()
	if err != nil {
		return nil, err
	}

	calPath, err := e.findCalendarPath(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	result := &ExportResult{}
	keepPaths := make(map[string]struct{}, len(schedule.Tasks))

	for _, task := range schedule.Tasks {
		eventPath := fmt.Sprintf("%s%s.ics", calPath, task.ID.String())
		keepPaths[eventPath] = struct{}{}

		cal := toICalendar(task)
		updated, err := e.upsertEvent(ctx, client, eventPath, cal)
		if err != nil {
			e.logger.Warn("caldav export failed", "event_path", eventPath, "error", err)
			result.Failed++
			continue
		}
		if updated {
			result.Updated++
		} else {
			result.Created++
		}
	}

	if e.deleteMissing {
		deleted, err := e.deleteMissingEvents(ctx, client, calPath, keepPaths)
		if err != nil {
			e.logger.Warn("caldav delete missing failed", "error", err)
		} else {
			result.Deleted = deleted
		}
	}

	return result, nil
}

func (e *Exporter) getClient() (*caldav.Client, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, e.username, e.password), e.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func (e *Exporter) findCalendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if e.calendarPath != "" {
		return e.calendarPath, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}

	return cals[0].Path, nil
}

func (e *Exporter) upsertEvent(ctx context.Context, client *caldav.Client, eventPath string, cal *ical.Calendar) (bool, error) {
	_, err := client.GetCalendarObject(ctx, eventPath)
	exists := err == nil

	if _, err := client.PutCalendarObject(ctx, eventPath, cal); err != nil {
		return false, err
	}

	return exists, nil
}

func (e *Exporter) deleteMissingEvents(ctx context.Context, client *caldav.Client, calPath string, keepPaths map[string]struct{}) (int, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{
				{
					Name:  "VEVENT",
					Props: []string{"UID", PropXPlanline},
				},
			},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{
				{Name: "VEVENT"},
			},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, obj := range objects {
		if !isPlanlineEvent(&obj) {
			continue
		}

		if _, ok := keepPaths[obj.Path]; ok {
			continue
		}

		if err := client.RemoveAll(ctx, obj.Path); err != nil {
			e.logger.Warn("failed to delete caldav event", "path", obj.Path, "error", err)
			continue
		}
		deleted++
	}

	return deleted, nil
}

// isPlanlineEvent checks if a calendar object has the X-PLANLINE property set.
func isPlanlineEvent(obj *caldav.CalendarObject) bool {
	if obj == nil || obj.Data == nil {
		return false
	}

	for _, child := range obj.Data.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		if props := child.Props[PropXPlanline]; len(props) > 0 && props[0].Value == "1" {
			return true
		}
	}

	return false
}

// toICalendar converts a task to a single all-day VEVENT calendar.
func toICalendar(task queries.TaskDTO) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Planline//Schedule Export//EN")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, task.ID.String())
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

	start := ical.NewProp(ical.PropDateTimeStart)
	start.SetValueType(ical.ValueDate)
	start.Value = task.Date.Format(dateLayout)
	event.Props.Set(start)

	end := ical.NewProp(ical.PropDateTimeEnd)
	end.SetValueType(ical.ValueDate)
	end.Value = task.Date.AddDate(0, 0, 1).Format(dateLayout)
	event.Props.Set(end)

	summary := task.Title
	if task.Trade != "" {
		summary = fmt.Sprintf("%s (%s)", task.Title, task.Trade)
	}
	event.Props.SetText(ical.PropSummary, summary)

	description := fmt.Sprintf("Position: %d", task.Position+1)
	if task.DependsOnPrevious {
		description += "\nFollows previous task"
	}
	if task.LinkedGroupID != nil {
		description += fmt.Sprintf("\nLinked group: %s", task.LinkedGroupID)
	}
	event.Props.SetText(ical.PropDescription, description)

	marker := ical.NewProp(PropXPlanline)
	marker.Value = "1"
	event.Props[PropXPlanline] = []ical.Prop{*marker}

	cal.Children = append(cal.Children, event.Component)

	return cal
}
