package cli

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/planline/internal/planning/application/commands"
	"github.com/felixgeelhaar/planline/internal/planning/application/queries"
	"github.com/felixgeelhaar/planline/internal/planning/infrastructure/caldav"
	"github.com/felixgeelhaar/planline/pkg/observability"
	"github.com/google/uuid"
)

// App holds the CLI application dependencies.
type App struct {
	// Command Handlers
	CreateScheduleHandler *commands.CreateScheduleHandler
	AddTaskHandler        *commands.AddTaskHandler
	ChangeTaskDateHandler *commands.ChangeTaskDateHandler
	MoveTaskHandler       *commands.MoveTaskHandler
	LinkTasksHandler      *commands.LinkTasksHandler
	UnlinkTaskHandler     *commands.UnlinkTaskHandler
	RemoveTaskHandler     *commands.RemoveTaskHandler

	// Query Handlers
	GetScheduleHandler *queries.GetScheduleHandler

	// CalDAV export (nil when not configured)
	Exporter *caldav.Exporter

	// Metrics collector (nil tolerated)
	Metrics observability.Metrics

	// Current actor (configured per environment)
	CurrentActorID uuid.UUID
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	createScheduleHandler *commands.CreateScheduleHandler,
	addTaskHandler *commands.AddTaskHandler,
	changeTaskDateHandler *commands.ChangeTaskDateHandler,
	moveTaskHandler *commands.MoveTaskHandler,
	linkTasksHandler *commands.LinkTasksHandler,
	unlinkTaskHandler *commands.UnlinkTaskHandler,
	removeTaskHandler *commands.RemoveTaskHandler,
	getScheduleHandler *queries.GetScheduleHandler,
) *App {
	return &App{
		CreateScheduleHandler: createScheduleHandler,
		AddTaskHandler:        addTaskHandler,
		ChangeTaskDateHandler: changeTaskDateHandler,
		MoveTaskHandler:       moveTaskHandler,
		LinkTasksHandler:      linkTasksHandler,
		UnlinkTaskHandler:     unlinkTaskHandler,
		RemoveTaskHandler:     removeTaskHandler,
		GetScheduleHandler:    getScheduleHandler,
	}
}

// SetCurrentActorID updates the current actor ID.
func (a *App) SetCurrentActorID(id uuid.UUID) {
	a.CurrentActorID = id
}

// SetExporter updates the CalDAV exporter.
func (a *App) SetExporter(exporter *caldav.Exporter) {
	a.Exporter = exporter
}

// SetMetrics updates the metrics collector.
func (a *App) SetMetrics(metrics observability.Metrics) {
	a.Metrics = metrics
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

func scheduleQuery(projectID uuid.UUID) queries.GetScheduleQuery {
	return queries.GetScheduleQuery{ProjectID: projectID}
}

// currentProjectID resolves the project id from the --project flag or the
// PLANLINE_PROJECT_ID environment variable.
func currentProjectID() (uuid.UUID, error) {
	raw := projectFlag
	if raw == "" {
		raw = os.Getenv("PLANLINE_PROJECT_ID")
	}
	if raw == "" {
		return uuid.Nil, fmt.Errorf("no project selected: pass --project or set PLANLINE_PROJECT_ID")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid project id %q: %w", raw, err)
	}
	return id, nil
}
