package cli

import (
	resourceCommands "github.com/lenslate/darkroom/internal/resources/application/commands"
	resourceQueries "github.com/lenslate/darkroom/internal/resources/application/queries"
	timelineQueries "github.com/lenslate/darkroom/internal/timeline/application/queries"
	workflowCommands "github.com/lenslate/darkroom/internal/workflow/application/commands"
	workflowQueries "github.com/lenslate/darkroom/internal/workflow/application/queries"
	"github.com/lenslate/darkroom/internal/workflow/infrastructure/templates"
)

// App holds the CLI application dependencies.
type App struct {
	// Workflow command handlers
	CreateProjectHandler       *workflowCommands.CreateProjectHandler
	AdvanceStageHandler        *workflowCommands.AdvanceStageHandler
	UpdateStageProgressHandler *workflowCommands.UpdateStageProgressHandler
	ArchiveProjectHandler      *workflowCommands.ArchiveProjectHandler

	// Workflow query handlers
	GetProjectSnapshotHandler *workflowQueries.GetProjectSnapshotHandler
	ListProjectsHandler       *workflowQueries.ListProjectsHandler

	// Timeline query handlers
	GetTimelineHandler          *timelineQueries.GetTimelineHandler
	GetEstimatedDeliveryHandler *timelineQueries.GetEstimatedDeliveryHandler

	// Resource handlers
	CreateLedgerHandler   *resourceCommands.CreateLedgerHandler
	EquipmentHandler      *resourceCommands.EquipmentHandler
	ConsumeStorageHandler *resourceCommands.ConsumeStorageHandler
	GetLedgerHandler      *resourceQueries.GetLedgerHandler

	// Pipeline templates
	Templates *templates.Loader
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
