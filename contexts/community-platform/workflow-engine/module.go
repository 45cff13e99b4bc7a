package workflowengine

import (
	"log/slog"
	"time"

	httpadapter "wikigaia/contexts/community-platform/workflow-engine/adapters/http"
	"wikigaia/contexts/community-platform/workflow-engine/adapters/memory"
	"wikigaia/contexts/community-platform/workflow-engine/application/commands"
	"wikigaia/contexts/community-platform/workflow-engine/application/queries"
	"wikigaia/contexts/community-platform/workflow-engine/domain/entities"
	"wikigaia/contexts/community-platform/workflow-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Problems ports.ProblemRepository
	Log      ports.WorkflowLogRepository
	Queue    ports.DevelopmentQueueRepository
	Notifier ports.Notifier
	Cache    ports.ViewCache
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	ViewTTL  time.Duration
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	updateUseCase := commands.UpdateStatusUseCase{
		Problems: deps.Problems,
		Queue:    deps.Queue,
		Notifier: deps.Notifier,
		Cache:    deps.Cache,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	devQueueUseCase := commands.DevQueueUseCase{
		Queue:  deps.Queue,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	viewUseCase := queries.WorkflowViewUseCase{
		Problems: deps.Problems,
		Log:      deps.Log,
		Queue:    deps.Queue,
		Cache:    deps.Cache,
		CacheTTL: deps.ViewTTL,
		Logger:   deps.Logger,
	}
	listUseCase := queries.DevQueueListUseCase{
		Queue: deps.Queue,
	}
	return Module{
		Handler: httpadapter.Handler{
			Workflow: updateUseCase,
			DevQueue: devQueueUseCase,
			Views:    viewUseCase,
			Queue:    listUseCase,
			Logger:   deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Problem, notifier ports.Notifier, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Problems: store,
		Log:      store,
		Queue:    store,
		Notifier: notifier,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
