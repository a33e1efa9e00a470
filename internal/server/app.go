package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/topsync/internal/shared"
	"github.com/desertthunder/topsync/internal/tasks"
)

// Deps holds the collaborators behind the service routes.
type Deps struct {
	Name         string // reported by the health route
	Auth         AuthURLBuilder
	Orchestrator CallbackRunner
	Collector    tasks.TopCollector
	Engine       Upserter
	Logger       *log.Logger
}

// NewRouter wires every service route behind the request id, access log and recovery middleware.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	logger = shared.WithLogger(logger, "component", "http")

	router := NewBasicRouter()
	router.Use(RequestID(), Logger(logger), Recoverer(logger))

	router.Handler(NewHealthHandler(deps.Name))
	router.Handler(NewLoginHandler(deps.Auth))
	router.Handler(NewCallbackHandler(deps.Orchestrator, logger))
	router.Handler(NewTopHandler(deps.Collector, logger))
	router.Handler(NewCreatePlaylistHandler(deps.Engine, logger))

	return router
}
