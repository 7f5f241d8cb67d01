package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pwledger/server/internal/api/http/handler"
	"github.com/pwledger/server/internal/api/http/middleware"
	"github.com/pwledger/server/internal/logger"
	"github.com/pwledger/server/internal/metrics"
	"github.com/pwledger/server/internal/model"
	"github.com/pwledger/server/internal/service"
)

// Router wires the HTTP API. It assembles handlers and middleware around the
// domain services and exposes a single http.Handler.
type Router struct {
	authService    *service.Auth
	ledger         *service.Ledger
	sweep          *service.Sweep
	importer       *service.Importer
	tokenService   *service.TokenService
	contextManager model.ContextManager
	metrics        *metrics.Metrics
	metricsHandler http.Handler
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	authService *service.Auth,
	ledger *service.Ledger,
	sweep *service.Sweep,
	importer *service.Importer,
	tokenService *service.TokenService,
	contextManager model.ContextManager,
	m *metrics.Metrics,
	metricsHandler http.Handler,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		ledger:         ledger,
		sweep:          sweep,
		importer:       importer,
		tokenService:   tokenService,
		contextManager: contextManager,
		metrics:        m,
		metricsHandler: metricsHandler,
		logger:         logger,
	}
}

// Register registers all routes and middleware and returns the root handler.
// Auth endpoints are public; everything else under /api requires a bearer token.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	authHandler := handler.NewAuth(r.authService, r.tokenService, r.logger)
	eventsHandler := handler.NewEvents(r.ledger, r.contextManager, r.metrics, r.logger)
	accountsHandler := handler.NewAccounts(r.ledger, r.contextManager, r.logger)
	settingsHandler := handler.NewSettings(r.ledger, r.sweep, r.contextManager, r.logger)
	importHandler := handler.NewImport(r.importer, r.contextManager, r.logger)
	sweepHandler := handler.NewSweep(r.sweep, r.contextManager, r.logger)

	mux := chi.NewRouter()
	mux.Use(logging.Handle)

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Method(http.MethodGet, "/metrics", r.metricsHandler)

	mux.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", authHandler.Register)
		api.Post("/auth/refresh", authHandler.Refresh)
		api.Post("/auth/revoke", authHandler.Revoke)

		api.Group(func(protected chi.Router) {
			protected.Use(authenticate.Handle)

			protected.Post("/events", eventsHandler.Submit)

			protected.Get("/accounts", accountsHandler.List)
			protected.Post("/accounts", accountsHandler.Create)
			protected.Post("/accounts/sample", accountsHandler.SeedSample)
			protected.Delete("/accounts/sample", accountsHandler.DeleteSample)
			protected.Get("/accounts/{domain}", accountsHandler.Get)
			protected.Patch("/accounts/{domain}", accountsHandler.Update)
			protected.Delete("/accounts/{domain}", accountsHandler.Delete)

			protected.Post("/import", importHandler.Upload)

			protected.Get("/settings", settingsHandler.Get)
			protected.Put("/settings", settingsHandler.Update)

			protected.Post("/sweep", sweepHandler.Run)
		})
	})

	return mux
}
