package apiapp

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/maniyoussef/ticketflow/internal/config"
	"github.com/maniyoussef/ticketflow/internal/domain/enums"
	syncjob "github.com/maniyoussef/ticketflow/internal/jobs/sync"
	accesssvc "github.com/maniyoussef/ticketflow/internal/services/access"
	identitysvc "github.com/maniyoussef/ticketflow/internal/services/identity"
	notifsvc "github.com/maniyoussef/ticketflow/internal/services/notifications"
	"github.com/maniyoussef/ticketflow/internal/transport/http/handlers"
)

type Dependencies struct {
	IdentityService *identitysvc.Service
	AccessService   *accesssvc.Service
	FeedService     *notifsvc.Service
	SyncJob         *syncjob.Job
	Logger          *zap.Logger
	Config          config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.IdentityService, deps.FeedService, deps.SyncJob, deps.Logger)
	meHandler := handlers.NewMeHandler(deps.IdentityService)
	accessHandler := handlers.NewAccessHandler(deps.AccessService)
	notificationsHandler := handlers.NewNotificationsHandler(deps.FeedService)
	syncHandler := handlers.NewSyncHandler(deps.SyncJob, deps.Config.Sync.ManualPerMin, deps.Config.Sync.ManualBurst, deps.Logger)
	areaHandler := handlers.NewAreaHandler()

	r.Get("/healthz", healthHandler.Get)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	r.Get("/me", meHandler.Handle)
	r.Get("/access/{group}", accessHandler.Probe)

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", notificationsHandler.List)
		r.Post("/", notificationsHandler.Publish)
		r.Post("/read-all", notificationsHandler.MarkAllRead)
		r.Delete("/read", notificationsHandler.ClearRead)
		r.Post("/{id}/read", notificationsHandler.MarkRead)
	})

	r.Post("/sync", syncHandler.Trigger)

	r.Route("/areas", func(r chi.Router) {
		if deps.Config.Sync.SyncOnNavigate && deps.SyncJob != nil {
			r.Use(navigationSyncer(deps.SyncJob, deps.Logger))
		}
		r.With(GuardRouteGroup(deps.AccessService, enums.RouteGroupAdmin, deps.Logger)).Get("/admin", areaHandler.Handle)
		r.With(GuardRouteGroup(deps.AccessService, enums.RouteGroupProjectLead, deps.Logger)).Get("/project-lead", areaHandler.Handle)
		r.With(GuardRouteGroup(deps.AccessService, enums.RouteGroupContributor, deps.Logger)).Get("/contributor", areaHandler.Handle)
		r.With(GuardRouteGroup(deps.AccessService, enums.RouteGroupClient, deps.Logger)).Get("/client", areaHandler.Handle)
	})
}
