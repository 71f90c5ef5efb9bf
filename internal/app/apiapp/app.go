package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/maniyoussef/ticketflow/internal/config"
	syncjob "github.com/maniyoussef/ticketflow/internal/jobs/sync"
	"github.com/maniyoussef/ticketflow/internal/repo/authhttp"
	"github.com/maniyoussef/ticketflow/internal/repo/notifhttp"
	redrepo "github.com/maniyoussef/ticketflow/internal/repo/redis"
	accesssvc "github.com/maniyoussef/ticketflow/internal/services/access"
	identitysvc "github.com/maniyoussef/ticketflow/internal/services/identity"
	notifsvc "github.com/maniyoussef/ticketflow/internal/services/notifications"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	redis      *goredis.Client
	syncJob    *syncjob.Job
	httpRouter http.Handler
}

func New(_ context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionStore := redrepo.NewSessionStore(redisClient, cfg.Store.KeyPrefix, cfg.Store.FeedTTL)

	authClient, err := authhttp.NewClient(cfg.Auth.BaseURL, cfg.Auth.Timeout)
	if err != nil {
		return nil, fmt.Errorf("create auth backend client: %w", err)
	}
	notifClient, err := notifhttp.NewClient(cfg.Notify.BaseURL, cfg.Notify.Timeout)
	if err != nil {
		return nil, fmt.Errorf("create notification backend client: %w", err)
	}

	identityService := identitysvc.NewService(sessionStore, authClient, cfg.Identity.RefreshTimeout, log)
	accessService := accesssvc.NewService(identityService, log)
	feedService := notifsvc.NewService(sessionStore, notifsvc.Config{}, log)
	syncJob := syncjob.New(identityService, notifClient, feedService, cfg.Sync.Interval, cfg.Sync.FetchTimeout, log)

	RegisterRoutes(r, Dependencies{
		IdentityService: identityService,
		AccessService:   accessService,
		FeedService:     feedService,
		SyncJob:         syncJob,
		Logger:          log,
		Config:          cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		redis:      redisClient,
		syncJob:    syncJob,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// RunSync drives the background synchronization loop until ctx ends.
func (a *App) RunSync(ctx context.Context) error {
	return a.syncJob.Run(ctx)
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
