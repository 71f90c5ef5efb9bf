package apiapp

import (
	"context"
	"errors"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/maniyoussef/ticketflow/internal/domain/enums"
	syncjob "github.com/maniyoussef/ticketflow/internal/jobs/sync"
	accesssvc "github.com/maniyoussef/ticketflow/internal/services/access"
	httperrors "github.com/maniyoussef/ticketflow/internal/transport/http/errors"
)

func ApplyMiddlewares(r chiRouter, log *zap.Logger) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(requestLogger(log))
}

// GuardRouteGroup admits a request only when the access engine allows
// the current actor into the group. The admitting decision is stored on
// the context for the downstream handler.
func GuardRouteGroup(access *accesssvc.Service, group enums.RouteGroup, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if access == nil {
				httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
					Code:    "ACCESS_SERVICE_UNAVAILABLE",
					Message: "access service is unavailable",
				})
				return
			}

			decision := access.CanEnter(r.Context(), group)
			if !decision.Allowed {
				if decision.Reason == enums.DenyNotAuthenticated {
					httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
						Code:    "UNAUTHORIZED",
						Message: "authentication required",
					})
					return
				}
				if log != nil {
					log.Debug("route group guard denied",
						zap.String("group", string(group)),
						zap.Int64("actor_id", decision.ActorID),
					)
				}
				httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
					Code:    "FORBIDDEN",
					Message: "role required for this area",
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(accesssvc.WithDecision(r.Context(), decision)))
		})
	}
}

// navigationSyncer fires a best-effort navigation sync whenever a guarded
// area is entered, without delaying the request.
func navigationSyncer(trigger navigationTrigger, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			go func() {
				err := trigger.TriggerSync(context.Background(), enums.SyncKindNavigation)
				if err != nil && !errors.Is(err, syncjob.ErrSyncInFlight) && log != nil {
					log.Debug("navigation sync failed", zap.Error(err))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type navigationTrigger interface {
	TriggerSync(ctx context.Context, kind enums.SyncKind) error
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if log != nil {
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}
