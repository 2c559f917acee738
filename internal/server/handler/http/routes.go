package http

import (
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/atinyakov/profilepanel/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// RateLimit is the number of requests allowed per client IP and endpoint
// each RateWindow.
var (
	RateLimit  = 60
	RateWindow = time.Minute
)

// NewRouter constructs the HTTP handler of the account API.
//
// Routes:
//
//	GET /api/user/{userId}          → userHandler.Get
//	PUT /api/user/update/{userId}   → userHandler.Update (JSON only)
//
// Middleware chain (applied in order): RequestID, recoverJSON(logger),
// WithRequestLogging(logger), then per IP and endpoint rate limiting.
// Every non-2xx answer, including those produced by middleware, carries a
// JSON {message} body.
func NewRouter(userHandler *UserHandler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(recoverJSON(logger))
	r.Use(middleware.WithRequestLogging(logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(httprate.Limit(
			RateLimit,
			RateWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, r, http.StatusTooManyRequests, "Too many requests")
			}),
		))

		r.Get("/{userId}", userHandler.Get)
		r.With(requireJSON).Put("/update/{userId}", userHandler.Update)
	})

	return r
}

// requireJSON rejects bodies that are not application/json with 415.
// Requests without a body pass through.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}
		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "application/json" {
			writeError(w, r, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverJSON turns a handler panic into a 500 with a JSON body.
func recoverJSON(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
					zap.Stack("stack"),
				)
				writeError(w, r, http.StatusInternalServerError, "Internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
