package httpapi

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/YorHaaa/ATAI/internal/logging"
)

// Options configures the REST middleware stack.
type Options struct {
	// CORSOrigins lists allowed origins. Empty disables cross-origin access.
	CORSOrigins []string
	// RateLimitRequests per RateLimitWindow and client IP. Zero disables limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", chimiddleware.RequestIDHeader},
		ExposedHeaders: []string{chimiddleware.RequestIDHeader},
		MaxAge:         86400,
	})
}

func rateLimit(opts Options) func(http.Handler) http.Handler {
	if opts.RateLimitRequests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	window := opts.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.LimitByIP(opts.RateLimitRequests, window)
}

// requestID reuses or generates an X-Request-Id and attaches it to the
// logging context and the response headers.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := r.Header.Get(chimiddleware.RequestIDHeader); id != "" {
			ctx = logging.ContextWithRequestID(ctx, id)
		} else {
			ctx = logging.ContextWithNewRequestID(ctx)
		}
		w.Header().Set(chimiddleware.RequestIDHeader, logging.RequestIDFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog logs one line per request once it completes.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Ctx(r.Context()).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
