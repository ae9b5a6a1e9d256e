/*
server.go - HTTP router, middleware and server lifecycle

PURPOSE:

	Exposes the balance calculator and both stores over a small JSON API so a
	browser extension or status bar widget can read the balance and record
	days without shelling out to the CLI.

ROUTES:

	GET    /api/balance?until=YYYY-MM-DD   overall balance, target day excluded
	GET    /api/days/{date}                one day's total and balance
	GET    /api/week?date=YYYY-MM-DD       Monday..Sunday report
	GET    /api/entries/{date}             entry of a day
	PUT    /api/entries/{date}             replace entry (day-total or values)
	DELETE /api/entries/{date}
	GET    /api/waivers                    all waivers, by date
	GET    /api/waivers/{date}
	PUT    /api/waivers/{date}             {reason, hours}
	DELETE /api/waivers/{date}

MIDDLEWARE STACK:

	RequestID, RealIP, request log (slog), Recoverer, Timeout, security
	headers, per-IP rate limit, CORS.

SECURITY NOTE:

	No authentication. Bind to localhost unless a proxy in front adds it.
*/
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
	"golang.org/x/sync/errgroup"
)

// Options tunes the router.
type Options struct {
	// AllowedOrigins lists the origins CORS accepts. Empty disables CORS.
	AllowedOrigins []string
	// RequestsPerMinute limits each client IP. Zero disables the limit.
	RequestsPerMinute int
	// Timeout bounds each request. Zero means 30s.
	Timeout time.Duration
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts Options) *chi.Mux {
	r := chi.NewRouter()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'",
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(secureMiddleware.Handler)
	if opts.RequestsPerMinute > 0 {
		r.Use(httprate.Limit(opts.RequestsPerMinute, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
	}
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/balance", h.GetBalance)
		r.Get("/days/{date}", h.GetDay)
		r.Get("/week", h.GetWeek)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/{date}", h.GetEntry)
			r.Put("/{date}", h.PutEntry)
			r.Delete("/{date}", h.DeleteEntry)
		})

		r.Route("/waivers", func(r chi.Router) {
			r.Get("/", h.ListWaivers)
			r.Get("/{date}", h.GetWaiver)
			r.Put("/{date}", h.PutWaiver)
			r.Delete("/{date}", h.DeleteWaiver)
		})
	})

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

// Serve runs an HTTP server on addr until ctx is cancelled, then shuts it
// down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
