package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Sehgal-Arjun/Lucid/internal/pkg/logging"
	"github.com/Sehgal-Arjun/Lucid/internal/pkg/middleware"
	"github.com/Sehgal-Arjun/Lucid/internal/pkg/router"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/config"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/rest"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func run(ctx context.Context) error {
	cfg := config.FromEnv()
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	slog.Info("starting journal service", "version", version)

	d, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.close(); err != nil {
			slog.Error("failed to release resources", "error", err)
		}
	}()

	r := router.New()
	r.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.LogWith(logger),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
	)
	r.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := d.ready(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "not ready", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("GET /images/", http.StripPrefix("/images/", noListing(http.FileServer(http.Dir(d.blobs.Root())))))

	v1 := r.SubRouter("/api/v1")
	v1.Handle("/", rest.NewPublicAPI(d.users))

	journal := v1.SubRouter("/journal")
	journal.Use(middleware.Auth([]byte(cfg.Auth.Secret)))
	journal.Handle("/", rest.NewAPI(
		rest.WithJournalService(d.journal),
		rest.WithMaxImageSize(cfg.Images.MaxSize),
	))

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.ListenAddr,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		Handler:      r,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("HTTP server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// noListing hides directory indexes of the image root.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
