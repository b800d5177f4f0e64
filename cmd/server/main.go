package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/tipcalc/internal/auth"
	"github.com/mmynk/tipcalc/internal/config"
	"github.com/mmynk/tipcalc/internal/metrics"
	"github.com/mmynk/tipcalc/internal/middleware"
	"github.com/mmynk/tipcalc/internal/service"
	"github.com/mmynk/tipcalc/internal/session"
	"github.com/mmynk/tipcalc/pkg/api"
	"github.com/mmynk/tipcalc/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("tipcalc", reg)

	sessions := session.NewRegistry(cfg.SessionTTL, cfg.SliderSteps, m.Hooks())
	go sessions.Run(ctx, cfg.SweepInterval)

	tokens := auth.NewTokenManager(cfg.SessionSecret, cfg.SessionTokenTTL)

	mux := http.NewServeMux()
	path, handler := api.NewTipServiceHandler(
		service.NewTipService(sessions, tokens),
		connect.WithInterceptors(
			m.Interceptor(),
			middleware.RequireSession(tokens, api.OpenProcedures...),
			middleware.LoggingInterceptor(),
		),
	)
	mux.Handle(path, handler)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect streaming clients)
	h2cHandler := h2c.NewHandler(middleware.Logging(middleware.CORS(cfg.CORSAllowedOrigins, mux)), &http2.Server{})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           h2cHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting",
			"address", srv.Addr,
			"env", cfg.AppEnv,
			"session_ttl", cfg.SessionTTL,
			"session_token_ttl", cfg.SessionTokenTTL,
			"slider_steps", cfg.SliderSteps,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "open_sessions", sessions.Len())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
