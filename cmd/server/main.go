package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spacesedan/emotisense/config"
	"github.com/spacesedan/emotisense/internal/clients"
	"github.com/spacesedan/emotisense/internal/handlers"
	"github.com/spacesedan/emotisense/internal/logging"
	"github.com/spacesedan/emotisense/internal/monitoring"
	"github.com/spacesedan/emotisense/internal/recommendations"
	"github.com/spacesedan/emotisense/internal/session"
)

var build = "develop"

func main() {
	config.LoadEnv(config.AppEnv())

	cfg, help, err := config.Parse(build, "emotion analysis and recommendation service")
	if err != nil {
		if errors.Is(err, config.ErrHelpWanted) {
			fmt.Println(help)
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.InitLogger(cfg.Log.Level)

	if err := run(cfg); err != nil {
		slog.Error("[Main] Server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("[Main] Starting", slog.String("build", build), slog.String("env", config.AppEnv()))
	slog.Debug("[Main] Config\n" + cfg.String())

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	inference := clients.NewInferenceClient(cfg.InferenceClient())
	llm := clients.NewOpenAIClient(cfg.OpenAIClient())
	recs := recommendations.NewService(llm)

	inferenceHealthy := &atomic.Bool{}
	inferenceHealthy.Store(true)
	go monitoring.MonitorInferenceHealth(ctx, inference, cfg.Inference.HealthInterval, inferenceHealthy)

	h := handlers.New(handlers.Deps{
		Inference:        inference,
		Recommendations:  recs,
		Sessions:         session.NewManager(store),
		InferenceHealthy: inferenceHealthy,
		MaxUploadBytes:   cfg.Web.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:         cfg.Web.Host,
		Handler:      h.Routes(),
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("[Main] Listening",
			slog.String("addr", srv.Addr),
			slog.Bool("llm_configured", recs.IsConfigured()),
			slog.String("llm_model", llm.Model()),
			slog.String("session_backend", cfg.Session.Backend))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("[Main] Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("could not stop server gracefully: %w", err)
	}
	slog.Info("[Main] Server stopped")
	return nil
}

func newStore(ctx context.Context, cfg config.Config) (session.Store, func(), error) {
	if cfg.Session.Backend != config.SessionBackendValkey {
		return session.NewMemoryStore(cfg.Session.TTL), func() {}, nil
	}

	vc, err := clients.NewValkeyClient(ctx, cfg.ValkeyClient())
	if err != nil {
		return nil, nil, err
	}
	return session.NewValkeyStore(vc.Client, cfg.Session.TTL), vc.Close, nil
}
