package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"contact-gateway/config"
	"contact-gateway/contact"
	"contact-gateway/logging"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Exemplo: cada rota como função independente (formato serverless).
// Sem rate limit: nenhuma rota compartilha estado com outra.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("dotenv error: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	handler := contact.NewHandler(contact.Options{
		Endpoint:           cfg.FormEndpoint,
		Forwarder:          contact.NewHTTPForwarder(contact.WithTimeout(cfg.UpstreamTimeout)),
		TrustXForwardedFor: cfg.TrustXFF,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		Logger:             logger,
	})

	mux := http.NewServeMux()
	for pattern, h := range contact.Routes(contact.RoutesOptions{
		Contact:        handler,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	}) {
		mux.Handle(pattern, h)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("contact routes listening", zap.String("addr", cfg.Addr), zap.Strings("allowed_origins", cfg.AllowedOrigins))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
