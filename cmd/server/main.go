// The server binary exposes the members/topics record store and the
// email-confirm endpoint over HTTP.
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

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/sinln/newsletter/internal/awsx"
	"github.com/sinln/newsletter/internal/config"
	"github.com/sinln/newsletter/internal/dispatch"
	"github.com/sinln/newsletter/internal/logging"
	"github.com/sinln/newsletter/internal/metrics"
	"github.com/sinln/newsletter/internal/model"
	"github.com/sinln/newsletter/internal/server"
	"github.com/sinln/newsletter/internal/store"
)

func main() {
	cfg := config.LoadConfig()
	log := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsx.Load(ctx, cfg)
	if err != nil {
		log.Error(ctx, "aws config init failed", "error", err.Error())
		os.Exit(1)
	}

	dynamo := awsx.NewDynamoDB(awsCfg, cfg.AWSBaseEndpoint)
	queue := awsx.NewSQS(awsCfg, cfg.AWSBaseEndpoint)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	members := store.New[model.Member, *model.Member](dynamo, cfg.MembersTable, log)
	topics := store.New[model.Topic, *model.Topic](dynamo, cfg.TopicsTable, log)
	dispatcher := dispatch.NewDispatcher(queue, cfg.QueueURL, log, collector)

	router := server.NewRouter(&server.RouterDeps{
		Members:       members,
		Topics:        topics,
		Dispatcher:    dispatcher,
		Log:           log,
		Metrics:       collector,
		Gatherer:      registry,
		AllowedOrigin: cfg.AllowedOrigin,
		RateLimiter:   server.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "starting api server", "addr", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(ctx, "server failed", "error", err.Error())
		os.Exit(1)
	}
}
