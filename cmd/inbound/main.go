// The inbound binary consumes mail-receipt events and fans received
// messages out to subscribed members via the job queue.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sinln/newsletter/internal/awsx"
	"github.com/sinln/newsletter/internal/config"
	"github.com/sinln/newsletter/internal/dispatch"
	"github.com/sinln/newsletter/internal/inbound"
	"github.com/sinln/newsletter/internal/logging"
	"github.com/sinln/newsletter/internal/metrics"
	"github.com/sinln/newsletter/internal/model"
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

	topics := store.New[model.Topic, *model.Topic](dynamo, cfg.TopicsTable, log)
	members := store.New[model.Member, *model.Member](dynamo, cfg.MembersTable, log)
	dispatcher := dispatch.NewDispatcher(queue, cfg.QueueURL, log, metrics.Nop{})

	router := inbound.NewRouter(topics, members, dispatcher, model.Topic{
		ID:       cfg.DefaultTopicID,
		Name:     cfg.DefaultTopicName,
		Endpoint: cfg.DefaultTopicEndpoint,
		Default:  true,
	}, log)

	consumer := inbound.NewConsumer(queue, cfg.InboundQueueURL, router, log)

	log.Info(ctx, "starting inbound router", "queue", cfg.InboundQueueURL)
	if err := consumer.Run(ctx); err != nil {
		log.Error(ctx, "inbound router failed", "error", err.Error())
		os.Exit(1)
	}
}
