// The sender binary consumes queued email jobs, renders them and
// submits them to the send service.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sinln/newsletter/internal/awsx"
	"github.com/sinln/newsletter/internal/config"
	"github.com/sinln/newsletter/internal/logging"
	"github.com/sinln/newsletter/internal/mailer"
	"github.com/sinln/newsletter/internal/metrics"
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

	sender := mailer.NewSender(
		awsx.NewS3(awsCfg, cfg.AWSBaseEndpoint),
		awsx.NewSES(awsCfg, cfg.AWSBaseEndpoint),
		awsx.NewSQS(awsCfg, cfg.AWSBaseEndpoint),
		cfg.EmailBucket,
		cfg.QueueURL,
		cfg.LinkBaseURL,
		log,
		metrics.Nop{},
	)

	log.Info(ctx, "starting email sender", "queue", cfg.QueueURL)
	if err := sender.Run(ctx); err != nil {
		log.Error(ctx, "sender failed", "error", err.Error())
		os.Exit(1)
	}
}
