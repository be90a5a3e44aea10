package inbound

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/sinln/newsletter/internal/logging"
)

// QueueAPI is the consuming side of the inbound event queue.
type QueueAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Consumer polls the inbound event queue and feeds each receipt event to
// the router.
type Consumer struct {
	queue    QueueAPI
	queueURL string
	router   *Router
	log      logging.Logger
}

func NewConsumer(queue QueueAPI, queueURL string, router *Router, log logging.Logger) *Consumer {
	return &Consumer{queue: queue, queueURL: queueURL, router: router, log: log}
}

// Run polls until the context is cancelled. A handled event is deleted;
// a failed one stays on the queue for redelivery. Bodies that are not
// valid events are deleted so they cannot loop.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		out, err := c.queue.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error(ctx, "receive failed", "error", err.Error())
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range out.Messages {
			c.handleMessage(ctx, msg)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg sqstypes.Message) {
	var event Event
	if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &event); err != nil {
		c.log.Warn(ctx, "dropping malformed event", "error", err.Error())
		c.deleteMessage(ctx, msg)
		return
	}

	if err := c.router.HandleEvent(ctx, event); err != nil {
		c.log.Error(ctx, "event failed", "error", err.Error())
		return
	}

	c.deleteMessage(ctx, msg)
}

func (c *Consumer) deleteMessage(ctx context.Context, msg sqstypes.Message) {
	_, err := c.queue.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		c.log.Warn(ctx, "delete message failed", "error", err.Error())
	}
}
