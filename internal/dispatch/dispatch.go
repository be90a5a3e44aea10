// Package dispatch matches members against a topic and enqueues one
// email job per match (stage A of the email pipeline).
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/sinln/newsletter/internal/logging"
	"github.com/sinln/newsletter/internal/metrics"
	"github.com/sinln/newsletter/internal/model"
)

// QueueAPI is the slice of the queue client stage A needs.
type QueueAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Matches reports whether the member subscribes to the topic: any of the
// member's subscription tags being a substring of the topic endpoint is
// a match. The reverse containment seen in one legacy sender path is not
// implemented; this direction is the canonical rule.
func Matches(topic model.Topic, member model.Member) bool {
	for _, tag := range member.Subscriptions {
		if strings.Contains(topic.Endpoint, tag) {
			return true
		}
	}
	return false
}

// Dispatcher submits email jobs to the outbound queue.
type Dispatcher struct {
	client   QueueAPI
	queueURL string
	log      logging.Logger
	metrics  metrics.Recorder
}

func NewDispatcher(client QueueAPI, queueURL string, log logging.Logger, rec metrics.Recorder) *Dispatcher {
	return &Dispatcher{client: client, queueURL: queueURL, log: log, metrics: rec}
}

// Enqueue runs the matcher over the candidate members and submits one
// EmailJob per match. It returns the number of jobs queued. A submission
// failure aborts the call; jobs already queued stay queued (partial
// enqueue is accepted, delivery is at-least-once). Zero matches is a
// normal outcome.
func (d *Dispatcher) Enqueue(ctx context.Context, topic model.Topic, members []*model.Member, emailID string, confirmLink bool) (int, error) {
	queued := 0
	for _, member := range members {
		if !Matches(topic, *member) {
			continue
		}

		job := model.EmailJob{
			Topic:       topic,
			Member:      *member,
			EmailID:     emailID,
			ConfirmLink: confirmLink,
		}
		body, err := json.Marshal(job)
		if err != nil {
			return queued, fmt.Errorf("encode email job: %w", err)
		}

		_, err = d.client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(d.queueURL),
			MessageBody: aws.String(string(body)),
		})
		if err != nil {
			return queued, fmt.Errorf("queue email job: %w", err)
		}

		queued++
		d.metrics.RecordEmailQueued()
		d.log.Info(ctx, "queued email job",
			"topic", topic.ID, "member", member.ID, "email", emailID, "confirm", confirmLink)
	}
	return queued, nil
}
