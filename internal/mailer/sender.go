// Package mailer consumes queued email jobs, renders the stored source
// message with a per-member action link and submits it to the send
// service (stage B of the email pipeline).
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/sinln/newsletter/internal/logging"
	"github.com/sinln/newsletter/internal/metrics"
	"github.com/sinln/newsletter/internal/model"
)

// ContentAPI fetches raw email content from the content store.
type ContentAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// SendAPI submits raw messages to the send service.
type SendAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// QueueAPI is the consuming side of the job queue.
type QueueAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type Sender struct {
	content  ContentAPI
	send     SendAPI
	queue    QueueAPI
	bucket   string
	queueURL string
	linkBase string
	log      logging.Logger
	metrics  metrics.Recorder
}

func NewSender(content ContentAPI, send SendAPI, queue QueueAPI, bucket, queueURL, linkBase string, log logging.Logger, rec metrics.Recorder) *Sender {
	return &Sender{
		content:  content,
		send:     send,
		queue:    queue,
		bucket:   bucket,
		queueURL: queueURL,
		linkBase: linkBase,
		log:      log,
		metrics:  rec,
	}
}

// Process handles one job end to end: fetch, render, send. Any failure
// is fatal for the job; retry is the queue's responsibility. Duplicate
// deliveries re-send the same email.
func (s *Sender) Process(ctx context.Context, job model.EmailJob) error {
	raw, err := s.fetch(ctx, job.EmailID)
	if err != nil {
		return err
	}

	out, err := Render(raw, job, s.linkBase)
	if err != nil {
		return err
	}

	_, err = s.send.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(job.Topic.Endpoint),
		Destination: &sestypes.Destination{
			ToAddresses: []string{job.Member.Email},
		},
		Content: &sestypes.EmailContent{
			Raw: &sestypes.RawMessage{Data: out},
		},
	})
	if err != nil {
		return fmt.Errorf("send email to %s: %w", job.Member.Email, err)
	}

	s.log.Info(ctx, "sent email",
		"topic", job.Topic.ID, "member", job.Member.ID, "email", job.EmailID)
	return nil
}

func (s *Sender) fetch(ctx context.Context, emailID string) ([]byte, error) {
	out, err := s.content.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(emailID),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch email %s: %w", emailID, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read email %s: %w", emailID, err)
	}
	return raw, nil
}

// Run polls the job queue until the context is cancelled. Successfully
// processed messages are deleted; failed ones are left for the queue to
// redeliver. Malformed bodies are deleted so they cannot loop forever.
func (s *Sender) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		out, err := s.queue.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(s.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Error(ctx, "receive failed", "error", err.Error())
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range out.Messages {
			s.handleMessage(ctx, msg)
		}
	}
}

func (s *Sender) handleMessage(ctx context.Context, msg sqstypes.Message) {
	var job model.EmailJob
	if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &job); err != nil {
		s.log.Warn(ctx, "dropping malformed job", "error", err.Error())
		s.deleteMessage(ctx, msg)
		return
	}

	if err := s.Process(ctx, job); err != nil {
		s.metrics.RecordSendFailure()
		s.log.Error(ctx, "job failed", "email", job.EmailID, "error", err.Error())
		return
	}

	s.metrics.RecordEmailSent()
	s.deleteMessage(ctx, msg)
}

func (s *Sender) deleteMessage(ctx context.Context, msg sqstypes.Message) {
	_, err := s.queue.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		s.log.Warn(ctx, "delete message failed", "error", err.Error())
	}
}
