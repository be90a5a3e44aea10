package inbound

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sinln/newsletter/internal/logging"
	"github.com/sinln/newsletter/internal/model"
)

type TopicLister interface {
	List(ctx context.Context) ([]*model.Topic, error)
}

type MemberLister interface {
	List(ctx context.Context) ([]*model.Member, error)
}

type Dispatcher interface {
	Enqueue(ctx context.Context, topic model.Topic, members []*model.Member, emailID string, confirmLink bool) (int, error)
}

// Router resolves the topic for each destination of a received message
// and hands the fan-out to the dispatcher.
type Router struct {
	topics       TopicLister
	members      MemberLister
	dispatcher   Dispatcher
	defaultTopic model.Topic
	log          logging.Logger
}

func NewRouter(topics TopicLister, members MemberLister, dispatcher Dispatcher, defaultTopic model.Topic, log logging.Logger) *Router {
	return &Router{
		topics:       topics,
		members:      members,
		dispatcher:   dispatcher,
		defaultTopic: defaultTopic,
		log:          log,
	}
}

// HandleEvent processes one receipt event. Topics and members are loaded
// concurrently; a failed scan fails the whole event (transport error,
// the queue redrives it). Per-destination dispatch failures are logged
// and isolated so one bad destination cannot abort its siblings.
//
// A destination matching no topic endpoint falls back to the configured
// default topic; the message is never dropped.
func (r *Router) HandleEvent(ctx context.Context, event Event) error {
	var topics []*model.Topic
	var members []*model.Member

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		topics, err = r.topics.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = r.members.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for _, record := range event.Records {
		mail := record.SES.Mail
		for _, destination := range mail.Destination {
			topic := r.resolve(ctx, topics, destination)

			queued, err := r.dispatcher.Enqueue(ctx, topic, members, mail.MessageID, false)
			if err != nil {
				r.log.Error(ctx, "dispatch failed",
					"destination", destination, "email", mail.MessageID, "error", err.Error())
				continue
			}
			r.log.Info(ctx, "routed inbound mail",
				"destination", destination, "topic", topic.ID, "queued", queued)
		}
	}
	return nil
}

func (r *Router) resolve(ctx context.Context, topics []*model.Topic, destination string) model.Topic {
	for _, topic := range topics {
		if topic.Endpoint == destination {
			return *topic
		}
	}
	r.log.Warn(ctx, "no topic for destination, using default",
		"destination", destination, "default", r.defaultTopic.ID)
	return r.defaultTopic
}
