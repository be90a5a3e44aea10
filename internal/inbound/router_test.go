package inbound

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinln/newsletter/internal/logging"
	"github.com/sinln/newsletter/internal/model"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeTopicLister struct {
	topics []*model.Topic
	err    error
}

func (f *fakeTopicLister) List(context.Context) ([]*model.Topic, error) {
	return f.topics, f.err
}

type fakeMemberLister struct {
	members []*model.Member
	err     error
}

func (f *fakeMemberLister) List(context.Context) ([]*model.Member, error) {
	return f.members, f.err
}

type dispatchCall struct {
	topic   model.Topic
	emailID string
	confirm bool
}

type fakeDispatcher struct {
	calls   []dispatchCall
	failFor string // topic ID to fail on
}

func (f *fakeDispatcher) Enqueue(_ context.Context, topic model.Topic, members []*model.Member, emailID string, confirmLink bool) (int, error) {
	if f.failFor != "" && topic.ID == f.failFor {
		return 0, errors.New("queue unavailable")
	}
	f.calls = append(f.calls, dispatchCall{topic: topic, emailID: emailID, confirm: confirmLink})
	return len(members), nil
}

var defaultTopic = model.Topic{ID: "t-default", Name: "Catch all", Endpoint: "hello@example.com", Default: true}

func eventFor(messageID string, destinations ...string) Event {
	return Event{Records: []Record{{SES: SESRecord{Mail: Mail{
		MessageID:   messageID,
		Destination: destinations,
	}}}}}
}

func TestHandleEventRoutesByEndpoint(t *testing.T) {
	topics := &fakeTopicLister{topics: []*model.Topic{
		{ID: "t1", Name: "News", Endpoint: "news@example.com"},
		{ID: "t2", Name: "Promo", Endpoint: "promo@example.com"},
	}}
	members := &fakeMemberLister{members: []*model.Member{{ID: "m1", Subscriptions: []string{"news"}}}}
	dispatcher := &fakeDispatcher{}
	r := NewRouter(topics, members, dispatcher, defaultTopic, testLogger())

	err := r.HandleEvent(context.Background(), eventFor("msg-1", "news@example.com"))
	require.NoError(t, err)

	require.Len(t, dispatcher.calls, 1)
	assert.Equal(t, "t1", dispatcher.calls[0].topic.ID)
	assert.Equal(t, "msg-1", dispatcher.calls[0].emailID)
	assert.False(t, dispatcher.calls[0].confirm)
}

func TestHandleEventFallsBackToDefaultTopic(t *testing.T) {
	topics := &fakeTopicLister{topics: []*model.Topic{
		{ID: "t1", Endpoint: "news@example.com"},
	}}
	dispatcher := &fakeDispatcher{}
	r := NewRouter(topics, &fakeMemberLister{}, dispatcher, defaultTopic, testLogger())

	err := r.HandleEvent(context.Background(), eventFor("msg-1", "unknown@example.com"))
	require.NoError(t, err)

	require.Len(t, dispatcher.calls, 1)
	assert.Equal(t, "t-default", dispatcher.calls[0].topic.ID)
}

func TestHandleEventDispatchFailureIsolatedPerDestination(t *testing.T) {
	topics := &fakeTopicLister{topics: []*model.Topic{
		{ID: "t1", Endpoint: "news@example.com"},
		{ID: "t2", Endpoint: "promo@example.com"},
	}}
	dispatcher := &fakeDispatcher{failFor: "t1"}
	r := NewRouter(topics, &fakeMemberLister{}, dispatcher, defaultTopic, testLogger())

	err := r.HandleEvent(context.Background(), eventFor("msg-1", "news@example.com", "promo@example.com"))
	require.NoError(t, err)

	// the failed destination is skipped, the other still dispatches
	require.Len(t, dispatcher.calls, 1)
	assert.Equal(t, "t2", dispatcher.calls[0].topic.ID)
}

func TestHandleEventTopicScanFailureFailsEvent(t *testing.T) {
	topics := &fakeTopicLister{err: errors.New("throttled")}
	dispatcher := &fakeDispatcher{}
	r := NewRouter(topics, &fakeMemberLister{}, dispatcher, defaultTopic, testLogger())

	err := r.HandleEvent(context.Background(), eventFor("msg-1", "news@example.com"))
	require.Error(t, err)
	assert.Empty(t, dispatcher.calls)
}

func TestHandleEventMemberScanFailureFailsEvent(t *testing.T) {
	members := &fakeMemberLister{err: errors.New("throttled")}
	dispatcher := &fakeDispatcher{}
	r := NewRouter(&fakeTopicLister{}, members, dispatcher, defaultTopic, testLogger())

	err := r.HandleEvent(context.Background(), eventFor("msg-1", "news@example.com"))
	require.Error(t, err)
	assert.Empty(t, dispatcher.calls)
}

func TestHandleEventMultipleRecords(t *testing.T) {
	topics := &fakeTopicLister{topics: []*model.Topic{
		{ID: "t1", Endpoint: "news@example.com"},
	}}
	dispatcher := &fakeDispatcher{}
	r := NewRouter(topics, &fakeMemberLister{}, dispatcher, defaultTopic, testLogger())

	event := Event{Records: []Record{
		{SES: SESRecord{Mail: Mail{MessageID: "msg-1", Destination: []string{"news@example.com"}}}},
		{SES: SESRecord{Mail: Mail{MessageID: "msg-2", Destination: []string{"news@example.com"}}}},
	}}

	require.NoError(t, r.HandleEvent(context.Background(), event))
	require.Len(t, dispatcher.calls, 2)
	assert.Equal(t, "msg-1", dispatcher.calls[0].emailID)
	assert.Equal(t, "msg-2", dispatcher.calls[1].emailID)
}
