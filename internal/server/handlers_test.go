package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinln/newsletter/internal/logging"
	"github.com/sinln/newsletter/internal/metrics"
	"github.com/sinln/newsletter/internal/model"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeStore serves the CRUD contract from a slice, assigning ids the way
// the real store does.
type fakeStore[T any] struct {
	items   []*T
	listErr error
	nextID  string
	key     func(*T) string
	setKey  func(*T, string)
}

func (f *fakeStore[T]) List(context.Context) ([]*T, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeStore[T]) Update(_ context.Context, rec *T) (*T, error) {
	if f.key(rec) == "" {
		f.setKey(rec, f.nextID)
	}
	for i, item := range f.items {
		if f.key(item) == f.key(rec) {
			old := f.items[i]
			f.items[i] = rec
			return old, nil
		}
	}
	f.items = append(f.items, rec)
	return nil, nil
}

func (f *fakeStore[T]) Delete(_ context.Context, id string) (*T, error) {
	for i, item := range f.items {
		if f.key(item) == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return item, nil
		}
	}
	return nil, nil
}

func newFakeMemberStore(items ...*model.Member) *fakeStore[model.Member] {
	return &fakeStore[model.Member]{
		items:  items,
		nextID: "2024-05-01-12:00:00-42",
		key:    func(m *model.Member) string { return m.ID },
		setKey: func(m *model.Member, id string) { m.ID = id },
	}
}

func newFakeTopicStore(items ...*model.Topic) *fakeStore[model.Topic] {
	return &fakeStore[model.Topic]{
		items:  items,
		nextID: "2024-05-01-12:00:00-43",
		key:    func(t *model.Topic) string { return t.ID },
		setKey: func(t *model.Topic, id string) { t.ID = id },
	}
}

type dispatchCall struct {
	topicID string
	emailID string
	confirm bool
}

type fakeDispatcher struct {
	calls []dispatchCall
	err   error
}

func (f *fakeDispatcher) Enqueue(_ context.Context, topic model.Topic, members []*model.Member, emailID string, confirmLink bool) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.calls = append(f.calls, dispatchCall{topicID: topic.ID, emailID: emailID, confirm: confirmLink})
	return len(members), nil
}

type testEnv struct {
	members    *fakeStore[model.Member]
	topics     *fakeStore[model.Topic]
	dispatcher *fakeDispatcher
	handler    http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		members:    newFakeMemberStore(),
		topics:     newFakeTopicStore(),
		dispatcher: &fakeDispatcher{},
	}
	env.handler = NewRouter(&RouterDeps{
		Members:       env.members,
		Topics:        env.topics,
		Dispatcher:    env.dispatcher,
		Log:           testLogger(),
		Metrics:       metrics.Nop{},
		AllowedOrigin: "http://localhost:3000",
	})
	return env
}

func (env *testEnv) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&v))
	return v
}

func TestListMembers(t *testing.T) {
	env := newTestEnv(t)
	env.members.items = []*model.Member{
		{ID: "m1", Name: "Alice", Email: "alice@example.com", Subscriptions: []string{"news"}},
		{ID: "m2", Name: "Bob", Email: "bob@example.com"},
	}

	w := env.post(t, "/members/list", "{}")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[model.ListResponse[*model.Member]](t, w)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "m1", resp.Items[0].ID)
	assert.Equal(t, []string{"news"}, resp.Items[0].Subscriptions)
}

func TestListStoreErrorReturns400Envelope(t *testing.T) {
	env := newTestEnv(t)
	env.members.listErr = errors.New("scan failed")

	w := env.post(t, "/members/list", "{}")
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody[model.ErrorResponse](t, w)
	assert.Equal(t, "scan failed", resp.Error)
	assert.Equal(t, "none", resp.Source)
}

func TestUpdateMemberAssignsID(t *testing.T) {
	env := newTestEnv(t)

	w := env.post(t, "/members/update",
		`{"values":[{"name":"Alice","email":"alice@example.com"}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[model.UpdateResponse[model.Member]](t, w)
	require.Len(t, resp.Updates, 1)
	assert.Nil(t, resp.Updates[0].Replaced)
	assert.Equal(t, "2024-05-01-12:00:00-42", resp.Updates[0].Current.ID)
}

func TestUpdateMemberReportsReplacedValue(t *testing.T) {
	env := newTestEnv(t)
	env.members.items = []*model.Member{
		{ID: "m1", Name: "Alice", Email: "alice@example.com"},
	}

	w := env.post(t, "/members/update",
		`{"values":[{"id":"m1","name":"Alice B","email":"alice@example.org"}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[model.UpdateResponse[model.Member]](t, w)
	require.Len(t, resp.Updates, 1)
	require.NotNil(t, resp.Updates[0].Replaced)
	assert.Equal(t, "alice@example.com", resp.Updates[0].Replaced.Email)
	assert.Equal(t, "alice@example.org", resp.Updates[0].Current.Email)
}

func TestUpdateMalformedBodyReturns400(t *testing.T) {
	env := newTestEnv(t)

	w := env.post(t, "/members/update", "{not json")
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody[model.ErrorResponse](t, w)
	assert.Contains(t, resp.Error, "no data given")
	assert.NotEqual(t, "none", resp.Source)
}

func TestDeleteUnknownIDYieldsNullEntry(t *testing.T) {
	env := newTestEnv(t)
	env.members.items = []*model.Member{
		{ID: "m1", Name: "Alice", Email: "alice@example.com"},
	}

	w := env.post(t, "/members/delete", `{"ids":["m1","no-such-id"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[model.DeleteResponse[model.Member]](t, w)
	require.Len(t, resp.Removed, 2)
	require.NotNil(t, resp.Removed[0])
	assert.Equal(t, "m1", resp.Removed[0].ID)
	assert.Nil(t, resp.Removed[1])
	assert.Empty(t, env.members.items)
}

func TestTopicCRUDSharesTheProtocol(t *testing.T) {
	env := newTestEnv(t)

	w := env.post(t, "/topics/update",
		`{"values":[{"name":"News","endpoint":"news@example.com","default":false}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[model.UpdateResponse[model.Topic]](t, w)
	require.Len(t, resp.Updates, 1)
	assert.Equal(t, "2024-05-01-12:00:00-43", resp.Updates[0].Current.ID)

	w = env.post(t, "/topics/list", "{}")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[model.ListResponse[*model.Topic]](t, w)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "news@example.com", list.Items[0].Endpoint)
}

func TestConfirmEmailEnqueuesWithConfirmLink(t *testing.T) {
	env := newTestEnv(t)
	env.topics.items = []*model.Topic{
		{ID: "t1", Name: "News", Endpoint: "news@example.com"},
	}
	env.members.items = []*model.Member{
		{ID: "m1", Email: "m1@example.com", Subscriptions: []string{"news"}},
	}

	w := env.post(t, "/email/confirm", `{"topic_id":"t1","email_id":"e1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[model.ConfirmEmailResponse](t, w)
	require.NotNil(t, resp.Topic)
	assert.Equal(t, "t1", resp.Topic.ID)

	require.Len(t, env.dispatcher.calls, 1)
	assert.Equal(t, "e1", env.dispatcher.calls[0].emailID)
	assert.True(t, env.dispatcher.calls[0].confirm)
}

func TestConfirmEmailUnknownTopicReturnsNull(t *testing.T) {
	env := newTestEnv(t)

	w := env.post(t, "/email/confirm", `{"topic_id":"no-such","email_id":"e1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[model.ConfirmEmailResponse](t, w)
	assert.Nil(t, resp.Topic)
	assert.Empty(t, env.dispatcher.calls)
}

func TestConfirmEmailMissingFieldsRejected(t *testing.T) {
	env := newTestEnv(t)

	w := env.post(t, "/email/confirm", `{"topic_id":"t1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody[model.ErrorResponse](t, w)
	assert.Contains(t, resp.Error, "required")
}

func TestCORSHeadersAndPreflight(t *testing.T) {
	env := newTestEnv(t)

	w := env.post(t, "/members/list", "{}")
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/members/list", nil)
	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDHeaderSet(t *testing.T) {
	env := newTestEnv(t)

	w := env.post(t, "/members/list", "{}")
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
