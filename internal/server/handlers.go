// Package server exposes the record store and the email pipeline over
// HTTP for the API gateway.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sinln/newsletter/internal/logging"
	"github.com/sinln/newsletter/internal/model"
)

var errNoData = errors.New("no data given")

// CRUDStore is what the generic handlers need from the record store.
// Satisfied by *store.Store for each record type.
type CRUDStore[T any] interface {
	List(ctx context.Context) ([]*T, error)
	Update(ctx context.Context, rec *T) (*T, error)
	Delete(ctx context.Context, id string) (*T, error)
}

// Dispatcher is stage A of the email pipeline.
type Dispatcher interface {
	Enqueue(ctx context.Context, topic model.Topic, members []*model.Member, emailID string, confirmLink bool) (int, error)
}

// crudHandler serves the list/update/delete protocol for one record
// type. Members and topics share this implementation.
type crudHandler[T any] struct {
	store CRUDStore[T]
	log   logging.Logger
}

func newCRUDHandler[T any](s CRUDStore[T], log logging.Logger) *crudHandler[T] {
	return &crudHandler[T]{store: s, log: log}
}

func (h *crudHandler[T]) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ListResponse[*T]{Items: items})
}

func (h *crudHandler[T]) update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateRequest[T]
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, h.log, fmt.Errorf("%w: %v", errNoData, err))
		return
	}

	updates := make([]model.UpdateStatus[T], 0, len(req.Values))
	for i := range req.Values {
		rec := &req.Values[i]
		previous, err := h.store.Update(r.Context(), rec)
		if err != nil {
			writeError(r.Context(), w, h.log, err)
			return
		}
		updates = append(updates, model.UpdateStatus[T]{
			Replaced: previous,
			Current:  *rec,
		})
	}
	writeJSON(w, http.StatusOK, model.UpdateResponse[T]{Updates: updates})
}

func (h *crudHandler[T]) delete(w http.ResponseWriter, r *http.Request) {
	var req model.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, h.log, fmt.Errorf("%w: %v", errNoData, err))
		return
	}

	removed := make([]*T, 0, len(req.IDs))
	for _, id := range req.IDs {
		previous, err := h.store.Delete(r.Context(), id)
		if err != nil {
			writeError(r.Context(), w, h.log, err)
			return
		}
		removed = append(removed, previous)
	}
	writeJSON(w, http.StatusOK, model.DeleteResponse[T]{Removed: removed})
}

// confirmHandler resolves a topic by id and enqueues confirmation
// emails to every matching member.
type confirmHandler struct {
	topics     CRUDStore[model.Topic]
	members    CRUDStore[model.Member]
	dispatcher Dispatcher
	log        logging.Logger
}

func (h *confirmHandler) confirm(w http.ResponseWriter, r *http.Request) {
	var req model.ConfirmEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, h.log, fmt.Errorf("%w: %v", errNoData, err))
		return
	}
	if req.TopicID == "" || req.EmailID == "" {
		writeError(r.Context(), w, h.log, errors.New("topic_id and email_id are required"))
		return
	}

	topics, err := h.topics.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, h.log, err)
		return
	}

	var topic *model.Topic
	for _, t := range topics {
		if t.ID == req.TopicID {
			topic = t
			break
		}
	}
	if topic == nil {
		writeJSON(w, http.StatusOK, model.ConfirmEmailResponse{Topic: nil})
		return
	}

	members, err := h.members.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, h.log, err)
		return
	}

	if _, err := h.dispatcher.Enqueue(r.Context(), *topic, members, req.EmailID, true); err != nil {
		writeError(r.Context(), w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ConfirmEmailResponse{Topic: topic})
}
