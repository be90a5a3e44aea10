package model

// Request and response bodies of the HTTP API. The CRUD shapes are
// generic over the record type so members and topics share one contract.

type ListResponse[T any] struct {
	Items []T `json:"items"`
}

type UpdateRequest[T any] struct {
	Values []T `json:"values"`
}

// UpdateStatus reports one processed update: the value previously stored
// under the record's id (null when the write created the record) and the
// value now stored.
type UpdateStatus[T any] struct {
	Replaced *T `json:"replaced"`
	Current  T  `json:"current"`
}

type UpdateResponse[T any] struct {
	Updates []UpdateStatus[T] `json:"updates"`
}

type DeleteRequest struct {
	IDs []string `json:"ids"`
}

// DeleteResponse lists the removed values in request order; an entry is
// null when the id was unknown.
type DeleteResponse[T any] struct {
	Removed []*T `json:"removed"`
}

type ConfirmEmailRequest struct {
	TopicID string `json:"topic_id"`
	EmailID string `json:"email_id"`
}

// ConfirmEmailResponse carries the resolved topic, or null when the
// requested topic id is unknown.
type ConfirmEmailResponse struct {
	Topic *Topic `json:"topic"`
}

// ErrorResponse is the uniform failure envelope. Source is the chained
// cause, or "none" when the error has no underlying cause.
type ErrorResponse struct {
	Error  string `json:"error"`
	Source string `json:"source"`
}
