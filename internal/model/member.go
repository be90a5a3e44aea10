// Package model holds the domain records and the request/response types
// of the public API.
package model

// Member is a subscriber of one or more mailing lists.
//
// ID is empty until the record is first persisted; the store assigns it.
// Subscriptions holds opaque tags matched against a Topic's endpoint to
// decide whether the member receives mail for that topic.
type Member struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Address       string   `json:"address,omitempty"`
	Mobile        *uint64  `json:"mobile,omitempty"`
	Subscriptions []string `json:"subscriptions"`
}
