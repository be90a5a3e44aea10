package model

// EmailJob is one queued unit of work: render and send a single email to
// a single member. Topic and Member are full snapshots taken at enqueue
// time; EmailID references the raw source message in the content bucket.
//
// ConfirmLink selects which action link gets appended to the body:
// a subscription-confirmation link when true, an unsubscribe link
// otherwise.
//
// Delivery is at-least-once. A duplicate delivery re-sends the same
// email; consumers do not deduplicate.
type EmailJob struct {
	Topic       Topic  `json:"topic"`
	Member      Member `json:"member"`
	EmailID     string `json:"email_id"`
	ConfirmLink bool   `json:"confirm_link"`
}
