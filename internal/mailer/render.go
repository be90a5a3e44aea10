package mailer

import (
	"bytes"
	"fmt"
	"net/mail"
	"net/url"

	"github.com/sinln/newsletter/internal/model"
)

// ActionLink builds the per-member action URL appended to an outbound
// message: a confirmation link referencing the topic and the stored
// email, or an unsubscribe link referencing the member and the topic.
func ActionLink(base string, job model.EmailJob) string {
	if job.ConfirmLink {
		return fmt.Sprintf("%s/confirm?topic=%s&email=%s",
			base, url.QueryEscape(job.Topic.ID), url.QueryEscape(job.EmailID))
	}
	return fmt.Sprintf("%s/unsubscribe?member=%s&topic=%s",
		base, url.QueryEscape(job.Member.ID), url.QueryEscape(job.Topic.ID))
}

// Render parses the raw source message and appends the job's action line
// to the body, keeping the original header block byte-for-byte so the
// re-serialized message stays valid.
func Render(raw []byte, job model.EmailJob, linkBase string) ([]byte, error) {
	if _, err := mail.ReadMessage(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("parse email %s: %w", job.EmailID, err)
	}

	link := ActionLink(linkBase, job)

	out := make([]byte, 0, len(raw)+len(link)+4)
	out = append(out, raw...)
	if !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\r', '\n')
	}
	out = append(out, []byte(link)...)
	out = append(out, '\r', '\n')
	return out, nil
}
