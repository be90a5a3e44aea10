// Package inbound routes received mail to topics and fans it out to
// subscribed members.
package inbound

// Event is the mail-receipt notification shape delivered by the
// receiving pipeline. One event may batch several received messages,
// each addressed to one or more destinations.
type Event struct {
	Records []Record `json:"Records"`
}

type Record struct {
	SES SESRecord `json:"ses"`
}

type SESRecord struct {
	Mail Mail `json:"mail"`
}

// Mail describes one received message. MessageID doubles as the content
// store key the raw message was stored under.
type Mail struct {
	MessageID     string        `json:"messageId"`
	Destination   []string      `json:"destination"`
	CommonHeaders CommonHeaders `json:"commonHeaders"`
}

type CommonHeaders struct {
	From    []string `json:"from"`
	Subject string   `json:"subject"`
}
