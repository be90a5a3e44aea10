package model

// Topic is a mailing list definition. Endpoint is the address the topic
// receives mail on and the sender address for outbound mail; it is also
// the string member subscription tags are matched against.
//
// Default marks the fallback topic used when inbound mail matches no
// configured endpoint.
type Topic struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Default  bool   `json:"default"`
}
