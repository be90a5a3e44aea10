// Package config handles configuration: defaults, an optional JSON
// overlay and command-line flags, applied in that order.
package config

// Config holds the runtime settings shared by the three binaries.
// Everything is resolved once at process start and passed explicitly
// into each component; nothing reads ambient global state.
//
// Fields:
//   - HTTPAddr: bind address of the API gateway server.
//   - MembersTable / TopicsTable: table names of the two record types.
//   - QueueURL: the outbound email-job queue.
//   - InboundQueueURL: the queue mail-receipt events arrive on.
//   - EmailBucket: content store bucket holding raw email bodies.
//   - AllowedOrigin: the one front-end origin CORS responses allow.
//   - LinkBaseURL: base of the confirm/unsubscribe action links.
//   - DefaultTopic*: the fallback topic used when inbound mail matches
//     no configured endpoint.
//   - AWS*: region, optional endpoint override and static credentials
//     for local stacks.
type Config struct {
	HTTPAddr string

	MembersTable    string
	TopicsTable     string
	QueueURL        string
	InboundQueueURL string
	EmailBucket     string

	AllowedOrigin string
	LinkBaseURL   string

	DefaultTopicID       string
	DefaultTopicName     string
	DefaultTopicEndpoint string

	AWSRegion       string
	AWSBaseEndpoint string
	AWSAccessKey    string
	AWSSecretKey    string

	RateLimitRPS   float64
	RateLimitBurst int
}

// LoadDefaults populates Config with development defaults.
// NOTE: override these for any real deployment.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.MembersTable = "sinln-members"
	c.TopicsTable = "sinln-topics"
	c.QueueURL = "http://127.0.0.1:4566/000000000000/sinln-output-queue"
	c.InboundQueueURL = "http://127.0.0.1:4566/000000000000/sinln-input-queue"
	c.EmailBucket = "sinln-input-emails"
	c.AllowedOrigin = "http://localhost:3000"
	c.LinkBaseURL = "http://localhost:3000"
	c.DefaultTopicID = "default"
	c.DefaultTopicName = "Default"
	c.DefaultTopicEndpoint = "hello@example.com"
	c.AWSRegion = "us-east-1"
	c.AWSBaseEndpoint = ""
	c.AWSAccessKey = ""
	c.AWSSecretKey = ""
	c.RateLimitRPS = 10
	c.RateLimitBurst = 30
}

// LoadConfig builds a Config by applying defaults, then overlaying
// values from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
