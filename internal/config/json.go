package config

import (
	"encoding/json"
	"os"

	"github.com/sinln/newsletter/internal/flagx"
)

// jsonConfig mirrors Config for JSON unmarshalling. Pointer fields let
// the overlay distinguish "absent" from "zero" so a partial file only
// touches the keys it names.
type jsonConfig struct {
	HTTPAddr *string `json:"http_addr"`

	MembersTable    *string `json:"members_table"`
	TopicsTable     *string `json:"topics_table"`
	QueueURL        *string `json:"queue_url"`
	InboundQueueURL *string `json:"inbound_queue_url"`
	EmailBucket     *string `json:"email_bucket"`

	AllowedOrigin *string `json:"allowed_origin"`
	LinkBaseURL   *string `json:"link_base_url"`

	DefaultTopicID       *string `json:"default_topic_id"`
	DefaultTopicName     *string `json:"default_topic_name"`
	DefaultTopicEndpoint *string `json:"default_topic_endpoint"`

	AWSRegion       *string `json:"aws_region"`
	AWSBaseEndpoint *string `json:"aws_base_endpoint"`
	AWSAccessKey    *string `json:"aws_access_key"`
	AWSSecretKey    *string `json:"aws_secret_key"`

	RateLimitRPS   *float64 `json:"rate_limit_rps"`
	RateLimitBurst *int     `json:"rate_limit_burst"`
}

// parseJSON overlays values from the JSON file named by -c/-config, if
// any. An unreadable or invalid file panics: a deployment with a broken
// config file should not start.
func parseJSON(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.MembersTable, c.MembersTable)
	setString(&config.TopicsTable, c.TopicsTable)
	setString(&config.QueueURL, c.QueueURL)
	setString(&config.InboundQueueURL, c.InboundQueueURL)
	setString(&config.EmailBucket, c.EmailBucket)
	setString(&config.AllowedOrigin, c.AllowedOrigin)
	setString(&config.LinkBaseURL, c.LinkBaseURL)
	setString(&config.DefaultTopicID, c.DefaultTopicID)
	setString(&config.DefaultTopicName, c.DefaultTopicName)
	setString(&config.DefaultTopicEndpoint, c.DefaultTopicEndpoint)
	setString(&config.AWSRegion, c.AWSRegion)
	setString(&config.AWSBaseEndpoint, c.AWSBaseEndpoint)
	setString(&config.AWSAccessKey, c.AWSAccessKey)
	setString(&config.AWSSecretKey, c.AWSSecretKey)
	if c.RateLimitRPS != nil {
		config.RateLimitRPS = *c.RateLimitRPS
	}
	if c.RateLimitBurst != nil {
		config.RateLimitBurst = *c.RateLimitBurst
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
