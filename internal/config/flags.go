package config

import (
	"flag"
	"os"

	"github.com/sinln/newsletter/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Arguments are filtered through flagx.FilterArgs first so flags owned
// by other packages do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-m", "-t", "-q", "-i", "-b", "-o", "-l", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port of the API server")
	fs.StringVar(&config.MembersTable, "m", config.MembersTable, "members table name")
	fs.StringVar(&config.TopicsTable, "t", config.TopicsTable, "topics table name")
	fs.StringVar(&config.QueueURL, "q", config.QueueURL, "outbound email-job queue URL")
	fs.StringVar(&config.InboundQueueURL, "i", config.InboundQueueURL, "inbound event queue URL")
	fs.StringVar(&config.EmailBucket, "b", config.EmailBucket, "raw email bucket")
	fs.StringVar(&config.AllowedOrigin, "o", config.AllowedOrigin, "allowed CORS origin")
	fs.StringVar(&config.LinkBaseURL, "l", config.LinkBaseURL, "action link base URL")
	fs.StringVar(&config.AWSRegion, "g", config.AWSRegion, "AWS region")
	fs.StringVar(&config.AWSBaseEndpoint, "e", config.AWSBaseEndpoint, "AWS endpoint override (local stacks)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
