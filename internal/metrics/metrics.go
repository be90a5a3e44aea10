// Package metrics collects and exposes Prometheus metrics for the email
// pipeline and the HTTP gateway.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface the pipeline components record through.
type Recorder interface {
	RecordEmailQueued()
	RecordEmailSent()
	RecordSendFailure()
	RecordHTTPStatus(code int)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	emailsQueued prometheus.Counter
	emailsSent   prometheus.Counter
	sendFailures prometheus.Counter
	httpStatus   *prometheus.CounterVec
}

// NewCollector registers the metrics on reg and returns the collector.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		emailsQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sinln_emails_queued_total",
			Help: "Email jobs submitted to the outbound queue.",
		}),
		emailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sinln_emails_sent_total",
			Help: "Emails accepted by the send service.",
		}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sinln_send_failures_total",
			Help: "Email jobs that failed to fetch, render or send.",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sinln_http_status_total",
			Help: "Gateway responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(c.emailsQueued, c.emailsSent, c.sendFailures, c.httpStatus)
	return c
}

func (c *Collector) RecordEmailQueued() { c.emailsQueued.Inc() }
func (c *Collector) RecordEmailSent()   { c.emailsSent.Inc() }
func (c *Collector) RecordSendFailure() { c.sendFailures.Inc() }

func (c *Collector) RecordHTTPStatus(code int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(code)).Inc()
}

// Handler returns the scrape endpoint handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop is a Recorder that discards everything; handy for tests and for
// binaries that do not expose a scrape endpoint.
type Nop struct{}

func (Nop) RecordEmailQueued()   {}
func (Nop) RecordEmailSent()     {}
func (Nop) RecordSendFailure()   {}
func (Nop) RecordHTTPStatus(int) {}
