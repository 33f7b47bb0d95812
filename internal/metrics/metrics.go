// Package metrics wraps a DogStatsD client for the counters the bridge
// exposes per §4.1 (bytesIn/bytesOut/reconnects), §4.4 (retries, queue
// depth), and the Change Engine's sinkOverflow counter.
package metrics

import (
	"github.com/DataDog/datadog-go/statsd"
	"github.com/rs/zerolog/log"
)

var client *statsd.Client

// Init creates the DogStatsD client. A failure to dial the agent is logged
// and swallowed: metrics are observability, not a startup dependency.
func Init(addr, namespace string, tags []string) {
	var err error
	client, err = statsd.New(addr)
	if err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("failed to create dogstatsd client")
		return
	}
	client.Namespace = namespace
	client.Tags = tags
	log.Info().Str("addr", addr).Str("namespace", namespace).Msg("metrics client initialized")
}

func Count(name string, value int64, tags ...string) {
	if client == nil {
		return
	}
	if err := client.Count(name, value, tags, 1); err != nil {
		log.Warn().Err(err).Str("metric", name).Msg("failed to emit count metric")
	}
}

func Gauge(name string, value float64, tags ...string) {
	if client == nil {
		return
	}
	if err := client.Gauge(name, value, tags, 1); err != nil {
		log.Warn().Err(err).Str("metric", name).Msg("failed to emit gauge metric")
	}
}

func Histogram(name string, value float64, tags ...string) {
	if client == nil {
		return
	}
	if err := client.Histogram(name, value, tags, 1); err != nil {
		log.Warn().Err(err).Str("metric", name).Msg("failed to emit histogram metric")
	}
}

// Incr is shorthand for Count(name, 1, tags...).
func Incr(name string, tags ...string) {
	Count(name, 1, tags...)
}
