// Package datadog implements a DogStatsD backend for the metrics package.
// Unlike the Pushgateway backend, DogStatsD is fire-and-forget UDP: the
// client buffers and the agent aggregates, so no registry is kept here.
//
// All Datadog-specific dependencies live here so the rest of the project can
// swap metrics systems without touching the core pipeline.
package datadog

import (
	"fmt"

	"github.com/DataDog/datadog-go/v5/statsd"

	"semcheck/internal/metrics"
)

// Config holds Datadog backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or
	// "unix:///var/run/datadog/dsd.socket".
	Addr string

	// Namespace prefixes every metric name, e.g. "semcheck.".
	Namespace string

	// GlobalTags apply to every metric emitted by this backend,
	// e.g. []string{"env:prod", "service:semcheck"}.
	GlobalTags []string
}

// Backend translates the engine's metric names into Datadog's dotted naming
// convention and its labels into tags. The Namespace supplies the product
// prefix, so "semcheck_step_total" becomes "step.total" here and
// "semcheck.step.total" on the wire.
type Backend struct {
	client *statsd.Client
}

// NewBackend constructs a Datadog metrics backend. The Addr field is
// required; when empty, NewBackend returns an error.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}

	var opts []statsd.Option
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}
	return &Backend{client: c}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	switch name {
	case "semcheck_step_total":
		// DogStatsD Count takes an int64; RecordStep only sends whole deltas.
		b.client.Count("step.total", int64(delta), tagsFor(labels, "job", "step", "status"), 1)
	case "semcheck_rows_total":
		b.client.Count("rows.total", int64(delta), tagsFor(labels, "table", "kind"), 1)
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveDuration(name string, value float64, labels metrics.Labels) {
	if b.client == nil || name != "semcheck_step_duration_seconds" {
		return
	}
	b.client.Histogram("step.duration_seconds", value, tagsFor(labels, "job", "step", "status"), 1)
}

// Flush drains the client's buffer and closes the socket. Called once at
// process shutdown.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

// tagsFor renders the named labels as "key:value" tags in the given order.
// A fixed order keeps emitted metric lines stable across runs; labels absent
// from the map are skipped.
func tagsFor(lbls metrics.Labels, keys ...string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if v, ok := lbls[k]; ok && v != "" {
			out = append(out, k+":"+v)
		}
	}
	return out
}
