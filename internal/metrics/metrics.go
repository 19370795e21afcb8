package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Outcome label values
const (
	OutcomeDelete  = "DELETE"
	OutcomeError   = "ERROR"
	OutcomeBlocked = "BLOCKED"
	OutcomeUsage   = "USAGE"
)

var (
	initOnce sync.Once

	// Registry holds every rmfile metric. A one-shot process has nothing to
	// scrape, so the registry is flushed to a textfile or a Pushgateway instead.
	Registry = prometheus.NewRegistry()
)

// Init creates and registers all metrics
// This function is safe to call multiple times (uses sync.Once)
func Init() {
	initOnce.Do(func() {
		initRemovalMetrics()
		registerRemovalMetrics(Registry)

		// Pre-create outcome series so they appear with zero values
		for _, o := range []string{OutcomeDelete, OutcomeError, OutcomeBlocked, OutcomeUsage} {
			RemovalsTotal.WithLabelValues(o)
		}
	})
}

// WriteTextfile writes the registry in the node_exporter textfile collector format
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

// Push sends the registry to a Prometheus Pushgateway under the given job
func Push(ctx context.Context, url, job string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := push.New(url, job).Gatherer(Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
