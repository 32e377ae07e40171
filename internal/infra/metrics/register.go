package metrics

import (
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registry holds the service collectors plus the Go runtime and process ones.
var registry = prometheus.NewRegistry()

var (
	pendingMu sync.Mutex
	pending   []prometheus.Collector
	installed bool
)

// register queues collectors from each file's init until MustRegister runs.
func register(cs ...prometheus.Collector) {
	pendingMu.Lock()
	defer pendingMu.Unlock()
	pending = append(pending, cs...)
}

// MustRegister installs every queued collector. Later calls are no-ops.
func MustRegister() {
	pendingMu.Lock()
	defer pendingMu.Unlock()
	if installed {
		return
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registry.MustRegister(pending...)
	installed = true
}

// Handler serves the service registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
