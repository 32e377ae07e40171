package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(cacheLookups, poolConns, buildInfo) }

var (
	// result: hit|miss
	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_requests_total",
		Help: "Redis cache lookups by cache name and result.",
	}, []string{"cache", "result"})

	// state: total|idle|in_use
	poolConns = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "db_pool_connections",
		Help: "Postgres pool connections by state.",
	}, []string{"state"})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Always 1, labelled with the running build.",
	}, []string{"version", "commit"})
)

func IncCacheRequest(cache, result string) {
	cacheLookups.WithLabelValues(norm(cache), norm(result)).Inc()
}

func SetDBPoolStats(total, idle, inUse int32) {
	for state, n := range map[string]int32{"total": total, "idle": idle, "in_use": inUse} {
		poolConns.WithLabelValues(state).Set(float64(n))
	}
}

func SetBuildInfo(version, commit string) {
	buildInfo.Reset()
	buildInfo.WithLabelValues(version, commit).Set(1)
}
