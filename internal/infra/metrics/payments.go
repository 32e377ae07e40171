package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentSubmissionsTotal,
		paymentVerificationsTotal,
		promotionsTotal,
		forcedExpiriesTotal,
		secondaryWriteFailuresTotal,
		subscriptionsLapsedTotal,
		adminNotificationsTotal,
		pricingCatalogMissesTotal,
	)
}

var (
	// status: underpaid|paid|overpaid|rejected
	paymentSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_submissions_total",
			Help: "Payment submissions by settlement status.",
		},
		[]string{"status"},
	)

	// outcome: activated|underpaid|no_plan|already_verified|failed
	paymentVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Payment verification requests by outcome.",
		},
		[]string{"outcome"},
	)

	promotionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promotional_activations_total",
			Help: "Promotional activations by result.",
		},
		[]string{"result"},
	)

	forcedExpiriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "forced_expiry_subscriptions_total",
			Help: "Subscriptions expired by administrative request.",
		},
	)

	secondaryWriteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secondary_write_failures_total",
			Help: "Best-effort writes that failed after an earlier write succeeded.",
		},
		[]string{"operation", "step"},
	)

	subscriptionsLapsedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_lapsed_total",
			Help: "Subscriptions deactivated by the lapse sweeper.",
		},
	)

	// status: sent|error|dropped
	adminNotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_notifications_total",
			Help: "Admin alert deliveries by status.",
		},
		[]string{"status"},
	)

	pricingCatalogMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_catalog_misses_total",
			Help: "Price lookups that found no active catalog row.",
		},
		[]string{"tier", "duration"},
	)
)

func IncPaymentSubmission(status string) {
	paymentSubmissionsTotal.WithLabelValues(norm(status)).Inc()
}

func IncPaymentVerification(outcome string) {
	paymentVerificationsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncPromotion(result string) {
	promotionsTotal.WithLabelValues(norm(result)).Inc()
}

func AddForcedExpiries(n int64) {
	forcedExpiriesTotal.Add(float64(n))
}

func IncSecondaryWriteFailure(operation, step string) {
	secondaryWriteFailuresTotal.WithLabelValues(norm(operation), norm(step)).Inc()
}

func IncSubscriptionsLapsed(count int) {
	subscriptionsLapsedTotal.Add(float64(count))
}

func IncAdminNotification(status string) {
	adminNotificationsTotal.WithLabelValues(norm(status)).Inc()
}

func IncPricingCatalogMiss(tier, duration string) {
	pricingCatalogMissesTotal.WithLabelValues(norm(tier), norm(duration)).Inc()
}
