package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the operational counters exposed at /metrics.
type Metrics struct {
	BookingsCreated prometheus.Counter
	SlotConflicts   prometheus.Counter

	WebhookEvents *prometheus.CounterVec // outcome: confirmed|duplicate|no_match|ignored

	HoldsExpired prometheus.Counter
	AlertsRaised *prometheus.CounterVec // kind: overtime|ending_soon|reminder

	CoinsCredited prometheus.Counter
}

// New registers all counters on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		BookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "nerdsociety_bookings_created_total",
			Help: "Number of bookings accepted into PENDING state.",
		}),
		SlotConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "nerdsociety_slot_conflicts_total",
			Help: "Number of booking requests rejected for slot conflicts.",
		}),
		WebhookEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nerdsociety_payment_events_total",
			Help: "Payment reconciliation events by outcome.",
		}, []string{"outcome"}),
		HoldsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "nerdsociety_holds_expired_total",
			Help: "Unpaid holds cancelled by the expiry job.",
		}),
		AlertsRaised: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nerdsociety_alerts_raised_total",
			Help: "Operational alerts raised by the monitor jobs.",
		}, []string{"kind"}),
		CoinsCredited: factory.NewCounter(prometheus.CounterOpts{
			Name: "nerdsociety_coins_credited_total",
			Help: "Nerd coins credited to customer wallets at check-in.",
		}),
	}
}

// NewDefault registers on the default Prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
