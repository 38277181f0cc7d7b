package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for the booking engine.
// A nil receiver is a no-op so callers never have to guard.
type SchedulingMetrics struct {
	bookingsTotal     *prometheus.CounterVec
	availabilityTotal *prometheus.CounterVec
	slotsGenerated    prometheus.Counter
	bookingLatency    prometheus.Histogram
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicport",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Total booking attempts by outcome",
		}, []string{"outcome"}),
		availabilityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicport",
			Subsystem: "scheduling",
			Name:      "availability_queries_total",
			Help:      "Total availability queries by result",
		}, []string{"found"}),
		slotsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicport",
			Subsystem: "scheduling",
			Name:      "slots_generated_total",
			Help:      "Total time slots inserted by the generator",
		}),
		bookingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinicport",
			Subsystem: "scheduling",
			Name:      "booking_latency_seconds",
			Help:      "Latency of booking transactions",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.availabilityTotal, m.slotsGenerated, m.bookingLatency)
	return m
}

func (m *SchedulingMetrics) ObserveBooking(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
	m.bookingLatency.Observe(seconds)
}

func (m *SchedulingMetrics) ObserveAvailability(found bool) {
	if m == nil {
		return
	}
	label := "false"
	if found {
		label = "true"
	}
	m.availabilityTotal.WithLabelValues(label).Inc()
}

func (m *SchedulingMetrics) AddSlotsGenerated(n float64) {
	if m == nil {
		return
	}
	m.slotsGenerated.Add(n)
}
