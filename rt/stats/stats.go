// Package stats exports RT runtime counters as prometheus metrics,
// grounded on the teacher's direct prometheus/client_golang dependency and
// its stats/target_stats.go registration pattern (one package-level
// registry, metrics keyed by a label set rather than one series per
// instance).
package stats

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/airsstack/airssys/rt/mailbox"
)

// Registry groups the RT runtime's prometheus collectors. The zero value
// is not usable; construct with NewRegistry.
type Registry struct {
	MailboxSent     *prometheus.CounterVec
	MailboxReceived *prometheus.CounterVec
	MailboxDropped  *prometheus.CounterVec
	MailboxDepth    *prometheus.GaugeVec
	ActorsRunning   prometheus.Gauge
	ChildRestarts   *prometheus.CounterVec

	mu   sync.Mutex
	prev map[string][3]int64 // actor -> last-sampled (sent, received, dropped)
}

// NewRegistry constructs and registers (against reg, or the default
// registerer when reg is nil) the RT runtime's collectors.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		MailboxSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airssys", Subsystem: "rt", Name: "mailbox_sent_total",
			Help: "Envelopes successfully enqueued, by actor name.",
		}, []string{"actor"}),
		MailboxReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airssys", Subsystem: "rt", Name: "mailbox_received_total",
			Help: "Envelopes successfully dequeued, by actor name.",
		}, []string{"actor"}),
		MailboxDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airssys", Subsystem: "rt", Name: "mailbox_dropped_total",
			Help: "Envelopes dropped by backpressure or TTL expiry, by actor name.",
		}, []string{"actor"}),
		MailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "airssys", Subsystem: "rt", Name: "mailbox_depth",
			Help: "Sent minus received minus dropped, sampled, by actor name.",
		}, []string{"actor"}),
		ActorsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "airssys", Subsystem: "rt", Name: "actors_running",
			Help: "Number of actors with a live message loop.",
		}),
		ChildRestarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airssys", Subsystem: "rt", Name: "child_restarts_total",
			Help: "Supervised child restarts, by supervisor id.",
		}, []string{"supervisor"}),
		prev: make(map[string][3]int64),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(r.MailboxSent, r.MailboxReceived, r.MailboxDropped, r.MailboxDepth, r.ActorsRunning, r.ChildRestarts)
	return r
}

// Sample diffs m's current cumulative counters against the last sample for
// actorName and adds the delta to the exported counters, then sets the
// depth gauge from the absolute totals. Called periodically by ActorSystem
// (rt/system) rather than on every Send/Recv, to keep the hot path free of
// prometheus overhead.
func (r *Registry) Sample(actorName string, m *mailbox.Metrics) {
	sent, recv, dropped := m.Sent(), m.Received(), m.Dropped()

	r.mu.Lock()
	last := r.prev[actorName]
	r.prev[actorName] = [3]int64{sent, recv, dropped}
	r.mu.Unlock()

	if d := sent - last[0]; d > 0 {
		r.MailboxSent.WithLabelValues(actorName).Add(float64(d))
	}
	if d := recv - last[1]; d > 0 {
		r.MailboxReceived.WithLabelValues(actorName).Add(float64(d))
	}
	if d := dropped - last[2]; d > 0 {
		r.MailboxDropped.WithLabelValues(actorName).Add(float64(d))
	}
	r.MailboxDepth.WithLabelValues(actorName).Set(float64(sent - recv - dropped))
}
