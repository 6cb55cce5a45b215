package channel

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the bridge's counters. A nil *Metrics is valid and counts
// nothing, so instrumentation stays optional.
type Metrics struct {
	sent        prometheus.Counter
	sendFailed  prometheus.Counter
	delivered   prometheus.Counter
	decodeDrops prometheus.Counter
}

// NewMetrics creates bridge counters and registers them on reg. Pass nil
// to keep the counters unregistered (tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime_bridge",
			Subsystem: "channel",
			Name:      "messages_sent_total",
			Help:      "Host-to-runtime messages handed to the transport.",
		}),
		sendFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime_bridge",
			Subsystem: "channel",
			Name:      "send_failures_total",
			Help:      "Host-to-runtime sends rejected by the transport.",
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime_bridge",
			Subsystem: "channel",
			Name:      "events_delivered_total",
			Help:      "Decoded events delivered, counted per subscription.",
		}),
		decodeDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime_bridge",
			Subsystem: "channel",
			Name:      "decode_drops_total",
			Help:      "Runtime messages dropped because they failed to decode.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.sent, m.sendFailed, m.delivered, m.decodeDrops)
	}
	return m
}

func (m *Metrics) incSent() {
	if m == nil {
		return
	}
	m.sent.Inc()
}

func (m *Metrics) incSendFailed() {
	if m == nil {
		return
	}
	m.sendFailed.Inc()
}

func (m *Metrics) addDelivered(n int) {
	if m == nil || n == 0 {
		return
	}
	m.delivered.Add(float64(n))
}

func (m *Metrics) incDecodeDropped() {
	if m == nil {
		return
	}
	m.decodeDrops.Inc()
}
