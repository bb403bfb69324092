package realtime

import (
	"sync/atomic"
	"time"
)

// Metrics tracks transport counters for the realtime session.
type Metrics struct {
	sent              atomic.Uint64
	sendFailed        atomic.Uint64
	received          atomic.Uint64
	dropped           atomic.Uint64
	connectionsOpened atomic.Uint64
	connectionsClosed atomic.Uint64
	reconnectAttempts atomic.Uint64
	startTime         time.Time
}

// NewMetrics creates a zeroed counter set.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

func (m *Metrics) RecordSent()             { m.sent.Add(1) }
func (m *Metrics) RecordSendFailed()       { m.sendFailed.Add(1) }
func (m *Metrics) RecordReceived()         { m.received.Add(1) }
func (m *Metrics) RecordDropped()          { m.dropped.Add(1) }
func (m *Metrics) RecordConnectionOpened() { m.connectionsOpened.Add(1) }
func (m *Metrics) RecordConnectionClosed() { m.connectionsClosed.Add(1) }
func (m *Metrics) RecordReconnectAttempt() { m.reconnectAttempts.Add(1) }

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Sent              uint64        `json:"sent"`
	SendFailed        uint64        `json:"send_failed"`
	Received          uint64        `json:"received"`
	Dropped           uint64        `json:"dropped"`
	ConnectionsOpened uint64        `json:"connections_opened"`
	ConnectionsClosed uint64        `json:"connections_closed"`
	ReconnectAttempts uint64        `json:"reconnect_attempts"`
	Uptime            time.Duration `json:"uptime"`
}

// Snapshot copies the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Sent:              m.sent.Load(),
		SendFailed:        m.sendFailed.Load(),
		Received:          m.received.Load(),
		Dropped:           m.dropped.Load(),
		ConnectionsOpened: m.connectionsOpened.Load(),
		ConnectionsClosed: m.connectionsClosed.Load(),
		ReconnectAttempts: m.reconnectAttempts.Load(),
		Uptime:            time.Since(m.startTime),
	}
}
