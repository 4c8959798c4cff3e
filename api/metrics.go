package api

import (
	"sync/atomic"
	"time"
)

// Metrics records request counters for the /metrics endpoint.
type Metrics struct {
	started time.Time

	Requests     atomic.Int64
	ClientErrors atomic.Int64
	ServerErrors atomic.Int64
	Panics       atomic.Int64
	GamesStarted atomic.Int64
	Moves        atomic.Int64
	Polls        atomic.Int64
	ScoresSaved  atomic.Int64
	TotalReqNs   atomic.Int64
}

// NewMetrics creates zeroed counters.
func NewMetrics() *Metrics {
	return &Metrics{started: time.Now()}
}

func (m *Metrics) observe(status int, elapsed time.Duration) {
	m.Requests.Add(1)
	m.TotalReqNs.Add(elapsed.Nanoseconds())
	switch {
	case status >= 500:
		m.ServerErrors.Add(1)
	case status >= 400:
		m.ClientErrors.Add(1)
	}
}

// Snapshot returns a read-only copy suitable for JSON output.
func (m *Metrics) Snapshot() map[string]any {
	requests := m.Requests.Load()
	var avgMs float64
	if requests > 0 {
		avgMs = float64(m.TotalReqNs.Load()) / float64(requests) / 1e6
	}
	return map[string]any{
		"uptime_seconds": int64(time.Since(m.started).Seconds()),
		"requests":       requests,
		"client_errors":  m.ClientErrors.Load(),
		"server_errors":  m.ServerErrors.Load(),
		"panics":         m.Panics.Load(),
		"games_started":  m.GamesStarted.Load(),
		"moves":          m.Moves.Load(),
		"polls":          m.Polls.Load(),
		"scores_saved":   m.ScoresSaved.Load(),
		"avg_request_ms": avgMs,
	}
}
