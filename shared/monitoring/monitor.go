package monitoring

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultFailureThreshold is the number of consecutive failed analyses after
// which the service reports itself unhealthy.
const DefaultFailureThreshold = 3

// Monitor tracks analysis outcomes for the health and status endpoints.
type Monitor struct {
	mu                  sync.Mutex
	started             time.Time
	lastRunSuccess      bool
	lastRunTime         time.Time
	lastError           string
	successes           int
	failures            int
	consecutiveFailures int
	failureThreshold    int
}

func NewMonitor() *Monitor {
	return &Monitor{
		started:          time.Now(),
		failureThreshold: DefaultFailureThreshold,
	}
}

func (m *Monitor) RecordSuccess(videoID string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.successes++
	m.consecutiveFailures = 0

	slog.Info("analysis succeeded", slog.String("video_id", videoID), slog.Duration("duration", duration))
}

func (m *Monitor) RecordFailure(stage string, err error, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.lastError = fmt.Sprintf("%s: %v", stage, err)
	m.failures++
	m.consecutiveFailures++

	slog.Warn("analysis failed",
		slog.String("stage", stage),
		slog.Any("error", err),
		slog.Duration("duration", duration),
		slog.Int("consecutive_failures", m.consecutiveFailures),
	)
}

// IsHealthy is true until failureThreshold analyses in a row have failed.
func (m *Monitor) IsHealthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consecutiveFailures < m.failureThreshold
}

// Status is a point-in-time copy of the monitor's counters.
type Status struct {
	Healthy             bool      `json:"healthy"`
	Uptime              string    `json:"uptime"`
	Successes           int       `json:"successes"`
	Failures            int       `json:"failures"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastRunSuccess      bool      `json:"lastRunSuccess"`
	LastRunTime         time.Time `json:"lastRunTime,omitzero"`
	LastError           string    `json:"lastError,omitempty"`
}

func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		Healthy:             m.consecutiveFailures < m.failureThreshold,
		Uptime:              time.Since(m.started).Round(time.Second).String(),
		Successes:           m.successes,
		Failures:            m.failures,
		ConsecutiveFailures: m.consecutiveFailures,
		LastRunSuccess:      m.lastRunSuccess,
		LastRunTime:         m.lastRunTime,
		LastError:           m.lastError,
	}
}

func (m *Monitor) GetStatusSummary() string {
	st := m.Status()
	if st.LastRunTime.IsZero() {
		return "No analyses yet"
	}

	if st.LastRunSuccess {
		return fmt.Sprintf("Last analysis succeeded: %s (%d ok, %d failed)",
			st.LastRunTime.Format("Jan 2 15:04"), st.Successes, st.Failures)
	}
	return fmt.Sprintf("Last analysis failed: %s (%d ok, %d failed)",
		st.LastRunTime.Format("Jan 2 15:04"), st.Successes, st.Failures)
}
