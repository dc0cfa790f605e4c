package monitoring

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorHealth(t *testing.T) {
	m := NewMonitor()
	assert.True(t, m.IsHealthy(), "healthy before any analysis")
	assert.Equal(t, "No analyses yet", m.GetStatusSummary())

	for i := 0; i < DefaultFailureThreshold-1; i++ {
		m.RecordFailure("completion", errors.New("upstream down"), time.Second)
	}
	assert.True(t, m.IsHealthy())

	m.RecordFailure("completion", errors.New("upstream down"), time.Second)
	assert.False(t, m.IsHealthy())
	assert.True(t, strings.HasPrefix(m.GetStatusSummary(), "Last analysis failed"))

	m.RecordSuccess("dQw4w9WgXcQ", time.Second)
	assert.True(t, m.IsHealthy())
	assert.True(t, strings.HasPrefix(m.GetStatusSummary(), "Last analysis succeeded"))

	st := m.Status()
	assert.Equal(t, 1, st.Successes)
	assert.Equal(t, DefaultFailureThreshold, st.Failures)
	assert.Equal(t, 0, st.ConsecutiveFailures)
	assert.Equal(t, "completion: upstream down", st.LastError)
}

func TestMonitorConcurrentRecords(t *testing.T) {
	m := NewMonitor()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.RecordSuccess("id", time.Millisecond)
		}()
		go func() {
			defer wg.Done()
			m.RecordFailure("video_info", errors.New("x"), time.Millisecond)
		}()
	}
	wg.Wait()

	st := m.Status()
	assert.Equal(t, 50, st.Successes)
	assert.Equal(t, 50, st.Failures)
}

func TestHealthEndpoints(t *testing.T) {
	m := NewMonitor()
	r := chi.NewRouter()
	m.Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK - No analyses yet", rec.Body.String())

	for i := 0; i < DefaultFailureThreshold; i++ {
		m.RecordFailure("completion", errors.New("boom"), time.Second)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Service unhealthy - "))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.False(t, st.Healthy)
	assert.Equal(t, DefaultFailureThreshold, st.Failures)
	assert.Equal(t, "completion: boom", st.LastError)
}
