// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

package decision

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics
var (
	promRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightdeck_requests_total",
			Help: "Total number of decision requests processed",
		},
		[]string{"agent", "status"},
	)
	promRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flightdeck_request_duration_milliseconds",
			Help:    "Decision request duration in milliseconds",
			Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
		},
		[]string{"agent"},
	)
	promAdvisorCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightdeck_advisor_calls_total",
			Help: "Total number of external advisor calls",
		},
		[]string{"advisor", "status"},
	)
	promFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightdeck_fallbacks_total",
			Help: "Total number of rule-engine fallback substitutions",
		},
		[]string{"agent"},
	)
)

func init() {
	prometheus.MustRegister(promRequestsTotal)
	prometheus.MustRegister(promRequestDuration)
	prometheus.MustRegister(promAdvisorCalls)
	prometheus.MustRegister(promFallbacks)
}

// DecisionMetrics tracks per-agent counters and latencies for the JSON
// metrics snapshot endpoint.
type DecisionMetrics struct {
	mu        sync.RWMutex
	startTime time.Time
	agents    map[string]*AgentMetrics
}

// AgentMetrics tracks metrics for a single agent.
type AgentMetrics struct {
	TotalRequests  int64
	FailedRequests int64
	Latencies      []int64
}

// NewDecisionMetrics creates a metrics tracker.
func NewDecisionMetrics() *DecisionMetrics {
	return &DecisionMetrics{
		startTime: time.Now(),
		agents:    make(map[string]*AgentMetrics),
	}
}

// recordRequest records one handled request for an agent. Latency
// samples are capped at the most recent 1000 per agent.
func (m *DecisionMetrics) recordRequest(agent string, latencyMs int64, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	am, ok := m.agents[agent]
	if !ok {
		am = &AgentMetrics{}
		m.agents[agent] = am
	}

	am.TotalRequests++
	if !success {
		am.FailedRequests++
	}

	if len(am.Latencies) >= 1000 {
		am.Latencies = am.Latencies[1:]
	}
	am.Latencies = append(am.Latencies, latencyMs)

	status := "success"
	if !success {
		status = "failed"
	}
	promRequestsTotal.WithLabelValues(agent, status).Inc()
	promRequestDuration.WithLabelValues(agent).Observe(float64(latencyMs))
}

// Snapshot returns a JSON-friendly view of the collected metrics.
func (m *DecisionMetrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	agents := make(map[string]interface{}, len(m.agents))
	for name, am := range m.agents {
		agents[name] = map[string]interface{}{
			"total_requests":  am.TotalRequests,
			"failed_requests": am.FailedRequests,
			"latency_p50_ms":  calculatePercentile(am.Latencies, 50),
			"latency_p95_ms":  calculatePercentile(am.Latencies, 95),
			"latency_p99_ms":  calculatePercentile(am.Latencies, 99),
			"latency_avg_ms":  calculateAverage(am.Latencies),
		}
	}

	return map[string]interface{}{
		"uptime_seconds": int64(time.Since(m.startTime).Seconds()),
		"agents":         agents,
	}
}

func calculatePercentile(timings []int64, percentile float64) float64 {
	if len(timings) == 0 {
		return 0
	}

	sorted := make([]int64, len(timings))
	copy(sorted, timings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	index := int(float64(len(sorted)-1) * percentile / 100.0)
	return float64(sorted[index])
}

func calculateAverage(timings []int64) float64 {
	if len(timings) == 0 {
		return 0
	}

	var sum int64
	for _, t := range timings {
		sum += t
	}
	return float64(sum) / float64(len(timings))
}
