// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionMetricsSnapshot(t *testing.T) {
	m := NewDecisionMetrics()

	m.recordRequest(AgentCompliance, 10, true)
	m.recordRequest(AgentCompliance, 20, true)
	m.recordRequest(AgentCompliance, 30, false)

	snapshot := m.Snapshot()

	agents, ok := snapshot["agents"].(map[string]interface{})
	require.True(t, ok)

	compliance, ok := agents[AgentCompliance].(map[string]interface{})
	require.True(t, ok)

	assert.Equal(t, int64(3), compliance["total_requests"])
	assert.Equal(t, int64(1), compliance["failed_requests"])
	assert.Equal(t, 20.0, compliance["latency_avg_ms"])
	assert.Equal(t, 20.0, compliance["latency_p50_ms"])
}

func TestCalculatePercentile(t *testing.T) {
	timings := []int64{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}

	assert.Equal(t, 500.0, calculatePercentile(timings, 50))
	assert.Equal(t, 900.0, calculatePercentile(timings, 95))
	assert.Equal(t, 0.0, calculatePercentile(nil, 50))
}

func TestCalculateAverage(t *testing.T) {
	assert.Equal(t, 200.0, calculateAverage([]int64{100, 200, 300}))
	assert.Equal(t, 0.0, calculateAverage(nil))
}
