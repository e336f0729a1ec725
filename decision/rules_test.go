// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flightdeck/platform/advisors/weather"
)

func TestComplianceRule(t *testing.T) {
	tests := []struct {
		name       string
		delayHours int
		wantRule   string
	}{
		{"zero delay", 0, RuleHotelNotRequired},
		{"one hour", 1, RuleHotelNotRequired},
		{"at threshold", 2, RuleHotelMandatory},
		{"above threshold", 3, RuleHotelMandatory},
		{"long delay", 12, RuleHotelMandatory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ComplianceRule(tt.delayHours)

			assert.Equal(t, AgentCompliance, resp.Agent)
			assert.Equal(t, tt.wantRule, resp.Rule)
			assert.Equal(t, 1.0, resp.Confidence)
			assert.NotEmpty(t, resp.Reason)
		})
	}
}

func TestOpsRuleIsInvariant(t *testing.T) {
	first := OpsRule()
	second := OpsRule()

	assert.Equal(t, AgentOps, first.Agent)
	assert.Equal(t, 42, first.AvailableSeats)
	assert.Equal(t, "LIMITED", first.HotelCapacity)
	assert.Equal(t, first, second)
}

func TestCostFallbackRule(t *testing.T) {
	tests := []struct {
		name            string
		delayHours      int
		totalPassengers int
		want            string
		wantConfidence  float64
	}{
		{"long delay", 4, 200, "HOTEL_FOR_ALL", 0.65},
		{"very long delay", 10, 200, "HOTEL_FOR_ALL", 0.65},
		{"small group", 1, 49, "HOTEL_FOR_ALL", 0.65},
		{"both triggers", 6, 10, "HOTEL_FOR_ALL", 0.65},
		{"moderate delay large group", 3, 50, "LIMIT_HOTEL", 0.70},
		{"short delay", 1, 200, "LIMIT_HOTEL", 0.70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := CostFallbackRule(tt.delayHours, tt.totalPassengers)

			assert.Equal(t, AgentGeminiCost, resp.Agent)
			assert.Equal(t, tt.want, resp.Recommendation)
			assert.Equal(t, tt.wantConfidence, resp.Confidence)
		})
	}
}

func TestWeatherFallbackRule(t *testing.T) {
	t.Run("high severity airports", func(t *testing.T) {
		for _, code := range []string{"DEL", "BOM", "CCU", "BLR", "del", " bom "} {
			ctx := WeatherFallbackRule(code)

			assert.Equal(t, weather.SeverityHigh, ctx.Severity, code)
			assert.Equal(t, 4.0, ctx.ExpectedDurationHours, code)
			assert.Equal(t, weather.SeverityHigh, ctx.CascadingDelayRisk, code)
			assert.Equal(t, SourceFallback, ctx.Source, code)
		}
	})

	t.Run("standard airports", func(t *testing.T) {
		for _, code := range []string{"MAA", "HYD", "JFK", "XYZ"} {
			ctx := WeatherFallbackRule(code)

			assert.Equal(t, weather.SeverityMedium, ctx.Severity, code)
			assert.Equal(t, 2.0, ctx.ExpectedDurationHours, code)
			assert.Equal(t, weather.SeverityMedium, ctx.CascadingDelayRisk, code)
			assert.Equal(t, SourceFallback, ctx.Source, code)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, WeatherFallbackRule("DEL"), WeatherFallbackRule("DEL"))
		assert.Equal(t, WeatherFallbackRule("GOI"), WeatherFallbackRule("GOI"))
	})
}

func TestCostRequestValidate(t *testing.T) {
	intp := func(v int) *int { return &v }

	tests := []struct {
		name      string
		req       CostRequest
		wantField string
	}{
		{"valid", CostRequest{intp(3), intp(100), intp(5)}, ""},
		{"missing delay", CostRequest{nil, intp(100), intp(5)}, "delay_hours"},
		{"missing total", CostRequest{intp(3), nil, intp(5)}, "total_passengers"},
		{"missing vip", CostRequest{intp(3), intp(100), nil}, "vip_passengers"},
		{"negative delay", CostRequest{intp(-1), intp(100), intp(5)}, "delay_hours"},
		{"vip exceeds total", CostRequest{intp(1), intp(200), intp(250)}, "vip_passengers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := tt.req.Validate()
			if tt.wantField == "" {
				assert.Nil(t, details)
				return
			}
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestComplianceRequestValidate(t *testing.T) {
	intp := func(v int) *int { return &v }

	assert.Nil(t, ComplianceRequest{DelayHours: intp(0)}.Validate())
	assert.Contains(t, ComplianceRequest{}.Validate(), "delay_hours")
	assert.Contains(t, ComplianceRequest{DelayHours: intp(-2)}.Validate(), "delay_hours")
}
