// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

package decision

import (
	"context"
	"time"

	"flightdeck/platform/advisors/gemini"
	"flightdeck/platform/advisors/weather"
	"flightdeck/platform/shared/logger"
)

// Decision façades guarantee a response: prefer the external advisor,
// substitute the matching rule engine on any advisor failure. The
// substitution is silent to the caller; the response shape is identical
// on both paths.

// CostAdvisor is the advisor surface consumed by CostDecision.
type CostAdvisor interface {
	Recommend(ctx context.Context, q gemini.CostQuery) (*gemini.CostAdvice, error)
	Name() string
}

// WeatherAdvisor is the advisor surface consumed by WeatherDecision.
type WeatherAdvisor interface {
	Context(ctx context.Context, airportCode string) (*weather.Context, error)
	Name() string
}

// CostDecision produces cost optimization decisions.
type CostDecision struct {
	advisor CostAdvisor // nil when no credential is configured
	log     *logger.Logger
}

// NewCostDecision creates a cost decision façade. A nil advisor means
// every decision comes from the fallback rule.
func NewCostDecision(advisor CostAdvisor, log *logger.Logger) *CostDecision {
	return &CostDecision{advisor: advisor, log: log}
}

// Decide always returns a fully populated response.
func (d *CostDecision) Decide(ctx context.Context, requestID string, req CostRequest) CostResponse {
	delayHours := *req.DelayHours
	totalPassengers := *req.TotalPassengers

	if d.advisor == nil {
		promFallbacks.WithLabelValues(AgentGeminiCost).Inc()
		return CostFallbackRule(delayHours, totalPassengers)
	}

	start := time.Now()
	advice, err := d.advisor.Recommend(ctx, gemini.CostQuery{
		DelayHours:      delayHours,
		TotalPassengers: totalPassengers,
		VIPPassengers:   *req.VIPPassengers,
	})
	if err != nil {
		promAdvisorCalls.WithLabelValues(d.advisor.Name(), "failure").Inc()
		promFallbacks.WithLabelValues(AgentGeminiCost).Inc()
		d.log.Warn(AgentGeminiCost, requestID, "Advisor failed, using rule fallback", map[string]interface{}{
			"advisor": d.advisor.Name(),
			"error":   err.Error(),
		})
		return CostFallbackRule(delayHours, totalPassengers)
	}

	promAdvisorCalls.WithLabelValues(d.advisor.Name(), "success").Inc()
	d.log.InfoWithDuration(AgentGeminiCost, requestID, "Advisor responded",
		float64(time.Since(start).Milliseconds()), map[string]interface{}{
			"model": advice.Model,
		})

	return CostResponse{
		Agent:          AgentGeminiCost,
		Recommendation: advice.Recommendation,
		Reason:         advice.Reason,
		Confidence:     advice.Confidence,
	}
}

// ComplianceDecision produces regulatory compliance decisions. Rule-only
// by policy: no advisor integration exists for this decision kind.
type ComplianceDecision struct{}

// NewComplianceDecision creates a compliance decision façade.
func NewComplianceDecision() *ComplianceDecision {
	return &ComplianceDecision{}
}

// Decide always returns the rule engine result.
func (d *ComplianceDecision) Decide(req ComplianceRequest) ComplianceResponse {
	return ComplianceRule(*req.DelayHours)
}

// OpsDecision produces operational feasibility decisions. Rule-only by
// policy, same as compliance.
type OpsDecision struct{}

// NewOpsDecision creates an ops decision façade.
func NewOpsDecision() *OpsDecision {
	return &OpsDecision{}
}

// Decide always returns the rule engine result.
func (d *OpsDecision) Decide() OpsResponse {
	return OpsRule()
}

// WeatherDecision produces weather disruption contexts for the MCP tool.
type WeatherDecision struct {
	advisor WeatherAdvisor // nil when no credential is configured
	log     *logger.Logger
}

// NewWeatherDecision creates a weather decision façade.
func NewWeatherDecision(advisor WeatherAdvisor, log *logger.Logger) *WeatherDecision {
	return &WeatherDecision{advisor: advisor, log: log}
}

// Decide always returns a fully populated context. Live data carries
// source "v1", fallback data "v2".
func (d *WeatherDecision) Decide(ctx context.Context, requestID, airportCode string) *weather.Context {
	if d.advisor == nil {
		promFallbacks.WithLabelValues(AgentWeather).Inc()
		return WeatherFallbackRule(airportCode)
	}

	start := time.Now()
	wctx, err := d.advisor.Context(ctx, airportCode)
	if err != nil {
		promAdvisorCalls.WithLabelValues(d.advisor.Name(), "failure").Inc()
		promFallbacks.WithLabelValues(AgentWeather).Inc()
		d.log.Warn(AgentWeather, requestID, "Advisor failed, using rule fallback", map[string]interface{}{
			"advisor":      d.advisor.Name(),
			"airport_code": airportCode,
			"error":        err.Error(),
		})
		return WeatherFallbackRule(airportCode)
	}

	promAdvisorCalls.WithLabelValues(d.advisor.Name(), "success").Inc()
	d.log.InfoWithDuration(AgentWeather, requestID, "Live weather context derived",
		float64(time.Since(start).Milliseconds()), map[string]interface{}{
			"airport_code": airportCode,
			"severity":     wctx.Severity,
		})

	return wctx
}
