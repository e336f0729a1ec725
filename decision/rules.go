// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

package decision

import (
	"strings"

	"flightdeck/platform/advisors/weather"
)

// Rule engines are pure, deterministic, total functions. They have no
// I/O and no failure mode, which is what makes the fallback guarantee
// of the decision façades possible.

// ComplianceDelayThresholdHours is the regulatory threshold above which
// hotel accommodation becomes mandatory.
const ComplianceDelayThresholdHours = 2

// Compliance rule vocabulary.
const (
	RuleHotelMandatory   = "HOTEL_MANDATORY"
	RuleHotelNotRequired = "HOTEL_NOT_REQUIRED"
)

// SourceFallback tags weather contexts derived from the rule table
// rather than the live API.
const SourceFallback = "v2"

// highSeverityAirports are codes with known high disruption severity
// used by the weather fallback rule.
var highSeverityAirports = map[string]bool{
	"DEL": true,
	"BOM": true,
	"CCU": true,
	"BLR": true,
}

// ComplianceRule evaluates the regulatory accommodation rule.
func ComplianceRule(delayHours int) ComplianceResponse {
	if delayHours >= ComplianceDelayThresholdHours {
		return ComplianceResponse{
			Agent:      AgentCompliance,
			Rule:       RuleHotelMandatory,
			Reason:     "Delay exceeds regulatory threshold",
			Confidence: 1.0,
		}
	}
	return ComplianceResponse{
		Agent:      AgentCompliance,
		Rule:       RuleHotelNotRequired,
		Reason:     "Delay below regulatory threshold",
		Confidence: 1.0,
	}
}

// OpsRule reports operational feasibility. Intentionally static until a
// real capacity source exists.
func OpsRule() OpsResponse {
	return OpsResponse{
		Agent:          AgentOps,
		AvailableSeats: 42,
		HotelCapacity:  "LIMITED",
	}
}

// CostFallbackRule is the deterministic cost recommendation used when
// the LLM advisor is unavailable. VIP count never influences it.
func CostFallbackRule(delayHours, totalPassengers int) CostResponse {
	if delayHours >= 4 || totalPassengers < 50 {
		return CostResponse{
			Agent:          AgentGeminiCost,
			Recommendation: "HOTEL_FOR_ALL",
			Reason:         "Small passenger count or long delay justifies full accommodation",
			Confidence:     0.65,
		}
	}
	return CostResponse{
		Agent:          AgentGeminiCost,
		Recommendation: "LIMIT_HOTEL",
		Reason:         "Hotel for all passengers is expensive for this delay duration",
		Confidence:     0.70,
	}
}

// WeatherFallbackRule is the deterministic weather context used when the
// live advisor is unavailable.
func WeatherFallbackRule(airportCode string) *weather.Context {
	airportCode = strings.ToUpper(strings.TrimSpace(airportCode))

	if highSeverityAirports[airportCode] {
		return &weather.Context{
			Severity:              weather.SeverityHigh,
			ExpectedDurationHours: 4.0,
			CascadingDelayRisk:    weather.SeverityHigh,
			Source:                SourceFallback,
		}
	}
	return &weather.Context{
		Severity:              weather.SeverityMedium,
		ExpectedDurationHours: 2.0,
		CascadingDelayRisk:    weather.SeverityMedium,
		Source:                SourceFallback,
	}
}
