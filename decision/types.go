// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

package decision

import "fmt"

// Agent identifiers reported in decision responses and call logs.
const (
	AgentGeminiCost = "Gemini-Cost-Agent"
	AgentCompliance = "Compliance-Agent"
	AgentOps        = "Ops-Agent"
	AgentWeather    = "Weather-Disruption-Agent"
)

// CostRequest carries the inputs for a cost optimization decision.
// Pointer fields distinguish absent from zero: all three are required.
type CostRequest struct {
	DelayHours      *int `json:"delay_hours"`
	TotalPassengers *int `json:"total_passengers"`
	VIPPassengers   *int `json:"vip_passengers"`
}

// Validate checks field presence and ranges. The returned map holds one
// message per offending field, mirroring the error detail shape clients
// see.
func (r CostRequest) Validate() map[string]string {
	details := make(map[string]string)

	checkNonNegative(details, "delay_hours", r.DelayHours)
	checkNonNegative(details, "total_passengers", r.TotalPassengers)
	checkNonNegative(details, "vip_passengers", r.VIPPassengers)

	if len(details) == 0 && *r.VIPPassengers > *r.TotalPassengers {
		details["vip_passengers"] = "VIP passengers cannot exceed total passengers"
	}

	if len(details) == 0 {
		return nil
	}
	return details
}

// ComplianceRequest carries the inputs for a compliance decision.
type ComplianceRequest struct {
	DelayHours *int `json:"delay_hours"`
}

// Validate checks field presence and range.
func (r ComplianceRequest) Validate() map[string]string {
	details := make(map[string]string)
	checkNonNegative(details, "delay_hours", r.DelayHours)
	if len(details) == 0 {
		return nil
	}
	return details
}

func checkNonNegative(details map[string]string, field string, value *int) {
	switch {
	case value == nil:
		details[field] = "This field is required."
	case *value < 0:
		details[field] = fmt.Sprintf("Ensure this value is greater than or equal to 0, got %d.", *value)
	}
}

// CostResponse is the cost optimization decision payload.
type CostResponse struct {
	Agent          string  `json:"agent"`
	Recommendation string  `json:"recommendation"`
	Reason         string  `json:"reason"`
	Confidence     float64 `json:"confidence"`
}

// ComplianceResponse is the regulatory compliance decision payload.
type ComplianceResponse struct {
	Agent      string  `json:"agent"`
	Rule       string  `json:"rule"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// OpsResponse is the operational feasibility decision payload.
type OpsResponse struct {
	Agent          string `json:"agent"`
	AvailableSeats int    `json:"available_seats"`
	HotelCapacity  string `json:"hotel_capacity"`
}
