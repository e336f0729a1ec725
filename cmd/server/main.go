// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for the FlightDeck decision service.
//
// The service exposes disruption decision-support endpoints (cost
// optimization, regulatory compliance, operational feasibility) and an
// MCP-style discovery/invocation layer for the weather disruption
// context tool.
//
// Usage:
//
//	./server
//
// Environment Variables:
//
//	PORT - HTTP server port (default: 8080)
//	DATABASE_URL - PostgreSQL connection string for call logging (optional)
//	GEMINI_API_KEY - Gemini API key for the cost advisor (optional)
//	GEMINI_MODEL - preferred Gemini model, tried before the defaults (optional)
//	WEATHER_API_KEY - OpenWeatherMap API key for the weather tool (optional)
//	REDIS_URL - Redis address for weather context caching (optional)
//	AIRPORTS_FILE - YAML airport-to-city mapping override (optional)
//
// Absent credentials are not errors: the matching advisor falls back to
// deterministic rules and every endpoint keeps answering.
package main

import (
	"flightdeck/platform/decision"
)

func main() {
	decision.Run()
}
