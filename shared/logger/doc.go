// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

/*
Package logger provides structured JSON logging for FlightDeck decision
components.

Each log entry is a single JSON line on stdout carrying the timestamp
(RFC3339Nano), level, component name, instance/container identifiers,
the agent that handled the call, the request ID, and custom fields.

Create a logger for your component:

	log := logger.New("decision")

Log messages with agent and request context:

	log.Info("Gemini-Cost-Agent", "req-456", "Advisor responded", map[string]interface{}{
	    "model": "gemini-2.5-flash",
	})

Logger instances are safe for concurrent use from multiple goroutines.
*/
package logger
