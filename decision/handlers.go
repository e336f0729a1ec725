// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

package decision

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log"
	mathRand "math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ValidationErrorResponse is the caller-facing shape for request
// validation failures on the agent endpoints.
type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func costAgentHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	decisionLog.Info(AgentGeminiCost, requestID, "Incoming request", map[string]interface{}{
		"remote_addr": r.RemoteAddr,
	})

	var req CostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		decisionMetrics.recordRequest(AgentGeminiCost, time.Since(startTime).Milliseconds(), false)
		sendValidationError(w, requestID, AgentGeminiCost, map[string]string{"body": "Request body must be valid JSON"})
		return
	}

	if details := req.Validate(); details != nil {
		decisionMetrics.recordRequest(AgentGeminiCost, time.Since(startTime).Milliseconds(), false)
		sendValidationError(w, requestID, AgentGeminiCost, details)
		return
	}

	resp := costDecision.Decide(r.Context(), requestID, req)

	callLogger.Log(AgentGeminiCost, req, resp)
	decisionMetrics.recordRequest(AgentGeminiCost, time.Since(startTime).Milliseconds(), true)

	sendJSON(w, http.StatusOK, resp)
}

func complianceAgentHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	decisionLog.Info(AgentCompliance, requestID, "Incoming request", map[string]interface{}{
		"remote_addr": r.RemoteAddr,
	})

	var req ComplianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		decisionMetrics.recordRequest(AgentCompliance, time.Since(startTime).Milliseconds(), false)
		sendValidationError(w, requestID, AgentCompliance, map[string]string{"body": "Request body must be valid JSON"})
		return
	}

	if details := req.Validate(); details != nil {
		decisionMetrics.recordRequest(AgentCompliance, time.Since(startTime).Milliseconds(), false)
		sendValidationError(w, requestID, AgentCompliance, details)
		return
	}

	resp := complianceDecision.Decide(req)

	callLogger.Log(AgentCompliance, req, resp)
	decisionMetrics.recordRequest(AgentCompliance, time.Since(startTime).Milliseconds(), true)

	sendJSON(w, http.StatusOK, resp)
}

func opsAgentHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	decisionLog.Info(AgentOps, requestID, "Incoming request", map[string]interface{}{
		"remote_addr": r.RemoteAddr,
	})

	// Body is optional here; only a malformed one is rejected
	body, err := io.ReadAll(r.Body)
	if err != nil {
		decisionMetrics.recordRequest(AgentOps, time.Since(startTime).Milliseconds(), false)
		sendValidationError(w, requestID, AgentOps, map[string]string{"body": "Failed to read request body"})
		return
	}

	reqPayload := map[string]interface{}{}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &reqPayload); err != nil {
			decisionMetrics.recordRequest(AgentOps, time.Since(startTime).Milliseconds(), false)
			sendValidationError(w, requestID, AgentOps, map[string]string{"body": "Request body must be valid JSON"})
			return
		}
	}

	resp := opsDecision.Decide()

	callLogger.Log(AgentOps, reqPayload, resp)
	decisionMetrics.recordRequest(AgentOps, time.Since(startTime).Milliseconds(), true)

	sendJSON(w, http.StatusOK, resp)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	components := map[string]bool{
		"call_logger":     callLogger.IsHealthy(),
		"cost_advisor":    costAdvisorHealthy(),
		"weather_advisor": weatherAdvisorHealthy(),
		"tool_registry":   toolRegistry != nil,
	}

	health := map[string]interface{}{
		"status":     "healthy",
		"service":    "flightdeck-decision",
		"version":    ServerVersion,
		"timestamp":  time.Now().UTC(),
		"components": components,
	}

	sendJSON(w, http.StatusOK, health)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, decisionMetrics.Snapshot())
}

func recentCallsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			sendValidationError(w, "", "", map[string]string{"limit": "must be a positive integer"})
			return
		}
		if parsed > 500 {
			parsed = 500
		}
		limit = parsed
	}

	entries, err := callLogger.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to query call logs: %v", err)
		sendJSON(w, http.StatusInternalServerError, ValidationErrorResponse{Error: "Failed to query call logs"})
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"results": entries,
	})
}

func sendJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func sendValidationError(w http.ResponseWriter, requestID, agent string, details map[string]string) {
	if agent != "" {
		decisionLog.ErrorWithCode(agent, requestID, "Validation failed", http.StatusBadRequest, nil, map[string]interface{}{
			"details": details,
		})
	}
	sendJSON(w, http.StatusBadRequest, ValidationErrorResponse{
		Error:   "Invalid request",
		Details: details,
	})
}

func generateRequestID() string {
	return fmt.Sprintf("req_%d_%s", time.Now().Unix(), generateRandomString(8))
}

func generateRandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)

	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		// Fallback to math/rand if crypto/rand fails (shouldn't happen)
		for i := range b {
			b[i] = charset[mathRand.Intn(len(charset))]
		}
		return string(b)
	}

	for i := range b {
		b[i] = charset[int(randomBytes[i])%len(charset)]
	}
	return string(b)
}
