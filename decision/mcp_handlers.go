// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

package decision

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"flightdeck/platform/mcp"
)

// MCP server identity advertised in capability discovery.
const (
	ServerName    = "airline_disruption_context"
	ServerVersion = "1.0.0"
)

// WeatherToolName is the single tool exposed over MCP.
const WeatherToolName = "weather_disruption_context"

// mcpInvokeRequest is the wire shape for tool invocation.
type mcpInvokeRequest struct {
	Tool      string                 `json:"tool"`
	Arguments map[string]interface{} `json:"arguments"`
}

// mcpErrorBody is the wire shape for every MCP-surface failure.
type mcpErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newToolRegistry builds the tool registry with the weather disruption
// context tool bound to the given façade. Results are logged through the
// call logger under the weather agent's name.
func newToolRegistry(weatherDec *WeatherDecision, calls *CallLogger) *mcp.Registry {
	registry := mcp.NewRegistry()

	weatherTool := &mcp.Tool{
		Descriptor: mcp.Descriptor{
			Name:        WeatherToolName,
			Description: "Returns the current weather disruption context for an airport: severity, expected duration, and cascading delay risk.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"airport_code": map[string]interface{}{
						"type":        "string",
						"description": "Three-letter IATA airport code, e.g. DEL",
					},
				},
				"required": []string{"airport_code"},
			},
			OutputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"severity": map[string]interface{}{
						"type": "string",
						"enum": []string{"LOW", "MEDIUM", "HIGH"},
					},
					"expected_duration_hours": map[string]interface{}{
						"type": "number",
					},
					"cascading_delay_risk": map[string]interface{}{
						"type": "string",
						"enum": []string{"LOW", "MEDIUM", "HIGH"},
					},
					"source": map[string]interface{}{
						"type":        "string",
						"description": "v1 for live weather data, v2 for rule fallback",
					},
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			raw, ok := args["airport_code"]
			if !ok {
				return nil, mcp.NewArgumentError("airport_code is required")
			}
			code, ok := raw.(string)
			if !ok {
				return nil, mcp.NewArgumentError("airport_code must be a string")
			}
			// Length is checked before normalization: " DEL " is invalid
			if len(code) != 3 {
				return nil, mcp.NewArgumentError("airport_code must be a 3-letter IATA code, got %q", code)
			}
			code = strings.ToUpper(code)

			requestID := generateRequestID()
			result := weatherDec.Decide(ctx, requestID, code)

			calls.Log(AgentWeather, map[string]interface{}{"airport_code": code}, result)
			return result, nil
		},
	}

	if err := registry.Register(weatherTool); err != nil {
		// Registration happens once at startup with static descriptors;
		// a failure here is a programming error.
		panic(err)
	}

	return registry
}

// mcpCapabilitiesHandler serves capability discovery. Never fails.
func mcpCapabilitiesHandler(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"mcp_version":    mcp.Version,
		"server_name":    ServerName,
		"server_version": ServerVersion,
		"tools":          toolRegistry.Descriptors(),
	})
}

// mcpInvokeHandler dispatches a tool invocation through the registry.
func mcpInvokeHandler(w http.ResponseWriter, r *http.Request) {
	var req mcpInvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendMCPError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body must be valid JSON")
		return
	}

	if req.Tool == "" {
		sendMCPError(w, http.StatusBadRequest, "MISSING_TOOL", "Tool name is required")
		return
	}

	result, err := toolRegistry.Invoke(r.Context(), req.Tool, req.Arguments)
	if err != nil {
		var argErr *mcp.ArgumentError
		switch {
		case errors.Is(err, mcp.ErrUnknownTool):
			sendMCPError(w, http.StatusNotFound, "UNKNOWN_TOOL", err.Error())
		case errors.As(err, &argErr):
			sendMCPError(w, http.StatusBadRequest, "INVALID_ARGUMENTS", argErr.Message)
		default:
			sendMCPError(w, http.StatusInternalServerError, "TOOL_ERROR", err.Error())
		}
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"tool":   req.Tool,
		"result": result,
	})
}

func sendMCPError(w http.ResponseWriter, statusCode int, code, message string) {
	var body mcpErrorBody
	body.Error.Code = code
	body.Error.Message = message
	sendJSON(w, statusCode, body)
}
