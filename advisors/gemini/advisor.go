// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

// Package gemini provides the LLM cost advisor backed by Google's Gemini
// models. The advisor asks for a hotel accommodation recommendation as
// strict JSON and reports failure to the caller instead of guessing:
// the decision façade owns the rule-based fallback.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultBaseURL is the default Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultAPIVersion is the Gemini API version.
	DefaultAPIVersion = "v1beta"

	// DefaultTimeout bounds each generate call. The weather advisor uses
	// the same 5 second bound.
	DefaultTimeout = 5 * time.Second

	// DefaultMaxTokens is the max output tokens for a recommendation.
	DefaultMaxTokens = 512
)

// Recommendation values the advisor is allowed to return.
const (
	RecommendLimitHotel  = "LIMIT_HOTEL"
	RecommendHotelForAll = "HOTEL_FOR_ALL"
)

// Defaults applied when the model omits a key from an otherwise valid
// JSON object. Credential presence and JSON validity are the only hard
// failure boundaries.
const (
	defaultRecommendation = RecommendLimitHotel
	defaultReason         = "Cost optimization analysis"
	defaultConfidence     = 0.75
)

// DefaultModelCandidates is the ordered list of model identifiers tried
// in sequence until one answers.
var DefaultModelCandidates = []string{
	"gemini-2.5-flash",
	"gemini-pro-latest",
	"gemini-pro",
}

// ErrNoCredential is returned when no API key is configured. The façade
// treats it like any other advisor failure.
var ErrNoCredential = errors.New("gemini API key not configured")

// HTTPClient is an interface for HTTP client operations (enables testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Advisor implements the cost advisor against the Gemini REST API.
type Advisor struct {
	apiKey     string
	baseURL    string
	apiVersion string
	candidates []string
	timeout    time.Duration
	client     HTTPClient
	healthy    bool
	mu         sync.RWMutex
}

// Config contains configuration for the Gemini advisor.
type Config struct {
	APIKey          string        // Optional: absence forces fallback at call time
	BaseURL         string        // Optional: API base URL
	APIVersion      string        // Optional: API version (default: v1beta)
	ModelCandidates []string      // Optional: ordered model identifiers to try
	Timeout         time.Duration // Optional: HTTP timeout (default: 5s)
}

// CostQuery carries the disruption inputs for a recommendation.
type CostQuery struct {
	DelayHours      int
	TotalPassengers int
	VIPPassengers   int
}

// CostAdvice is the structured recommendation parsed from the model.
type CostAdvice struct {
	Recommendation string
	Reason         string
	Confidence     float64
	Model          string
}

// NewAdvisor creates a new Gemini advisor instance. A missing API key is
// not a construction error: Recommend returns ErrNoCredential instead.
func NewAdvisor(cfg Config) *Advisor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	if len(cfg.ModelCandidates) == 0 {
		cfg.ModelCandidates = DefaultModelCandidates
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Advisor{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		apiVersion: cfg.APIVersion,
		candidates: cfg.ModelCandidates,
		timeout:    cfg.Timeout,
		client:     &http.Client{Timeout: cfg.Timeout},
		healthy:    true,
	}
}

// Name returns the advisor name.
func (a *Advisor) Name() string {
	return "gemini"
}

// IsHealthy returns whether the advisor is healthy.
func (a *Advisor) IsHealthy() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.healthy && a.apiKey != ""
}

func (a *Advisor) setHealthy(healthy bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.healthy = healthy
}

// Recommend asks Gemini for a hotel accommodation recommendation.
// Candidates are tried in order; the first model that answers wins.
// A successful call whose text is not valid JSON is a failure, not a
// retry: the response shape is the contract.
func (a *Advisor) Recommend(ctx context.Context, q CostQuery) (*CostAdvice, error) {
	if a.apiKey == "" {
		return nil, ErrNoCredential
	}

	prompt := buildPrompt(q)

	var lastErr error
	for _, model := range a.candidates {
		content, err := a.generate(ctx, model, prompt)
		if err != nil {
			lastErr = err
			continue
		}
		return parseAdvice(content, model)
	}

	return nil, fmt.Errorf("all model candidates failed: %w", lastErr)
}

// generate issues one generateContent call and returns the raw text of
// the first candidate.
func (a *Advisor) generate(ctx context.Context, model, prompt string) (string, error) {
	apiReq := map[string]any{
		"contents": []map[string]any{
			{
				"role": "user",
				"parts": []map[string]any{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": DefaultMaxTokens,
			"temperature":     0.0,
		},
	}

	reqBody, err := json.Marshal(apiReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s",
		a.baseURL, a.apiVersion, model, a.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		a.setHealthy(false)
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			a.setHealthy(false)
		}
		return "", parseAPIError(resp.StatusCode, body)
	}

	a.setHealthy(true)

	var apiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates for model %s", model)
	}

	return apiResp.Candidates[0].Content.Parts[0].Text, nil
}

// buildPrompt constructs the natural-language instruction requesting
// strict JSON output.
func buildPrompt(q CostQuery) string {
	return fmt.Sprintf(`You are an airline cost optimization agent.
Given flight delay details, suggest whether hotel accommodation should be provided to all passengers or limited.

Delay: %d hours
Total Passengers: %d
VIP Passengers: %d

Return ONLY valid JSON with:
- recommendation (LIMIT_HOTEL or HOTEL_FOR_ALL)
- reason (short explanation)
- confidence (number between 0 and 1)

Format your response as JSON only, no additional text.`,
		q.DelayHours, q.TotalPassengers, q.VIPPassengers)
}

// stripCodeFence removes surrounding markdown code fences from the model
// output. Models frequently wrap JSON in ```json blocks despite the
// prompt instruction.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// parseAdvice parses the model text strictly as JSON, applying defaults
// for missing keys.
func parseAdvice(text, model string) (*CostAdvice, error) {
	cleaned := stripCodeFence(text)

	var raw struct {
		Recommendation string   `json:"recommendation"`
		Reason         string   `json:"reason"`
		Confidence     *float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("model response is not valid JSON: %w", err)
	}

	advice := &CostAdvice{
		Recommendation: raw.Recommendation,
		Reason:         raw.Reason,
		Confidence:     defaultConfidence,
		Model:          model,
	}
	if advice.Recommendation == "" {
		advice.Recommendation = defaultRecommendation
	}
	if advice.Reason == "" {
		advice.Reason = defaultReason
	}
	if raw.Confidence != nil {
		advice.Confidence = *raw.Confidence
	}

	return advice, nil
}

// parseAPIError parses an API error response.
func parseAPIError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil {
		return fmt.Errorf("gemini API error (status %d): %s", statusCode, string(body))
	}

	return &APIError{
		StatusCode: statusCode,
		Code:       errResp.Error.Code,
		Status:     errResp.Error.Status,
		Message:    errResp.Error.Message,
	}
}

// APIError represents a Gemini API error.
type APIError struct {
	StatusCode int
	Code       int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API error (status %d, code %d, %s): %s",
		e.StatusCode, e.Code, e.Status, e.Message)
}

// IsRateLimitError returns true if this is a rate limit error.
func (e *APIError) IsRateLimitError() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Status == "RESOURCE_EXHAUSTED"
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized ||
		e.StatusCode == http.StatusForbidden ||
		e.Status == "UNAUTHENTICATED" ||
		e.Status == "PERMISSION_DENIED"
}

// SetHTTPClient sets a custom HTTP client for testing.
func (a *Advisor) SetHTTPClient(client HTTPClient) {
	a.client = client
}

// Internal API types

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
	Index        int           `json:"index"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}
