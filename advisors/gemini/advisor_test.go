// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// mockHTTPClient is a mock HTTP client for testing.
type mockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.DoFunc(req)
}

// Helper to create a successful response with the given model text.
func successResponse(content string) *http.Response {
	resp := geminiResponse{
		Candidates: []geminiCandidate{
			{
				Content: geminiContent{
					Parts: []geminiPart{{Text: content}},
					Role:  "model",
				},
				FinishReason: "STOP",
				Index:        0,
			},
		},
	}
	body, _ := json.Marshal(resp)
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     make(http.Header),
	}
}

// Helper to create an error response.
func errorResponse(statusCode int, message, status string) *http.Response {
	resp := map[string]any{
		"error": map[string]any{
			"code":    statusCode,
			"message": message,
			"status":  status,
		},
	}
	body, _ := json.Marshal(resp)
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestAdvisor(t *testing.T, client HTTPClient) *Advisor {
	t.Helper()
	a := NewAdvisor(Config{APIKey: "test-key"})
	a.SetHTTPClient(client)
	return a
}

func TestNewAdvisorDefaults(t *testing.T) {
	a := NewAdvisor(Config{APIKey: "k"})

	if a.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", a.baseURL, DefaultBaseURL)
	}
	if a.apiVersion != DefaultAPIVersion {
		t.Errorf("apiVersion = %q, want %q", a.apiVersion, DefaultAPIVersion)
	}
	if a.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", a.timeout, DefaultTimeout)
	}
	if len(a.candidates) != len(DefaultModelCandidates) {
		t.Errorf("candidates = %v, want %v", a.candidates, DefaultModelCandidates)
	}
}

func TestRecommendNoCredential(t *testing.T) {
	a := NewAdvisor(Config{})

	_, err := a.Recommend(context.Background(), CostQuery{DelayHours: 3})
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestRecommendSuccess(t *testing.T) {
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return successResponse(`{"recommendation":"HOTEL_FOR_ALL","reason":"long delay","confidence":0.9}`), nil
		},
	}

	a := newTestAdvisor(t, client)
	advice, err := a.Recommend(context.Background(), CostQuery{DelayHours: 5, TotalPassengers: 120, VIPPassengers: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if advice.Recommendation != RecommendHotelForAll {
		t.Errorf("Recommendation = %q, want %q", advice.Recommendation, RecommendHotelForAll)
	}
	if advice.Reason != "long delay" {
		t.Errorf("Reason = %q, want %q", advice.Reason, "long delay")
	}
	if advice.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", advice.Confidence)
	}
	if advice.Model != DefaultModelCandidates[0] {
		t.Errorf("Model = %q, want %q", advice.Model, DefaultModelCandidates[0])
	}
}

func TestRecommendStripsCodeFence(t *testing.T) {
	fenced := "```json\n{\"recommendation\":\"LIMIT_HOTEL\",\"reason\":\"moderate\",\"confidence\":0.8}\n```"
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return successResponse(fenced), nil
		},
	}

	a := newTestAdvisor(t, client)
	advice, err := a.Recommend(context.Background(), CostQuery{DelayHours: 2, TotalPassengers: 150})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if advice.Recommendation != RecommendLimitHotel {
		t.Errorf("Recommendation = %q, want %q", advice.Recommendation, RecommendLimitHotel)
	}
}

func TestRecommendAppliesDefaultsForMissingKeys(t *testing.T) {
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return successResponse(`{}`), nil
		},
	}

	a := newTestAdvisor(t, client)
	advice, err := a.Recommend(context.Background(), CostQuery{DelayHours: 1, TotalPassengers: 80})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if advice.Recommendation != defaultRecommendation {
		t.Errorf("Recommendation = %q, want default %q", advice.Recommendation, defaultRecommendation)
	}
	if advice.Reason != defaultReason {
		t.Errorf("Reason = %q, want default %q", advice.Reason, defaultReason)
	}
	if advice.Confidence != defaultConfidence {
		t.Errorf("Confidence = %v, want default %v", advice.Confidence, defaultConfidence)
	}
}

func TestRecommendInvalidJSONFails(t *testing.T) {
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return successResponse("I recommend limiting hotel accommodation."), nil
		},
	}

	a := newTestAdvisor(t, client)
	_, err := a.Recommend(context.Background(), CostQuery{DelayHours: 3, TotalPassengers: 60})
	if err == nil {
		t.Fatal("expected parse error for non-JSON model output")
	}
}

func TestRecommendTriesCandidatesInOrder(t *testing.T) {
	var models []string
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			// URL path contains /models/<model>:generateContent
			path := req.URL.Path
			start := strings.Index(path, "/models/")
			end := strings.Index(path, ":generateContent")
			models = append(models, path[start+len("/models/"):end])

			if len(models) < 3 {
				return errorResponse(http.StatusNotFound, "model not found", "NOT_FOUND"), nil
			}
			return successResponse(`{"recommendation":"LIMIT_HOTEL","reason":"ok","confidence":0.7}`), nil
		},
	}

	a := newTestAdvisor(t, client)
	advice, err := a.Recommend(context.Background(), CostQuery{DelayHours: 2, TotalPassengers: 200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := DefaultModelCandidates
	if len(models) != len(want) {
		t.Fatalf("tried %d models, want %d", len(models), len(want))
	}
	for i := range want {
		if models[i] != want[i] {
			t.Errorf("candidate %d: got %q, want %q", i, models[i], want[i])
		}
	}
	if advice.Model != want[2] {
		t.Errorf("Model = %q, want %q", advice.Model, want[2])
	}
}

func TestRecommendAllCandidatesExhausted(t *testing.T) {
	calls := 0
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			calls++
			return nil, errors.New("connection refused")
		},
	}

	a := newTestAdvisor(t, client)
	_, err := a.Recommend(context.Background(), CostQuery{DelayHours: 4, TotalPassengers: 30})
	if err == nil {
		t.Fatal("expected error after exhausting candidates")
	}
	if calls != len(DefaultModelCandidates) {
		t.Errorf("made %d calls, want %d", calls, len(DefaultModelCandidates))
	}
	if a.IsHealthy() {
		t.Error("advisor should be unhealthy after transport failures")
	}
}

func TestRecommendRateLimitError(t *testing.T) {
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return errorResponse(http.StatusTooManyRequests, "quota exceeded", "RESOURCE_EXHAUSTED"), nil
		},
	}

	a := newTestAdvisor(t, client)
	_, err := a.Recommend(context.Background(), CostQuery{DelayHours: 2, TotalPassengers: 100})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError in chain, got %v", err)
	}
	if !apiErr.IsRateLimitError() {
		t.Error("expected rate limit classification")
	}
}

func TestRecommendContextTimeout(t *testing.T) {
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		},
	}

	a := newTestAdvisor(t, client)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := a.Recommend(ctx, CostQuery{DelayHours: 3, TotalPassengers: 90})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.input); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildPromptContainsInputs(t *testing.T) {
	prompt := buildPrompt(CostQuery{DelayHours: 6, TotalPassengers: 210, VIPPassengers: 12})

	for _, want := range []string{"Delay: 6 hours", "Total Passengers: 210", "VIP Passengers: 12", "LIMIT_HOTEL or HOTEL_FOR_ALL"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
