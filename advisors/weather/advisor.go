// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

// Package weather provides the live weather disruption advisor backed by
// OpenWeatherMap. It normalizes raw conditions into the disruption
// context vocabulary (severity, expected duration, cascading risk) and
// reports failure instead of guessing; the decision façade substitutes
// the rule-based fallback.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// DefaultBaseURL is the OpenWeatherMap current weather endpoint.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

	// DefaultTimeout bounds the upstream call.
	DefaultTimeout = 5 * time.Second

	// DefaultCacheTTL is how long a live context stays cached per airport.
	DefaultCacheTTL = 60 * time.Second

	// SourceLive tags contexts derived from the live API.
	SourceLive = "v1"
)

// Severity and cascading risk vocabulary.
const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
	SeverityLow    = "LOW"
)

// Advisor failure signals consumed by the decision façade.
var (
	ErrNoCredential   = errors.New("weather API key not configured")
	ErrUnknownAirport = errors.New("airport code not in city mapping")
)

// HTTPClient is an interface for HTTP client operations (enables testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Context is the normalized weather disruption context for an airport.
type Context struct {
	Severity              string      `json:"severity"`
	ExpectedDurationHours float64     `json:"expected_duration_hours"`
	CascadingDelayRisk    string      `json:"cascading_delay_risk"`
	Source                string      `json:"source"`
	RawWeather            *RawWeather `json:"raw_weather,omitempty"`
}

// RawWeather carries the upstream conditions the context was derived from.
type RawWeather struct {
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	WindSpeedMS float64 `json:"wind_speed_ms"`
	VisibilityM int     `json:"visibility_m"`
}

// majorHubs have higher cascading risk under medium severity.
var majorHubs = map[string]bool{
	"DEL": true,
	"BOM": true,
	"BLR": true,
	"MAA": true,
}

// Advisor implements the weather advisor against OpenWeatherMap.
type Advisor struct {
	apiKey   string
	baseURL  string
	cities   map[string]string
	client   HTTPClient
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *log.Logger
}

// Config contains configuration for the weather advisor.
type Config struct {
	APIKey   string            // Optional: absence forces fallback at call time
	BaseURL  string            // Optional: upstream endpoint override
	Cities   map[string]string // Optional: airport code to city mapping override
	Timeout  time.Duration     // Optional: HTTP timeout (default: 5s)
	Cache    *redis.Client     // Optional: response cache
	CacheTTL time.Duration     // Optional: cache TTL (default: 60s)
}

// NewAdvisor creates a new weather advisor instance.
func NewAdvisor(cfg Config) *Advisor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.Cities == nil {
		cfg.Cities = DefaultAirportCities()
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	return &Advisor{
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		cities:   cfg.Cities,
		client:   &http.Client{Timeout: cfg.Timeout},
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		logger:   log.New(os.Stdout, "[WEATHER] ", log.LstdFlags),
	}
}

// Name returns the advisor name.
func (a *Advisor) Name() string {
	return "openweathermap"
}

// Context fetches and normalizes the weather disruption context for an
// airport. Any returned error means the caller should use the fallback
// rules; the error never reaches an HTTP client.
func (a *Advisor) Context(ctx context.Context, airportCode string) (*Context, error) {
	airportCode = strings.ToUpper(strings.TrimSpace(airportCode))

	if a.apiKey == "" {
		return nil, ErrNoCredential
	}

	city, ok := a.cities[airportCode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAirport, airportCode)
	}

	if cached := a.cacheGet(ctx, airportCode); cached != nil {
		return cached, nil
	}

	reqURL := fmt.Sprintf("%s?q=%s&appid=%s&units=metric",
		a.baseURL, url.QueryEscape(city), url.QueryEscape(a.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("weather API request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("weather API returned status %d: %s", resp.StatusCode, string(body))
	}

	var data owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("weather API response malformed: %w", err)
	}

	if len(data.Weather) == 0 {
		return nil, errors.New("weather API response malformed: missing weather conditions")
	}

	condMain := strings.ToUpper(data.Weather[0].Main)
	condDesc := strings.ToLower(data.Weather[0].Description)
	windSpeed := data.Wind.Speed
	visibility := 10000
	if data.Visibility != nil {
		visibility = *data.Visibility
	}

	severity := normalizeSeverity(condMain, condDesc, windSpeed, visibility)

	wctx := &Context{
		Severity:              severity,
		ExpectedDurationHours: estimateDuration(severity),
		CascadingDelayRisk:    assessCascadingRisk(severity, airportCode),
		Source:                SourceLive,
		RawWeather: &RawWeather{
			Condition:   condMain,
			Description: condDesc,
			WindSpeedMS: windSpeed,
			VisibilityM: visibility,
		},
	}

	a.cacheSet(ctx, airportCode, wctx)

	return wctx, nil
}

// normalizeSeverity maps raw conditions to LOW | MEDIUM | HIGH.
// Checks evaluate in fixed priority order, first match wins.
func normalizeSeverity(condMain, condDesc string, windSpeed float64, visibility int) string {
	if strings.Contains(condMain, "THUNDERSTORM") || strings.Contains(condMain, "EXTREME") {
		return SeverityHigh
	}
	if strings.Contains(condDesc, "heavy") || strings.Contains(condDesc, "severe") {
		return SeverityHigh
	}
	if windSpeed > 15 {
		return SeverityHigh
	}
	if visibility < 1000 {
		return SeverityHigh
	}

	if strings.Contains(condMain, "RAIN") || strings.Contains(condMain, "SNOW") || strings.Contains(condMain, "DRIZZLE") {
		return SeverityMedium
	}
	if windSpeed > 8 {
		return SeverityMedium
	}
	if visibility < 5000 {
		return SeverityMedium
	}

	return SeverityLow
}

// estimateDuration maps severity to expected disruption hours.
func estimateDuration(severity string) float64 {
	switch severity {
	case SeverityHigh:
		return 4.0
	case SeverityLow:
		return 0.5
	default:
		return 2.0
	}
}

// assessCascadingRisk scores the risk of delays cascading to other
// flights. Major hubs amplify medium severity.
func assessCascadingRisk(severity, airportCode string) string {
	switch {
	case severity == SeverityHigh:
		return SeverityHigh
	case severity == SeverityMedium && majorHubs[airportCode]:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// cacheGet returns a cached context or nil. Cache problems are never
// surfaced; the advisor works the same without Redis.
func (a *Advisor) cacheGet(ctx context.Context, airportCode string) *Context {
	if a.cache == nil {
		return nil
	}

	val, err := a.cache.Get(ctx, cacheKey(airportCode)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			a.logger.Printf("cache read failed for %s: %v", airportCode, err)
		}
		return nil
	}

	var wctx Context
	if err := json.Unmarshal([]byte(val), &wctx); err != nil {
		a.logger.Printf("cache entry for %s malformed: %v", airportCode, err)
		return nil
	}
	return &wctx
}

func (a *Advisor) cacheSet(ctx context.Context, airportCode string, wctx *Context) {
	if a.cache == nil {
		return
	}

	data, err := json.Marshal(wctx)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, cacheKey(airportCode), data, a.cacheTTL).Err(); err != nil {
		a.logger.Printf("cache write failed for %s: %v", airportCode, err)
	}
}

func cacheKey(airportCode string) string {
	return "weather:context:" + airportCode
}

// SetHTTPClient sets a custom HTTP client for testing.
func (a *Advisor) SetHTTPClient(client HTTPClient) {
	a.client = client
}

// Internal API types

type owmResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility *int `json:"visibility"`
}
