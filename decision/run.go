// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

package decision

import (
	"log"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"flightdeck/platform/advisors/gemini"
	"flightdeck/platform/advisors/weather"
	"flightdeck/platform/mcp"
	"flightdeck/platform/shared/logger"
)

// FlightDeck Decision Service - Airline Disruption Decision Support
// Serves agent decision endpoints and the MCP tool surface.

// Components
var (
	decisionLog     *logger.Logger
	decisionMetrics *DecisionMetrics
	callLogger      *CallLogger

	costAdvisor    *gemini.Advisor  // nil when GEMINI_API_KEY is absent
	weatherAdvisor *weather.Advisor // nil when WEATHER_API_KEY is absent

	costDecision       *CostDecision
	complianceDecision *ComplianceDecision
	opsDecision        *OpsDecision
	weatherDecision    *WeatherDecision

	toolRegistry *mcp.Registry
)

// Run starts the decision service. It blocks until the HTTP server
// exits.
func Run() {
	log.Println("Starting FlightDeck Decision Service...")

	cfg := LoadConfig()
	initializeComponents(cfg)
	defer callLogger.Close()

	// Setup router
	r := mux.NewRouter()

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure for production
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// Health check
	r.HandleFunc("/health", healthHandler).Methods("GET")

	// Metrics endpoints: JSON snapshot plus Prometheus native format
	r.HandleFunc("/metrics", metricsHandler).Methods("GET")
	r.Handle("/prometheus", promhttp.Handler()).Methods("GET")

	// Agent decision endpoints
	r.HandleFunc("/api/agent/gemini-cost/", costAgentHandler).Methods("POST")
	r.HandleFunc("/api/agent/compliance/", complianceAgentHandler).Methods("POST")
	r.HandleFunc("/api/agent/ops/", opsAgentHandler).Methods("POST")

	// Call log inspection
	r.HandleFunc("/api/agent/calls", recentCallsHandler).Methods("GET")

	// MCP surface
	r.HandleFunc("/mcp/capabilities", mcpCapabilitiesHandler).Methods("GET")
	r.HandleFunc("/mcp/tools/invoke", mcpInvokeHandler).Methods("POST")

	// Start server
	handler := c.Handler(r)
	log.Printf("FlightDeck Decision Service listening on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}

func initializeComponents(cfg Config) {
	decisionLog = logger.New("decision")
	decisionMetrics = NewDecisionMetrics()
	callLogger = NewCallLogger(cfg.DatabaseURL)

	if cfg.GeminiAPIKey != "" {
		candidates := gemini.DefaultModelCandidates
		if cfg.GeminiModel != "" {
			candidates = append([]string{cfg.GeminiModel}, candidates...)
		}
		costAdvisor = gemini.NewAdvisor(gemini.Config{
			APIKey:          cfg.GeminiAPIKey,
			ModelCandidates: candidates,
		})
		log.Println("Gemini cost advisor enabled")
	} else {
		log.Println("GEMINI_API_KEY not set - cost decisions use rule fallback")
	}

	if cfg.WeatherAPIKey != "" {
		var cache *redis.Client
		if cfg.RedisURL != "" {
			opts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				log.Printf("Invalid REDIS_URL: %v - weather caching disabled", err)
			} else {
				cache = redis.NewClient(opts)
			}
		}

		var cities map[string]string
		if cfg.AirportsFile != "" {
			loaded, err := weather.LoadAirportCities(cfg.AirportsFile)
			if err != nil {
				log.Printf("Failed to load airport mapping from %s: %v - using built-in mapping", cfg.AirportsFile, err)
			} else {
				cities = loaded
			}
		}

		weatherAdvisor = weather.NewAdvisor(weather.Config{
			APIKey: cfg.WeatherAPIKey,
			Cities: cities,
			Cache:  cache,
		})
		log.Println("Weather advisor enabled")
	} else {
		log.Println("WEATHER_API_KEY not set - weather contexts use rule fallback")
	}

	// Façades tolerate nil advisor interfaces, but a typed nil pointer
	// wrapped in an interface would not compare equal to nil. Only wrap
	// when the advisor exists.
	var costIface CostAdvisor
	if costAdvisor != nil {
		costIface = costAdvisor
	}
	var weatherIface WeatherAdvisor
	if weatherAdvisor != nil {
		weatherIface = weatherAdvisor
	}

	costDecision = NewCostDecision(costIface, decisionLog)
	complianceDecision = NewComplianceDecision()
	opsDecision = NewOpsDecision()
	weatherDecision = NewWeatherDecision(weatherIface, decisionLog)

	toolRegistry = newToolRegistry(weatherDecision, callLogger)
}

func costAdvisorHealthy() bool {
	return costAdvisor != nil
}

func weatherAdvisorHealthy() bool {
	return weatherAdvisor != nil
}
