// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

package decision

import "os"

// Config is the process configuration, built once at startup and passed
// into component constructors. Decision logic never reads the
// environment directly.
type Config struct {
	Port          string
	DatabaseURL   string
	GeminiAPIKey  string
	GeminiModel   string
	WeatherAPIKey string
	RedisURL      string
	AirportsFile  string
}

// LoadConfig reads configuration from the environment. Every credential
// is optional: absence disables the matching advisor and forces rule
// fallback.
func LoadConfig() Config {
	return Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   os.Getenv("GEMINI_MODEL"),
		WeatherAPIKey: os.Getenv("WEATHER_API_KEY"),
		RedisURL:      os.Getenv("REDIS_URL"),
		AirportsFile:  os.Getenv("AIRPORTS_FILE"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
