package config

import "os"

// Config collects every environment-derived setting so the rest of the service
// never reads the environment directly.
type Config struct {
	Port                string
	AppEnv              string
	DatabaseURL         string
	DatabaseFallbackURL string
	GeminiAPIKey        string
}

// Load reads the process environment. Defaults match local development.
func Load() Config {
	return Config{
		Port:                getenv("PORT", "8080"),
		AppEnv:              getenv("APP_ENV", "development"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		DatabaseFallbackURL: os.Getenv("DATABASE_FALLBACK_URL"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
	}
}

// IsDevelopment reports whether the service runs with development defaults
// (console logs, permissive CORS, error detail in responses).
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
