// Package config loads the application configuration from .env files and
// the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"flowtime/internal/cycletime"
	"flowtime/internal/jira"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Jira       jira.Config
	Vocabulary cycletime.Vocabulary
	LogDir     string
}

// Load reads configuration from a .env file next to the binary first, then
// from one in the working directory, then from the real environment. An
// explicit envFile skips the search.
func Load(envFile string) (*AppConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, err
		}
	} else {
		// Binary-relative .env wins so installed copies carry their own
		// credentials; the working-directory fallback serves go run.
		exePath, err := os.Executable()
		if err == nil {
			envPath := filepath.Join(filepath.Dir(exePath), ".env")
			if err := godotenv.Load(envPath); err == nil {
				log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
			}
		}
		if err := godotenv.Load(); err != nil {
			log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
		}
	}

	cfg := &AppConfig{
		Jira: jira.Config{
			BaseURL:        getEnv("JIRA_URL", ""),
			Email:          getEnv("JIRA_EMAIL", ""),
			APIToken:       getEnv("JIRA_API_TOKEN", ""),
			RequestTimeout: time.Duration(getEnvInt("JIRA_REQUEST_TIMEOUT_SECONDS", 90)) * time.Second,
			RequestDelay:   time.Duration(getEnvInt("JIRA_REQUEST_DELAY_MS", 150)) * time.Millisecond,
			CacheTTL:       time.Duration(getEnvInt("JIRA_CACHE_TTL_SECONDS", 300)) * time.Second,
			RetryMax:       getEnvInt("JIRA_RETRY_MAX", 3),
		},
		Vocabulary: cycletime.Vocabulary{
			InProgress: getEnvList("STATUS_IN_PROGRESS", "In Development, Failed/Blocked, Analysis"),
			Done:       getEnvList("STATUS_DONE", "Closed"),
			Excluded:   getEnvList("STATUS_EXCLUDED", "Acceptance"),
			QA:         getEnvBool("QA_MODE", false),
		},
		LogDir: getEnv("LOGS_FOLDER", ""),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, trimming whitespace and
// dropping empty entries.
func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return list
}
