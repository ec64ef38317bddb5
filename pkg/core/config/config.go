// Package config loads engine configuration and process settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"project_appraisal/pkg/core/appraisal"
)

// Settings are the process-level options read from the environment.
type Settings struct {
	ConfigPath  string
	DatabaseURL string
	CacheDir    string
	Port        int
	Debug       bool
}

// LoadSettings reads .env (if present) and the APPRAISAL_* variables.
func LoadSettings() Settings {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return Settings{
		ConfigPath:  getEnv("APPRAISAL_CONFIG", "config/appraisal.yaml"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		CacheDir:    getEnv("APPRAISAL_CACHE_DIR", ".cache/appraisals"),
		Port:        getEnvInt("PORT", 8080),
		Debug:       getEnvBool("APPRAISAL_DEBUG", false),
	}
}

// Load reads a YAML file on top of appraisal.DefaultConfig. A missing file
// yields the defaults; keys absent from the file keep their default value.
func Load(path string) (appraisal.Config, error) {
	cfg := appraisal.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes over the defaults and validates the
// result. Mappings merge field by field; a scenarios list replaces the
// default list.
func Parse(data []byte) (appraisal.Config, error) {
	cfg := appraisal.DefaultConfig()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		return strings.EqualFold(val, "true") || val == "1"
	}
	return defaultVal
}
