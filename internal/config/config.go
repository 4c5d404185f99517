package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	DatabasePath string
	LogDir       string

	// AnalyzerURL is the base URL of the external decision service consulted
	// during full enforcement. AnalyzerTimeout is the hard upper bound on a
	// single analysis call.
	AnalyzerURL     string
	AnalyzerTimeout time.Duration

	// DefaultMode is the enforcement mode used when none has been persisted.
	DefaultMode string

	// RulesFile optionally points at a YAML file of seed patterns that is
	// loaded at startup and hot-reloaded on change.
	RulesFile string

	// JWTSecret signs control-plane tokens. OperatorPassword guards the login
	// endpoint; it is hashed at load and never kept in plaintext.
	JWTSecret            string
	OperatorPasswordHash string

	// NotifyURLs are shoutrrr destinations pinged on blocks and learned rules.
	NotifyURLs []string

	// AuditRetentionDays prunes audit records older than this many days.
	// Zero keeps records forever.
	AuditRetentionDays int

	// EventBuffer is the per-subscriber queue size for the live event feed.
	EventBuffer int
}

// Load reads env vars and falls back to defaults so the service can boot with
// zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:          getEnv("ARGUS_ENV", "development"),
		HTTPPort:             getEnv("ARGUS_HTTP_PORT", "8080"),
		DatabasePath:         getEnv("ARGUS_DB_PATH", filepath.Join("data", "argus.db")),
		LogDir:               getEnv("ARGUS_LOG_DIR", filepath.Join("data", "logs")),
		AnalyzerURL:          getEnv("ARGUS_ANALYZER_URL", "http://localhost:8001"),
		DefaultMode:          getEnv("ARGUS_DEFAULT_MODE", "full"),
		RulesFile:            getEnv("ARGUS_RULES_FILE", ""),
		JWTSecret:            getEnv("ARGUS_JWT_SECRET", ""),
		OperatorPasswordHash: getEnv("ARGUS_OPERATOR_PASSWORD_HASH", ""),
	}

	timeoutSecs, err := getEnvInt("ARGUS_ANALYZER_TIMEOUT", 10)
	if err != nil {
		return Config{}, err
	}
	cfg.AnalyzerTimeout = time.Duration(timeoutSecs) * time.Second

	if cfg.AuditRetentionDays, err = getEnvInt("ARGUS_AUDIT_RETENTION_DAYS", 0); err != nil {
		return Config{}, err
	}
	if cfg.EventBuffer, err = getEnvInt("ARGUS_EVENT_BUFFER", 16); err != nil {
		return Config{}, err
	}

	if urls := os.Getenv("ARGUS_NOTIFY_URLS"); urls != "" {
		for _, u := range strings.Split(urls, ",") {
			if u = strings.TrimSpace(u); u != "" {
				cfg.NotifyURLs = append(cfg.NotifyURLs, u)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
