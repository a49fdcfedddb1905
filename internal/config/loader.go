package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path on top of Defaults, then applies .env and
// environment overrides. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// A missing .env is fine.
	_ = godotenv.Load()

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides reports every malformed numeric variable at once.
func applyEnvOverrides(cfg *Config) error {
	var errs []error
	setStr(&cfg.APIs.Kalshi.BaseURL, "KALSHI_BASE_URL")
	setStr(&cfg.APIs.Kalshi.APIKey, "KALSHI_API_KEY")
	setStr(&cfg.APIs.Kalshi.SeriesTicker, "KALSHI_SERIES_TICKER")
	errs = append(errs, setInt(&cfg.APIs.Kalshi.Pages, "KALSHI_PAGES"))
	errs = append(errs, setInt(&cfg.APIs.Kalshi.PageSize, "KALSHI_PAGE_SIZE"))

	errs = append(errs, setFloat(&cfg.Analysis.ThresholdPercentage, "ODDS_THRESHOLD"))

	setStr(&cfg.Logging.Level, "LOG_LEVEL")
	setStr(&cfg.Logging.File, "LOG_FILE")

	setStr(&cfg.Storage.SQLitePath, "SQLITE_PATH")

	setStr(&cfg.Redis.Addr, "REDIS_ADDR")
	setStr(&cfg.Redis.Password, "REDIS_PASSWORD")
	errs = append(errs, setInt(&cfg.Redis.DB, "REDIS_DB"))

	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		cfg.Kafka.Brokers = splitList(raw)
	}
	setStr(&cfg.Kafka.Topic, "OPPORTUNITIES_KAFKA_TOPIC")

	setStr(&cfg.LLM.APIKey, "LLM_API_KEY")
	setStr(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setStr(&cfg.LLM.Model, "LLM_MODEL")

	// Per-sportsbook keys: <NAME>_API_KEY, e.g. SPORTSGAMEODDS_API_KEY.
	for i := range cfg.APIs.Sportsbooks {
		setStr(&cfg.APIs.Sportsbooks[i].APIKey, envName(cfg.APIs.Sportsbooks[i].Name)+"_API_KEY")
	}
	return errors.Join(errs...)
}

func envName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(name)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid number %q", key, v)
	}
	*dst = f
	return nil
}
