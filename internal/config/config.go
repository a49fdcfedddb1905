// Package config loads the scanner configuration from a YAML file, a .env
// file and environment variables, in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sportsbook kinds understood by the collector factory.
const (
	KindGeneric        = "generic"
	KindSportsGameOdds = "sportsgameodds"
)

type Config struct {
	APIs     APIsConfig     `yaml:"apis"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	LLM      LLMConfig      `yaml:"llm"`
}

type APIsConfig struct {
	Kalshi      KalshiConfig       `yaml:"kalshi"`
	Sportsbooks []SportsbookConfig `yaml:"sportsbooks"`
}

type KalshiConfig struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	SeriesTicker string        `yaml:"series_ticker"`
	Pages        int           `yaml:"pages"`
	PageSize     int           `yaml:"page_size"`
	Timeout      time.Duration `yaml:"timeout"`
}

type SportsbookConfig struct {
	Name    string        `yaml:"name"`
	Kind    string        `yaml:"kind"`
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Mock    bool          `yaml:"mock"`
	Days    int           `yaml:"days"`
	Timeout time.Duration `yaml:"timeout"`
}

// ResolvedKind returns Kind, inferring sportsgameodds from the name when unset.
func (s SportsbookConfig) ResolvedKind() string {
	kind := strings.ToLower(strings.TrimSpace(s.Kind))
	if kind != "" {
		return kind
	}
	if strings.EqualFold(s.Name, KindSportsGameOdds) {
		return KindSportsGameOdds
	}
	return KindGeneric
}

type AnalysisConfig struct {
	ThresholdPercentage float64       `yaml:"threshold_percentage"`
	Interval            time.Duration `yaml:"interval"`
	Validate            bool          `yaml:"validate"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type StorageConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Prefix   string        `yaml:"prefix"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Group   string   `yaml:"group"`
}

type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Defaults returns the values used for anything the file and env leave unset.
func Defaults() Config {
	return Config{
		APIs: APIsConfig{
			Kalshi: KalshiConfig{
				BaseURL:      "https://api.elections.kalshi.com/trade-api/v2",
				SeriesTicker: "SOCCER",
				Pages:        5,
				PageSize:     200,
				Timeout:      20 * time.Second,
			},
		},
		Analysis: AnalysisConfig{
			ThresholdPercentage: 5.0,
		},
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{SQLitePath: "data/odds.db"},
		Redis: RedisConfig{
			TTL:    6 * time.Hour,
			Prefix: "opp_seen",
		},
		Kafka: KafkaConfig{
			Topic: "odds.opportunities",
			Group: "opportunity-worker",
		},
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.APIs.Kalshi.BaseURL) == "" {
		errs = append(errs, errors.New("apis.kalshi.base_url is required"))
	}
	if c.Analysis.ThresholdPercentage < 0 {
		errs = append(errs, fmt.Errorf("analysis.threshold_percentage must be >= 0, got %g", c.Analysis.ThresholdPercentage))
	}
	if c.Analysis.Interval < 0 {
		errs = append(errs, fmt.Errorf("analysis.interval must be >= 0, got %s", c.Analysis.Interval))
	}
	seen := make(map[string]bool)
	for i, sb := range c.APIs.Sportsbooks {
		name := strings.TrimSpace(sb.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("apis.sportsbooks[%d].name is required", i))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("apis.sportsbooks[%d]: duplicate name %q", i, name))
		}
		seen[name] = true
		switch sb.ResolvedKind() {
		case KindGeneric, KindSportsGameOdds:
		default:
			errs = append(errs, fmt.Errorf("apis.sportsbooks[%d]: unknown kind %q", i, sb.Kind))
		}
		if sb.ResolvedKind() == KindGeneric && !sb.Mock && strings.TrimSpace(sb.BaseURL) == "" {
			errs = append(errs, fmt.Errorf("apis.sportsbooks[%d].base_url is required unless mock is set", i))
		}
	}
	if c.Analysis.Validate && strings.TrimSpace(c.LLM.APIKey) == "" {
		errs = append(errs, errors.New("llm.api_key is required when analysis.validate is set"))
	}
	return errors.Join(errs...)
}
