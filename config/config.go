// Package config defines the application-level configuration tree.
// Values are layered from defaults, an optional json file, DASH_*
// environment variables and cli flags.
package config

import (
	"github.com/Alvin-MXK/daily-stock-analysis/internal/analysis"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/market"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/notify"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/settings"
	"github.com/Alvin-MXK/daily-stock-analysis/util/conf"
)

// EnvPrefix namespaces the environment variables read by the config
// layer, e.g. DASH_ANALYSIS__MAX_WORKERS.
const EnvPrefix = "DASH"

type Config struct {
	LogLevel  string `conf:"log_level"`
	LogFormat string `conf:"log_format"`

	Settings settings.Config `conf:"settings"`
	Analysis analysis.Config `conf:"analysis"`
	Market   market.Config   `conf:"market"`
	Mail     notify.Config   `conf:"mail"`
}

func Defaults() conf.DefaultConfig {
	defaults := conf.DefaultConfig{
		"log_level":  "info",
		"log_format": "console",
	}

	namespaced := []conf.DefaultConfig{
		conf.MergeDefaults("settings", conf.DefaultConfig{
			"env_file": ".env",
		}),
		conf.MergeDefaults("analysis", conf.DefaultConfig{
			"max_workers":            4,
			"task_retention_minutes": 60,
			"ai_model":               "gemini-1.5-flash",
		}),
		conf.MergeDefaults("market", conf.DefaultConfig{
			"timeout_seconds": 10,
		}),
		conf.MergeDefaults("mail", conf.DefaultConfig{
			"port": 587,
		}),
	}

	for _, m := range namespaced {
		for key, value := range m {
			defaults[key] = value
		}
	}

	return defaults
}
