package standalone

import "github.com/Alvin-MXK/daily-stock-analysis/internal/server"

type Config struct {
	// HttpConfig represents the configuration for the HTTP server.
	HttpConfig server.HttpConfig `conf:",squash"`
}
