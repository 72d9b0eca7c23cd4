package config

import "time"

// Config holds runtime settings for the ByteChef CLI.
//
// Fields:
//   - ServerURL: base URL of the backend API.
//   - DBPath: path of the local SQLite cache file.
//   - RequestTimeout: per-request timeout for backend calls.
//   - SyncInterval: period of the background sync jobs.
//   - OnlineCheckInterval: how often the client probes server reachability.
//
// Units: intervals are time.Duration values (e.g., 15*time.Minute).
type Config struct {
	ServerURL           string
	DBPath              string
	RequestTimeout      time.Duration
	SyncInterval        time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DBPath = "bytechef.db"
	c.RequestTimeout = 10 * time.Second
	c.SyncInterval = 15 * time.Minute
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
