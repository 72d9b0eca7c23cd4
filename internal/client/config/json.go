package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/hmmelton/bytechef/internal/flagx"
	"github.com/hmmelton/bytechef/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "15m"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	DBPath              string         `json:"db_path"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	SyncInterval        timex.Duration `json:"sync_interval"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags via flagx.JsonConfigFlags; if no path
// is given the function is a no-op. Read or unmarshal errors panic, since a
// named config file that cannot be used is a startup error.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerURL = jc.ServerURL
	cfg.DBPath = jc.DBPath
	cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
}
