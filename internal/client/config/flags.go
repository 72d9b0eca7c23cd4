package config

import (
	"flag"
	"os"
	"time"

	"github.com/hmmelton/bytechef/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend API (default from Config)
//	-d string   path of the local cache database
//	-s int      background sync interval in minutes
//	-i int      online check interval in seconds
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the backend API")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path of the local cache database")
	syncInterval := fs.Int("s", int(cfg.SyncInterval.Minutes()), "background sync interval (in minutes)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SyncInterval = time.Duration(*syncInterval) * time.Minute
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
