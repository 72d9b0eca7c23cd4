package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"time"

	"github.com/hmmelton/bytechef/internal/client/auth"
	"github.com/hmmelton/bytechef/internal/client/config"
	"github.com/hmmelton/bytechef/internal/client/localstore"
	"github.com/hmmelton/bytechef/internal/client/remote"
	"github.com/hmmelton/bytechef/internal/client/repositories"
	"github.com/hmmelton/bytechef/internal/client/syncer"
	"github.com/hmmelton/bytechef/internal/logging"
	"github.com/hmmelton/bytechef/internal/netx"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App wires the CLI together: the local cache, the backend client, the auth
// manager, the repositories and the sync machinery behind them.
type App struct {
	config      *config.Config
	store       *localstore.Store
	apiClient   remote.Client
	authManager *auth.Manager
	scheduler   *syncer.Scheduler
	coordinator *syncer.Coordinator
	users       *repositories.Users
	recipes     *repositories.Recipes
	Mode        Mode
	reader      *bufio.Reader
	log         logging.Logger
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	store, err := localstore.Open(ctx, localstore.DSN(c.DBPath), logger)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := remote.NewHTTPClient(c.ServerURL, c.RequestTimeout, logger)
	authManager := auth.NewManager(apiClient, logger)

	prober := netx.NewProber(apiClient, c.RequestTimeout)
	scheduler := syncer.NewScheduler(prober, logger)

	users := repositories.NewUsers(store, apiClient, scheduler, authManager, c.SyncInterval, logger)
	recipes := repositories.NewRecipes(store, apiClient, scheduler, authManager, c.SyncInterval, logger)

	coordinator := syncer.NewCoordinator(authManager, logger, users, recipes)
	coordinator.Start(ctx)

	return &App{
		config:      c,
		store:       store,
		apiClient:   apiClient,
		authManager: authManager,
		scheduler:   scheduler,
		coordinator: coordinator,
		users:       users,
		recipes:     recipes,
		Mode:        ModeOffline,
		reader:      bufio.NewReader(os.Stdin),
		log:         logger,
	}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)
	a.Root(ctx)
}

// Close shuts the background machinery down in dependency order.
func (a *App) Close(ctx context.Context) {
	a.coordinator.Stop()
	if err := a.scheduler.Shutdown(ctx); err != nil {
		a.log.Warn(ctx, "scheduler shutdown", "error", err)
	}
	a.authManager.Close()
	a.apiClient.Close()
	a.store.Close()
}

func (a *App) isLoggedIn() bool {
	return a.authManager.Current() != nil
}

// StartOnlineStatusWatcher probes the backend on a fixed interval and flips
// the connectivity mode when reachability changes.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.apiClient.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
