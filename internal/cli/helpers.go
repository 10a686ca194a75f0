package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/imkarma/planner/internal/config"
	plog "github.com/imkarma/planner/internal/log"
	"github.com/imkarma/planner/internal/notify"
	"github.com/imkarma/planner/internal/service"
	"github.com/imkarma/planner/internal/store"
)

const plannerDirName = ".planner"

// plannerPath returns the path to a file inside .planner/.
func plannerPath(parts ...string) string {
	elems := append([]string{plannerDirName}, parts...)
	return filepath.Join(elems...)
}

// loadConfig reads .planner/config.yaml, returning an error if the planner
// is not initialized.
func loadConfig() (*config.Config, error) {
	cfgPath := plannerPath("config.yaml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("planner not initialized. Run: planner init")
	}
	return config.Load(cfgPath)
}

// dbPath resolves the configured database path against .planner/.
func dbPath(cfg *config.Config) string {
	if filepath.IsAbs(cfg.Database.Path) {
		return cfg.Database.Path
	}
	return plannerPath(cfg.Database.Path)
}

// openStore opens or creates the SQLite store at the given path.
func openStore(path string) (*store.Store, error) {
	return store.New(path)
}

// app is everything a command needs once the planner is initialized.
type app struct {
	cfg   *config.Config
	store *store.Store
	svc   *service.Services
	redis *redis.Client
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	a.store.Close()
}

// mustApp loads the config, opens the store and wires the services.
func mustApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	plog.SetLevel(cfg.Log.Level)
	logger := plog.GetLogger()

	s, err := openStore(dbPath(cfg))
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, store: s}

	var n notify.Notifier
	switch cfg.Notify.Mode {
	case "redis":
		client, err := notify.Dial(ctx, cfg.Notify.RedisURL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		n = notify.NewRedis(client, cfg.Notify.Channel, logger)
	case "none":
		n = notify.Nop{}
	default:
		n = notify.Log{Logger: logger}
	}

	a.svc = service.New(service.Deps{Store: s, Notifier: n, Logger: logger})
	return a, nil
}

// actorID returns the acting user from --as or PLANNER_ACTOR.
func actorID() (string, error) {
	if flagActor != "" {
		return flagActor, nil
	}
	if v := os.Getenv("PLANNER_ACTOR"); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("no actor. Pass --as <user-id> or set PLANNER_ACTOR")
}
