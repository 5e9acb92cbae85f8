package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"navidromefm/internal/catalog"
	"navidromefm/internal/config"
	"navidromefm/internal/lastfm"
	"navidromefm/internal/ledger"
	"navidromefm/internal/logging"
	"navidromefm/internal/runlock"
	"navidromefm/internal/scrobbles"
)

type commandContext struct {
	userFlag          *string
	navidromeUserFlag *string
	configFlag        *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce sync.Once
	log     *slog.Logger
}

func newCommandContext(userFlag, navidromeUserFlag, configFlag *string) *commandContext {
	return &commandContext{
		userFlag:          userFlag,
		navidromeUserFlag: navidromeUserFlag,
		configFlag:        configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *slog.Logger {
	c.logOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.log = slog.Default()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.log = slog.Default()
			return
		}
		// A run id ties the log lines of one invocation together in the
		// shared log file.
		c.log = logger.With(slog.String(logging.FieldRunID, uuid.NewString()))
	})
	return c.log
}

func (c *commandContext) user() (string, error) {
	if c.userFlag == nil || strings.TrimSpace(*c.userFlag) == "" {
		return "", errors.New("a last.fm username is required, pass --user")
	}
	return strings.TrimSpace(*c.userFlag), nil
}

func (c *commandContext) navidromeUser() string {
	if c.navidromeUserFlag != nil && strings.TrimSpace(*c.navidromeUserFlag) != "" {
		return strings.TrimSpace(*c.navidromeUserFlag)
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return ""
	}
	return cfg.Navidrome.User
}

// withStore runs fn with the user's scrobble store open and the per-user
// run lock held. The lock keeps concurrent invocations from interleaving
// writes.
func (c *commandContext) withStore(fn func(cfg *config.Config, store *scrobbles.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	user, err := c.user()
	if err != nil {
		return err
	}

	lock, err := runlock.Acquire(cfg.LockPath(user))
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.Release()
	}()

	store, err := scrobbles.Open(cfg.ScrobbleDBPath(user))
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(cfg, store)
}

func (c *commandContext) ledgerFor(store *scrobbles.Store) *ledger.Ledger {
	return ledger.New(store.DB())
}

// lastfmClient builds an API client, failing early when credentials are
// missing.
func (c *commandContext) lastfmClient() (*lastfm.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireLastFM(); err != nil {
		return nil, err
	}
	return lastfm.New(cfg, c.logger()), nil
}

// openCatalog opens the Navidrome database at pathFlag, falling back to the
// configured path, and resolves the account to operate on.
func (c *commandContext) openCatalog(ctx context.Context, pathFlag string) (*catalog.DB, *catalog.User, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	path := strings.TrimSpace(pathFlag)
	if path == "" {
		path = cfg.Navidrome.DatabasePath
	}
	if path == "" {
		return nil, nil, errors.New("no Navidrome database configured, pass --database or set navidrome.database_path")
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, nil, err
	}

	db, err := catalog.Open(expanded)
	if err != nil {
		return nil, nil, err
	}
	user, err := db.ResolveUser(ctx, c.navidromeUser())
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("resolve Navidrome user: %w", err)
	}
	return db, user, nil
}
