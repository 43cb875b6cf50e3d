// Package storage selects the storage engine once at startup and bundles it
// with the session store behind a single capability interface.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BruksfildServices01/barber-turnos/internal/config"
	"github.com/BruksfildServices01/barber-turnos/internal/db"
	domain "github.com/BruksfildServices01/barber-turnos/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-turnos/internal/domain/user"
	"github.com/BruksfildServices01/barber-turnos/internal/infra/filestore"
	"github.com/BruksfildServices01/barber-turnos/internal/infra/repository"
	"github.com/BruksfildServices01/barber-turnos/internal/models"
	"github.com/BruksfildServices01/barber-turnos/internal/session"
)

// Engine is a persistent store for appointments and users.
type Engine interface {
	domain.Repository
	user.Directory
	Close() error
}

// Backend is everything the rest of the service needs from storage.
type Backend interface {
	domain.Repository
	user.Directory
	session.Store
	Close() error
}

type backend struct {
	Engine
	session.Store

	closeSessions func() error
}

// New combines an engine and a session store. closeSessions may be nil.
func New(engine Engine, sessions session.Store, closeSessions func() error) Backend {
	return &backend{
		Engine:        engine,
		Store:         sessions,
		closeSessions: closeSessions,
	}
}

func (b *backend) Close() error {
	err := b.Engine.Close()
	if b.closeSessions != nil {
		err = errors.Join(err, b.closeSessions())
	}
	return err
}

// Open builds the backend described by cfg. mirror, when non-nil, receives
// every snapshot the flat-file engine writes.
func Open(ctx context.Context, cfg *config.Config, mirror filestore.Mirror) (Backend, error) {
	engine, err := openEngine(ctx, cfg, mirror)
	if err != nil {
		return nil, err
	}

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		_ = engine.Close()
		return nil, err
	}

	return New(engine, sessions, closeSessions), nil
}

func openEngine(ctx context.Context, cfg *config.Config, mirror filestore.Mirror) (Engine, error) {
	switch cfg.StorageEngine {
	case config.EnginePostgres:
		if cfg.DBUrl == "" {
			return nil, errors.New("STORAGE_ENGINE=postgres requires DATABASE_URL")
		}
		return openPostgres(ctx, cfg.DBUrl)

	case config.EngineFile:
		return openFile(cfg.DataDir, mirror)

	case config.EngineAuto:
		if cfg.DBUrl != "" {
			engine, err := openPostgres(ctx, cfg.DBUrl)
			if err == nil {
				return engine, nil
			}
			slog.Warn("postgres unavailable, falling back to flat-file storage",
				"error", err,
				"data_dir", cfg.DataDir,
			)
		}
		return openFile(cfg.DataDir, mirror)

	default:
		return nil, fmt.Errorf("unknown storage engine %q", cfg.StorageEngine)
	}
}

func openPostgres(ctx context.Context, dsn string) (Engine, error) {
	gdb, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	slog.Info("storage engine selected", "engine", config.EnginePostgres)
	return repository.NewGormStore(gdb), nil
}

func openFile(dir string, mirror filestore.Mirror) (Engine, error) {
	var opts []filestore.Option
	if mirror != nil {
		opts = append(opts, filestore.WithMirror(mirror))
	}

	store, err := filestore.Open(dir, opts...)
	if err != nil {
		return nil, err
	}
	slog.Info("storage engine selected", "engine", config.EngineFile, "data_dir", dir)
	return store, nil
}

func openSessions(ctx context.Context, cfg *config.Config) (session.Store, func() error, error) {
	switch cfg.SessionBackend {
	case config.SessionMemory:
		return session.NewMemoryStore(cfg.SessionTTL), nil, nil

	case config.SessionRedis:
		rdb, err := session.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisStore(rdb, cfg.SessionTTL), rdb.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

// Seed provisions the administrator and the configured users. Existing
// usernames are left untouched.
func Seed(ctx context.Context, dir user.Directory, cfg *config.Config) error {
	users := []models.User{{
		Username:   cfg.AdminUsername,
		Credential: cfg.AdminPassword,
		IsAdmin:    true,
	}}
	for _, su := range cfg.SeedUsers {
		users = append(users, models.User{
			Username:   su.Username,
			Credential: su.Credential,
		})
	}

	for i := range users {
		if _, err := dir.EnsureUser(ctx, &users[i]); err != nil {
			return fmt.Errorf("seed user %q: %w", users[i].Username, err)
		}
	}
	return nil
}
