package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/chepyr/go-task-list/internal/config"
	"github.com/chepyr/go-task-list/internal/db"
	"github.com/chepyr/go-task-list/internal/settings"
	"github.com/chepyr/go-task-list/internal/storage"
	"github.com/chepyr/go-task-list/internal/tasks"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
)

// app is everything a command needs, opened from one configuration.
type app struct {
	cfg      *config.Config
	tasks    *tasks.Store
	settings *settings.Store
	closers  []func() error
}

func openApp(ctx context.Context, load loadFunc) (*app, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	st, err := a.openStorage(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.tasks = tasks.NewStore(st, tasks.WithKey(cfg.TasksKey))
	a.settings = settings.NewStore(st, cfg.ThemeKey)
	return a, nil
}

func (a *app) openStorage(ctx context.Context) (storage.Storage, error) {
	cfg := a.cfg
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return storage.NewMemory(), nil

	case config.DriverFile:
		f, err := storage.NewFile(cfg.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage dir: %w", err)
		}
		return f, nil

	case config.DriverSQLite:
		dsn := cfg.SQLitePath
		if !strings.Contains(dsn, "_busy_timeout") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_busy_timeout=5000"
		}
		return a.openSQL(ctx, config.DriverSQLite, dsn)

	case config.DriverPostgres:
		return a.openSQL(ctx, config.DriverPostgres, cfg.PostgresDSN())

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		r := storage.NewRedis(client, cfg.RedisPrefix)
		a.closers = append(a.closers, r.Close)
		return r, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func (a *app) openSQL(ctx context.Context, driver, dsn string) (storage.Storage, error) {
	dbConn, err := db.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.closers = append(a.closers, dbConn.Close)

	repo := db.NewSlotRepository(dbConn)
	if err := repo.Migrate(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// withApp opens the app for one command and closes it afterwards.
func withApp(ctx context.Context, load loadFunc, fn func(a *app) error) error {
	a, err := openApp(ctx, load)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("Failed to close storage: %v", err)
		}
	}()
	return fn(a)
}
