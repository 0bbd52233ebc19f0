// Package stashopen builds the record service commands run against from the
// resolved configuration: the storage driver, the event publisher and the
// tag limits.
package stashopen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/papercomputeco/tagstash/cmd/tagstash/sqlitepath"
	"github.com/papercomputeco/tagstash/pkg/config"
	"github.com/papercomputeco/tagstash/pkg/eventstream"
	"github.com/papercomputeco/tagstash/pkg/eventstream/kafka"
	"github.com/papercomputeco/tagstash/pkg/eventstream/nop"
	"github.com/papercomputeco/tagstash/pkg/record"
	"github.com/papercomputeco/tagstash/pkg/stash"
	"github.com/papercomputeco/tagstash/pkg/storage"
	"github.com/papercomputeco/tagstash/pkg/storage/inmemory"
	"github.com/papercomputeco/tagstash/pkg/storage/postgres"
	"github.com/papercomputeco/tagstash/pkg/storage/sqlite"
	"github.com/papercomputeco/tagstash/pkg/tag"
)

// Stash bundles the service with the resources it owns.
type Stash struct {
	Service   *stash.Service
	Driver    storage.Driver
	Publisher eventstream.Publisher
}

// Close releases the publisher and the driver.
func (s *Stash) Close() error {
	return errors.Join(s.Publisher.Close(), s.Driver.Close())
}

// Open opens the configured storage driver and wires a service on top of it.
func Open(ctx context.Context, v *viper.Viper, configDir string, logger *slog.Logger) (*Stash, error) {
	driver, err := OpenDriver(ctx, v, configDir, logger)
	if err != nil {
		return nil, err
	}

	publisher, err := NewPublisher(v, logger)
	if err != nil {
		driver.Close()
		return nil, err
	}

	svc := stash.New(driver,
		stash.WithLogger(logger),
		stash.WithPublisher(publisher),
		stash.WithTagFactory(tag.NewFactory(tag.NewValidator(v.GetInt("tags.max_length")))),
		stash.WithRecordFactory(record.NewFactory(v.GetInt("tags.max_per_record"))),
	)

	return &Stash{Service: svc, Driver: driver, Publisher: publisher}, nil
}

// OpenDriver opens the storage driver named by storage.driver. Drivers with a
// schema are migrated to the latest version before they are returned.
func OpenDriver(ctx context.Context, v *viper.Viper, configDir string, logger *slog.Logger) (storage.Driver, error) {
	switch name := v.GetString("storage.driver"); name {
	case config.DriverMemory:
		logger.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	case config.DriverSQLite:
		path, err := sqlitepath.ResolveSQLitePath(v.GetString("storage.sqlite_path"), configDir)
		if err != nil {
			return nil, err
		}
		driver, err := sqlite.NewDriver(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		logger.Info("using SQLite storage", "path", path)
		return driver, nil

	case config.DriverPostgres:
		dsn := v.GetString("storage.postgres_dsn")
		if dsn == "" {
			return nil, errors.New("storage.postgres_dsn is required for the postgres driver")
		}
		cfg := postgres.Config{
			DSN:             dsn,
			MaxConns:        int32(v.GetUint("storage.max_conns")),
			MaxConnIdleTime: v.GetDuration("storage.max_conn_idle_time"),
			ConnectTimeout:  v.GetDuration("storage.connect_timeout"),
		}
		driver, err := postgres.NewDriver(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		logger.Info("using PostgreSQL storage",
			"max_conns", cfg.MaxConns,
			"connect_timeout", cfg.ConnectTimeout,
		)
		return driver, nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %q (available: sqlite, postgres, memory)", name)
	}
}

// NewPublisher creates the publisher named by events.provider.
func NewPublisher(v *viper.Viper, logger *slog.Logger) (eventstream.Publisher, error) {
	switch provider := v.GetString("events.provider"); provider {
	case "", config.EventsProviderNop:
		return nop.NewPublisher(), nil

	case config.EventsProviderKafka:
		cfg := kafka.Config{
			Brokers: v.GetStringSlice("events.brokers"),
			Topic:   v.GetString("events.topic"),
		}
		publisher, err := kafka.NewPublisher(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		logger.Info("publishing record events to kafka",
			"brokers", cfg.Brokers,
			"topic", cfg.Topic,
		)
		return publisher, nil

	default:
		return nil, fmt.Errorf("unknown events provider: %q (available: nop, kafka)", provider)
	}
}
