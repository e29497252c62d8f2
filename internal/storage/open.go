package storage

import (
	"context"
	"fmt"
	"log/slog"

	"mushaf/internal/logging"
)

// Open connects to the configured backend.
func Open(ctx context.Context, b Backend) (KV, error) {
	log := logging.Logger()
	switch b.Driver {
	case "", "sqlite":
		log.Info("opening key-value store", slog.String("driver", "sqlite"), slog.String("path", b.Path))
		return openSQL(New(b.Path))
	case "postgres":
		dsn := b.URI
		if dsn == "" {
			dsn = buildPostgresDSN(b)
		}
		log.Info("opening key-value store", slog.String("driver", "postgres"), slog.String("host", b.Host))
		return openSQL(NewSQL("postgres", dsn))
	case "mysql":
		dsn := b.URI
		if dsn == "" {
			dsn = buildMySQLDSN(b)
		}
		log.Info("opening key-value store", slog.String("driver", "mysql"), slog.String("host", b.Host))
		return openSQL(NewSQL("mysql", dsn))
	case "mongodb":
		uri := b.URI
		if uri == "" {
			uri = buildMongoURI(b)
		}
		log.Info("opening key-value store", slog.String("driver", "mongodb"), slog.String("database", b.Database))
		kv, err := NewMongo(ctx, uri, b.Database)
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, b.Driver)
	}
}

// openSQL avoids returning a typed nil inside a non-nil KV.
func openSQL(db *DB, err error) (KV, error) {
	if err != nil {
		return nil, err
	}
	return db, nil
}
