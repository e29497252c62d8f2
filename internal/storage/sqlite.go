package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	driver     string
	migrations []string
	get        string
	upsert     string
	del        string
	list       string
}

var sqliteDialect = dialect{
	driver: "sqlite",
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS kv (
			id TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	get: `SELECT value FROM kv WHERE id = ?`,
	upsert: `INSERT INTO kv (id, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	del:  `DELETE FROM kv WHERE id = ?`,
	list: `SELECT id FROM kv WHERE id LIKE ? ORDER BY id ASC`,
}

var postgresDialect = dialect{
	driver: "postgres",
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS kv (
			id TEXT PRIMARY KEY,
			value BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	get: `SELECT value FROM kv WHERE id = $1`,
	upsert: `INSERT INTO kv (id, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	del:  `DELETE FROM kv WHERE id = $1`,
	list: `SELECT id FROM kv WHERE id LIKE $1 ORDER BY id ASC`,
}

var mysqlDialect = dialect{
	driver: "mysql",
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS kv (
			id VARCHAR(255) PRIMARY KEY,
			value LONGBLOB NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	get: `SELECT value FROM kv WHERE id = ?`,
	upsert: `INSERT INTO kv (id, value, updated_at) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)`,
	del:  `DELETE FROM kv WHERE id = ?`,
	list: `SELECT id FROM kv WHERE id LIKE ? ORDER BY id ASC`,
}

// DB is a key-value table in a SQL database.
type DB struct {
	conn    *sql.DB
	dialect dialect
}

// New opens (or creates) the SQLite file at dbPath.
func New(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer
	conn.SetMaxOpenConns(1)
	return newDB(conn, sqliteDialect)
}

// NewSQL opens a Postgres or MySQL database with the given DSN.
func NewSQL(driver, dsn string) (*DB, error) {
	var d dialect
	switch driver {
	case "postgres":
		d = postgresDialect
	case "mysql":
		d = mysqlDialect
	case "sqlite":
		d = sqliteDialect
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
	conn, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return newDB(conn, d)
}

func newDB(conn *sql.DB, d dialect) (*DB, error) {
	db := &DB{conn: conn, dialect: d}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	for _, m := range db.dialect.migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %.40s: %w", m, err)
		}
	}
	return nil
}

// Get returns the value stored under key, or nil when there is none.
func (db *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := db.conn.QueryRowContext(ctx, db.dialect.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (db *DB) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	if _, err := db.conn.ExecContext(ctx, db.dialect.upsert, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (db *DB) Delete(ctx context.Context, key string) error {
	if _, err := db.conn.ExecContext(ctx, db.dialect.del, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys lists the keys starting with prefix.
func (db *DB) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, db.dialect.list, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
