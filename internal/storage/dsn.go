package storage

import "fmt"

// Backend describes where the key-value data lives.
type Backend struct {
	Driver   string // sqlite (default), postgres, mysql, mongodb
	Path     string // sqlite file
	URI      string // full DSN or mongodb:// URI; overrides the fields below
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

// buildPostgresDSN constructs a Postgres connection string.
func buildPostgresDSN(b Backend) string {
	port := b.Port
	if port == 0 {
		port = 5432
	}
	sslMode := b.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		b.Host, port, b.Username, b.Password, b.Database, sslMode,
	)
}

// buildMySQLDSN constructs a MySQL DSN.
func buildMySQLDSN(b Backend) string {
	port := b.Port
	if port == 0 {
		port = 3306
	}
	// Format: user:password@tcp(host:port)/dbname?parseTime=true
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		b.Username, b.Password, b.Host, port, b.Database,
	)
	if b.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}

// buildMongoURI constructs a MongoDB URI.
func buildMongoURI(b Backend) string {
	port := b.Port
	if port == 0 {
		port = 27017
	}
	if b.Username != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", b.Username, b.Password, b.Host, port)
	}
	return fmt.Sprintf("mongodb://%s:%d", b.Host, port)
}
