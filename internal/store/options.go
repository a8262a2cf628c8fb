package store

import "strings"

// Opts holds configuration for store constructors.
type Opts struct {
	// DSN is the backend location: a JSON file path, an SQLite database file
	// path, or a PostgreSQL connection string.
	DSN string
}

// Option configures store construction.
type Option func(*Opts)

// WithJSONPath configures the flat JSON file path for the JSON store.
func WithJSONPath(path string) Option {
	return func(o *Opts) { o.DSN = path }
}

// WithSQLiteDSN configures the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN configures the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres", "sqlite" or "json" so callers
// can pick the matching backend without a separate driver flag.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	if strings.HasSuffix(dsn, ".db") || strings.HasSuffix(dsn, ".sqlite") || strings.HasSuffix(dsn, ".sqlite3") {
		return "sqlite"
	}
	return "json"
}
