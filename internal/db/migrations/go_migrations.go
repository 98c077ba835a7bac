// Package migrations contains dialect-aware Go database migrations that cannot
// be expressed as a single cross-database SQL statement.
package migrations

// dialect is set by the parent db package before migrations are applied.
var dialect string

// SetDialect configures the SQL dialect for Go migrations.
// Must be called before goose.Up. Valid values: "sqlite3", "postgres", "mysql".
func SetDialect(d string) {
	dialect = d
}

// columnTypes are the per-dialect spellings used by the schema migrations.
type columnTypes struct {
	ID     string // uuid primary and foreign keys
	Short  string // indexed strings (usernames, hashes, keys)
	Text   string // unbounded strings
	Bool   string
	Time   string
	BigInt string
}

func typesFor(d string) columnTypes {
	switch d {
	case "postgres":
		return columnTypes{ID: "TEXT", Short: "TEXT", Text: "TEXT", Bool: "BOOLEAN", Time: "TIMESTAMPTZ", BigInt: "BIGINT"}
	case "mysql":
		return columnTypes{ID: "VARCHAR(36)", Short: "VARCHAR(255)", Text: "TEXT", Bool: "BOOLEAN", Time: "DATETIME(6)", BigInt: "BIGINT"}
	default: // sqlite3
		return columnTypes{ID: "TEXT", Short: "TEXT", Text: "TEXT", Bool: "BOOLEAN", Time: "DATETIME", BigInt: "INTEGER"}
	}
}
