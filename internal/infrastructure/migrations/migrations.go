// Package migrations embeds the schema for every supported store.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres returns the PostgreSQL migration set.
func Postgres() (fs.FS, error) {
	return fs.Sub(files, "postgres")
}

// SQLite returns the SQLite migration set.
func SQLite() (fs.FS, error) {
	return fs.Sub(files, "sqlite")
}
