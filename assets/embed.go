// Package assets embeds the fallback movie catalog and the SQL migrations.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed movies.yaml sql/*.sql
var FS embed.FS

// Catalog returns the raw embedded movies.yaml.
func Catalog() ([]byte, error) {
	return FS.ReadFile("movies.yaml")
}

// Migrations returns the embedded sql/ directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	return sub
}
