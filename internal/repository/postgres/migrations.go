package postgres

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.up.sql
var migrations embed.FS

// Migrations returns the schema files for database.RunMigrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}
