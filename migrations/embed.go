// Package migrations embeds the SQL migration files into the binary so the
// controller can migrate its database without the files being present on
// the filesystem.
package migrations

import "embed"

//go:embed *.sql
var files embed.FS

// Files returns the embedded migration filesystem, with the .sql files at
// its root, ready to pass to database.Migrate.
func Files() embed.FS {
	return files
}
