// Package database provides SQLite connectivity for the coop controller.
//
// The database holds the door event log and the schema migration ledger.
// It is opened once at startup, migrated, and shared for the lifetime of
// the process.
//
// This package manages:
//   - Connection setup with WAL mode and a busy timeout
//   - Schema migrations applied from an embedded filesystem
//   - Health checks and lifecycle management
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.Files()); err != nil {
//	    log.Fatal(err)
//	}
//
// Migrations are additive-only: new columns must be nullable or carry a
// default, and columns are never dropped or renamed. Each migration file
// has both .up.sql and .down.sql.
package database
