// Package database provides SQLite connectivity for cecctl.
//
// The database holds the audit log of transmitted frames and sequence runs.
// Connections use WAL mode and a busy timeout; the pool is limited to one
// connection because SQLite has a single writer.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: "./data/cecctl.db", WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migrations are additive: new columns are nullable or have defaults, and
// every .up.sql file has a matching .down.sql.
package database
