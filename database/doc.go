// Package database connects to the file metadata backends.
//
// # Supported Backends
//
//   - PostgreSQL: pgx connection pool, for production deployments
//   - SQLite: modernc.org/sqlite, for development and single node deployments
//
// # Usage
//
//	db, err := database.Open(ctx, database.Config{
//	    Type:   "sqlite",
//	    DSN:    "filekeep.db",
//	    Tables: filekeep.Tables{Files: "files"},
//	}, true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	repo := db.GetRepo()
//
// Open pings the backend, runs migrations when asked to, and validates the
// schema. Connect only opens the connection.
package database
