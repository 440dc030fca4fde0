// Package database provides SQLite connectivity for Gray Logic Designer.
//
// It opens the design database in WAL mode with foreign keys enforced and a
// single writer connection, applies the embedded schema migrations, and offers
// WithTx for multi-statement writes that must commit or roll back together.
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with a
// matching .down.sql, and are registered by the migrations package.
package database
