// Package database handles the optional job-history database connection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly
// configure MySQL connections based on the application's configuration. The
// database is entirely optional; when no host is configured the server runs
// without persisted job history and callers must treat a connection failure
// as a warning rather than a fatal error.
//
// # Connect
//
// The Connect function establishes a connection to the database. Connection
// timeouts are encoded into the DSN and the connection is pinged before it is
// handed back, so a misconfigured host fails fast at startup.
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema. VerifyColumns
// lets the merge job feature confirm at startup that the merge_jobs table
// carries every column its model expects.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Job history disabled", zap.Error(err))
//	}
//
//	missing, err := database.VerifyColumns(db, "merge_jobs", expectedColumns)
package database
