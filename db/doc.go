// Package db provides the command engine for TableDB.
//
// The Engine type is the main entry point for executing commands. It parses
// a command line, runs it against an op.Database and returns a result.
//
// # Engine Usage
//
//	engine := db.NewEngine(op.NewDatabase("main"), identity)
//	engine.Execute("CREATE payments")
//	engine.Execute("ADDCOL payments fee MONEY_INVL 0 1,000")
//	engine.Execute("INSERT payments 12.50")
//	result, err := engine.Execute("SELECT payments fee '>' 10.00")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result.Display()
//
// Tables and columns may be referenced by index or by name; rows by index.
//
// # Result Types
//
// There are two result types:
//   - QueryResult: Returned by TABLES, DESCRIBE and SELECT
//   - CommitResult: Returned by every command that changes the database
//
// CommitResult also reports stale cells: values that no longer validate after
// RETYPE changed their column's type.
//
// # Import and Export
//
// IMPORT and EXPORT move rows as CSV. Plain and file:// paths resolve inside
// the engine's Filesystem, http(s):// URLs are read-only and s3:// objects use
// the engine's S3Config.
package db
