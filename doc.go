// Package TableDB provides an in-memory store of typed tables.
//
// A database holds named tables. Every table has an ordered list of typed
// columns and an ordered list of rows of text cells. Cells are validated
// against their column type when they are written, and rows can be filtered
// with comparison operators that understand each type.
//
// # Quick Start
//
//	db := TableDB.Open(op.NewDatabase("main"))
//	engine := db.Engine(core.Identity{Name: "App", Email: "app@example.com"})
//
//	engine.Execute("CREATE accounts")
//	engine.Execute("ADDCOL accounts id INT")
//	engine.Execute("ADDCOL accounts balance MONEY")
//	engine.Execute("INSERT accounts 1 '1,250.00'")
//
//	result, _ := engine.Execute("SELECT accounts balance > 1000.00")
//	result.Display()
//
// # Column Types
//
//   - INT: a signed 64-bit integer
//   - REAL: a floating point number
//   - STRING: any text
//   - CHAR: exactly one character
//   - MONEY: a non-negative amount below 10,000,000,000,000 with two decimals
//   - MONEY_INVL: a money amount within an inclusive [min, max] range
//
// # Commands
//
// TABLES, CREATE, DROP, DESCRIBE, CLONE, ADDCOL, RETYPE, RENAME, DELCOL,
// INSERT, DELETE, SET, SELECT, DEDUP, IMPORT, EXPORT and SAMPLE. See
// db.Usage for the arguments of each.
package TableDB
