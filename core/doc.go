// Package core provides the typed tables at the heart of TableDB.
//
// The package defines Column, Row and Table, the per-type validation rules,
// the comparison evaluator used for filtering and duplicate-row elimination.
//
// # Column Types
//
// Supported column types:
//   - IntType: base-10 integers
//   - RealType: floating point numbers
//   - StringType: any text
//   - CharType: exactly one character
//   - MoneyType: non-negative amounts with two decimals, commas allowed ("1,250.00")
//   - MoneyIntervalType: money bounded by a per-column [min, max]
//
// # Table Definition
//
//	table, _ := core.NewTable("payments")
//	id, _ := core.NewColumn("id", core.IntType)
//	fee, _ := core.NewMoneyIntervalColumn("fee", "0", "1000")
//	table.AddColumn(id)
//	table.AddColumn(fee)
//	table.AddRows([]core.Row{{"1", "12.50"}, {"2", " 7.25 "}})
//
// Cells are always stored as text, trimmed of surrounding whitespace on
// every write path. AddColumn widens every existing row and
// DeleteColumn narrows it, so each row stays exactly as wide as the schema.
//
// # Filtering
//
//	core.Evaluate("10", core.GreaterThan, "5", id) // true
//	matches, _ := table.Filter(core.Condition{Column: 1, Operator: core.LessThan, Value: "20.00"})
package core
