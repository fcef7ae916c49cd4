// Package op provides the table-indexed operations of a TableDB database.
//
// The op package sits between the command engine (db/) and the typed tables
// (core/). A Database is an explicitly owned store object: it is created by
// the caller, passed by reference and guards every table behind one lock.
//
// # Tables
//
//	database := op.NewDatabase("shop")
//	orders, _ := database.AddTable("orders")
//	database.CopyTable(orders, "orders_backup")
//	database.DeleteTable(1)
//
// # Schema Evolution
//
//	database.AddColumn(orders, "id", core.IntType)                    // widens every row
//	database.AddColumn(orders, "fee", core.MoneyIntervalType, "0", "100")
//	stale, _ := database.ChangeColumnType(orders, 1, core.MoneyType)  // bounds dropped
//	database.DeleteColumn(orders, 0)                                  // narrows every row
//
// ChangeColumnType never migrates stored text; it returns the rows whose
// value no longer validates so callers can report them.
//
// # Rows
//
//	database.AddRow(orders, core.Row{"1", "12.50"})   // validated, padded
//	database.UpdateCellValue(orders, 1, 0, "13.00")    // validated
//	view, _ := database.Select(orders, &core.Condition{Column: 1, Operator: core.GreaterThan, Value: "10.00"})
//	removed, _ := database.DeleteDuplicateRows(orders)
//
// Every index is checked; out-of-range indices return core.ErrIndexOutOfRange
// and leave the database untouched.
//
// # References
//
// An index is only stable until the next DeleteTable. Callers that share a
// Database between sessions address tables by reference instead, and the
// reference is resolved inside the same critical section as the change:
//
//	database.DropTable("orders_backup")
//	database.Update("orders", func(table *core.Table) error {
//		column, err := op.ResolveColumn(table, "fee")
//		if err != nil {
//			return err
//		}
//		return table.SetCell(column, 0, "15.00")
//	})
package op
