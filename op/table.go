package op

import (
	"github.com/nickyhof/TableDB/core"
)

// AddColumn appends a new column to the table and an empty cell to each of its rows.
func (d *Database) AddColumn(tableIndex int, name string, columnType core.ColumnType, bounds ...string) error {
	column, err := core.NewColumn(name, columnType, bounds...)
	if err != nil {
		return err
	}
	return d.update(tableIndex, func(table *core.Table) error {
		return table.AddColumn(column)
	})
}

// ChangeColumnType replaces a column with a freshly built one of a new type.
// Bounds are never carried over; a MONEY_INVL target needs them again. The
// returned rows hold values that no longer validate.
func (d *Database) ChangeColumnType(tableIndex, columnIndex int, columnType core.ColumnType, bounds ...string) ([]int, error) {
	var stale []int
	err := d.update(tableIndex, func(table *core.Table) error {
		var err error
		stale, err = table.ChangeColumnType(columnIndex, columnType, bounds...)
		return err
	})
	return stale, err
}

func (d *Database) RenameColumn(tableIndex, columnIndex int, name string) error {
	return d.update(tableIndex, func(table *core.Table) error {
		return table.RenameColumn(columnIndex, name)
	})
}

func (d *Database) DeleteColumn(tableIndex, columnIndex int) error {
	return d.update(tableIndex, func(table *core.Table) error {
		return table.DeleteColumn(columnIndex)
	})
}

// AddRow validates the non-empty cells of row, pads it to the table width
// and appends it. It returns the index of the new row.
func (d *Database) AddRow(tableIndex int, row core.Row) (int, error) {
	written, err := d.AddRows(tableIndex, []core.Row{row})
	if err != nil {
		return -1, err
	}
	return written - 1, nil
}

// AddRows appends every row or none of them. It returns the new row count.
func (d *Database) AddRows(tableIndex int, rows []core.Row) (int, error) {
	count := -1
	err := d.update(tableIndex, func(table *core.Table) error {
		if err := table.AddRows(rows); err != nil {
			return err
		}
		count = table.Len()
		return nil
	})
	return count, err
}

func (d *Database) DeleteRow(tableIndex, rowIndex int) error {
	return d.update(tableIndex, func(table *core.Table) error {
		return table.DeleteRow(rowIndex)
	})
}

// UpdateCellValue validates value against the column and stores it.
func (d *Database) UpdateCellValue(tableIndex, columnIndex, rowIndex int, value string) error {
	return d.update(tableIndex, func(table *core.Table) error {
		return table.SetCell(columnIndex, rowIndex, value)
	})
}

// EvaluateCondition checks a single cell against "op value".
func (d *Database) EvaluateCondition(tableIndex, columnIndex, rowIndex int, operator core.Operator, value string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	table, err := d.table(tableIndex)
	if err != nil {
		return false, err
	}
	column, err := table.Column(columnIndex)
	if err != nil {
		return false, err
	}
	row, err := table.Row(rowIndex)
	if err != nil {
		return false, err
	}
	return core.Evaluate(row[columnIndex], operator, value, column), nil
}

// Select returns the rows matching cond, or all rows when cond is nil.
func (d *Database) Select(tableIndex int, cond *core.Condition) (core.View, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	table, err := d.table(tableIndex)
	if err != nil {
		return core.View{}, err
	}
	return table.Select(cond)
}

// DeleteDuplicateRows removes repeated rows and returns how many were removed.
func (d *Database) DeleteDuplicateRows(tableIndex int) (int, error) {
	removed := 0
	err := d.update(tableIndex, func(table *core.Table) error {
		removed = core.DeleteDuplicateRows(table)
		return nil
	})
	return removed, err
}
