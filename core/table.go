package core

import (
	"fmt"
	"slices"
	"strings"
)

// Table owns an ordered schema and the rows aligned to it. Every exported
// method leaves each row exactly as wide as the schema.
type Table struct {
	name    string
	columns []Column
	rows    []Row
}

func NewTable(name string) (*Table, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("table name is empty: %w", ErrInvalidArgument)
	}
	return &Table{name: name}, nil
}

func (t *Table) Name() string { return t.name }

// Width is the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Len is the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns a copy of the schema.
func (t *Table) Columns() []Column {
	columns := make([]Column, len(t.columns))
	for i, column := range t.columns {
		columns[i] = column.Clone()
	}
	return columns
}

func (t *Table) Column(index int) (Column, error) {
	if index < 0 || index >= len(t.columns) {
		return Column{}, fmt.Errorf("column %d of %s: %w", index, t.name, ErrIndexOutOfRange)
	}
	return t.columns[index].Clone(), nil
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	return slices.IndexFunc(t.columns, func(c Column) bool { return c.Name == name })
}

// Rows returns a copy of every row.
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.rows))
	for i, row := range t.rows {
		rows[i] = row.Clone()
	}
	return rows
}

func (t *Table) Row(index int) (Row, error) {
	if index < 0 || index >= len(t.rows) {
		return nil, fmt.Errorf("row %d of %s: %w", index, t.name, ErrIndexOutOfRange)
	}
	return t.rows[index].Clone(), nil
}

// AddRow appends a trimmed copy of row, padding it with empty cells up to
// the column count. A row wider than the schema is rejected. Cells are not
// validated; see AddRows.
func (t *Table) AddRow(row Row) error {
	if len(row) > len(t.columns) {
		return fmt.Errorf("row has %d values, %s has %d columns: %w", len(row), t.name, len(t.columns), ErrInvalidArgument)
	}
	padded := make(Row, len(t.columns))
	for i, value := range row {
		padded[i] = strings.TrimSpace(value)
	}
	t.rows = append(t.rows, padded)
	return nil
}

// AddRows validates every row and then appends all of them, or returns the
// first failure and appends none.
func (t *Table) AddRows(rows []Row) error {
	for i, row := range rows {
		if err := t.ValidateRow(row); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	for _, row := range rows {
		if err := t.AddRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) DeleteRow(index int) error {
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("row %d of %s: %w", index, t.name, ErrIndexOutOfRange)
	}
	t.rows = slices.Delete(t.rows, index, index+1)
	return nil
}

// AddColumn appends column to the schema and an empty cell to every row.
// The column is rebuilt through NewColumn, so a literal whose type, name or
// interval NewColumn would refuse is refused here too.
func (t *Table) AddColumn(column Column) error {
	var bounds []string
	if column.Interval != nil {
		bounds = []string{column.Interval.Min, column.Interval.Max}
	}
	checked, err := NewColumn(column.Name, column.Type, bounds...)
	if err != nil {
		return err
	}
	if t.ColumnIndex(checked.Name) != -1 {
		return fmt.Errorf("column %s already exists in %s: %w", checked.Name, t.name, ErrInvalidArgument)
	}
	t.columns = append(t.columns, checked)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], "")
	}
	return nil
}

// DeleteColumn removes the column at index and the matching cell of every row.
func (t *Table) DeleteColumn(index int) error {
	if index < 0 || index >= len(t.columns) {
		return fmt.Errorf("column %d of %s: %w", index, t.name, ErrIndexOutOfRange)
	}
	t.columns = slices.Delete(t.columns, index, index+1)
	for i := range t.rows {
		t.rows[i] = slices.Delete(t.rows[i], index, index+1)
	}
	return nil
}

// ChangeColumnType replaces the column at index with a new column of the
// given type under the same name. Stored text is neither revalidated nor
// migrated; the indices of rows whose non-empty cell fails the new rule are
// returned so the caller can surface them.
func (t *Table) ChangeColumnType(index int, columnType ColumnType, bounds ...string) ([]int, error) {
	if index < 0 || index >= len(t.columns) {
		return nil, fmt.Errorf("column %d of %s: %w", index, t.name, ErrIndexOutOfRange)
	}
	column, err := NewColumn(t.columns[index].Name, columnType, bounds...)
	if err != nil {
		return nil, err
	}
	t.columns[index] = column
	return t.StaleCells(index), nil
}

// StaleCells returns the rows whose non-empty cell at column index fails validation.
func (t *Table) StaleCells(index int) []int {
	if index < 0 || index >= len(t.columns) {
		return nil
	}
	var stale []int
	for i, row := range t.rows {
		if row[index] != "" && !t.columns[index].Validate(row[index]) {
			stale = append(stale, i)
		}
	}
	return stale
}

func (t *Table) RenameColumn(index int, name string) error {
	if index < 0 || index >= len(t.columns) {
		return fmt.Errorf("column %d of %s: %w", index, t.name, ErrIndexOutOfRange)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("column name is empty: %w", ErrInvalidArgument)
	}
	if other := t.ColumnIndex(name); other != -1 && other != index {
		return fmt.Errorf("column %s already exists in %s: %w", name, t.name, ErrInvalidArgument)
	}
	t.columns[index].Name = name
	return nil
}

// SetCell trims value, validates it against the column and stores it.
// A value that fails validation leaves the cell unchanged.
func (t *Table) SetCell(columnIndex, rowIndex int, value string) error {
	if columnIndex < 0 || columnIndex >= len(t.columns) {
		return fmt.Errorf("column %d of %s: %w", columnIndex, t.name, ErrIndexOutOfRange)
	}
	if rowIndex < 0 || rowIndex >= len(t.rows) {
		return fmt.Errorf("row %d of %s: %w", rowIndex, t.name, ErrIndexOutOfRange)
	}
	value = strings.TrimSpace(value)
	column := t.columns[columnIndex]
	if !column.Validate(value) {
		return fmt.Errorf("%q is not a valid %s for column %s: %w", value, column.Type, column.Name, ErrValidationFailed)
	}
	t.rows[rowIndex][columnIndex] = value
	return nil
}

// ValidateRow checks every non-empty trimmed cell of row against the schema.
func (t *Table) ValidateRow(row Row) error {
	if len(row) > len(t.columns) {
		return fmt.Errorf("row has %d values, %s has %d columns: %w", len(row), t.name, len(t.columns), ErrInvalidArgument)
	}
	for i, value := range row {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if !t.columns[i].Validate(value) {
			return fmt.Errorf("%q is not a valid %s for column %s: %w", value, t.columns[i].Type, t.columns[i].Name, ErrValidationFailed)
		}
	}
	return nil
}

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	return t.CopyAs(t.name)
}

// CopyAs returns a deep copy of the table under a different name.
func (t *Table) CopyAs(name string) *Table {
	return &Table{
		name:    name,
		columns: t.Columns(),
		rows:    t.Rows(),
	}
}
