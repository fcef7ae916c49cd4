package op

import "github.com/nickyhof/TableDB/core"

// SampleTableName is the name of the table created by PopulateSample.
const SampleTableName = "testTable"

// NewSampleTable builds a detached table with one column of every type and two rows.
func NewSampleTable() (*core.Table, error) {
	table, err := core.NewTable(SampleTableName)
	if err != nil {
		return nil, err
	}

	columns := []struct {
		name       string
		columnType core.ColumnType
		bounds     []string
	}{
		{"column1", core.IntType, nil},
		{"column2", core.RealType, nil},
		{"column3", core.StringType, nil},
		{"column4", core.CharType, nil},
		{"column5", core.MoneyType, nil},
		{"column6", core.MoneyIntervalType, []string{"0", "1000"}},
	}
	for _, c := range columns {
		column, err := core.NewColumn(c.name, c.columnType, c.bounds...)
		if err != nil {
			return nil, err
		}
		if err := table.AddColumn(column); err != nil {
			return nil, err
		}
	}

	err = table.AddRows([]core.Row{
		{"10", "10.0", "10", "1", "10.00", "10.00"},
		{"15", "15.0", "15", "3", "15.00", "15.00"},
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// PopulateSample attaches the sample table to d in a single step and
// returns its index.
func PopulateSample(d *Database) (int, error) {
	table, err := NewSampleTable()
	if err != nil {
		return -1, err
	}
	return d.AttachTable(table)
}
