package core

import "fmt"

// Condition is a single "column op value" filter.
type Condition struct {
	Column   int      `json:"column"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// View is a materialized selection over a table: copies of the matching rows
// together with their positions in the source table.
type View struct {
	Table   string   `json:"table"`
	Columns []Column `json:"columns"`
	Indices []int    `json:"indices"`
	Rows    []Row    `json:"rows"`
}

// Filter returns the indices of rows whose cell at cond.Column satisfies cond.
func (t *Table) Filter(cond Condition) ([]int, error) {
	if cond.Column < 0 || cond.Column >= len(t.columns) {
		return nil, fmt.Errorf("column %d of %s: %w", cond.Column, t.name, ErrIndexOutOfRange)
	}
	column := t.columns[cond.Column]
	var matches []int
	for i, row := range t.rows {
		if Evaluate(row[cond.Column], cond.Operator, cond.Value, column) {
			matches = append(matches, i)
		}
	}
	return matches, nil
}

// Select materializes the rows matching cond, or every row when cond is nil.
func (t *Table) Select(cond *Condition) (View, error) {
	view := View{Table: t.name, Columns: t.Columns()}
	if cond == nil {
		view.Rows = t.Rows()
		view.Indices = make([]int, len(t.rows))
		for i := range t.rows {
			view.Indices[i] = i
		}
		return view, nil
	}

	matches, err := t.Filter(*cond)
	if err != nil {
		return View{}, err
	}
	view.Indices = matches
	view.Rows = make([]Row, len(matches))
	for i, index := range matches {
		view.Rows[i] = t.rows[index].Clone()
	}
	return view, nil
}
