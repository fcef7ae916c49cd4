package core

import "slices"

// Row holds raw cell values aligned positionally to a table's columns.
type Row []string

func (r Row) Clone() Row {
	if r == nil {
		return Row{}
	}
	return slices.Clone(r)
}

func (r Row) Equal(other Row) bool {
	return slices.Equal(r, other)
}
