package core

import (
	"strconv"
	"strings"
)

// DeleteDuplicateRows removes every row whose value sequence already appeared
// earlier in the table, keeping the first occurrence and the order of the
// survivors. It returns the number of rows removed.
func DeleteDuplicateRows(t *Table) int {
	seen := make(map[string]struct{}, len(t.rows))
	kept := t.rows[:0]
	for _, row := range t.rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}
	removed := len(t.rows) - len(kept)
	clear(t.rows[len(kept):])
	t.rows = kept
	return removed
}

// rowKey length-prefixes every value so distinct rows never share a key.
func rowKey(row Row) string {
	var b strings.Builder
	for _, value := range row {
		b.WriteString(strconv.Itoa(len(value)))
		b.WriteByte(':')
		b.WriteString(value)
	}
	return b.String()
}
