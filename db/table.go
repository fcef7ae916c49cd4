package db

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// TextTable renders rows as a boxed, left-aligned text grid.
type TextTable struct {
	writer  io.Writer
	headers []string
	rows    [][]string
}

func NewTable(w io.Writer) *TextTable {
	return &TextTable{
		writer: w,
		rows:   make([][]string, 0),
	}
}

func (t *TextTable) Header(headers []string) {
	t.headers = headers
}

func (t *TextTable) Row(row []string) {
	t.rows = append(t.rows, row)
}

func (t *TextTable) Bulk(rows [][]string) {
	t.rows = append(t.rows, rows...)
}

func (t *TextTable) Render() {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return
	}

	widths := t.widths()
	separator := separatorLine(widths)

	fmt.Fprintln(t.writer, separator)
	if len(t.headers) > 0 {
		fmt.Fprintln(t.writer, formatLine(t.headers, widths))
		fmt.Fprintln(t.writer, separator)
	}
	for _, row := range t.rows {
		fmt.Fprintln(t.writer, formatLine(row, widths))
	}
	fmt.Fprintln(t.writer, separator)
}

// widths measures every column in runes; empty columns are one wide.
func (t *TextTable) widths() []int {
	count := len(t.headers)
	for _, row := range t.rows {
		count = max(count, len(row))
	}

	widths := make([]int, count)
	for i, h := range t.headers {
		widths[i] = max(widths[i], utf8.RuneCountInString(h))
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}
	for i := range widths {
		widths[i] = max(widths[i], 1)
	}
	return widths
}

func separatorLine(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	return "+" + strings.Join(parts, "+") + "+"
}

func formatLine(row []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		parts[i] = " " + cell + strings.Repeat(" ", w-utf8.RuneCountInString(cell)+1)
	}
	return "|" + strings.Join(parts, "|") + "|"
}
