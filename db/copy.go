package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nickyhof/TableDB/core"
)

func (engine *Engine) executeExport(ctx context.Context, tableRef, target string) (CommitResult, error) {
	startTime := time.Now()

	var table *core.Table
	err := engine.View(tableRef, func(live *core.Table) error {
		table = live.Copy()
		return nil
	})
	if err != nil {
		return CommitResult{}, err
	}

	w, err := openRemoteWriter(ctx, engine.Filesystem, target, engine.S3)
	if err != nil {
		return CommitResult{}, fmt.Errorf("export %s: %w", target, err)
	}
	written, err := writeCSV(w, table)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return CommitResult{}, fmt.Errorf("export %s: %w", target, err)
	}

	return engine.commit(startTime, CommitResult{RecordsWritten: written, ExecutionOps: written}), nil
}

func (engine *Engine) executeImport(ctx context.Context, tableRef, source string) (CommitResult, error) {
	startTime := time.Now()

	if _, err := engine.LookupTable(tableRef); err != nil {
		return CommitResult{}, err
	}

	r, err := openRemoteReader(ctx, engine.Filesystem, source, engine.S3)
	if err != nil {
		return CommitResult{}, fmt.Errorf("import %s: %w", source, err)
	}
	defer r.Close()

	header, records, err := readCSV(r)
	if err != nil {
		return CommitResult{}, fmt.Errorf("import %s: %w", source, err)
	}

	err = engine.Update(tableRef, func(table *core.Table) error {
		rows, err := mapRecords(table, header, records)
		if err != nil {
			return err
		}
		return table.AddRows(rows)
	})
	if err != nil {
		return CommitResult{}, fmt.Errorf("import %s: %w", source, err)
	}

	return engine.commit(startTime, CommitResult{RecordsWritten: len(records), ExecutionOps: len(records)}), nil
}

// writeCSV writes a header of column names followed by every row.
func writeCSV(w io.Writer, table *core.Table) (int, error) {
	cw := csv.NewWriter(w)

	header := make([]string, table.Width())
	for i, column := range table.Columns() {
		header[i] = column.Name
	}
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	rows := table.Rows()
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(rows), cw.Error()
}

// readCSV returns the header line and every record after it. An empty
// source yields no header.
func readCSV(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return header, records, nil
}

// mapRecords places each record onto the table's columns using header.
// Header names must be existing columns; columns missing from the header
// are left empty.
func mapRecords(table *core.Table, header []string, records [][]string) ([]core.Row, error) {
	positions := make([]int, len(header))
	seen := make(map[int]bool, len(header))
	for i, name := range header {
		index := table.ColumnIndex(name)
		if index == -1 {
			return nil, fmt.Errorf("column %s does not exist in %s: %w", name, table.Name(), core.ErrInvalidArgument)
		}
		if seen[index] {
			return nil, fmt.Errorf("column %s appears twice in header: %w", name, core.ErrInvalidArgument)
		}
		seen[index] = true
		positions[i] = index
	}

	rows := make([]core.Row, len(records))
	for r, record := range records {
		row := make(core.Row, table.Width())
		for i, value := range record {
			row[positions[i]] = value
		}
		rows[r] = row
	}
	return rows, nil
}
