package db

import (
	"fmt"
	"io"
	"os"
	"strings"
)

type ResultType int

const (
	QueryResultType ResultType = iota
	CommitResultType
)

type Result interface {
	Type() ResultType
	Display()
	Render(w io.Writer)
}

type QueryResult struct {
	Columns          []string
	Data             [][]string
	RecordsRead      int
	ExecutionTimeSec float64
	ExecutionOps     int
}

type CommitResult struct {
	Author           string
	TablesCreated    int
	TablesDeleted    int
	ColumnsAdded     int
	ColumnsDeleted   int
	ColumnsAltered   int
	RecordsWritten   int
	RecordsDeleted   int
	StaleCells       int
	ExecutionTimeSec float64
	ExecutionOps     int
}

func (result QueryResult) Type() ResultType {
	return QueryResultType
}

func (result CommitResult) Type() ResultType {
	return CommitResultType
}

// formatDuration formats a duration in human-readable form
func formatDuration(secs float64) string {
	if secs < 0.001 {
		return "<1ms"
	} else if secs < 1 {
		ms := secs * 1000
		if ms < 10 {
			return fmt.Sprintf("%.1fms", ms)
		}
		return fmt.Sprintf("%dms", int(ms))
	} else if secs < 60 {
		if secs < 10 {
			return fmt.Sprintf("%.1fs", secs)
		}
		return fmt.Sprintf("%ds", int(secs))
	}
	mins := int(secs / 60)
	remainSecs := int(secs) % 60
	if remainSecs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm%ds", mins, remainSecs)
}

// formatThroughput renders ops/sec as ", 1.2K ops/s", or "" when unknown.
func formatThroughput(ops int, secs float64) string {
	if secs <= 0 || ops <= 0 {
		return ""
	}
	rate := float64(ops) / secs
	switch {
	case rate >= 1000000:
		return fmt.Sprintf(", %.1fM ops/s", rate/1000000)
	case rate >= 1000:
		return fmt.Sprintf(", %.1fK ops/s", rate/1000)
	default:
		return fmt.Sprintf(", %.0f ops/s", rate)
	}
}

func (result QueryResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result CommitResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result QueryResult) Display() {
	result.Render(os.Stdout)
}

func (result QueryResult) Render(w io.Writer) {
	if len(result.Data) > 0 {
		data := NewTable(w)
		data.Header(result.Columns)
		data.Bulk(result.Data)
		data.Render()
	}

	fmt.Fprintf(w, "%d rows (%s%s)\n", result.RecordsRead, result.ExecutionTime(),
		formatThroughput(result.ExecutionOps, result.ExecutionTimeSec))
}

func (result CommitResult) Display() {
	result.Render(os.Stdout)
}

// Summary lists the non-zero counters, e.g. "1 table(s) created, 2 record(s) written".
func (result CommitResult) Summary() string {
	var parts []string

	counters := []struct {
		n    int
		what string
	}{
		{result.TablesCreated, "table(s) created"},
		{result.TablesDeleted, "table(s) deleted"},
		{result.ColumnsAdded, "column(s) added"},
		{result.ColumnsDeleted, "column(s) deleted"},
		{result.ColumnsAltered, "column(s) altered"},
		{result.RecordsWritten, "record(s) written"},
		{result.RecordsDeleted, "record(s) deleted"},
		{result.StaleCells, "stale cell(s) no longer valid"},
	}
	for _, c := range counters {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, c.what))
		}
	}
	return strings.Join(parts, ", ")
}

func (result CommitResult) Render(w io.Writer) {
	throughput := formatThroughput(result.ExecutionOps, result.ExecutionTimeSec)

	summary := result.Summary()
	if summary == "" {
		fmt.Fprintf(w, "OK (%s%s)\n", result.ExecutionTime(), throughput)
	} else {
		fmt.Fprintf(w, "%s (%s%s)\n", summary, result.ExecutionTime(), throughput)
	}
}
