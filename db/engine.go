package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/nickyhof/TableDB/core"
	"github.com/nickyhof/TableDB/op"
)

// QueryContext carries per-engine execution state.
type QueryContext struct {
	Identity core.Identity
}

type Engine struct {
	*op.Database
	QueryContext

	// Filesystem resolves local IMPORT/EXPORT paths.
	Filesystem billy.Filesystem
	// S3 configures s3:// IMPORT/EXPORT targets; nil uses the default AWS chain.
	S3 *S3Config
}

func NewEngine(database *op.Database, identity core.Identity) *Engine {
	return &Engine{
		Database:     database,
		QueryContext: QueryContext{Identity: identity},
		Filesystem:   osfs.New("."),
	}
}

// WithIdentity returns an engine sharing the same database and targets but
// acting as a different identity.
func (engine *Engine) WithIdentity(identity core.Identity) *Engine {
	clone := *engine
	clone.QueryContext = QueryContext{Identity: identity}
	return &clone
}

func (engine *Engine) Execute(line string) (Result, error) {
	return engine.ExecuteContext(context.Background(), line)
}

func (engine *Engine) ExecuteContext(ctx context.Context, line string) (Result, error) {
	command, err := ParseCommand(line)
	if err != nil {
		return nil, err
	}
	return engine.ExecuteCommand(ctx, command)
}

func (engine *Engine) ExecuteCommand(ctx context.Context, command Command) (Result, error) {
	if err := command.validate(); err != nil {
		return nil, err
	}

	args := command.Args
	switch command.Verb {
	case "TABLES":
		return engine.executeTables()
	case "CREATE":
		return engine.executeCreate(args[0])
	case "DROP":
		return engine.executeDrop(args[0])
	case "DESCRIBE":
		return engine.executeDescribe(args[0])
	case "CLONE":
		return engine.executeClone(args[0], args[1])
	case "ADDCOL":
		return engine.executeAddColumn(args[0], args[1], args[2], args[3:])
	case "RETYPE":
		return engine.executeRetype(args[0], args[1], args[2], args[3:])
	case "RENAME":
		return engine.executeRename(args[0], args[1], args[2])
	case "DELCOL":
		return engine.executeDeleteColumn(args[0], args[1])
	case "INSERT":
		return engine.executeInsert(args[0], args[1:])
	case "DELETE":
		return engine.executeDelete(args[0], args[1])
	case "SET":
		return engine.executeSet(args[0], args[1], args[2], args[3])
	case "SELECT":
		return engine.executeSelect(args[0], args[1:])
	case "DEDUP":
		return engine.executeDedup(args[0])
	case "IMPORT":
		return engine.executeImport(ctx, args[0], args[1])
	case "EXPORT":
		return engine.executeExport(ctx, args[0], args[1])
	case "SAMPLE":
		return engine.executeSample()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, command.Verb)
	}
}

func (engine *Engine) commit(startTime time.Time, result CommitResult) CommitResult {
	result.Author = engine.Identity.String()
	result.ExecutionTimeSec = time.Since(startTime).Seconds()
	if result.ExecutionOps == 0 {
		result.ExecutionOps = 1
	}
	return result
}

func (engine *Engine) executeTables() (QueryResult, error) {
	startTime := time.Now()

	var data [][]string
	for i, table := range engine.Snapshots() {
		data = append(data, []string{strconv.Itoa(i), table.Name(), strconv.Itoa(table.Width()), strconv.Itoa(table.Len())})
	}

	return QueryResult{
		Columns:          []string{"Index", "Table", "Columns", "Rows"},
		Data:             data,
		RecordsRead:      len(data),
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     len(data),
	}, nil
}

func (engine *Engine) executeCreate(name string) (CommitResult, error) {
	startTime := time.Now()

	if _, err := engine.AddTable(name); err != nil {
		return CommitResult{}, err
	}
	return engine.commit(startTime, CommitResult{TablesCreated: 1}), nil
}

func (engine *Engine) executeDrop(tableRef string) (CommitResult, error) {
	startTime := time.Now()

	if err := engine.DropTable(tableRef); err != nil {
		return CommitResult{}, err
	}
	return engine.commit(startTime, CommitResult{TablesDeleted: 1}), nil
}

func (engine *Engine) executeDescribe(tableRef string) (QueryResult, error) {
	startTime := time.Now()

	var columns []core.Column
	err := engine.View(tableRef, func(table *core.Table) error {
		columns = table.Columns()
		return nil
	})
	if err != nil {
		return QueryResult{}, err
	}

	var data [][]string
	for i, column := range columns {
		lo, hi := "", ""
		if column.Interval != nil {
			lo, hi = column.Interval.Min, column.Interval.Max
		}
		data = append(data, []string{strconv.Itoa(i), column.Name, column.Type.String(), lo, hi})
	}

	return QueryResult{
		Columns:          []string{"Index", "Column", "Type", "Min", "Max"},
		Data:             data,
		RecordsRead:      len(data),
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     1,
	}, nil
}

func (engine *Engine) executeClone(tableRef, newName string) (CommitResult, error) {
	startTime := time.Now()

	if _, err := engine.CloneTable(tableRef, newName); err != nil {
		return CommitResult{}, err
	}
	return engine.commit(startTime, CommitResult{TablesCreated: 1}), nil
}

func (engine *Engine) executeAddColumn(tableRef, name, typeName string, bounds []string) (CommitResult, error) {
	startTime := time.Now()

	columnType, err := core.ParseColumnType(typeName)
	if err != nil {
		return CommitResult{}, err
	}
	column, err := core.NewColumn(name, columnType, bounds...)
	if err != nil {
		return CommitResult{}, err
	}
	err = engine.Update(tableRef, func(table *core.Table) error {
		return table.AddColumn(column)
	})
	if err != nil {
		return CommitResult{}, err
	}
	return engine.commit(startTime, CommitResult{ColumnsAdded: 1}), nil
}

func (engine *Engine) executeRetype(tableRef, columnRef, typeName string, bounds []string) (CommitResult, error) {
	startTime := time.Now()

	columnType, err := core.ParseColumnType(typeName)
	if err != nil {
		return CommitResult{}, err
	}
	var stale []int
	err = engine.updateColumn(tableRef, columnRef, func(table *core.Table, columnIndex int) error {
		var err error
		stale, err = table.ChangeColumnType(columnIndex, columnType, bounds...)
		return err
	})
	if err != nil {
		return CommitResult{}, err
	}
	return engine.commit(startTime, CommitResult{ColumnsAltered: 1, StaleCells: len(stale)}), nil
}

func (engine *Engine) executeRename(tableRef, columnRef, newName string) (CommitResult, error) {
	startTime := time.Now()

	err := engine.updateColumn(tableRef, columnRef, func(table *core.Table, columnIndex int) error {
		return table.RenameColumn(columnIndex, newName)
	})
	if err != nil {
		return CommitResult{}, err
	}
	return engine.commit(startTime, CommitResult{ColumnsAltered: 1}), nil
}

func (engine *Engine) executeDeleteColumn(tableRef, columnRef string) (CommitResult, error) {
	startTime := time.Now()

	err := engine.updateColumn(tableRef, columnRef, func(table *core.Table, columnIndex int) error {
		return table.DeleteColumn(columnIndex)
	})
	if err != nil {
		return CommitResult{}, err
	}
	return engine.commit(startTime, CommitResult{ColumnsDeleted: 1}), nil
}

func (engine *Engine) executeInsert(tableRef string, values []string) (CommitResult, error) {
	startTime := time.Now()

	err := engine.Update(tableRef, func(table *core.Table) error {
		return table.AddRows([]core.Row{values})
	})
	if err != nil {
		return CommitResult{}, err
	}
	return engine.commit(startTime, CommitResult{RecordsWritten: 1}), nil
}

func (engine *Engine) executeDelete(tableRef, rowRef string) (CommitResult, error) {
	startTime := time.Now()

	rowIndex, err := parseRowIndex(rowRef)
	if err != nil {
		return CommitResult{}, err
	}
	err = engine.Update(tableRef, func(table *core.Table) error {
		return table.DeleteRow(rowIndex)
	})
	if err != nil {
		return CommitResult{}, err
	}
	return engine.commit(startTime, CommitResult{RecordsDeleted: 1}), nil
}

func (engine *Engine) executeSet(tableRef, columnRef, rowRef, value string) (CommitResult, error) {
	startTime := time.Now()

	rowIndex, err := parseRowIndex(rowRef)
	if err != nil {
		return CommitResult{}, err
	}
	err = engine.updateColumn(tableRef, columnRef, func(table *core.Table, columnIndex int) error {
		return table.SetCell(columnIndex, rowIndex, value)
	})
	if err != nil {
		return CommitResult{}, err
	}
	return engine.commit(startTime, CommitResult{RecordsWritten: 1}), nil
}

func (engine *Engine) executeSelect(tableRef string, filter []string) (QueryResult, error) {
	startTime := time.Now()

	var operator core.Operator
	switch len(filter) {
	case 0:
	case 3:
		var err error
		if operator, err = core.ParseOperator(filter[1]); err != nil {
			return QueryResult{}, err
		}
	default:
		usage, _, _ := Usage("SELECT")
		return QueryResult{}, fmt.Errorf("usage: %s: %w", usage, core.ErrInvalidArgument)
	}

	var view core.View
	err := engine.View(tableRef, func(table *core.Table) error {
		var cond *core.Condition
		if len(filter) == 3 {
			columnIndex, err := op.ResolveColumn(table, filter[0])
			if err != nil {
				return err
			}
			cond = &core.Condition{Column: columnIndex, Operator: operator, Value: filter[2]}
		}
		var err error
		view, err = table.Select(cond)
		return err
	})
	if err != nil {
		return QueryResult{}, err
	}

	columns := []string{"#"}
	for _, column := range view.Columns {
		columns = append(columns, column.Name)
	}
	data := make([][]string, len(view.Rows))
	for i, row := range view.Rows {
		data[i] = append([]string{strconv.Itoa(view.Indices[i])}, row...)
	}

	return QueryResult{
		Columns:          columns,
		Data:             data,
		RecordsRead:      len(data),
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     len(data),
	}, nil
}

func (engine *Engine) executeDedup(tableRef string) (CommitResult, error) {
	startTime := time.Now()

	removed := 0
	err := engine.Update(tableRef, func(table *core.Table) error {
		removed = core.DeleteDuplicateRows(table)
		return nil
	})
	if err != nil {
		return CommitResult{}, err
	}
	return engine.commit(startTime, CommitResult{RecordsDeleted: removed}), nil
}

func (engine *Engine) executeSample() (CommitResult, error) {
	startTime := time.Now()

	table, err := op.NewSampleTable()
	if err != nil {
		return CommitResult{}, err
	}
	result := CommitResult{
		TablesCreated:  1,
		ColumnsAdded:   table.Width(),
		RecordsWritten: table.Len(),
	}
	if _, err := engine.AttachTable(table); err != nil {
		return CommitResult{}, err
	}
	return engine.commit(startTime, result), nil
}

// updateColumn resolves both references and runs fn under one write lock.
func (engine *Engine) updateColumn(tableRef, columnRef string, fn func(table *core.Table, columnIndex int) error) error {
	return engine.Update(tableRef, func(table *core.Table) error {
		columnIndex, err := op.ResolveColumn(table, columnRef)
		if err != nil {
			return err
		}
		return fn(table, columnIndex)
	})
}

func parseRowIndex(ref string) (int, error) {
	index, err := strconv.Atoi(ref)
	if err != nil {
		return -1, fmt.Errorf("row index %q is not a number: %w", ref, core.ErrInvalidArgument)
	}
	return index, nil
}
