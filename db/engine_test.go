package db

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/util"
	"github.com/nickyhof/TableDB/core"
	"github.com/nickyhof/TableDB/op"
)

func setupTestEngine(t *testing.T) *Engine {
	t.Helper()
	identity := core.Identity{Name: "test", Email: "test@test.com"}
	engine := NewEngine(op.NewDatabase("testdb"), identity)
	engine.Filesystem = memfs.New()

	for _, line := range []string{
		"CREATE users",
		"ADDCOL users id INT",
		"ADDCOL users name STRING",
		"ADDCOL users age INT",
	} {
		if _, err := engine.Execute(line); err != nil {
			t.Fatalf("%s failed: %v", line, err)
		}
	}
	return engine
}

func insertTestData(t *testing.T, engine *Engine) {
	t.Helper()
	for _, line := range []string{
		"INSERT users 1 Alice 30",
		"INSERT users 2 Bob 25",
		"INSERT users 3 Charlie 35",
	} {
		if _, err := engine.Execute(line); err != nil {
			t.Fatalf("%s failed: %v", line, err)
		}
	}
}

func mustQuery(t *testing.T, engine *Engine, line string) QueryResult {
	t.Helper()
	result, err := engine.Execute(line)
	if err != nil {
		t.Fatalf("%s failed: %v", line, err)
	}
	qr, ok := result.(QueryResult)
	if !ok {
		t.Fatalf("%s: expected QueryResult, got %T", line, result)
	}
	return qr
}

func mustCommit(t *testing.T, engine *Engine, line string) CommitResult {
	t.Helper()
	result, err := engine.Execute(line)
	if err != nil {
		t.Fatalf("%s failed: %v", line, err)
	}
	cr, ok := result.(CommitResult)
	if !ok {
		t.Fatalf("%s: expected CommitResult, got %T", line, result)
	}
	return cr
}

func TestEngineSelect(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	qr := mustQuery(t, engine, "SELECT users")
	if qr.RecordsRead != 3 {
		t.Errorf("Expected 3 records, got %d", qr.RecordsRead)
	}
	if len(qr.Columns) != 4 || qr.Columns[0] != "#" || qr.Columns[1] != "id" {
		t.Errorf("Expected [# id name age], got %v", qr.Columns)
	}
}

func TestEngineSelectWithFilter(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	qr := mustQuery(t, engine, "SELECT users age > 28")
	if qr.RecordsRead != 2 {
		t.Errorf("Expected 2 records with age > 28, got %d", qr.RecordsRead)
	}

	qr = mustQuery(t, engine, "SELECT 0 2 != 25")
	if qr.RecordsRead != 2 {
		t.Errorf("Expected 2 records with age != 25, got %d", qr.RecordsRead)
	}
	if qr.Data[0][0] != "0" || qr.Data[1][0] != "2" {
		t.Errorf("Expected source rows 0 and 2, got %s and %s", qr.Data[0][0], qr.Data[1][0])
	}

	qr = mustQuery(t, engine, "SELECT users name < Bob")
	if qr.RecordsRead != 1 || qr.Data[0][2] != "Alice" {
		t.Errorf("Expected Alice only, got %v", qr.Data)
	}
}

func TestEngineSelectBadOperator(t *testing.T) {
	engine := setupTestEngine(t)

	if _, err := engine.Execute("SELECT users age LIKE 3"); !errors.Is(err, core.ErrTypeMismatch) {
		t.Errorf("Expected ErrTypeMismatch, got %v", err)
	}
	if _, err := engine.Execute("SELECT users age >"); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestEngineInsertValidates(t *testing.T) {
	engine := setupTestEngine(t)

	if _, err := engine.Execute("INSERT users one Alice 30"); !errors.Is(err, core.ErrValidationFailed) {
		t.Errorf("Expected ErrValidationFailed, got %v", err)
	}
	if _, err := engine.Execute("INSERT users 1 Alice 30 extra"); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}

	cr := mustCommit(t, engine, "INSERT users 4")
	if cr.RecordsWritten != 1 {
		t.Errorf("Expected 1 record written, got %d", cr.RecordsWritten)
	}
	if cr.Author != "test <test@test.com>" {
		t.Errorf("Expected author to be recorded, got %q", cr.Author)
	}

	qr := mustQuery(t, engine, "SELECT users")
	if len(qr.Data[0]) != 4 || qr.Data[0][2] != "" {
		t.Errorf("Expected padded row, got %q", qr.Data[0])
	}
}

func TestEngineSetCell(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	mustCommit(t, engine, "SET users age 1 26")
	if _, err := engine.Execute("SET users age 1 old"); !errors.Is(err, core.ErrValidationFailed) {
		t.Errorf("Expected ErrValidationFailed, got %v", err)
	}
	if _, err := engine.Execute("SET users age 9 1"); !errors.Is(err, core.ErrIndexOutOfRange) {
		t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := engine.Execute("SET users age x 1"); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}

	qr := mustQuery(t, engine, "SELECT users age == 26")
	if qr.RecordsRead != 1 || qr.Data[0][2] != "Bob" {
		t.Errorf("Expected Bob aged 26, got %v", qr.Data)
	}
}

func TestEngineWritesTrimValuesAlike(t *testing.T) {
	engine := setupTestEngine(t)
	if err := util.WriteFile(engine.Filesystem, "padded.csv", []byte("id,name,age\n 7 , Grace ,  41\n"), 0o644); err != nil {
		t.Fatalf("Failed to write csv: %v", err)
	}

	mustCommit(t, engine, "INSERT users ' 5' ' Eve ' '29 '")
	mustCommit(t, engine, "INSERT users 6 Frank 50")
	mustCommit(t, engine, "SET users age 1 ' 51 '")
	mustCommit(t, engine, "IMPORT users padded.csv")

	qr := mustQuery(t, engine, "SELECT users")
	want := [][]string{
		{"0", "5", "Eve", "29"},
		{"1", "6", "Frank", "51"},
		{"2", "7", "Grace", "41"},
	}
	if fmt.Sprint(qr.Data) != fmt.Sprint(want) {
		t.Errorf("Expected %v, got %v", want, qr.Data)
	}

	if qr := mustQuery(t, engine, "SELECT users name == Eve"); qr.RecordsRead != 1 {
		t.Errorf("Expected the trimmed name to match, got %d rows", qr.RecordsRead)
	}
}

func TestEngineAddColumnWidensRows(t *testing.T) {
	engine := setupTestEngine(t)
	mustCommit(t, engine, "CREATE single")
	mustCommit(t, engine, "ADDCOL single a INT")
	mustCommit(t, engine, "INSERT single 7")

	cr := mustCommit(t, engine, "ADDCOL single b STRING")
	if cr.ColumnsAdded != 1 {
		t.Errorf("Expected 1 column added, got %d", cr.ColumnsAdded)
	}

	qr := mustQuery(t, engine, "SELECT single")
	if len(qr.Data) != 1 || len(qr.Data[0]) != 3 || qr.Data[0][1] != "7" || qr.Data[0][2] != "" {
		t.Errorf("Expected [0 7 \"\"], got %q", qr.Data)
	}
}

func TestEngineDeleteColumn(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	mustCommit(t, engine, "DELCOL users id")

	qr := mustQuery(t, engine, "SELECT users")
	if len(qr.Columns) != 3 || qr.Columns[1] != "name" {
		t.Errorf("Expected [# name age], got %v", qr.Columns)
	}
	if qr.Data[0][1] != "Alice" {
		t.Errorf("Expected first value Alice, got %s", qr.Data[0][1])
	}

	if _, err := engine.Execute("DELCOL users id"); !errors.Is(err, core.ErrIndexOutOfRange) {
		t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestEngineRetypeReportsStaleCells(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	cr := mustCommit(t, engine, "RETYPE users name CHAR")
	if cr.ColumnsAltered != 1 || cr.StaleCells != 3 {
		t.Errorf("Expected 1 altered and 3 stale, got %d and %d", cr.ColumnsAltered, cr.StaleCells)
	}
	if !strings.Contains(cr.Summary(), "3 stale cell(s)") {
		t.Errorf("Expected stale cells in summary, got %q", cr.Summary())
	}

	if _, err := engine.Execute("RETYPE users age MONEY_INVL"); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for missing bounds, got %v", err)
	}
	if _, err := engine.Execute("RETYPE users age BLOB"); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for unknown type, got %v", err)
	}

	qr := mustQuery(t, engine, "DESCRIBE users")
	if qr.Data[1][2] != "CHAR" || qr.Data[2][2] != "INT" {
		t.Errorf("Expected name CHAR and age INT, got %v", qr.Data)
	}
}

func TestEngineRenameColumn(t *testing.T) {
	engine := setupTestEngine(t)

	mustCommit(t, engine, "RENAME users name full_name")
	qr := mustQuery(t, engine, "DESCRIBE users")
	if qr.Data[1][1] != "full_name" {
		t.Errorf("Expected full_name, got %s", qr.Data[1][1])
	}
	if _, err := engine.Execute("RENAME users age id"); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestEngineMoneyColumns(t *testing.T) {
	engine := setupTestEngine(t)
	mustCommit(t, engine, "CREATE payments")
	mustCommit(t, engine, "ADDCOL payments amount MONEY")
	mustCommit(t, engine, "ADDCOL payments fee MONEY_INVL 0 1000")

	mustCommit(t, engine, "INSERT payments 10.00 500.00")
	mustCommit(t, engine, "INSERT payments '1,250.50' 0.00")

	for _, line := range []string{
		"INSERT payments 10.005 1.00",
		"INSERT payments -1.00 1.00",
		"INSERT payments '10,000,000,000,000.00' 1.00",
		"INSERT payments 1.00 1500.00",
		"INSERT payments 1.00 -5.00",
	} {
		if _, err := engine.Execute(line); !errors.Is(err, core.ErrValidationFailed) {
			t.Errorf("%s: expected ErrValidationFailed, got %v", line, err)
		}
	}

	qr := mustQuery(t, engine, "SELECT payments amount > 1000")
	if qr.RecordsRead != 1 || qr.Data[0][1] != "1,250.50" {
		t.Errorf("Expected 1,250.50 only, got %v", qr.Data)
	}

	qr = mustQuery(t, engine, "DESCRIBE payments")
	if qr.Data[1][3] != "0" || qr.Data[1][4] != "1000" {
		t.Errorf("Expected bounds 0..1000, got %v", qr.Data[1])
	}
}

func TestEngineDedup(t *testing.T) {
	engine := setupTestEngine(t)
	mustCommit(t, engine, "CREATE numbers")
	mustCommit(t, engine, "ADDCOL numbers n INT")
	mustCommit(t, engine, "INSERT numbers 10")
	mustCommit(t, engine, "INSERT numbers 10")

	cr := mustCommit(t, engine, "DEDUP numbers")
	if cr.RecordsDeleted != 1 {
		t.Errorf("Expected 1 record deleted, got %d", cr.RecordsDeleted)
	}
	qr := mustQuery(t, engine, "SELECT numbers")
	if qr.RecordsRead != 1 {
		t.Errorf("Expected 1 row left, got %d", qr.RecordsRead)
	}
}

func TestEngineDeleteRow(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	cr := mustCommit(t, engine, "DELETE users 0")
	if cr.RecordsDeleted != 1 {
		t.Errorf("Expected 1 record deleted, got %d", cr.RecordsDeleted)
	}
	if _, err := engine.Execute("DELETE users 5"); !errors.Is(err, core.ErrIndexOutOfRange) {
		t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestEngineCloneAndDrop(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	mustCommit(t, engine, "CLONE users users_backup")
	mustCommit(t, engine, "DELETE users_backup 0")
	mustCommit(t, engine, "DELCOL users_backup age")

	qr := mustQuery(t, engine, "TABLES")
	if len(qr.Data) != 2 {
		t.Fatalf("Expected 2 tables, got %d", len(qr.Data))
	}
	if qr.Data[0][2] != "3" || qr.Data[0][3] != "3" {
		t.Errorf("Expected users to keep 3 columns and 3 rows, got %v", qr.Data[0])
	}
	if qr.Data[1][2] != "2" || qr.Data[1][3] != "2" {
		t.Errorf("Expected users_backup with 2 columns and 2 rows, got %v", qr.Data[1])
	}

	cr := mustCommit(t, engine, "DROP users_backup")
	if cr.TablesDeleted != 1 {
		t.Errorf("Expected 1 table deleted, got %d", cr.TablesDeleted)
	}
	if _, err := engine.Execute("DROP users_backup"); !errors.Is(err, core.ErrIndexOutOfRange) {
		t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestEngineSample(t *testing.T) {
	engine := setupTestEngine(t)

	cr := mustCommit(t, engine, "SAMPLE")
	if cr.TablesCreated != 1 || cr.ColumnsAdded != 6 || cr.RecordsWritten != 2 {
		t.Errorf("Unexpected sample result: %+v", cr)
	}

	qr := mustQuery(t, engine, "SELECT testTable column4 < 2")
	if qr.RecordsRead != 1 {
		t.Errorf("Expected 1 row with column4 < 2, got %d", qr.RecordsRead)
	}
}

func TestEngineUnknownCommand(t *testing.T) {
	engine := setupTestEngine(t)

	if _, err := engine.Execute("SELEKT users"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
}

func TestEngineWithIdentity(t *testing.T) {
	engine := setupTestEngine(t)
	other := engine.WithIdentity(core.Identity{Name: "Other"})

	cr := mustCommit(t, other, "CREATE shared")
	if cr.Author != "Other" {
		t.Errorf("Expected author Other, got %q", cr.Author)
	}

	qr := mustQuery(t, engine, "TABLES")
	if len(qr.Data) != 2 {
		t.Errorf("Expected both engines to share the database, got %d tables", len(qr.Data))
	}
}

func TestResultRender(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	var buf bytes.Buffer
	mustQuery(t, engine, "SELECT users").Render(&buf)
	out := buf.String()
	if !strings.Contains(out, "| Charlie ") || !strings.Contains(out, "3 rows (") {
		t.Errorf("Unexpected render output:\n%s", out)
	}

	buf.Reset()
	CommitResult{}.Render(&buf)
	if !strings.HasPrefix(buf.String(), "OK (") {
		t.Errorf("Expected OK line, got %q", buf.String())
	}
}
