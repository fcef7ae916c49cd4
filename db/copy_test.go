package db

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v6/util"
	"github.com/nickyhof/TableDB/core"
)

func TestExportImportRoundTrip(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)
	mustCommit(t, engine, "SET users name 1 'Bob, Jr.'")

	cr := mustCommit(t, engine, "EXPORT users exports/users.csv")
	if cr.RecordsWritten != 3 {
		t.Errorf("Expected 3 records exported, got %d", cr.RecordsWritten)
	}

	content, err := util.ReadFile(engine.Filesystem, "exports/users.csv")
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	if !strings.HasPrefix(string(content), "id,name,age\n") {
		t.Errorf("Expected header line, got %q", content)
	}
	if !strings.Contains(string(content), `2,"Bob, Jr.",25`) {
		t.Errorf("Expected quoted field, got %q", content)
	}

	mustCommit(t, engine, "CLONE users copy")
	mustCommit(t, engine, "DELETE copy 0")
	mustCommit(t, engine, "DELETE copy 0")
	mustCommit(t, engine, "DELETE copy 0")

	cr = mustCommit(t, engine, "IMPORT copy exports/users.csv")
	if cr.RecordsWritten != 3 {
		t.Errorf("Expected 3 records imported, got %d", cr.RecordsWritten)
	}

	original := mustQuery(t, engine, "SELECT users")
	imported := mustQuery(t, engine, "SELECT copy")
	if fmt.Sprint(original.Data) != fmt.Sprint(imported.Data) {
		t.Errorf("Round trip mismatch:\n%v\n%v", original.Data, imported.Data)
	}
}

func TestImportReordersByHeader(t *testing.T) {
	engine := setupTestEngine(t)
	if err := util.WriteFile(engine.Filesystem, "in.csv", []byte("age,id\n40,9\n"), 0o644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}

	mustCommit(t, engine, "IMPORT users file://in.csv")

	qr := mustQuery(t, engine, "SELECT users")
	if len(qr.Data) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(qr.Data))
	}
	if row := qr.Data[0]; row[1] != "9" || row[2] != "" || row[3] != "40" {
		t.Errorf("Expected [0 9 \"\" 40], got %q", row)
	}
}

func TestImportIsAllOrNothing(t *testing.T) {
	engine := setupTestEngine(t)
	input := "id,name,age\n1,Alice,30\n2,Bob,old\n"
	if err := util.WriteFile(engine.Filesystem, "bad.csv", []byte(input), 0o644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}

	if _, err := engine.Execute("IMPORT users bad.csv"); !errors.Is(err, core.ErrValidationFailed) {
		t.Errorf("Expected ErrValidationFailed, got %v", err)
	}
	if qr := mustQuery(t, engine, "SELECT users"); qr.RecordsRead != 0 {
		t.Errorf("Expected no rows after failed import, got %d", qr.RecordsRead)
	}
}

func TestImportBadHeader(t *testing.T) {
	engine := setupTestEngine(t)
	for name, header := range map[string]string{
		"unknown":   "id,email\n",
		"duplicate": "id,id\n",
	} {
		if err := util.WriteFile(engine.Filesystem, name+".csv", []byte(header), 0o644); err != nil {
			t.Fatalf("Failed to write input: %v", err)
		}
		if _, err := engine.Execute("IMPORT users " + name + ".csv"); !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("%s header: expected ErrInvalidArgument, got %v", name, err)
		}
	}
}

func TestImportEmptyFile(t *testing.T) {
	engine := setupTestEngine(t)
	if err := util.WriteFile(engine.Filesystem, "empty.csv", nil, 0o644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}

	cr := mustCommit(t, engine, "IMPORT users empty.csv")
	if cr.RecordsWritten != 0 {
		t.Errorf("Expected 0 records, got %d", cr.RecordsWritten)
	}
}

func TestImportMissingFile(t *testing.T) {
	engine := setupTestEngine(t)
	if _, err := engine.Execute("IMPORT users missing.csv"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestImportHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users.csv" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "id,name,age\n7,Grace,85\n")
	}))
	defer server.Close()

	engine := setupTestEngine(t)
	cr := mustCommit(t, engine, "IMPORT users "+server.URL+"/users.csv")
	if cr.RecordsWritten != 1 {
		t.Errorf("Expected 1 record imported, got %d", cr.RecordsWritten)
	}

	if _, err := engine.Execute("IMPORT users " + server.URL + "/missing.csv"); err == nil {
		t.Error("Expected error for 404 response")
	}
}

func TestExportHTTPRejected(t *testing.T) {
	engine := setupTestEngine(t)
	if _, err := engine.Execute("EXPORT users http://example.com/users.csv"); err == nil {
		t.Error("Expected HTTP export to fail")
	}
}

func TestDetectScheme(t *testing.T) {
	tests := []struct {
		target string
		want   urlScheme
	}{
		{"s3://bucket/key.csv", schemeS3},
		{"S3://bucket/key.csv", schemeS3},
		{"https://example.com/a.csv", schemeHTTPS},
		{"http://example.com/a.csv", schemeHTTP},
		{"file://data/a.csv", schemeFile},
		{"data/a.csv", schemeLocal},
	}
	for _, tt := range tests {
		if got := detectScheme(tt.target); got != tt.want {
			t.Errorf("detectScheme(%q) = %s, want %s", tt.target, got, tt.want)
		}
	}

	if got := localPath("file://data/a.csv"); got != "data/a.csv" {
		t.Errorf("localPath = %q, want data/a.csv", got)
	}
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://my-bucket/path/to/users.csv")
	if err != nil {
		t.Fatalf("parseS3URL failed: %v", err)
	}
	if bucket != "my-bucket" || key != "path/to/users.csv" {
		t.Errorf("Expected my-bucket and path/to/users.csv, got %s and %s", bucket, key)
	}

	for _, url := range []string{"s3://bucket", "s3://bucket/", "s3:///key"} {
		if _, _, err := parseS3URL(url); err == nil {
			t.Errorf("Expected error for %q", url)
		}
	}
}
