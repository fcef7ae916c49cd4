package main

/*
#include <stdlib.h>
*/
import "C"
import (
	"encoding/json"
	"sync"
	"unsafe"

	"github.com/go-git/go-billy/v6/osfs"
	"github.com/nickyhof/TableDB"
	"github.com/nickyhof/TableDB/core"
	"github.com/nickyhof/TableDB/db"
	"github.com/nickyhof/TableDB/op"
)

// handles maps each open handle to the engine of its private database.
var (
	handlesMu  sync.Mutex
	handles    = make(map[int]*db.Engine)
	nextHandle = 1
)

// bindingIdentity is the author of every change made through a handle.
var bindingIdentity = core.Identity{
	Name:  "TableDB Bindings",
	Email: "bindings@tabledb.local",
}

// Response mirrors the server protocol for consistency
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

type QueryResponse struct {
	Columns         []string   `json:"columns"`
	Data            [][]string `json:"data"`
	RecordsRead     int        `json:"records_read"`
	ExecutionTimeMs float64    `json:"execution_time_ms"`
	ExecutionOps    int        `json:"execution_ops"`
}

type CommitResponse struct {
	Author          string  `json:"author,omitempty"`
	TablesCreated   int     `json:"tables_created,omitempty"`
	TablesDeleted   int     `json:"tables_deleted,omitempty"`
	ColumnsAdded    int     `json:"columns_added,omitempty"`
	ColumnsDeleted  int     `json:"columns_deleted,omitempty"`
	ColumnsAltered  int     `json:"columns_altered,omitempty"`
	RecordsWritten  int     `json:"records_written,omitempty"`
	RecordsDeleted  int     `json:"records_deleted,omitempty"`
	StaleCells      int     `json:"stale_cells,omitempty"`
	ExecutionTimeMs float64 `json:"execution_time_ms"`
	ExecutionOps    int     `json:"execution_ops"`
}

// openHandle registers a new database and returns its handle. IMPORT and
// EXPORT paths resolve against dataDir.
func openHandle(name, dataDir string) int {
	engine := TableDB.Open(op.NewDatabase(name)).Engine(bindingIdentity)
	engine.Filesystem = osfs.New(dataDir)

	handlesMu.Lock()
	defer handlesMu.Unlock()

	handle := nextHandle
	nextHandle++
	handles[handle] = engine
	return handle
}

func lookupHandle(handle int) (*db.Engine, bool) {
	handlesMu.Lock()
	defer handlesMu.Unlock()

	engine, ok := handles[handle]
	return engine, ok
}

func closeHandle(handle int) {
	handlesMu.Lock()
	defer handlesMu.Unlock()

	delete(handles, handle)
}

//export tabledb_open
func tabledb_open(name *C.char) C.int {
	return C.int(openHandle(C.GoString(name), "."))
}

//export tabledb_open_dir
func tabledb_open_dir(name *C.char, dataDir *C.char) C.int {
	return C.int(openHandle(C.GoString(name), C.GoString(dataDir)))
}

//export tabledb_close
func tabledb_close(handle C.int) {
	closeHandle(int(handle))
}

//export tabledb_execute
func tabledb_execute(handle C.int, query *C.char) *C.char {
	return C.CString(string(execute(int(handle), C.GoString(query))))
}

//export tabledb_free
func tabledb_free(ptr *C.char) {
	C.free(unsafe.Pointer(ptr))
}

// execute runs a command on the handle's engine and returns the JSON response.
func execute(handle int, query string) []byte {
	engine, ok := lookupHandle(handle)
	if !ok {
		return errorResponse("Invalid handle")
	}

	result, err := engine.Execute(query)
	if err != nil {
		return errorResponse(err.Error())
	}

	resp := Response{Success: true}
	if r, ok := result.(db.QueryResult); ok {
		qr := QueryResponse{
			Columns:         r.Columns,
			Data:            r.Data,
			RecordsRead:     r.RecordsRead,
			ExecutionTimeMs: r.ExecutionTimeSec * 1000,
			ExecutionOps:    r.ExecutionOps,
		}
		if qr.Data == nil {
			qr.Data = [][]string{}
		}
		resp.Type = "query"
		resp.Result, _ = json.Marshal(qr)
	} else {
		r := result.(db.CommitResult)
		resp.Type = "commit"
		resp.Result, _ = json.Marshal(CommitResponse{
			Author:          r.Author,
			TablesCreated:   r.TablesCreated,
			TablesDeleted:   r.TablesDeleted,
			ColumnsAdded:    r.ColumnsAdded,
			ColumnsDeleted:  r.ColumnsDeleted,
			ColumnsAltered:  r.ColumnsAltered,
			RecordsWritten:  r.RecordsWritten,
			RecordsDeleted:  r.RecordsDeleted,
			StaleCells:      r.StaleCells,
			ExecutionTimeMs: r.ExecutionTimeSec * 1000,
			ExecutionOps:    r.ExecutionOps,
		})
	}

	jsonData, _ := json.Marshal(resp)
	return jsonData
}

func errorResponse(msg string) []byte {
	resp := Response{
		Success: false,
		Error:   msg,
	}
	jsonData, _ := json.Marshal(resp)
	return jsonData
}

func main() {}
