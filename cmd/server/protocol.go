// Package main provides a TCP command server for TableDB.
package main

import (
	"encoding/json"
	"strings"
)

// Request wraps a command sent as a JSON object instead of a bare line.
type Request struct {
	Query string `json:"query"`
}

// Response represents the server's response to a command.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"` // "query", "commit" or "auth"
	Result  json.RawMessage `json:"result,omitempty"`
}

// QueryResponse contains tabular query results.
type QueryResponse struct {
	Columns     []string   `json:"columns"`
	Data        [][]string `json:"data"`
	RecordsRead int        `json:"records_read"`
	TimeMs      float64    `json:"time_ms"`
}

// CommitResponse contains mutation operation results.
type CommitResponse struct {
	Author         string  `json:"author,omitempty"`
	TablesCreated  int     `json:"tables_created,omitempty"`
	TablesDeleted  int     `json:"tables_deleted,omitempty"`
	ColumnsAdded   int     `json:"columns_added,omitempty"`
	ColumnsDeleted int     `json:"columns_deleted,omitempty"`
	ColumnsAltered int     `json:"columns_altered,omitempty"`
	RecordsWritten int     `json:"records_written,omitempty"`
	RecordsDeleted int     `json:"records_deleted,omitempty"`
	StaleCells     int     `json:"stale_cells,omitempty"`
	TimeMs         float64 `json:"time_ms"`
}

// AuthResponse is the result of a successful AUTH command.
type AuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	Identity      string `json:"identity"`
	ExpiresIn     int    `json:"expires_in,omitempty"` // seconds
}

// EncodeResponse serializes a Response to JSON with a newline.
func EncodeResponse(resp Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeRequest parses a JSON request from a byte slice.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	err := json.Unmarshal(data, &req)
	return req, err
}

// readCommand returns the command carried by a line, which is either the
// line itself or a JSON Request.
func readCommand(line string) (string, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return line, nil
	}
	req, err := DecodeRequest([]byte(line))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(req.Query), nil
}
