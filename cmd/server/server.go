package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v6"
	"github.com/google/uuid"
	"github.com/nickyhof/TableDB"
	"github.com/nickyhof/TableDB/core"
	"github.com/nickyhof/TableDB/db"
)

// DefaultIdentity is recorded as the author of changes made by
// unauthenticated connections.
var DefaultIdentity = core.Identity{
	Name:  "TableDB Server",
	Email: "server@tabledb.local",
}

// Server is a TCP command server that exposes the TableDB engine.
type Server struct {
	listener    net.Listener
	instance    *TableDB.Instance
	identity    core.Identity
	verifier    *verifier
	authEnabled bool
	tlsEnabled  bool
	done        chan struct{}
	wg          sync.WaitGroup

	// Filesystem and S3 configure IMPORT/EXPORT targets for every connection.
	Filesystem billy.Filesystem
	S3         *db.S3Config
}

// NewServer creates a new server with the given TableDB instance. Changes
// are attributed to identity.
func NewServer(instance *TableDB.Instance, identity core.Identity) *Server {
	return &Server{
		instance: instance,
		identity: identity,
		done:     make(chan struct{}),
	}
}

// NewServerWithAuth creates a server that attributes changes to the identity
// carried by each connection's JWT. When config is enabled, commands are
// rejected until the connection sends AUTH.
func NewServerWithAuth(instance *TableDB.Instance, config AuthConfig) (*Server, error) {
	v, err := newVerifier(config)
	if err != nil {
		return nil, err
	}
	server := NewServer(instance, DefaultIdentity)
	server.verifier = v
	server.authEnabled = config.Enabled
	return server, nil
}

// session is the per-connection state.
type session struct {
	id     string
	engine *db.Engine
	grant  *grant
}

// Start begins listening for connections on the specified address.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	log.Printf("TableDB server listening on %s", listener.Addr())

	go s.acceptLoop()
	return nil
}

// StartTLS begins listening for TLS connections using the given certificate
// and key files.
func (s *Server) StartTLS(addr, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	listener, err := tls.Listen("tcp", addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		return fmt.Errorf("failed to start TLS server: %w", err)
	}
	s.listener = listener
	s.tlsEnabled = true

	log.Printf("TableDB server listening on %s (TLS)", listener.Addr())

	go s.acceptLoop()
	return nil
}

// TLSEnabled reports whether the server was started with StartTLS.
func (s *Server) TLSEnabled() bool {
	return s.tlsEnabled
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				log.Printf("Accept error: %v", err)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// newEngine returns an engine acting as identity with the server's targets.
func (s *Server) newEngine(identity core.Identity) *db.Engine {
	engine := s.instance.Engine(identity)
	if s.Filesystem != nil {
		engine.Filesystem = s.Filesystem
	}
	engine.S3 = s.S3
	return engine
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	sess := &session{id: uuid.NewString(), engine: s.newEngine(s.identity)}
	log.Printf("[%s] Client connected: %s", sess.id, conn.RemoteAddr())

	// Unblock the read when the server stops.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
			conn.Close()
		case <-ctx.Done():
		}
	}()

	reader := bufio.NewReader(conn)

	for {
		// One command per line
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				log.Printf("[%s] Read error from %s: %v", sess.id, conn.RemoteAddr(), err)
			}
			return
		}

		query, err := readCommand(line)
		if err == nil && query == "" {
			continue
		}
		if err == nil && (strings.EqualFold(query, "quit") || strings.EqualFold(query, "exit")) {
			log.Printf("[%s] Client disconnected: %s", sess.id, conn.RemoteAddr())
			return
		}

		var command db.Command
		if err == nil {
			command, err = db.ParseCommand(query)
		}

		var response Response
		switch {
		case err != nil:
			response = Response{Success: false, Error: fmt.Sprintf("invalid request: %v", err)}
		case command.Verb == "AUTH":
			response = s.authenticate(sess, command)
			if response.Success {
				log.Printf("[%s] Authenticated as %s", sess.id, sess.grant.identity)
			}
		case s.authEnabled && !sess.grant.valid(time.Now()):
			response = Response{
				Success: false,
				Error:   "authentication required: send AUTH JWT <token>",
			}
		default:
			response = executeCommand(ctx, sess.engine, command)
		}

		data, err := EncodeResponse(response)
		if err != nil {
			log.Printf("[%s] Failed to encode response: %v", sess.id, err)
			continue
		}

		if _, err := conn.Write(data); err != nil {
			log.Printf("[%s] Write error to %s: %v", sess.id, conn.RemoteAddr(), err)
			return
		}
	}
}

func executeCommand(ctx context.Context, engine *db.Engine, command db.Command) Response {
	result, err := engine.ExecuteCommand(ctx, command)
	if err != nil {
		return Response{
			Success: false,
			Error:   err.Error(),
		}
	}

	if r, ok := result.(db.QueryResult); ok {
		qr := QueryResponse{
			Columns:     r.Columns,
			Data:        r.Data,
			RecordsRead: r.RecordsRead,
			TimeMs:      r.ExecutionTimeSec * 1000,
		}
		if qr.Data == nil {
			qr.Data = [][]string{}
		}
		data, _ := json.Marshal(qr)
		return Response{
			Success: true,
			Type:    "query",
			Result:  data,
		}
	}

	r := result.(db.CommitResult)
	cr := CommitResponse{
		Author:         r.Author,
		TablesCreated:  r.TablesCreated,
		TablesDeleted:  r.TablesDeleted,
		ColumnsAdded:   r.ColumnsAdded,
		ColumnsDeleted: r.ColumnsDeleted,
		ColumnsAltered: r.ColumnsAltered,
		RecordsWritten: r.RecordsWritten,
		RecordsDeleted: r.RecordsDeleted,
		StaleCells:     r.StaleCells,
		TimeMs:         r.ExecutionTimeSec * 1000,
	}
	data, _ := json.Marshal(cr)
	return Response{
		Success: true,
		Type:    "commit",
		Result:  data,
	}
}
