package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-git/go-billy/v6/osfs"
	"github.com/nickyhof/TableDB"
	"github.com/nickyhof/TableDB/db"
	"github.com/nickyhof/TableDB/op"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	port := flag.Int("port", 7420, "TCP port to listen on")
	dbName := flag.String("db", "main", "Name of the database")
	dataDir := flag.String("dataDir", ".", "Directory that IMPORT and EXPORT paths are relative to")
	s3Region := flag.String("s3Region", "", "AWS region for s3:// IMPORT and EXPORT")
	s3Endpoint := flag.String("s3Endpoint", "", "Custom S3-compatible endpoint")
	tlsCert := flag.String("tlsCert", "", "TLS certificate file (enables TLS with -tlsKey)")
	tlsKey := flag.String("tlsKey", "", "TLS private key file")
	jwtSecret := flag.String("jwtSecret", "", "Shared secret for JWT authentication (enables AUTH)")
	jwtIssuer := flag.String("jwtIssuer", "", "Expected JWT issuer")
	jwtAudience := flag.String("jwtAudience", "", "Expected JWT audience")
	jwtNameClaim := flag.String("jwtNameClaim", "name", "JWT claim holding the author name")
	jwtEmailClaim := flag.String("jwtEmailClaim", "email", "JWT claim holding the author email")
	sample := flag.Bool("sample", false, "Create the sample table on startup")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("TableDB Server v%s\n", Version)
		return
	}

	if (*tlsCert == "") != (*tlsKey == "") {
		log.Fatal("Both -tlsCert and -tlsKey are required for TLS")
	}

	instance := TableDB.Open(op.NewDatabase(*dbName))
	if *sample {
		if _, err := op.PopulateSample(instance.Database); err != nil {
			log.Fatalf("Failed to create sample table: %v", err)
		}
		log.Printf("Created sample table %s", op.SampleTableName)
	}

	server := NewServer(instance, DefaultIdentity)
	if *jwtSecret != "" {
		var err error
		server, err = NewServerWithAuth(instance, AuthConfig{
			Enabled:    true,
			JWTSecret:  *jwtSecret,
			Issuer:     *jwtIssuer,
			Audience:   *jwtAudience,
			NameClaim:  *jwtNameClaim,
			EmailClaim: *jwtEmailClaim,
		})
		if err != nil {
			log.Fatalf("Failed to configure authentication: %v", err)
		}
		log.Printf("JWT authentication enabled (identity from %q and %q claims)", *jwtNameClaim, *jwtEmailClaim)
	}

	log.Printf("Using data directory: %s", *dataDir)
	server.Filesystem = osfs.New(*dataDir)
	if *s3Region != "" || *s3Endpoint != "" {
		server.S3 = &db.S3Config{
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Region:    *s3Region,
			Endpoint:  *s3Endpoint,
		}
	}

	addr := fmt.Sprintf(":%d", *port)
	var err error
	if *tlsCert != "" {
		err = server.StartTLS(addr, *tlsCert, *tlsKey)
	} else {
		err = server.Start(addr)
	}
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	// Print banner
	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Printf("║   TableDB Server v%-19s ║\n", Version)
	fmt.Println("║     In-memory Typed Table Store       ║")
	fmt.Println("╚═══════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Listening on port %d\n", *port)
	fmt.Println("Send commands (one per line), 'quit' to disconnect")
	fmt.Println()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	server.Stop()
	log.Println("Server stopped")
}
