package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v6/osfs"
	"github.com/nickyhof/TableDB"
	"github.com/nickyhof/TableDB/core"
	"github.com/nickyhof/TableDB/db"
	"github.com/nickyhof/TableDB/op"
)

const (
	PromptColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
	BoldColor    = "\033[1m"
)

// Version is set at build time via -ldflags
var Version = "dev"

// CLI holds the CLI state
type CLI struct {
	engine      *db.Engine
	out         io.Writer
	history     []string
	historyFile string
}

func main() {
	dataDir := flag.String("dataDir", ".", "Directory that IMPORT and EXPORT paths are relative to")
	scriptFile := flag.String("file", "", "Command file to execute (non-interactive)")
	dbName := flag.String("db", "main", "Name of the database")
	userName := flag.String("name", "TableDB", "User name recorded as the author of changes")
	userEmail := flag.String("email", "cli@tabledb.local", "User email recorded as the author of changes")
	s3Region := flag.String("s3Region", "", "AWS region for s3:// IMPORT and EXPORT")
	s3Endpoint := flag.String("s3Endpoint", "", "Custom S3-compatible endpoint")
	sample := flag.Bool("sample", false, "Create the sample table on startup")
	flag.Parse()

	printBanner()

	instance := TableDB.Open(op.NewDatabase(*dbName))
	engine := instance.Engine(core.Identity{
		Name:  *userName,
		Email: *userEmail,
	})
	engine.Filesystem = osfs.New(*dataDir)
	if *s3Region != "" || *s3Endpoint != "" {
		engine.S3 = &db.S3Config{
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Region:    *s3Region,
			Endpoint:  *s3Endpoint,
		}
	}
	fmt.Printf("%sUsing data directory: %s%s\n", SuccessColor, *dataDir, ResetColor)

	cli := &CLI{
		engine:      engine,
		out:         os.Stdout,
		history:     make([]string, 0),
		historyFile: getHistoryPath(),
	}

	if *sample {
		cli.execute("SAMPLE")
	}

	cli.loadHistory()

	// Execute script file if provided
	if *scriptFile != "" {
		failed, err := cli.importFile(*scriptFile)
		if err != nil {
			fmt.Printf("%sError importing file: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	cli.run(os.Stdin)
}

func printBanner() {
	fmt.Println()
	bannerWidth := 39 // inner width of the banner box
	versionLine := fmt.Sprintf("TableDB v%s", Version)
	padding := bannerWidth - len(versionLine) - 2 // -2 for "  " margins
	if padding < 0 {
		padding = 0
	}
	leftPad := padding / 2
	rightPad := padding - leftPad

	fmt.Printf("%s%s╔═══════════════════════════════════════╗%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s║ %*s%s%*s ║%s\n", BoldColor, PromptColor, leftPad, "", versionLine, rightPad, "", ResetColor)
	fmt.Printf("%s%s║     In-memory Typed Table Store       ║%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s╚═══════════════════════════════════════╝%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Println()
	fmt.Println("Type .help for commands, .quit to exit")
	fmt.Println()
}

// run reads one command per line until EOF or .quit.
func (cli *CLI) run(in io.Reader) {
	reader := bufio.NewReader(in)

	for {
		fmt.Fprint(cli.out, cli.getPrompt())

		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			fmt.Fprintf(cli.out, "\n%sGoodbye!%s\n", SuccessColor, ResetColor)
			cli.saveHistory()
			return
		}

		line := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(input), ";"))
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if !cli.handleCommand(line) {
				cli.saveHistory()
				return
			}
			continue
		}

		cli.addToHistory(line)
		cli.execute(line)
	}
}

func (cli *CLI) getPrompt() string {
	return fmt.Sprintf("%stabledb (%s)>%s ", PromptColor, cli.engine.Name(), ResetColor)
}

// execute runs one engine command and renders its result or error.
func (cli *CLI) execute(line string) bool {
	result, err := cli.engine.Execute(line)
	if err != nil {
		fmt.Fprintf(cli.out, "%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
		return false
	}
	result.Render(cli.out)
	return true
}

// handleCommand runs a dot-command. It returns false when the CLI should exit.
func (cli *CLI) handleCommand(input string) bool {
	parts := strings.Fields(strings.TrimSpace(input))
	if len(parts) == 0 {
		return true
	}

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit", ".q":
		fmt.Fprintf(cli.out, "%sGoodbye!%s\n", SuccessColor, ResetColor)
		return false

	case ".help", ".h", ".?":
		cli.printHelp()

	case ".tables":
		cli.execute("TABLES")

	case ".describe", ".d":
		if len(parts) > 1 {
			cli.execute(db.Command{Verb: "DESCRIBE", Args: parts[1:2]}.String())
		} else {
			fmt.Fprintf(cli.out, "%s✗ Usage: .describe <table>%s\n", ErrorColor, ResetColor)
		}

	case ".clear", ".cls":
		fmt.Fprint(cli.out, "\033[H\033[2J")

	case ".history":
		cli.printHistory()

	case ".version":
		fmt.Fprintf(cli.out, "TableDB version %s\n", Version)

	case ".import":
		if len(parts) > 1 {
			if _, err := cli.importFile(parts[1]); err != nil {
				fmt.Fprintf(cli.out, "%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
			}
		} else {
			fmt.Fprintf(cli.out, "%s✗ Usage: .import <file>%s\n", ErrorColor, ResetColor)
		}

	default:
		fmt.Fprintf(cli.out, "%s✗ Unknown command: %s (type .help for commands)%s\n", ErrorColor, parts[0], ResetColor)
	}

	return true
}

func (cli *CLI) printHelp() {
	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "%s%sSpecial Commands:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(cli.out, "  .help, .h          Show this help message")
	fmt.Fprintln(cli.out, "  .quit, .exit       Exit the CLI")
	fmt.Fprintln(cli.out, "  .tables            List all tables")
	fmt.Fprintln(cli.out, "  .describe <table>  Show the columns of a table")
	fmt.Fprintln(cli.out, "  .import <file>     Execute commands from a file")
	fmt.Fprintln(cli.out, "  .history           Show command history")
	fmt.Fprintln(cli.out, "  .clear             Clear the screen")
	fmt.Fprintln(cli.out, "  .version           Show version info")
	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "%s%sCommands:%s\n", BoldColor, PromptColor, ResetColor)
	for _, verb := range db.Commands {
		usage, summary, _ := db.Usage(verb)
		fmt.Fprintf(cli.out, "  %-44s %s\n", usage, summary)
	}
	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "%s%sTypes:%s INT, REAL, STRING, CHAR, MONEY, MONEY_INVL <min> <max>\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintf(cli.out, "%s%sOperators:%s == != < > <= >=\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(cli.out)
}

func (cli *CLI) addToHistory(cmd string) {
	// Don't add duplicates of the last command
	if len(cli.history) > 0 && cli.history[len(cli.history)-1] == cmd {
		return
	}
	cli.history = append(cli.history, cmd)

	// Limit history size
	if len(cli.history) > 1000 {
		cli.history = cli.history[len(cli.history)-1000:]
	}
}

func (cli *CLI) printHistory() {
	if len(cli.history) == 0 {
		fmt.Fprintln(cli.out, "No command history")
		return
	}

	start := 0
	if len(cli.history) > 20 {
		start = len(cli.history) - 20
	}

	for i := start; i < len(cli.history); i++ {
		fmt.Fprintf(cli.out, "  %3d  %s\n", i+1, cli.history[i])
	}
}

func getHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tabledb_history")
}

func (cli *CLI) loadHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Open(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		cli.history = append(cli.history, scanner.Text())
	}
}

func (cli *CLI) saveHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Create(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	// Save last 1000 entries
	start := 0
	if len(cli.history) > 1000 {
		start = len(cli.history) - 1000
	}

	for i := start; i < len(cli.history); i++ {
		_, _ = file.WriteString(cli.history[i] + "\n")
	}
}

// importFile executes the commands in a file and returns how many failed.
func (cli *CLI) importFile(filename string) (int, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}

	statements := splitStatements(string(data))

	successCount := 0
	errorCount := 0

	for i, stmt := range statements {
		result, err := cli.engine.Execute(stmt)
		if err != nil {
			fmt.Fprintf(cli.out, "%s[%d] ✗ %s%s\n", ErrorColor, i+1, truncate(stmt, 50), ResetColor)
			fmt.Fprintf(cli.out, "      Error: %v\n", err)
			errorCount++
			continue
		}

		successCount++
		// Compact output based on result type
		switch r := result.(type) {
		case db.CommitResult:
			detailStr := ""
			if summary := r.Summary(); summary != "" {
				detailStr = " (" + summary + ")"
			}
			fmt.Fprintf(cli.out, "%s[%d] ✓ %s%s%s\n", SuccessColor, i+1, truncate(stmt, 50), detailStr, ResetColor)
		case db.QueryResult:
			fmt.Fprintf(cli.out, "%s[%d] ✓ %s (%d rows)%s\n", SuccessColor, i+1, truncate(stmt, 50), r.RecordsRead, ResetColor)
		default:
			fmt.Fprintf(cli.out, "%s[%d] ✓ %s%s\n", SuccessColor, i+1, truncate(stmt, 50), ResetColor)
		}
	}

	fmt.Fprintf(cli.out, "\n%s✓ Import complete: %d succeeded, %d failed%s\n",
		SuccessColor, successCount, errorCount, ResetColor)

	return errorCount, nil
}

// splitStatements splits a script into commands. Commands end at a newline
// or ';' outside quotes, and "--" starts a comment running to end of line.
func splitStatements(content string) []string {
	var statements []string
	var current strings.Builder
	inString := false
	stringChar := byte(0)

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for i := 0; i < len(content); i++ {
		ch := content[i]

		// Handle quoted arguments
		if inString && ch == '\\' && i+1 < len(content) {
			current.WriteByte(ch)
			current.WriteByte(content[i+1])
			i++
			continue
		}
		if ch == '\'' || ch == '"' {
			if !inString {
				inString = true
				stringChar = ch
			} else if ch == stringChar {
				inString = false
			}
		}

		// Handle comments
		if !inString && ch == '-' && i+1 < len(content) && content[i+1] == '-' {
			// Skip to end of line
			for i+1 < len(content) && content[i+1] != '\n' {
				i++
			}
			continue
		}

		// Statement separator
		if !inString && (ch == ';' || ch == '\n') {
			flush()
			continue
		}

		current.WriteByte(ch)
	}

	// Handle last statement without terminator
	flush()

	return statements
}

// truncate shortens a string to max length with ellipsis
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
