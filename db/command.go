package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nickyhof/TableDB/core"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command is a parsed command line: an upper-cased verb and its arguments.
type Command struct {
	Verb string
	Args []string
}

type commandSpec struct {
	usage   string
	minArgs int
	maxArgs int // -1 means unbounded
	summary string
}

// Commands lists every verb the engine executes, in help order.
var Commands = []string{
	"TABLES", "CREATE", "DROP", "DESCRIBE", "CLONE",
	"ADDCOL", "RETYPE", "RENAME", "DELCOL",
	"INSERT", "DELETE", "SET", "SELECT", "DEDUP",
	"IMPORT", "EXPORT", "SAMPLE",
}

var commandSpecs = map[string]commandSpec{
	"TABLES":   {"TABLES", 0, 0, "List tables"},
	"CREATE":   {"CREATE <table>", 1, 1, "Create an empty table"},
	"DROP":     {"DROP <table>", 1, 1, "Delete a table"},
	"DESCRIBE": {"DESCRIBE <table>", 1, 1, "Show a table's columns"},
	"CLONE":    {"CLONE <table> <new>", 2, 2, "Deep-copy a table"},
	"ADDCOL":   {"ADDCOL <table> <name> <type> [min max]", 3, 5, "Add a column"},
	"RETYPE":   {"RETYPE <table> <column> <type> [min max]", 3, 5, "Change a column's type"},
	"RENAME":   {"RENAME <table> <column> <new>", 3, 3, "Rename a column"},
	"DELCOL":   {"DELCOL <table> <column>", 2, 2, "Delete a column"},
	"INSERT":   {"INSERT <table> [values...]", 1, -1, "Append a row"},
	"DELETE":   {"DELETE <table> <row>", 2, 2, "Delete a row"},
	"SET":      {"SET <table> <column> <row> <value>", 4, 4, "Update a cell"},
	"SELECT":   {"SELECT <table> [<column> <op> <value>]", 1, 4, "Show rows, optionally filtered"},
	"DEDUP":    {"DEDUP <table>", 1, 1, "Delete duplicate rows"},
	"IMPORT":   {"IMPORT <table> <path>", 2, 2, "Append rows from CSV (file, http(s)://, s3://)"},
	"EXPORT":   {"EXPORT <table> <path>", 2, 2, "Write rows as CSV (file, s3://)"},
	"SAMPLE":   {"SAMPLE", 0, 0, "Create the sample table"},
}

// Usage returns the syntax and summary of a verb.
func Usage(verb string) (usage, summary string, ok bool) {
	spec, ok := commandSpecs[strings.ToUpper(verb)]
	return spec.usage, spec.summary, ok
}

func (c Command) String() string {
	parts := []string{c.Verb}
	for _, arg := range c.Args {
		if arg == "" || strings.ContainsAny(arg, " \t'\"\\") {
			arg = "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(arg) + "'"
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// validate checks the argument count against the verb's usage.
func (c Command) validate() error {
	spec, ok := commandSpecs[c.Verb]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, c.Verb)
	}
	if len(c.Args) < spec.minArgs || (spec.maxArgs >= 0 && len(c.Args) > spec.maxArgs) {
		return fmt.Errorf("usage: %s: %w", spec.usage, core.ErrInvalidArgument)
	}
	return nil
}

// ParseCommand splits a command line into a verb and arguments. Arguments
// are separated by whitespace; single or double quotes group text, and a
// backslash escapes the next character inside quotes.
func ParseCommand(line string) (Command, error) {
	var (
		tokens  []string
		current strings.Builder
		inToken bool
		quote   rune
		escaped bool
	)

	for _, ch := range line {
		switch {
		case escaped:
			current.WriteRune(ch)
			escaped = false
		case quote != 0:
			switch ch {
			case '\\':
				escaped = true
			case quote:
				quote = 0
			default:
				current.WriteRune(ch)
			}
		case ch == '\'' || ch == '"':
			quote = ch
			inToken = true
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(ch)
			inToken = true
		}
	}

	if quote != 0 || escaped {
		return Command{}, fmt.Errorf("unterminated quote in %q: %w", line, core.ErrInvalidArgument)
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	if len(tokens) == 0 {
		return Command{}, fmt.Errorf("empty command: %w", core.ErrInvalidArgument)
	}

	return Command{
		Verb: strings.ToUpper(tokens[0]),
		Args: tokens[1:],
	}, nil
}
