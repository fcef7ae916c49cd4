package core

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type Operator string

const (
	Equal              Operator = "=="
	NotEqual           Operator = "!="
	LessThan           Operator = "<"
	GreaterThan        Operator = ">"
	LessThanOrEqual    Operator = "<="
	GreaterThanOrEqual Operator = ">="
)

// Operators lists every operator Evaluate understands. All column types
// support the full set.
var Operators = []Operator{Equal, NotEqual, LessThan, GreaterThan, LessThanOrEqual, GreaterThanOrEqual}

// ParseOperator validates an operator token.
func ParseOperator(token string) (Operator, error) {
	op := Operator(strings.TrimSpace(token))
	for _, known := range Operators {
		if op == known {
			return op, nil
		}
	}
	return "", fmt.Errorf("operator %q: %w", token, ErrTypeMismatch)
}

// Evaluate parses stored and input according to the column's type and
// applies op. An empty stored value, an unparsable operand or an unknown
// operator evaluates to false; money operands fall back to zero.
func Evaluate(stored string, op Operator, input string, column Column) bool {
	if stored == "" {
		return false
	}

	switch column.Type {
	case IntType:
		a, err := strconv.ParseInt(stored, 10, 64)
		if err != nil {
			return false
		}
		b, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return false
		}
		return compare(cmp.Compare(a, b), op)
	case RealType:
		a, err := strconv.ParseFloat(stored, 64)
		if err != nil {
			return false
		}
		b, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return false
		}
		return compare(cmp.Compare(a, b), op)
	case StringType:
		return compare(strings.Compare(stored, input), op)
	case CharType:
		if utf8.RuneCountInString(stored) != 1 || utf8.RuneCountInString(input) != 1 {
			return false
		}
		a, _ := utf8.DecodeRuneInString(stored)
		b, _ := utf8.DecodeRuneInString(input)
		return compare(cmp.Compare(a, b), op)
	case MoneyType, MoneyIntervalType:
		return compare(ParseAmount(stored).Cmp(ParseAmount(input)), op)
	default:
		return false
	}
}

// compare maps a three-way comparison result onto op.
func compare(c int, op Operator) bool {
	switch op {
	case Equal:
		return c == 0
	case NotEqual:
		return c != 0
	case LessThan:
		return c < 0
	case GreaterThan:
		return c > 0
	case LessThanOrEqual:
		return c <= 0
	case GreaterThanOrEqual:
		return c >= 0
	default:
		return false
	}
}
