package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type ColumnType int

const (
	IntType ColumnType = iota
	RealType
	StringType
	CharType
	MoneyType
	MoneyIntervalType
)

// ColumnTypes lists every column type in declaration order.
var ColumnTypes = []ColumnType{IntType, RealType, StringType, CharType, MoneyType, MoneyIntervalType}

// MaxMoney is the exclusive upper bound of a MONEY amount.
var MaxMoney = decimal.New(10_000_000_000_000, 0)

func (t ColumnType) String() string {
	switch t {
	case IntType:
		return "INT"
	case RealType:
		return "REAL"
	case StringType:
		return "STRING"
	case CharType:
		return "CHAR"
	case MoneyType:
		return "MONEY"
	case MoneyIntervalType:
		return "MONEY_INVL"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// ParseColumnType converts a type name (or one of its aliases) into a ColumnType.
func ParseColumnType(name string) (ColumnType, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "INT", "INTEGER":
		return IntType, nil
	case "REAL", "FLOAT", "DOUBLE":
		return RealType, nil
	case "STRING", "VARCHAR", "TEXT":
		return StringType, nil
	case "CHAR", "CHARACTER":
		return CharType, nil
	case "MONEY":
		return MoneyType, nil
	case "MONEY_INVL", "MONEY_INTERVAL", "MONEYINVL":
		return MoneyIntervalType, nil
	default:
		return 0, fmt.Errorf("unknown column type %q: %w", name, ErrInvalidArgument)
	}
}

func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ColumnType) UnmarshalText(text []byte) error {
	parsed, err := ParseColumnType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Interval holds the inclusive bounds of a MONEY_INVL column, kept as the
// money-formatted text the caller supplied.
type Interval struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// Column describes one table position. Interval is set only for MONEY_INVL.
type Column struct {
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	Interval *Interval  `json:"interval,omitempty"`
}

// NewColumn builds a column of the given type. bounds must be exactly
// {min, max} for MONEY_INVL and empty for every other type.
func NewColumn(name string, columnType ColumnType, bounds ...string) (Column, error) {
	if strings.TrimSpace(name) == "" {
		return Column{}, fmt.Errorf("column name is empty: %w", ErrInvalidArgument)
	}

	switch columnType {
	case IntType, RealType, StringType, CharType, MoneyType:
		if len(bounds) != 0 {
			return Column{}, fmt.Errorf("column %s: %s takes no bounds: %w", name, columnType, ErrInvalidArgument)
		}
		return Column{Name: name, Type: columnType}, nil
	case MoneyIntervalType:
		if len(bounds) != 2 {
			return Column{}, fmt.Errorf("column %s: %s needs min and max: %w", name, columnType, ErrInvalidArgument)
		}
		return NewMoneyIntervalColumn(name, bounds[0], bounds[1])
	default:
		return Column{}, fmt.Errorf("column %s: unknown type %d: %w", name, int(columnType), ErrInvalidArgument)
	}
}

// NewMoneyIntervalColumn builds a MONEY_INVL column bounded by [min, max].
func NewMoneyIntervalColumn(name, min, max string) (Column, error) {
	if strings.TrimSpace(name) == "" {
		return Column{}, fmt.Errorf("column name is empty: %w", ErrInvalidArgument)
	}
	lo, ok := parseAmount(min)
	if !ok {
		return Column{}, fmt.Errorf("column %s: malformed min %q: %w", name, min, ErrInvalidArgument)
	}
	hi, ok := parseAmount(max)
	if !ok {
		return Column{}, fmt.Errorf("column %s: malformed max %q: %w", name, max, ErrInvalidArgument)
	}
	if lo.GreaterThan(hi) {
		return Column{}, fmt.Errorf("column %s: min %s exceeds max %s: %w", name, min, max, ErrInvalidArgument)
	}
	return Column{
		Name:     name,
		Type:     MoneyIntervalType,
		Interval: &Interval{Min: min, Max: max},
	}, nil
}

// Clone returns an independent copy of the column.
func (c Column) Clone() Column {
	clone := Column{Name: c.Name, Type: c.Type}
	if c.Interval != nil {
		interval := *c.Interval
		clone.Interval = &interval
	}
	return clone
}

// Validate reports whether value satisfies the column's type rule.
func (c Column) Validate(value string) bool {
	switch c.Type {
	case IntType:
		_, err := strconv.ParseInt(value, 10, 64)
		return err == nil
	case RealType:
		_, err := strconv.ParseFloat(value, 64)
		return err == nil
	case StringType:
		return true
	case CharType:
		return utf8.RuneCountInString(value) == 1
	case MoneyType:
		amount, ok := parseMoney(value)
		return ok && !amount.IsNegative() && amount.LessThan(MaxMoney)
	case MoneyIntervalType:
		if c.Interval == nil {
			return false
		}
		amount, ok := parseMoney(value)
		if !ok {
			return false
		}
		lo, ok := parseAmount(c.Interval.Min)
		if !ok {
			return false
		}
		hi, ok := parseAmount(c.Interval.Max)
		if !ok {
			return false
		}
		return !amount.LessThan(lo) && !amount.GreaterThan(hi)
	default:
		return false
	}
}

// ParseAmount strips thousands separators and parses value as a decimal
// amount. Unparsable input yields zero.
func ParseAmount(value string) decimal.Decimal {
	amount, ok := parseAmount(value)
	if !ok {
		return decimal.Zero
	}
	return amount
}

func parseAmount(value string) (decimal.Decimal, bool) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// parseMoney parses a money-formatted value: an amount with exactly two
// digits after a single '.'.
func parseMoney(value string) (decimal.Decimal, bool) {
	whole, fraction, found := strings.Cut(value, ".")
	if !found || whole == "" || strings.Contains(fraction, ".") || len(fraction) != 2 {
		return decimal.Zero, false
	}
	if !isDigit(fraction[0]) || !isDigit(fraction[1]) {
		return decimal.Zero, false
	}
	return parseAmount(value)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
