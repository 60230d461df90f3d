package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Kind is the primitive type of a column's values.
type Kind int

const (
	KindUnknown Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindString
	KindDatetime
)

// String returns the lowercase name used in reports and JSON output.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindDatetime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Value is a single cell. Raw holds the canonical string form; Null marks
// missing cells, in which case Raw is empty.
type Value struct {
	Raw  string
	Null bool
}

// Column is an ordered sequence of values under one header. Kind is set by
// loaders that know the source schema (Parquet, Avro, JSON); KindUnknown
// means the type must be inferred from the values.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// Dataset is a uniform in-memory table produced by a loader.
type Dataset struct {
	Source    string
	Columns   []Column
	Rows      int
	Truncated bool // true when MaxRows stopped ingestion early
}

// LoadError reports a failure to turn a file into a Dataset.
type LoadError struct {
	Path   string
	Format string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s (%s): %v", e.Path, e.Format, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

var (
	// ErrUnsupported indicates no registered loader accepts the file.
	ErrUnsupported = errors.New("unsupported dataset format")
	// ErrNoColumns indicates the file carried no header or schema.
	ErrNoColumns = errors.New("dataset has no columns")
)

// mergeKind widens a column kind as values of a new kind arrive.
// Integer and float combine to float; any other mix degrades to string.
func mergeKind(have, next Kind) Kind {
	if have == KindUnknown {
		return next
	}
	if next == KindUnknown || have == next {
		return have
	}
	if (have == KindInteger && next == KindFloat) || (have == KindFloat && next == KindInteger) {
		return KindFloat
	}
	return KindString
}

func formatInt(v int64) string      { return strconv.FormatInt(v, 10) }
func formatFloat(v float64) string  { return strconv.FormatFloat(v, 'g', -1, 64) }
func formatBool(v bool) string      { return strconv.FormatBool(v) }
func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }
