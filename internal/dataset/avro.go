package dataset

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/hamba/avro/v2/ocf"
)

type avroLoader struct{}

func (avroLoader) CanLoad(filename string) bool {
	return hasExt(filename, ".avro")
}

func (avroLoader) Load(path string, opt Options) (*Dataset, error) {
	return LoadAvroFile(path, opt)
}

// LoadAvroFile reads an Avro object container file whose top-level schema is
// a record. Nullable unions yield nulls; logical dates and timestamps
// normalize to RFC 3339 strings.
func LoadAvroFile(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Format: "avro", Err: err}
	}
	defer f.Close()

	dec, err := ocf.NewDecoder(f)
	if err != nil {
		return nil, &LoadError{Path: path, Format: "avro", Err: fmt.Errorf("open container: %w", err)}
	}
	raw, ok := dec.Metadata()["avro.schema"]
	if !ok {
		return nil, &LoadError{Path: path, Format: "avro", Err: fmt.Errorf("container is missing schema metadata")}
	}
	schema, err := avro.Parse(string(raw))
	if err != nil {
		return nil, &LoadError{Path: path, Format: "avro", Err: fmt.Errorf("parse schema: %w", err)}
	}
	rec, ok := schema.(*avro.RecordSchema)
	if !ok {
		return nil, &LoadError{Path: path, Format: "avro", Err: fmt.Errorf("top-level schema is %s, want record", schema.Type())}
	}

	fields := rec.Fields()
	if len(fields) == 0 {
		return nil, &LoadError{Path: path, Format: "avro", Err: ErrNoColumns}
	}
	ds := &Dataset{Source: filepath.Base(path), Columns: make([]Column, len(fields))}
	for i, fld := range fields {
		ds.Columns[i] = Column{Name: fld.Name(), Kind: avroKind(fld.Type())}
	}

	for dec.HasNext() {
		if opt.MaxRows > 0 && ds.Rows >= opt.MaxRows {
			ds.Truncated = true
			break
		}
		var row map[string]any
		if err := dec.Decode(&row); err != nil {
			return nil, &LoadError{Path: path, Format: "avro", Err: fmt.Errorf("decode record %d: %w", ds.Rows+1, err)}
		}
		for i, fld := range fields {
			ds.Columns[i].Values = append(ds.Columns[i].Values, avroValue(row[fld.Name()]))
		}
		ds.Rows++
	}
	if err := dec.Error(); err != nil {
		return nil, &LoadError{Path: path, Format: "avro", Err: err}
	}
	return ds, nil
}

func avroKind(s avro.Schema) Kind {
	if ls, ok := s.(avro.LogicalTypeSchema); ok {
		if lt := ls.Logical(); lt != nil {
			switch lt.Type() {
			case avro.Date, avro.TimestampMillis, avro.TimestampMicros:
				return KindDatetime
			case avro.Decimal:
				return KindFloat
			}
		}
	}
	switch s.Type() {
	case avro.Boolean:
		return KindBoolean
	case avro.Int, avro.Long:
		return KindInteger
	case avro.Float, avro.Double:
		return KindFloat
	case avro.Union:
		for _, t := range s.(*avro.UnionSchema).Types() {
			if t.Type() != avro.Null {
				return avroKind(t)
			}
		}
		return KindUnknown
	case avro.Null:
		return KindUnknown
	default:
		return KindString
	}
}

func avroValue(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Value{Null: true}
	case bool:
		return Value{Raw: formatBool(v)}
	case int:
		return Value{Raw: formatInt(int64(v))}
	case int32:
		return Value{Raw: formatInt(int64(v))}
	case int64:
		return Value{Raw: formatInt(v)}
	case float32:
		return Value{Raw: formatFloat(float64(v))}
	case float64:
		return Value{Raw: formatFloat(v)}
	case string:
		if v == "" {
			return Value{Null: true}
		}
		return Value{Raw: v}
	case []byte:
		return Value{Raw: string(v)}
	case time.Time:
		return Value{Raw: formatTime(v)}
	case *big.Rat:
		f, _ := v.Float64()
		return Value{Raw: formatFloat(f)}
	case map[string]any:
		// Non-nullable unions decode as a single-entry map keyed by branch.
		for _, inner := range v {
			return avroValue(inner)
		}
		return Value{Null: true}
	default:
		return Value{Raw: fmt.Sprint(v)}
	}
}
