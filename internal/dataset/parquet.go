package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
)

type parquetLoader struct{}

func (parquetLoader) CanLoad(filename string) bool {
	return hasExt(filename, ".parquet")
}

func (parquetLoader) Load(path string, opt Options) (*Dataset, error) {
	return LoadParquetFile(path, opt)
}

// LoadParquetFile reads a flat Parquet file into a Dataset. Column kinds come
// from the file schema; timestamps and dates normalize to RFC 3339 strings.
func LoadParquetFile(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Format: "parquet", Err: err}
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, &LoadError{Path: path, Format: "parquet", Err: err}
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, &LoadError{Path: path, Format: "parquet", Err: fmt.Errorf("open file: %w", err)}
	}

	fields := pf.Schema().Fields()
	if len(fields) == 0 {
		return nil, &LoadError{Path: path, Format: "parquet", Err: ErrNoColumns}
	}
	ds := &Dataset{Source: filepath.Base(path), Columns: make([]Column, len(fields))}
	conv := make([]func(parquet.Value) Value, len(fields))
	for i, fld := range fields {
		if !fld.Leaf() {
			return nil, &LoadError{Path: path, Format: "parquet", Err: fmt.Errorf("nested column %q is not supported", fld.Name())}
		}
		kind, cv := parquetColumn(fld.Type())
		ds.Columns[i] = Column{Name: fld.Name(), Kind: kind}
		conv[i] = cv
	}

	for _, rg := range pf.RowGroups() {
		if ds.Truncated {
			break
		}
		if err := readParquetGroup(ds, rg, conv, opt); err != nil {
			return nil, &LoadError{Path: path, Format: "parquet", Err: err}
		}
	}
	return ds, nil
}

func readParquetGroup(ds *Dataset, rg parquet.RowGroup, conv []func(parquet.Value) Value, opt Options) error {
	rows := rg.Rows()
	defer rows.Close()
	buf := make([]parquet.Row, 128)
	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			if opt.MaxRows > 0 && ds.Rows >= opt.MaxRows {
				ds.Truncated = true
				return nil
			}
			appendParquetRow(ds, row, conv)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read rows: %w", err)
		}
	}
}

func appendParquetRow(ds *Dataset, row parquet.Row, conv []func(parquet.Value) Value) {
	filled := make([]bool, len(ds.Columns))
	for _, v := range row {
		ci := v.Column()
		if ci < 0 || ci >= len(ds.Columns) || filled[ci] {
			continue
		}
		if v.IsNull() {
			ds.Columns[ci].Values = append(ds.Columns[ci].Values, Value{Null: true})
		} else {
			ds.Columns[ci].Values = append(ds.Columns[ci].Values, conv[ci](v))
		}
		filled[ci] = true
	}
	for ci := range filled {
		if !filled[ci] {
			ds.Columns[ci].Values = append(ds.Columns[ci].Values, Value{Null: true})
		}
	}
	ds.Rows++
}

// parquetColumn maps a leaf type to a column kind and a value converter.
func parquetColumn(t parquet.Type) (Kind, func(parquet.Value) Value) {
	if lt := t.LogicalType(); lt != nil {
		switch {
		case lt.UTF8 != nil:
			return KindString, func(v parquet.Value) Value { return Value{Raw: v.String()} }
		case lt.Date != nil:
			return KindDatetime, func(v parquet.Value) Value {
				days := int64(v.Int32())
				return Value{Raw: formatTime(time.Unix(days*86400, 0))}
			}
		case lt.Timestamp != nil:
			unit := lt.Timestamp.Unit
			return KindDatetime, func(v parquet.Value) Value {
				var ts time.Time
				switch {
				case unit.Millis != nil:
					ts = time.UnixMilli(v.Int64())
				case unit.Micros != nil:
					ts = time.UnixMicro(v.Int64())
				default:
					ts = time.Unix(0, v.Int64())
				}
				return Value{Raw: formatTime(ts)}
			}
		}
	}
	switch t.Kind() {
	case parquet.Boolean:
		return KindBoolean, func(v parquet.Value) Value { return Value{Raw: formatBool(v.Boolean())} }
	case parquet.Int32:
		return KindInteger, func(v parquet.Value) Value { return Value{Raw: formatInt(int64(v.Int32()))} }
	case parquet.Int64:
		return KindInteger, func(v parquet.Value) Value { return Value{Raw: formatInt(v.Int64())} }
	case parquet.Float:
		return KindFloat, func(v parquet.Value) Value { return Value{Raw: formatFloat(float64(v.Float()))} }
	case parquet.Double:
		return KindFloat, func(v parquet.Value) Value { return Value{Raw: formatFloat(v.Double())} }
	default:
		return KindString, func(v parquet.Value) Value { return Value{Raw: v.String()} }
	}
}
