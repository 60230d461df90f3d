package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type jsonLoader struct{}

func (jsonLoader) CanLoad(filename string) bool {
	return hasExt(filename, ".json")
}

func (jsonLoader) Load(path string, opt Options) (*Dataset, error) {
	return LoadJSONFile(path, opt)
}

// LoadJSONFile reads a top-level JSON array of flat objects. Column order is
// the order keys first appear across records; records missing a key yield
// nulls. Nested values are kept as compact JSON strings.
func LoadJSONFile(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Format: "json", Err: err}
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, &LoadError{Path: path, Format: "json", Err: fmt.Errorf("read token: %w", err)}
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, &LoadError{Path: path, Format: "json", Err: fmt.Errorf("expected a top-level array, got %v", tok)}
	}

	ds := &Dataset{Source: filepath.Base(path)}
	index := map[string]int{}

	for dec.More() {
		if opt.MaxRows > 0 && ds.Rows >= opt.MaxRows {
			ds.Truncated = true
			break
		}
		tok, err := dec.Token()
		if err != nil {
			return nil, &LoadError{Path: path, Format: "json", Err: fmt.Errorf("read record %d: %w", ds.Rows+1, err)}
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, &LoadError{Path: path, Format: "json", Err: fmt.Errorf("record %d is not an object", ds.Rows+1)}
		}
		seen := map[int]bool{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, &LoadError{Path: path, Format: "json", Err: fmt.Errorf("read key in record %d: %w", ds.Rows+1, err)}
			}
			key, _ := keyTok.(string)
			var raw any
			if err := dec.Decode(&raw); err != nil {
				return nil, &LoadError{Path: path, Format: "json", Err: fmt.Errorf("read %q in record %d: %w", key, ds.Rows+1, err)}
			}
			ci, ok := index[key]
			if !ok {
				ci = len(ds.Columns)
				index[key] = ci
				col := Column{Name: key}
				// Pad a late-appearing column with nulls for earlier rows.
				for i := 0; i < ds.Rows; i++ {
					col.Values = append(col.Values, Value{Null: true})
				}
				ds.Columns = append(ds.Columns, col)
			}
			if seen[ci] {
				// A repeated key in one record keeps the first value;
				// appending again would skew this column's row count.
				continue
			}
			val, kind := jsonValue(raw)
			ds.Columns[ci].Values = append(ds.Columns[ci].Values, val)
			if !val.Null {
				ds.Columns[ci].Kind = mergeKind(ds.Columns[ci].Kind, kind)
			}
			seen[ci] = true
		}
		if _, err := dec.Token(); err != nil {
			return nil, &LoadError{Path: path, Format: "json", Err: fmt.Errorf("close record %d: %w", ds.Rows+1, err)}
		}
		for ci := range ds.Columns {
			if !seen[ci] {
				ds.Columns[ci].Values = append(ds.Columns[ci].Values, Value{Null: true})
			}
		}
		ds.Rows++
	}
	return ds, nil
}

func jsonValue(raw any) (Value, Kind) {
	switch v := raw.(type) {
	case nil:
		return Value{Null: true}, KindUnknown
	case bool:
		return Value{Raw: formatBool(v)}, KindBoolean
	case string:
		if strings.TrimSpace(v) == "" {
			return Value{Null: true}, KindUnknown
		}
		return Value{Raw: v}, KindString
	case json.Number:
		s := v.String()
		if !strings.ContainsAny(s, ".eE") {
			if _, err := v.Int64(); err == nil {
				return Value{Raw: s}, KindInteger
			}
		}
		return Value{Raw: s}, KindFloat
	default:
		// Arrays and nested objects are preserved as compact JSON text.
		b, err := json.Marshal(v)
		if err != nil {
			return Value{Null: true}, KindUnknown
		}
		return Value{Raw: string(b)}, KindString
	}
}
