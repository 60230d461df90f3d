package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	return hasExt(filename, ".csv", ".tsv")
}

func (csvLoader) Load(path string, opt Options) (*Dataset, error) {
	return LoadCSVFile(path, opt)
}

// LoadCSVFile reads a delimited text file into a Dataset. Empty cells are
// nulls; all kinds are left unknown for the profiler to infer.
func LoadCSVFile(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Format: "csv", Err: err}
	}
	defer f.Close()

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Path: path, Format: "csv", Err: ErrNoColumns}
		}
		return nil, &LoadError{Path: path, Format: "csv", Err: fmt.Errorf("read header: %w", err)}
	}
	ncol := len(header)
	ds := &Dataset{Source: filepath.Base(path), Columns: make([]Column, ncol)}
	for i := range header {
		name := strings.TrimSpace(header[i])
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		ds.Columns[i].Name = name
	}

	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &LoadError{Path: path, Format: "csv", Err: fmt.Errorf("read row %d: %w", ds.Rows+1, err)}
		}
		if opt.MaxRows > 0 && ds.Rows >= opt.MaxRows {
			ds.Truncated = true
			break
		}
		// Normalize length
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rec = tmp
		}
		ds.Rows++
		for j := 0; j < ncol; j++ {
			v := strings.TrimSpace(rec[j])
			if v == "" {
				ds.Columns[j].Values = append(ds.Columns[j].Values, Value{Null: true})
				continue
			}
			ds.Columns[j].Values = append(ds.Columns[j].Values, Value{Raw: v})
		}
	}
	return ds, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
