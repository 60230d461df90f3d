package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return hasExt(filename, ".xlsx", ".xlsm")
}

func (xlsxLoader) Load(path string, opt Options) (*Dataset, error) {
	return LoadXLSXFile(path, opt)
}

// LoadXLSXFile reads one worksheet into a Dataset. The first row is the
// header; kinds are left unknown because cell values arrive as display text.
func LoadXLSXFile(path string, opt Options) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Format: "xlsx", Err: err}
	}
	defer f.Close()

	sheet := opt.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, &LoadError{Path: path, Format: "xlsx", Err: fmt.Errorf("workbook has no sheets")}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &LoadError{Path: path, Format: "xlsx", Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, &LoadError{Path: path, Format: "xlsx", Err: ErrNoColumns}
	}

	header := rows[0]
	ncol := len(header)
	ds := &Dataset{Source: filepath.Base(path), Columns: make([]Column, ncol)}
	for i := range header {
		name := strings.TrimSpace(header[i])
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		ds.Columns[i].Name = name
	}

	for _, rec := range rows[1:] {
		if opt.MaxRows > 0 && ds.Rows >= opt.MaxRows {
			ds.Truncated = true
			break
		}
		ds.Rows++
		for j := 0; j < ncol; j++ {
			// GetRows trims trailing empty cells, so pad short rows.
			v := ""
			if j < len(rec) {
				v = strings.TrimSpace(rec[j])
			}
			if v == "" {
				ds.Columns[j].Values = append(ds.Columns[j].Values, Value{Null: true})
				continue
			}
			ds.Columns[j].Values = append(ds.Columns[j].Values, Value{Raw: v})
		}
	}
	return ds, nil
}
