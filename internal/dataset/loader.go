package dataset

import (
	"path/filepath"
	"strings"
)

// Options controls ingestion behavior shared across loaders.
type Options struct {
	// Delimiter for CSV. If 0, picks ',' or '\t' from the file extension.
	Delimiter rune
	// MaxRows caps ingested data rows; 0 means unlimited.
	MaxRows int
	// Sheet selects a worksheet for XLSX files. Empty means the first sheet.
	Sheet string
}

// Loader turns one file format into a Dataset.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// LoadFile selects a loader based on filename and returns the dataset.
// Column-less files are rejected here so every loader shares the same
// contract; a header-only file still loads as a zero-row dataset.
func LoadFile(path string, opt Options) (*Dataset, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			ds, err := l.Load(path, opt)
			if err != nil {
				return nil, err
			}
			if len(ds.Columns) == 0 {
				return nil, &LoadError{Path: path, Format: extFormat(path), Err: ErrNoColumns}
			}
			return ds, nil
		}
	}
	return nil, &LoadError{Path: path, Format: extFormat(path), Err: ErrUnsupported}
}

func extFormat(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return "unknown"
	}
	return ext
}

func hasExt(filename string, exts ...string) bool {
	name := strings.ToLower(filename)
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}

func init() {
	// Register default loaders
	Register(csvLoader{})
	Register(parquetLoader{})
	Register(avroLoader{})
	Register(jsonLoader{})
	Register(xlsxLoader{})
}
