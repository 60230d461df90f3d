package dataset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/KaramelBytes/tablescribe/internal/dataset"
)

type parquetOrder struct {
	ID     int64   `parquet:"id"`
	Amount float64 `parquet:"amount"`
	Status string  `parquet:"status"`
	Paid   bool    `parquet:"paid"`
	Note   *string `parquet:"note,optional"`
}

func writeParquetFixture(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "orders.parquet")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	note1, note3 := "first", "third"
	rows := []parquetOrder{
		{ID: 1, Amount: 19.99, Status: "active", Paid: true, Note: &note1},
		{ID: 2, Amount: 5, Status: "inactive", Paid: false, Note: nil},
		{ID: 3, Amount: 7.5, Status: "active", Paid: true, Note: &note3},
	}
	w := parquet.NewGenericWriter[parquetOrder](f)
	if _, err := w.Write(rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return p
}

func findColumn(t *testing.T, ds *dataset.Dataset, name string) dataset.Column {
	t.Helper()
	for _, c := range ds.Columns {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no column %q in %v", name, ds.Columns)
	return dataset.Column{}
}

func TestLoadParquetKindsAndValues(t *testing.T) {
	p := writeParquetFixture(t, t.TempDir())
	ds, err := dataset.LoadFile(p, dataset.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Rows != 3 {
		t.Fatalf("rows = %d", ds.Rows)
	}

	id := findColumn(t, ds, "id")
	if id.Kind != dataset.KindInteger {
		t.Fatalf("id kind = %v", id.Kind)
	}
	if id.Values[0].Raw != "1" || id.Values[2].Raw != "3" {
		t.Fatalf("id values = %+v", id.Values)
	}

	amount := findColumn(t, ds, "amount")
	if amount.Kind != dataset.KindFloat {
		t.Fatalf("amount kind = %v", amount.Kind)
	}
	if amount.Values[0].Raw != "19.99" || amount.Values[1].Raw != "5" {
		t.Fatalf("amount values = %+v", amount.Values)
	}

	status := findColumn(t, ds, "status")
	if status.Kind != dataset.KindString {
		t.Fatalf("status kind = %v", status.Kind)
	}
	if status.Values[1].Raw != "inactive" {
		t.Fatalf("status[1] = %q", status.Values[1].Raw)
	}

	paid := findColumn(t, ds, "paid")
	if paid.Kind != dataset.KindBoolean {
		t.Fatalf("paid kind = %v", paid.Kind)
	}
	if paid.Values[0].Raw != "true" || paid.Values[1].Raw != "false" {
		t.Fatalf("paid values = %+v", paid.Values)
	}
}

func TestLoadParquetOptionalNulls(t *testing.T) {
	p := writeParquetFixture(t, t.TempDir())
	ds, err := dataset.LoadFile(p, dataset.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	note := findColumn(t, ds, "note")
	if note.Kind != dataset.KindString {
		t.Fatalf("note kind = %v", note.Kind)
	}
	if note.Values[0].Raw != "first" {
		t.Fatalf("note[0] = %q", note.Values[0].Raw)
	}
	if !note.Values[1].Null {
		t.Fatalf("note[1] should be null, got %q", note.Values[1].Raw)
	}
	if note.Values[2].Raw != "third" {
		t.Fatalf("note[2] = %q", note.Values[2].Raw)
	}
}

func TestLoadParquetMaxRows(t *testing.T) {
	p := writeParquetFixture(t, t.TempDir())
	ds, err := dataset.LoadFile(p, dataset.Options{MaxRows: 2})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Rows != 2 || !ds.Truncated {
		t.Fatalf("rows = %d truncated = %v", ds.Rows, ds.Truncated)
	}
	for _, c := range ds.Columns {
		if len(c.Values) != 2 {
			t.Fatalf("column %q has %d values", c.Name, len(c.Values))
		}
	}
}
