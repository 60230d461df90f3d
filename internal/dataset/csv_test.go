package dataset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/tablescribe/internal/dataset"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadCSVBasic(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "orders.csv",
		"id,amount,status,notes\n"+
			"1, 19.99 ,active,first order\n"+
			"2,5.00,inactive,\n"+
			"3,7.50,active,rush\n")
	ds, err := dataset.LoadFile(p, dataset.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Source != "orders.csv" {
		t.Fatalf("source = %q", ds.Source)
	}
	if ds.Rows != 3 || ds.Truncated {
		t.Fatalf("rows = %d truncated = %v", ds.Rows, ds.Truncated)
	}
	want := []string{"id", "amount", "status", "notes"}
	if len(ds.Columns) != len(want) {
		t.Fatalf("columns = %d, want %d", len(ds.Columns), len(want))
	}
	for i, name := range want {
		if ds.Columns[i].Name != name {
			t.Fatalf("column %d = %q, want %q", i, ds.Columns[i].Name, name)
		}
		if ds.Columns[i].Kind != dataset.KindUnknown {
			t.Fatalf("column %q kind = %v, want unknown", name, ds.Columns[i].Kind)
		}
		if len(ds.Columns[i].Values) != 3 {
			t.Fatalf("column %q has %d values", name, len(ds.Columns[i].Values))
		}
	}
	if got := ds.Columns[1].Values[0].Raw; got != "19.99" {
		t.Fatalf("amount[0] = %q, want trimmed 19.99", got)
	}
	if !ds.Columns[3].Values[1].Null {
		t.Fatalf("notes[1] should be null, got %q", ds.Columns[3].Values[1].Raw)
	}
	if ds.Columns[3].Values[2].Raw != "rush" {
		t.Fatalf("notes[2] = %q", ds.Columns[3].Values[2].Raw)
	}
}

func TestLoadCSVSniffsTabDelimiter(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "orders.tsv", "id\tstatus\n1\tactive\n2\tinactive\n")
	ds, err := dataset.LoadFile(p, dataset.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Columns) != 2 || ds.Columns[1].Name != "status" {
		t.Fatalf("columns = %+v", ds.Columns)
	}
	if ds.Columns[1].Values[0].Raw != "active" {
		t.Fatalf("status[0] = %q", ds.Columns[1].Values[0].Raw)
	}
}

func TestLoadCSVExplicitDelimiter(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "orders.csv", "id;status\n1;active\n")
	ds, err := dataset.LoadFile(p, dataset.Options{Delimiter: ';'})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Columns) != 2 || ds.Columns[0].Name != "id" {
		t.Fatalf("columns = %+v", ds.Columns)
	}
}

func TestLoadCSVMaxRows(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "big.csv", "id\n1\n2\n3\n4\n")
	ds, err := dataset.LoadFile(p, dataset.Options{MaxRows: 2})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Rows != 2 || !ds.Truncated {
		t.Fatalf("rows = %d truncated = %v, want 2 rows truncated", ds.Rows, ds.Truncated)
	}
	if len(ds.Columns[0].Values) != 2 {
		t.Fatalf("values = %d, want 2", len(ds.Columns[0].Values))
	}
}

func TestLoadCSVPadsShortRows(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "ragged.csv", "a,b,c\n1,2,3\n4\n")
	ds, err := dataset.LoadFile(p, dataset.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Rows != 2 {
		t.Fatalf("rows = %d", ds.Rows)
	}
	for i := 1; i < 3; i++ {
		if !ds.Columns[i].Values[1].Null {
			t.Fatalf("column %q row 1 should be null", ds.Columns[i].Name)
		}
	}
	if ds.Columns[0].Values[1].Raw != "4" {
		t.Fatalf("a[1] = %q", ds.Columns[0].Values[1].Raw)
	}
}

func TestLoadCSVNamesBlankHeaders(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "blank.csv", ",b\n1,2\n")
	ds, err := dataset.LoadFile(p, dataset.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Columns[0].Name != "column_1" {
		t.Fatalf("blank header named %q, want column_1", ds.Columns[0].Name)
	}
	if ds.Columns[1].Name != "b" {
		t.Fatalf("second header = %q", ds.Columns[1].Name)
	}
}
