package dataset_test

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/tablescribe/internal/dataset"
)

func TestLoadJSONColumnsAndKinds(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "orders.json", `[
		{"id": 1, "amount": 19.99, "active": true, "name": "alpha"},
		{"id": 2, "amount": 5, "active": false, "name": "beta"}
	]`)
	ds, err := dataset.LoadFile(p, dataset.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Rows != 2 {
		t.Fatalf("rows = %d", ds.Rows)
	}
	want := map[string]dataset.Kind{
		"id":     dataset.KindInteger,
		"amount": dataset.KindFloat, // 19.99 then 5 widens to float
		"active": dataset.KindBoolean,
		"name":   dataset.KindString,
	}
	if len(ds.Columns) != len(want) {
		t.Fatalf("columns = %d", len(ds.Columns))
	}
	// Column order follows first appearance in the records.
	order := []string{"id", "amount", "active", "name"}
	for i, name := range order {
		col := ds.Columns[i]
		if col.Name != name {
			t.Fatalf("column %d = %q, want %q", i, col.Name, name)
		}
		if col.Kind != want[name] {
			t.Fatalf("column %q kind = %v, want %v", name, col.Kind, want[name])
		}
	}
	if ds.Columns[2].Values[0].Raw != "true" || ds.Columns[2].Values[1].Raw != "false" {
		t.Fatalf("active values = %+v", ds.Columns[2].Values)
	}
	if ds.Columns[1].Values[1].Raw != "5" {
		t.Fatalf("amount[1] = %q", ds.Columns[1].Values[1].Raw)
	}
}

func TestLoadJSONFillsMissingKeys(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "sparse.json", `[
		{"a": 1},
		{"a": 2, "b": "x"},
		{"a": 3, "b": ""}
	]`)
	ds, err := dataset.LoadFile(p, dataset.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Columns) != 2 || ds.Columns[1].Name != "b" {
		t.Fatalf("columns = %+v", ds.Columns)
	}
	b := ds.Columns[1].Values
	if len(b) != 3 {
		t.Fatalf("b has %d values", len(b))
	}
	if !b[0].Null {
		t.Fatalf("b[0] should be null for the record that predates the key")
	}
	if b[1].Raw != "x" {
		t.Fatalf("b[1] = %q", b[1].Raw)
	}
	if !b[2].Null {
		t.Fatalf("b[2] should treat the empty string as null")
	}
}

func TestLoadJSONKeepsNestedValuesAsText(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "nested.json", `[{"tags": ["x", "y"], "meta": {"k": 1}}]`)
	ds, err := dataset.LoadFile(p, dataset.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := ds.Columns[0].Values[0].Raw; got != `["x","y"]` {
		t.Fatalf("tags = %q", got)
	}
	if got := ds.Columns[1].Values[0].Raw; got != `{"k":1}` {
		t.Fatalf("meta = %q", got)
	}
	if ds.Columns[0].Kind != dataset.KindString {
		t.Fatalf("tags kind = %v", ds.Columns[0].Kind)
	}
}

func TestLoadJSONDuplicateKeyKeepsFirstValue(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "dupe.json", `[
		{"a": 1, "b": "x", "a": 2},
		{"a": 3, "b": "y"}
	]`)
	ds, err := dataset.LoadFile(p, dataset.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	a := ds.Columns[0].Values
	if len(a) != 2 {
		t.Fatalf("a has %d values for 2 rows", len(a))
	}
	if a[0].Raw != "1" || a[1].Raw != "3" {
		t.Fatalf("a = %+v, want the first value per record", a)
	}
	for _, c := range ds.Columns {
		if len(c.Values) != ds.Rows {
			t.Fatalf("column %q has %d values for %d rows", c.Name, len(c.Values), ds.Rows)
		}
	}
}

func TestLoadJSONRejectsNonArray(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "object.json", `{"a": 1}`)
	_, err := dataset.LoadFile(p, dataset.Options{})
	if err == nil {
		t.Fatal("expected error for a top-level object")
	}
	if !strings.Contains(err.Error(), "expected a top-level array") {
		t.Fatalf("error = %v", err)
	}
}

func TestLoadJSONMaxRows(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "big.json", `[{"a":1},{"a":2},{"a":3}]`)
	ds, err := dataset.LoadFile(p, dataset.Options{MaxRows: 2})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Rows != 2 || !ds.Truncated {
		t.Fatalf("rows = %d truncated = %v", ds.Rows, ds.Truncated)
	}
	if len(ds.Columns[0].Values) != 2 {
		t.Fatalf("values = %d", len(ds.Columns[0].Values))
	}
}
