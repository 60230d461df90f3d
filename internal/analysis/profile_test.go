package analysis_test

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/KaramelBytes/tablescribe/internal/analysis"
	"github.com/KaramelBytes/tablescribe/internal/dataset"
)

// strCol builds a column from raw strings; the empty string marks a null.
func strCol(name string, vals ...string) dataset.Column {
	c := dataset.Column{Name: name}
	for _, v := range vals {
		if v == "" {
			c.Values = append(c.Values, dataset.Value{Null: true})
		} else {
			c.Values = append(c.Values, dataset.Value{Raw: v})
		}
	}
	return c
}

func TestProfileColumnCounts(t *testing.T) {
	opt := analysis.DefaultOptions()
	p := analysis.ProfileColumn(strCol("status", "a", "b", "a", ""), opt)

	if p.Rows != 4 || p.Nulls != 1 || p.NonNull() != 3 {
		t.Fatalf("rows=%d nulls=%d nonNull=%d", p.Rows, p.Nulls, p.NonNull())
	}
	if p.NullRatio != 0.25 {
		t.Fatalf("null ratio = %v", p.NullRatio)
	}
	if p.Distinct != 2 || p.Duplicates != 1 {
		t.Fatalf("distinct=%d duplicates=%d", p.Distinct, p.Duplicates)
	}
	if !reflect.DeepEqual(p.Sample, []string{"a", "b"}) {
		t.Fatalf("sample = %v", p.Sample)
	}
	want := []analysis.ValueCount{{Value: "a", Count: 2}, {Value: "b", Count: 1}}
	if !reflect.DeepEqual(p.TopValues, want) {
		t.Fatalf("top values = %v", p.TopValues)
	}
	if p.Kind != dataset.KindString {
		t.Fatalf("kind = %v", p.Kind)
	}
}

func TestProfileColumnAllNull(t *testing.T) {
	opt := analysis.DefaultOptions()
	col := strCol("ghost", "", "", "")
	col.Kind = dataset.KindInteger // a declared kind must not survive an empty column
	p := analysis.ProfileColumn(col, opt)

	if p.Kind != dataset.KindUnknown {
		t.Fatalf("kind = %v, want unknown", p.Kind)
	}
	if p.NullRatio != 1 || p.Distinct != 0 {
		t.Fatalf("nullRatio=%v distinct=%d", p.NullRatio, p.Distinct)
	}
	if p.Numeric != nil {
		t.Fatalf("numeric stats = %+v, want nil", p.Numeric)
	}
	if p.MinValue != "" || p.MaxValue != "" {
		t.Fatalf("range = %q..%q, want no-value markers", p.MinValue, p.MaxValue)
	}
}

func TestProfileNumericStats(t *testing.T) {
	opt := analysis.DefaultOptions()
	p := analysis.ProfileColumn(strCol("reading",
		"10", "11", "12", "10", "11", "12", "10", "400"), opt)

	if p.Kind != dataset.KindInteger {
		t.Fatalf("kind = %v", p.Kind)
	}
	st := p.Numeric
	if st == nil {
		t.Fatal("numeric stats missing")
	}
	if st.Min != 10 || st.Max != 400 {
		t.Fatalf("min=%v max=%v", st.Min, st.Max)
	}
	if math.Abs(st.Mean-59.5) > 1e-9 {
		t.Fatalf("mean = %v", st.Mean)
	}
	if st.Std < 130 || st.Std > 140 { // sample std over these values is ~137.6
		t.Fatalf("std = %v", st.Std)
	}
	if st.Outliers != 1 {
		t.Fatalf("outliers = %d, want the single spike", st.Outliers)
	}
	if st.MaxAbsZ < 200 {
		t.Fatalf("max |z| = %v", st.MaxAbsZ)
	}
	if p.MinValue != "10" || p.MaxValue != "400" {
		t.Fatalf("range = %q..%q", p.MinValue, p.MaxValue)
	}
}

func TestProfileSampleFirstSeenCapped(t *testing.T) {
	opt := analysis.DefaultOptions() // SampleValues 10
	vals := make([]string, 0, 12)
	for i := 1; i <= 12; i++ {
		vals = append(vals, fmt.Sprintf("v%02d", i))
	}
	p := analysis.ProfileColumn(strCol("v", vals...), opt)
	if len(p.Sample) != 10 {
		t.Fatalf("sample size = %d", len(p.Sample))
	}
	if p.Sample[0] != "v01" || p.Sample[9] != "v10" {
		t.Fatalf("sample = %v", p.Sample)
	}
}

func TestProfileDatetimeColumn(t *testing.T) {
	opt := analysis.DefaultOptions()
	p := analysis.ProfileColumn(strCol("created_at",
		"2024-01-02", "2024-03-04", "2024-01-02"), opt)

	if p.Kind != dataset.KindDatetime {
		t.Fatalf("kind = %v", p.Kind)
	}
	if p.DatetimeRatio != 1 {
		t.Fatalf("datetime ratio = %v", p.DatetimeRatio)
	}
	if p.MinValue != "2024-01-02T00:00:00Z" || p.MaxValue != "2024-03-04T00:00:00Z" {
		t.Fatalf("range = %q..%q", p.MinValue, p.MaxValue)
	}
}

func TestProfilePartialDatetimeRatio(t *testing.T) {
	opt := analysis.DefaultOptions()
	p := analysis.ProfileColumn(strCol("seen",
		"2024-01-01", "2024-02-01", "bogus", "2024-01-01"), opt)

	if p.Kind != dataset.KindString {
		t.Fatalf("kind = %v", p.Kind)
	}
	if p.DatetimeRatio < 0.74 || p.DatetimeRatio > 0.76 {
		t.Fatalf("datetime ratio = %v, want 3 of 4", p.DatetimeRatio)
	}
}

func TestProfileBoolSignals(t *testing.T) {
	opt := analysis.DefaultOptions()

	yn := analysis.ProfileColumn(strCol("flag", "Y", "N", "Y"), opt)
	if !yn.BoolTokens || yn.Kind != dataset.KindString {
		t.Fatalf("Y/N: boolTokens=%v kind=%v", yn.BoolTokens, yn.Kind)
	}

	tf := analysis.ProfileColumn(strCol("paid", "true", "false", "true"), opt)
	if tf.Kind != dataset.KindBoolean {
		t.Fatalf("true/false kind = %v", tf.Kind)
	}

	labels := analysis.ProfileColumn(strCol("status", "active", "inactive"), opt)
	if labels.BoolTokens {
		t.Fatal("active/inactive should not count as boolean vocabulary")
	}
}

func TestProfileIDShaped(t *testing.T) {
	opt := analysis.DefaultOptions()
	if p := analysis.ProfileColumn(strCol("ref", "ord-1", "ord-2", "ord-3"), opt); !p.IDShaped {
		t.Fatal("ord-N values should look id-shaped")
	}
	if p := analysis.ProfileColumn(strCol("ref", "has space", "x"), opt); p.IDShaped {
		t.Fatal("values with spaces should not look id-shaped")
	}
}

func TestProfileLexicalRange(t *testing.T) {
	opt := analysis.DefaultOptions()
	p := analysis.ProfileColumn(strCol("fruit", "pear", "apple", "mango", "pear"), opt)
	if p.MinValue != "apple" || p.MaxValue != "pear" {
		t.Fatalf("range = %q..%q", p.MinValue, p.MaxValue)
	}
}

func TestProfileDeterministic(t *testing.T) {
	opt := analysis.DefaultOptions()
	col := strCol("mix", "a", "1", "2024-01-01", "", "a")
	p1 := analysis.ProfileColumn(col, opt)
	p2 := analysis.ProfileColumn(col, opt)
	if !reflect.DeepEqual(p1, p2) {
		t.Fatalf("profiles differ:\n%+v\n%+v", p1, p2)
	}
}
