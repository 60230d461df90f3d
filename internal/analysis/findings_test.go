package analysis_test

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/tablescribe/internal/analysis"
	"github.com/KaramelBytes/tablescribe/internal/dataset"
)

func findingCodes(fs []analysis.Finding) []string {
	codes := make([]string, len(fs))
	for i, f := range fs {
		codes[i] = f.Code
	}
	return codes
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSynthesizeIsTotal(t *testing.T) {
	opt := analysis.DefaultOptions()
	p := analysis.ProfileColumn(strCol("x", "a", "b"), opt)
	for _, cat := range analysis.Categories() {
		fs := analysis.Synthesize(p, cat, opt)
		if len(fs) == 0 {
			t.Fatalf("category %s produced no findings", cat)
		}
	}
	empty := analysis.ProfileColumn(strCol("ghost", "", ""), opt)
	if fs := analysis.Synthesize(empty, analysis.CategoryUnknown, opt); len(fs) == 0 {
		t.Fatal("empty column produced no findings")
	}
}

func TestSynthesizeOrdersByKindThenWeight(t *testing.T) {
	opt := analysis.DefaultOptions()
	p := analysis.ProfileColumn(strCol("user_id", "7", "7", "8", ""), opt)
	cat := analysis.Classify(p, opt)
	if cat != analysis.CategoryIdentifier {
		t.Fatalf("category = %s", cat)
	}
	fs := analysis.Synthesize(p, cat, opt)
	want := []string{
		"high_nulls",            // precaution, weight 90
		"identifier_duplicates", // precaution, weight 70
		"identifier_nulls",      // precaution, weight 60
		"identifier_profile",    // observation
		"identifier_usage",      // suggestion
	}
	if got := findingCodes(fs); !equalStrings(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	lastRank := -1
	rank := map[analysis.FindingKind]int{
		analysis.FindingPrecaution:  0,
		analysis.FindingObservation: 1,
		analysis.FindingSuggestion:  2,
	}
	for _, f := range fs {
		if rank[f.Kind] < lastRank {
			t.Fatalf("kind order violated at %s", f.Code)
		}
		lastRank = rank[f.Kind]
	}
}

func TestSynthesizeEmptyColumnPrecaution(t *testing.T) {
	opt := analysis.DefaultOptions()
	p := analysis.ProfileColumn(strCol("ghost", "", "", ""), opt)
	cat := analysis.Classify(p, opt)
	if cat != analysis.CategoryUnknown {
		t.Fatalf("category = %s", cat)
	}
	fs := analysis.Synthesize(p, cat, opt)
	want := []string{"empty_column", "unresolved_type"}
	if got := findingCodes(fs); !equalStrings(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	if fs[0].Kind != analysis.FindingPrecaution || fs[0].Summary != "column is entirely empty" {
		t.Fatalf("lead finding = %+v", fs[0])
	}
}

func TestSynthesizeBooleanEncodeWording(t *testing.T) {
	opt := analysis.DefaultOptions()
	encode := func(col dataset.Column) analysis.Finding {
		p := analysis.ProfileColumn(col, opt)
		for _, f := range analysis.Synthesize(p, analysis.CategoryBooleanFlag, opt) {
			if f.Code == "boolean_encode" {
				return f
			}
		}
		t.Fatalf("%s: boolean_encode missing", col.Name)
		return analysis.Finding{}
	}

	if f := encode(strCol("flag", "Y", "N", "Y")); !strings.Contains(f.Summary, "yes/no style tokens") {
		t.Fatalf("vocab summary = %q", f.Summary)
	}
	if f := encode(strCol("status", "active", "inactive")); !strings.Contains(f.Summary, "encode the two labels") {
		t.Fatalf("label summary = %q", f.Summary)
	}
	if f := encode(strCol("paid", "true", "false")); !strings.Contains(f.Summary, "already canonical") {
		t.Fatalf("boolean summary = %q", f.Summary)
	}
}

func TestSynthesizeCategoryImbalance(t *testing.T) {
	opt := analysis.DefaultOptions()
	vals := []string{"US", "US", "US", "US", "US", "US", "US", "US", "DE", "FR"}
	p := analysis.ProfileColumn(strCol("country", vals...), opt)
	cat := analysis.Classify(p, opt)
	if cat != analysis.CategoryCategorical {
		t.Fatalf("category = %s", cat)
	}
	fs := analysis.Synthesize(p, cat, opt)
	var found bool
	for _, f := range fs {
		if f.Code != "category_imbalance" {
			continue
		}
		found = true
		if f.Facts[0].Key != "dominant_value" || f.Facts[0].Value != "US" {
			t.Fatalf("facts = %v", f.Facts)
		}
		if f.Facts[1].Value != "80.00%" {
			t.Fatalf("dominant share = %q", f.Facts[1].Value)
		}
	}
	if !found {
		t.Fatalf("category_imbalance missing: %v", findingCodes(fs))
	}
}

func TestSynthesizeNumericOutlierPrecaution(t *testing.T) {
	opt := analysis.DefaultOptions()
	p := analysis.ProfileColumn(strCol("reading",
		"10", "11", "12", "13", "14", "15", "400", "10"), opt)
	cat := analysis.Classify(p, opt)
	if cat != analysis.CategoryContinuous {
		t.Fatalf("category = %s", cat)
	}
	fs := analysis.Synthesize(p, cat, opt)
	want := []string{"numeric_outliers", "numeric_summary", "numeric_scaling"}
	if got := findingCodes(fs); !equalStrings(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
}

func TestSynthesizeCrossFindings(t *testing.T) {
	opt := analysis.DefaultOptions()
	cols := []dataset.Column{
		strCol("a", "u", "v", "u"),
		strCol("b", "u", "v", "u"),
		strCol("c", "k", "k", "k"),
		strCol("g", "", "", ""),
	}
	ds := &dataset.Dataset{Source: "t.csv", Rows: 3, Truncated: true, Columns: cols}
	profiles := make([]analysis.ColumnProfile, len(cols))
	for i, col := range cols {
		profiles[i] = analysis.ProfileColumn(col, opt)
	}

	fs := analysis.SynthesizeCross(ds, profiles, opt)
	want := []string{
		"dataset_missingness", // precaution, weight 90
		"duplicate_columns",   // precaution, weight 40
		"constant_columns",    // observation, weight 50
		"ingestion_capped",    // observation, weight 30
	}
	if got := findingCodes(fs); !equalStrings(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	if fs[1].Facts[0].Value != "a ~ b" {
		t.Fatalf("pairs = %v", fs[1].Facts)
	}
	if fs[2].Facts[0].Value != "c" {
		t.Fatalf("constant columns = %v", fs[2].Facts)
	}
	if fs[3].Facts[0].Value != "3" {
		t.Fatalf("rows loaded = %v", fs[3].Facts)
	}
}

func TestSynthesizeCrossQuietOnCleanData(t *testing.T) {
	opt := analysis.DefaultOptions()
	cols := []dataset.Column{
		strCol("a", "1", "2", "1"),
		strCol("b", "x", "y", "z"),
	}
	ds := &dataset.Dataset{Source: "t.csv", Rows: 3, Columns: cols}
	profiles := []analysis.ColumnProfile{
		analysis.ProfileColumn(cols[0], opt),
		analysis.ProfileColumn(cols[1], opt),
	}
	if fs := analysis.SynthesizeCross(ds, profiles, opt); len(fs) != 0 {
		t.Fatalf("cross findings = %v, want none", findingCodes(fs))
	}
}
