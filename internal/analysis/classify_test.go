package analysis_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/KaramelBytes/tablescribe/internal/analysis"
	"github.com/KaramelBytes/tablescribe/internal/dataset"
)

func TestClassifyScenarios(t *testing.T) {
	opt := analysis.DefaultOptions()

	longNotes := []string{
		"customer asked for expedited shipping and a gift receipt on this order",
		"item arrived damaged; replacement sent after a short support exchange",
		"repeat buyer, prefers email contact and paperless invoices going forward",
	}

	manyShort := make([]string, 0, 31)
	for i := 0; i < 30; i++ {
		manyShort = append(manyShort, fmt.Sprintf("w%02d", i))
	}
	manyShort = append(manyShort, "w00")

	cases := []struct {
		col  dataset.Column
		want analysis.Category
	}{
		{strCol("id", "1", "2", "3", "4", "5"), analysis.CategoryIdentifier},
		{strCol("user_id", "7", "7", "8"), analysis.CategoryIdentifier},
		{strCol("token", "a-1", "b-2", "c-3", "d-4"), analysis.CategoryIdentifier},
		// All-distinct floats are measurements, not keys.
		{strCol("ratio", "1.5", "2.5", "3.5", "4.5"), analysis.CategoryContinuous},
		{strCol("status", "active", "inactive", "active", "active"), analysis.CategoryBooleanFlag},
		{strCol("flag", "Y", "N", "Y"), analysis.CategoryBooleanFlag},
		{strCol("paid", "true", "false", "true"), analysis.CategoryBooleanFlag},
		{strCol("bit", "0", "1", "0", "1"), analysis.CategoryBooleanFlag},
		{strCol("country", "US", "DE", "FR", "US", "DE", "US"), analysis.CategoryCategorical},
		{strCol("tier", "1", "2", "3", "1", "2", "1", "1", "2"), analysis.CategoryCategorical},
		{strCol("created_at", "2024-01-02", "2024-03-04", "2024-01-02"), analysis.CategoryDatetime},
		{strCol("notes", longNotes...), analysis.CategoryFreeText},
		{strCol("ghost", "", "", ""), analysis.CategoryUnknown},
		{strCol("misc", manyShort...), analysis.CategoryUnknown},
	}
	for _, tc := range cases {
		p := analysis.ProfileColumn(tc.col, opt)
		if got := analysis.Classify(p, opt); got != tc.want {
			t.Errorf("%s: classified %s, want %s", tc.col.Name, got, tc.want)
		}
	}
}

func TestClassifyMostlyDatesWithNoise(t *testing.T) {
	opt := analysis.DefaultOptions()
	vals := make([]string, 0, 10)
	for d := 1; d <= 8; d++ {
		vals = append(vals, fmt.Sprintf("2024-01-%02d", d))
	}
	vals = append(vals, "2024-01-01", "n/a") // 9 of 10 parse

	p := analysis.ProfileColumn(strCol("seen_at", vals...), opt)
	if got := analysis.Classify(p, opt); got != analysis.CategoryDatetime {
		t.Fatalf("classified %s, want datetime at the 0.9 parse ratio", got)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	opt := analysis.DefaultOptions()
	cols := []dataset.Column{
		strCol("id", "1", "2", "3"),
		strCol("status", "a", "b", "a"),
		strCol("ghost", "", ""),
	}
	for _, col := range cols {
		p := analysis.ProfileColumn(col, opt)
		first := analysis.Classify(p, opt)
		if again := analysis.Classify(p, opt); again != first {
			t.Fatalf("%s: %s then %s", col.Name, first, again)
		}
	}
}

func TestClassifyEmptyWinsOverName(t *testing.T) {
	opt := analysis.DefaultOptions()
	p := analysis.ProfileColumn(strCol("order_id", "", "", ""), opt)
	if got := analysis.Classify(p, opt); got != analysis.CategoryUnknown {
		t.Fatalf("all-null id column classified %s, want unknown", got)
	}
}

func TestCategoriesListedInRuleOrder(t *testing.T) {
	got := analysis.Categories()
	if len(got) != 7 {
		t.Fatalf("categories = %v", got)
	}
	if got[0] != analysis.CategoryIdentifier || got[len(got)-1] != analysis.CategoryUnknown {
		t.Fatalf("order = %v", got)
	}
	joined := ""
	for _, c := range got {
		joined += string(c) + " "
	}
	if !strings.Contains(joined, "boolean_flag datetime continuous categorical") {
		t.Fatalf("order = %v", got)
	}
}
