package analysis_test

import (
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/tablescribe/internal/analysis"
	"github.com/KaramelBytes/tablescribe/internal/dataset"
)

func buildOutline(t *testing.T, opt analysis.Options) *analysis.ReportOutline {
	t.Helper()
	ds := &dataset.Dataset{Source: "t.csv", Rows: 3, Columns: []dataset.Column{
		strCol("id", "1", "2", "3"),
		strCol("status", "a|b", "ok", "ok"),
	}}
	profiles, cats, findings := analyzeColumns(ds, opt)
	cross := analysis.SynthesizeCross(ds, profiles, opt)
	o, err := analysis.Assemble(ds, profiles, cats, findings, cross, opt)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return o
}

func TestOutlineMarkdownLayout(t *testing.T) {
	opt := analysis.DefaultOptions()
	opt.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	md := buildOutline(t, opt).Markdown()

	if !strings.HasPrefix(md, "# Analysis of t.csv\n\n*t.csv*\n\n") {
		t.Fatalf("markdown head = %q", md[:60])
	}
	for _, want := range []string{
		"2026-01-02 - 03:04:05",
		"## Dataset Summary",
		"## Column: id\nCategory: identifier\n",
		"- [observation] values act as a row identifier",
		"  - non_null: 3",
		"## Sample Rows",
		"| id | status |",
		"| --- | --- |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownEscapesPipes(t *testing.T) {
	opt := analysis.DefaultOptions()
	md := buildOutline(t, opt).Markdown()
	if !strings.Contains(md, "| 1 | a/b |") {
		t.Fatalf("pipe value not escaped:\n%s", md)
	}
	if strings.Contains(md, "a|b") {
		t.Fatal("raw pipe leaked into the table")
	}
}

func TestSectionMarkdownStandsAlone(t *testing.T) {
	opt := analysis.DefaultOptions()
	o := buildOutline(t, opt)
	sec := o.SectionMarkdown(1)
	if !strings.HasPrefix(sec, "## Column: id\n") {
		t.Fatalf("section head = %q", sec)
	}
	if strings.Contains(sec, "Sample Rows") {
		t.Fatal("section markdown should not include the sample appendix")
	}
}

func TestMarkdownOmitsEmptySampleAppendix(t *testing.T) {
	opt := analysis.DefaultOptions()
	opt.SampleRows = 0
	o := buildOutline(t, opt)
	if o.SampleRowsMarkdown() != "" {
		t.Fatal("sample table rendered without sample rows")
	}
	if strings.Contains(o.Markdown(), "## Sample Rows") {
		t.Fatal("sample appendix rendered without sample rows")
	}
}

func TestMarkdownDeterministic(t *testing.T) {
	opt := analysis.DefaultOptions()
	opt.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	a := buildOutline(t, opt).Markdown()
	b := buildOutline(t, opt).Markdown()
	if a != b {
		t.Fatal("two assemblies of the same dataset rendered differently")
	}
}
