package analysis

import (
	"fmt"
	"strings"
)

// Markdown renders the outline as a standalone document. Rendering is pure
// formatting over the assembled sections, so identical outlines produce
// byte-identical text.
func (o *ReportOutline) Markdown() string {
	var b strings.Builder
	b.WriteString("# " + o.Title + "\n\n")
	if o.Source != "" {
		b.WriteString(fmt.Sprintf("*%s*\n\n", o.Source))
	}
	b.WriteString(o.GeneratedAt.Format("2006-01-02 - 15:04:05") + "\n")
	for i := range o.Sections {
		b.WriteString("\n")
		b.WriteString(o.SectionMarkdown(i))
	}
	if len(o.SampleRows) > 0 {
		b.WriteString("\n## Sample Rows\n\n")
		writeRowTable(&b, o.Header, o.SampleRows)
	}
	return b.String()
}

// SectionMarkdown renders one section block. Narration prompts reuse this so
// the model sees exactly what the document shows.
func (o *ReportOutline) SectionMarkdown(i int) string {
	s := o.Sections[i]
	var b strings.Builder
	b.WriteString("## " + s.Title() + "\n")
	if s.Scope == ScopeColumn {
		b.WriteString(fmt.Sprintf("Category: %s\n", s.Category))
	}
	b.WriteString("\n")
	for _, f := range s.Findings {
		b.WriteString(fmt.Sprintf("- [%s] %s\n", f.Kind, f.Summary))
		for _, fact := range f.Facts {
			b.WriteString(fmt.Sprintf("  - %s: %s\n", fact.Key, safeVal(fact.Value)))
		}
	}
	return b.String()
}

// SampleRowsMarkdown renders the sample-row appendix table, or the empty
// string when the outline carries no sample rows.
func (o *ReportOutline) SampleRowsMarkdown() string {
	if len(o.SampleRows) == 0 {
		return ""
	}
	var b strings.Builder
	writeRowTable(&b, o.Header, o.SampleRows)
	return b.String()
}

func writeRowTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| ")
	for i, h := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(h))
	}
	b.WriteString(" |\n")
	b.WriteString("| ")
	for i := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range header {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			if len(val) > 80 {
				val = val[:77] + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
