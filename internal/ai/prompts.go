package ai

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tablescribe/internal/analysis"
)

// narrationSystem is sent as the system instruction for every section call.
const narrationSystem = "You are a data analyst writing a profiling report for a general audience. " +
	"You receive statistical findings about one section of a tabular dataset and turn them into clear, " +
	"plain-language prose. Stick to the findings you are given; never invent numbers."

// SectionPrompt builds the prompt for one outline section. Exported so the
// report command can preview prompts in --dry-run and estimate token spend.
func SectionPrompt(o *analysis.ReportOutline, i int) string {
	sec := o.Sections[i]
	var sb strings.Builder
	sb.WriteString("[REPORT CONTEXT]\n")
	sb.WriteString(fmt.Sprintf("Report title: %s\n", o.Title))
	sb.WriteString(fmt.Sprintf("Source file: %s\n", o.Source))
	sb.WriteString(fmt.Sprintf("Shape: %d rows x %d columns\n\n", o.Rows, o.Columns))

	sb.WriteString("[SECTION FINDINGS]\n")
	sb.WriteString(o.SectionMarkdown(i))
	sb.WriteString("\n")

	sb.WriteString("[TASK]\n")
	switch sec.Scope {
	case analysis.ScopeDataset:
		sb.WriteString("Write two or three short paragraphs introducing this dataset: what it appears " +
			"to contain, its size and shape, and how complete it looks. Mention anything a reader " +
			"should keep in mind before trusting the numbers.\n")
	case analysis.ScopeColumn:
		sb.WriteString(fmt.Sprintf("Write three short parts about the column %q, as flowing paragraphs in this order:\n", sec.Column))
		sb.WriteString("1. What the column most likely represents and how to read its statistics.\n")
		sb.WriteString("2. Which chart types would suit it (describe them in words, do not draw anything) and why.\n")
		sb.WriteString("3. How to clean it: cover missing values, duplicates, and outliers where the findings show they apply.\n")
	case analysis.ScopeCross:
		sb.WriteString("Write one or two short paragraphs explaining these dataset-wide observations " +
			"and what a reader should do about them.\n")
	default:
		sb.WriteString("Write one or two short paragraphs summarizing these findings for a general audience.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("[OUTPUT FORMAT]\n")
	sb.WriteString(`Respond with a single JSON object and nothing else: {"prose": "...", "code": "..."}.` + "\n")
	sb.WriteString("The prose field holds your paragraphs (markdown emphasis allowed, no headings). ")
	sb.WriteString("The code field may hold one short pandas snippet demonstrating a cleaning or ")
	sb.WriteString("preparation step for this section, or be an empty string.\n")
	return sb.String()
}
