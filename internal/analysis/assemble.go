package analysis

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/tablescribe/internal/dataset"
)

// Section scopes. Column sections keep the dataset's original column order.
const (
	ScopeDataset = "dataset"
	ScopeColumn  = "column"
	ScopeCross   = "cross"
)

// Section is one block of the report outline.
type Section struct {
	Scope    string    `json:"scope"`
	Column   string    `json:"column,omitempty"`
	Category Category  `json:"category,omitempty"`
	Findings []Finding `json:"findings"`
}

// Title returns the section heading used in Markdown and prompts.
func (s Section) Title() string {
	switch s.Scope {
	case ScopeColumn:
		return "Column: " + s.Column
	case ScopeCross:
		return "Cross-Column Notes"
	default:
		return "Dataset Summary"
	}
}

// ReportOutline is the assembled, narration-ready report skeleton.
type ReportOutline struct {
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	GeneratedAt time.Time  `json:"generated_at"`
	Rows        int        `json:"rows"`
	Columns     int        `json:"columns"`
	Truncated   bool       `json:"truncated,omitempty"`
	SampleRows  [][]string `json:"-"`
	Header      []string   `json:"-"`
	Sections    []Section  `json:"sections"`
}

// MissingFindingsError reports the consistency violation of a column section
// with no findings. Assembly refuses to emit such an outline.
type MissingFindingsError struct {
	Column string
}

func (e *MissingFindingsError) Error() string {
	return fmt.Sprintf("column %q produced no findings", e.Column)
}

// Assemble orders the computed pieces into a ReportOutline. It does no
// statistical or classification work of its own: profiles, categories, and
// findings arrive ready-made, and only grouping and ordering happen here.
func Assemble(ds *dataset.Dataset, profiles []ColumnProfile, cats []Category, findings [][]Finding, cross []Finding, opt Options) (*ReportOutline, error) {
	if len(profiles) != len(ds.Columns) || len(cats) != len(ds.Columns) || len(findings) != len(ds.Columns) {
		return nil, fmt.Errorf("assemble: got %d profiles, %d categories, %d finding sets for %d columns",
			len(profiles), len(cats), len(findings), len(ds.Columns))
	}

	now := time.Now
	if opt.Now != nil {
		now = opt.Now
	}
	title := opt.Title
	if title == "" {
		title = "Analysis of " + ds.Source
	}
	o := &ReportOutline{
		Title:       title,
		Source:      ds.Source,
		GeneratedAt: now(),
		Rows:        ds.Rows,
		Columns:     len(ds.Columns),
		Truncated:   ds.Truncated,
	}

	o.Sections = append(o.Sections, Section{
		Scope:    ScopeDataset,
		Findings: []Finding{datasetSummary(ds, profiles, cats)},
	})
	// A zero-row dataset yields the summary section alone; with no values
	// there is nothing to say per column.
	if ds.Rows > 0 {
		for i, col := range ds.Columns {
			if len(findings[i]) == 0 {
				return nil, &MissingFindingsError{Column: col.Name}
			}
			o.Sections = append(o.Sections, Section{
				Scope:    ScopeColumn,
				Column:   col.Name,
				Category: cats[i],
				Findings: findings[i],
			})
		}
		if len(cross) > 0 {
			o.Sections = append(o.Sections, Section{Scope: ScopeCross, Findings: cross})
		}
	}

	o.Header, o.SampleRows = sampleRows(ds, opt.SampleRows)
	return o, nil
}

// datasetSummary condenses shape and category tallies into the one finding
// of the leading section.
func datasetSummary(ds *dataset.Dataset, profiles []ColumnProfile, cats []Category) Finding {
	var cells, nulls int
	for _, p := range profiles {
		cells += p.Rows
		nulls += p.Nulls
	}
	missing := 0.0
	if cells > 0 {
		missing = float64(nulls) / float64(cells)
	}
	tally := make(map[Category]int, len(cats))
	for _, c := range cats {
		tally[c]++
	}
	facts := []Fact{
		{Key: "rows", Value: fmtInt(ds.Rows)},
		{Key: "columns", Value: fmtInt(len(ds.Columns))},
		{Key: "missing_cells", Value: fmtPct(missing)},
	}
	for _, c := range Categories() {
		if n := tally[c]; n > 0 {
			facts = append(facts, Fact{Key: string(c) + "_columns", Value: fmtInt(n)})
		}
	}
	return Finding{
		Code:    "dataset_shape",
		Kind:    FindingObservation,
		Summary: "dataset shape and semantic makeup",
		Facts:   facts,
	}
}

// sampleRows echoes the first rows for narration context.
func sampleRows(ds *dataset.Dataset, limit int) ([]string, [][]string) {
	if limit <= 0 || ds.Rows == 0 {
		return nil, nil
	}
	if limit > ds.Rows {
		limit = ds.Rows
	}
	header := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		header[i] = c.Name
	}
	rows := make([][]string, limit)
	for r := 0; r < limit; r++ {
		row := make([]string, len(ds.Columns))
		for c := range ds.Columns {
			if r < len(ds.Columns[c].Values) && !ds.Columns[c].Values[r].Null {
				row[c] = ds.Columns[c].Values[r].Raw
			}
		}
		rows[r] = row
	}
	return header, rows
}
