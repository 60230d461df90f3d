package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/tablescribe/internal/dataset"
)

// Result bundles every artifact of the offline pipeline.
type Result struct {
	Dataset    *dataset.Dataset
	Profiles   []ColumnProfile
	Categories []Category
	Findings   [][]Finding
	Cross      []Finding
	Outline    *ReportOutline
}

// Run profiles, classifies, and synthesizes every column, then assembles the
// outline. With Workers > 1 columns are processed concurrently; each worker
// writes only its own index, so section order still follows the dataset.
func Run(ctx context.Context, ds *dataset.Dataset, opt Options) (*Result, error) {
	n := len(ds.Columns)
	res := &Result{
		Dataset:    ds,
		Profiles:   make([]ColumnProfile, n),
		Categories: make([]Category, n),
		Findings:   make([][]Finding, n),
	}

	analyzeColumn := func(i int) {
		p := ProfileColumn(ds.Columns[i], opt)
		c := Classify(p, opt)
		res.Profiles[i] = p
		res.Categories[i] = c
		res.Findings[i] = Synthesize(p, c, opt)
	}

	if opt.Workers > 1 && n > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opt.Workers)
		for i := 0; i < n; i++ {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				analyzeColumn(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := 0; i < n; i++ {
			analyzeColumn(i)
		}
	}

	res.Cross = SynthesizeCross(ds, res.Profiles, opt)
	outline, err := Assemble(ds, res.Profiles, res.Categories, res.Findings, res.Cross, opt)
	if err != nil {
		return nil, err
	}
	res.Outline = outline
	return res, nil
}
