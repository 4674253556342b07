// Package batch processes several measurement files in parallel. A failure
// in one document is recorded on its Outcome and never stops the others.
package batch

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/zscan.report/internal/chart"
	"github.com/banshee-data/zscan.report/internal/zscan"
)

// DefaultWorkers bounds concurrent documents when Options.Workers is unset.
const DefaultWorkers = 4

// Document is one uploaded file.
type Document struct {
	Name string
	Data []byte
}

// Outcome is the per-document result of a batch run. Exactly one of Result
// and Err is set, except that a render failure keeps the Result and sets Err.
type Outcome struct {
	Name   string
	Result *zscan.Result
	PNG    []byte
	Err    error
}

// OK reports whether the document was processed (and rendered, if requested)
// without error.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Options configures a batch run.
type Options struct {
	Workers int
	// Chart, when non-nil, renders a PNG for every non-empty result.
	Chart *chart.Options
}

// Runner processes documents through a pipeline function.
type Runner struct {
	process func(raw []byte, name string) (*zscan.Result, error)
	render  func(res *zscan.Result, o chart.Options) ([]byte, error)
}

// NewRunner returns a Runner backed by zscan.Process and chart.RenderPNG.
func NewRunner() *Runner {
	return &Runner{process: zscan.Process, render: renderPNG}
}

// Run processes docs with NewRunner.
func Run(ctx context.Context, docs []Document, opts Options) ([]Outcome, error) {
	return NewRunner().Run(ctx, docs, opts)
}

// Run processes every document and returns one Outcome per input, in input
// order. The returned error is non-nil only when ctx is cancelled; in that
// case documents that had not started carry ctx.Err().
func (r *Runner) Run(ctx context.Context, docs []Document, opts Options) ([]Outcome, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	out := make([]Outcome, len(docs))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, doc := range docs {
		out[i].Name = doc.Name
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			out[i] = r.one(doc, opts.Chart)
			return nil
		})
	}
	_ = eg.Wait()
	return out, ctx.Err()
}

func (r *Runner) one(doc Document, co *chart.Options) Outcome {
	o := Outcome{Name: doc.Name}
	res, err := r.process(doc.Data, doc.Name)
	if err != nil {
		o.Err = err
		return o
	}
	o.Result = res
	if co == nil || res.Empty() {
		return o
	}
	img, err := r.render(res, *co)
	if err != nil {
		o.Err = fmt.Errorf("render %s: %w", doc.Name, err)
		return o
	}
	o.PNG = img
	return o
}

func renderPNG(res *zscan.Result, o chart.Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := chart.RenderPNG(&buf, res, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
