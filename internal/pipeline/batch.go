package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joshharrison/critpath/internal/ctxlog"
	"github.com/joshharrison/critpath/internal/render"
)

// FileResult is the outcome for one source in a batch.
type FileResult struct {
	Source  string
	Result  *Result // nil when Err is set
	Output  string  // rendered file, if any
	Err     error
	Elapsed time.Duration
}

// BatchResult collects every source of a batch in input order.
type BatchResult struct {
	RunID  string
	Files  []FileResult
	Failed int
}

// BatchOptions controls what RunBatch does with each successful result.
type BatchOptions struct {
	Render bool
	Format render.Format
}

// RunBatch analyses every source with at most cfg.Batch.Parallel running at
// once. A failing source is recorded and the rest continue.
func (r *Runner) RunBatch(ctx context.Context, srcs []string, opts BatchOptions) *BatchResult {
	runID := uuid.NewString()[:8]
	logger := ctxlog.FromContext(ctx).With("run_id", runID)
	ctx = ctxlog.WithLogger(ctx, logger)

	if opts.Render && r.cfg.Output.Dir != "" {
		if err := os.MkdirAll(r.cfg.Output.Dir, 0o755); err != nil {
			logger.Warn("creating output directory", "dir", r.cfg.Output.Dir, "err", err)
		}
	}

	files := make([]FileResult, len(srcs))
	var g errgroup.Group
	g.SetLimit(max(1, r.cfg.Batch.Parallel))

	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			files[i] = r.runOne(ctx, src, opts)
			return nil
		})
	}
	_ = g.Wait()

	br := &BatchResult{RunID: runID, Files: files}
	for _, f := range files {
		if f.Err != nil {
			br.Failed++
		}
	}
	logger.Debug("batch complete", "files", len(files), "failed", br.Failed)
	return br
}

func (r *Runner) runOne(ctx context.Context, src string, opts BatchOptions) FileResult {
	start := time.Now()
	fr := FileResult{Source: src}

	if err := ctx.Err(); err != nil {
		fr.Err = err
		return fr
	}

	res, err := r.Run(ctx, src)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("analysis failed", "source", src, "err", err)
		fr.Err = err
		fr.Elapsed = time.Since(start)
		return fr
	}
	fr.Result = res

	if opts.Render {
		out := OutputPath(r.cfg, src, opts.Format)
		if err := render.SaveFile(out, opts.Format, res.Input()); err != nil {
			fr.Err = err
		} else {
			fr.Output = out
		}
	}
	fr.Elapsed = time.Since(start)
	return fr
}
