package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jenshnielsen/nanotune/algorithms/common"
	"github.com/jenshnielsen/nanotune/config"
	"github.com/jenshnielsen/nanotune/dataset"
	"github.com/jenshnielsen/nanotune/logging"
	"github.com/jenshnielsen/nanotune/npy"
	"golang.org/x/sync/errgroup"
)

// Options select what an export reads and where it writes.
type Options struct {
	// Category is a key of the configured feature lists, e.g. "pinchoff"
	// or "dotregime".
	Category string

	// Sources are the record collections to read, in output order.
	Sources []string

	// SkipIDs lists, per source, record IDs left out of the export.
	SkipIDs map[string][]int

	// AddFlipped adds a second, flipped sample of every record. A flipped
	// transport pinch-off resembles one measured with rf sensing.
	AddFlipped bool

	// Quality, when set, restricts the export to records of that quality.
	Quality *int

	// FileName defaults to the stage names joined by "_".
	FileName string

	// Folder defaults to the configured db_folder.
	Folder string

	// Readout defaults to the configured default readout.
	Readout string

	// Workers bounds the number of records prepared concurrently.
	// Values below 1 mean sequential processing.
	Workers int
}

// Result summarizes a finished export.
type Result struct {
	Path     string
	Tensor   *Tensor
	Metadata *Metadata

	// Failed counts records that were skipped because they could not be
	// loaded, prepared or labelled.
	Failed int
}

// Exporter condenses labelled records into a training tensor file.
type Exporter struct {
	cfg      *config.Config
	store    dataset.RecordStore
	preparer *Preparer
	logger   logging.Logger
	now      func() time.Time
}

// NewExporter creates an exporter reading from store; a nil logger uses the
// global one.
func NewExporter(cfg *config.Config, store dataset.RecordStore, logger logging.Logger) *Exporter {
	logger = logging.OrGlobal(logger)
	return &Exporter{
		cfg:      cfg,
		store:    store,
		preparer: NewPreparer(cfg, logger),
		logger:   logger,
		now:      time.Now,
	}
}

type exportJob struct {
	source string
	id     int
}

type recordOutcome struct {
	rows   []*Prepared
	infos  []RecordInfo
	labels []int
}

// Export reads every eligible record, condenses and labels it, and writes
// the resulting tensor once at the end. Records that fail are logged and
// skipped; sources whose IDs cannot be listed are logged and abandoned.
func (e *Exporter) Export(ctx context.Context, opts Options) (*Result, error) {
	if !e.cfg.HasCategory(opts.Category) {
		return nil, fmt.Errorf("%w: %q, use one of %v", ErrUnknownCategory, opts.Category, e.cfg.Categories())
	}
	if opts.Folder == "" {
		opts.Folder = e.cfg.DBFolder
	}
	if opts.Readout == "" {
		opts.Readout = e.cfg.Core.DefaultReadout
	}

	dim := e.cfg.Dimensionality(opts.Category)
	stages := e.cfg.Stages(opts.Category)
	shape, err := e.cfg.StandardShape(dim)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoStandardShape, err)
	}
	length := common.ShapeSize(shape)

	runID := uuid.NewString()
	logger := e.logger.WithFields(logging.Fields{
		"run_id":   runID,
		"category": opts.Category,
	})

	jobs, err := e.resolve(ctx, logger, opts, stages)
	if err != nil {
		return nil, err
	}
	logger.Info("resolved records", logging.Fields{"records": len(jobs), "sources": len(opts.Sources)})

	outcomes, err := e.process(ctx, logger, jobs, opts, dim)
	if err != nil {
		return nil, err
	}

	meta := &Metadata{
		RunID:          runID,
		CreatedAt:      e.now().UTC(),
		Category:       opts.Category,
		Stages:         stages,
		Dimensionality: dim,
		Shape:          shape,
		DataTypes:      e.cfg.Core.DataTypes,
		FillValue:      e.cfg.Core.FillValue,
		Readout:        opts.Readout,
	}

	failed := 0
	count := 0
	for _, out := range outcomes {
		if out == nil {
			failed++
			continue
		}
		count += len(out.rows)
	}

	tensor := NewTensor(e.cfg.ChannelCount(), count, length)
	r := 0
	for _, out := range outcomes {
		if out == nil {
			continue
		}
		for i, row := range out.rows {
			for c, values := range row.Channels {
				copy(tensor.Row(c, r), values)
			}
			tensor.SetLabel(r, float64(out.labels[i]))
			meta.Records = append(meta.Records, out.infos[i])
			r++
		}
	}

	name := opts.FileName
	if name == "" {
		name = strings.Join(stages, "_")
	}
	path := npy.WithExt(filepath.Join(opts.Folder, name))
	if err := persist(path, tensor, meta); err != nil {
		return nil, err
	}

	logger.Info("exported tensor", logging.Fields{
		"path":    path,
		"shape":   tensor.Shape(),
		"failed":  failed,
		"flipped": opts.AddFlipped,
	})

	return &Result{Path: path, Tensor: tensor, Metadata: meta, Failed: failed}, nil
}

// resolve lists the records to export in source-then-id order.
func (e *Exporter) resolve(ctx context.Context, logger logging.Logger, opts Options, stages []string) ([]exportJob, error) {
	var jobs []exportJob

	for _, source := range opts.Sources {
		var ids []int
		for _, stage := range stages {
			found, err := e.store.ResolveIDs(ctx, source, stage, opts.Quality)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				logger.Error(fmt.Errorf("%w: %w", ErrSourceResolution, err),
					"unable to load relevant ids", logging.Fields{"source": source, "stage": stage})
				break
			}
			ids = append(ids, found...)
		}
		if len(ids) == 0 {
			logger.Warn("no labelled data found", logging.Fields{"source": source})
			continue
		}

		skipped, listed := opts.SkipIDs[source]
		if opts.SkipIDs != nil && !listed {
			logger.Debug("no data ids to skip", logging.Fields{"source": source})
		}
		skip := make(map[int]bool, len(skipped))
		for _, id := range skipped {
			skip[id] = true
		}

		for _, id := range ids {
			if skip[id] {
				continue
			}
			jobs = append(jobs, exportJob{source: source, id: id})
		}
	}
	return jobs, nil
}

// process prepares all jobs with at most opts.Workers in flight. The
// outcome of job i lands at index i; failed jobs leave a nil entry.
func (e *Exporter) process(ctx context.Context, logger logging.Logger, jobs []exportJob, opts Options, dim int) ([]*recordOutcome, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]*recordOutcome, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out, err := e.processRecord(gctx, job, opts, dim)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Error(fmt.Errorf("%w: %w", ErrRecordProcessing, err),
					"skipping record", logging.Fields{"source": job.source, "id": job.id})
				return nil
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// processRecord loads one record and condenses it, plus its flipped twin
// when requested. Either every sample of the record succeeds or none is
// kept.
func (e *Exporter) processRecord(ctx context.Context, job exportJob, opts Options, dim int) (*recordOutcome, error) {
	rec, err := e.store.LoadRecord(ctx, job.source, job.id)
	if err != nil {
		return nil, err
	}

	got, err := rec.Dimension(opts.Readout)
	if err != nil {
		return nil, err
	}
	if got != dim {
		return nil, fmt.Errorf("%w: %dD record exported as %dD category %s", ErrShapeMismatch, got, dim, opts.Category)
	}

	out := &recordOutcome{}
	flips := []bool{false}
	if opts.AddFlipped {
		flips = append(flips, true)
	}

	// the guard rewrites rec on the first pass, so later passes inherit its verdict
	corrected := false
	for _, flip := range flips {
		row, err := e.preparer.Prepare(rec, opts.Category, flip, opts.Readout)
		if err != nil {
			return nil, err
		}
		corrected = corrected || row.Corrected
		row.Corrected = corrected
		label, err := EncodeLabel(rec.Labels, rec.Good(), opts.Category)
		if err != nil {
			return nil, err
		}
		out.rows = append(out.rows, row)
		out.labels = append(out.labels, label)
		out.infos = append(out.infos, RecordInfo{
			Source:    job.source,
			ID:        job.id,
			Flipped:   flip,
			Corrected: corrected,
			Label:     label,
		})
	}
	return out, nil
}
