package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/siherrmann/timeliner/core/format"
	"github.com/siherrmann/timeliner/model"
	"golang.org/x/sync/errgroup"
)

// FormatFunc turns a validated document into an example.
// Returning format.ErrFaultyDCT marks the document as skipped.
type FormatFunc func(doc *model.Document) (*model.Example, error)

// SkipReason classifies why a document produced no example.
type SkipReason string

const (
	SkipReasonMalformed      SkipReason = "malformed"
	SkipReasonFaultyDCT      SkipReason = "faulty_dct"
	SkipReasonOffsetMismatch SkipReason = "offset_mismatch"
	SkipReasonFormatError    SkipReason = "format_error"
)

// SkippedDocument is a per-document diagnostic.
type SkippedDocument struct {
	DocID  string
	Reason SkipReason
	Err    error
}

// Result of a pipeline run. Examples keep the order of the input documents.
type Result struct {
	Examples []*model.Example
	Skipped  []SkippedDocument
	// Filtered lists documents that were formatted but yielded no template.
	Filtered []string
}

// Pipeline formats documents into examples.
type Pipeline struct {
	Formatter FormatFunc
	workers   int
	verify    bool
	logger    *slog.Logger
	metrics   *Metrics
}

// NewPipeline creates a pipeline using format.FormatExample.
func NewPipeline(opts ...Option) *Pipeline {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Pipeline{
		Formatter: cfg.formatter,
		workers:   cfg.workers,
		verify:    cfg.verify,
		logger:    cfg.logger,
		metrics:   cfg.metrics,
	}
}

// SetFormatter replaces the format function.
func (p *Pipeline) SetFormatter(formatter FormatFunc) {
	p.Formatter = formatter
}

// Metrics returns the pipeline counters, nil if none are configured.
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

type outcome struct {
	example *model.Example
	skipped *SkippedDocument
}

// Run formats every document. Per-document failures never abort the run;
// only a cancelled context does.
func (p *Pipeline) Run(ctx context.Context, docs []*model.Document) (*Result, error) {
	outcomes := make([]outcome, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, doc := range docs {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = p.process(doc)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{}
	for _, o := range outcomes {
		switch {
		case o.skipped != nil:
			result.Skipped = append(result.Skipped, *o.skipped)
		case len(o.example.Templates) == 0:
			result.Filtered = append(result.Filtered, o.example.DocID)
		default:
			result.Examples = append(result.Examples, o.example)
		}
	}

	p.logger.Info("Formatted documents",
		slog.Int("documents", len(docs)),
		slog.Int("accepted", len(result.Examples)),
		slog.Int("skipped", len(result.Skipped)),
		slog.Int("filtered", len(result.Filtered)),
	)

	return result, nil
}

func (p *Pipeline) process(doc *model.Document) outcome {
	example, err := p.Formatter(doc)
	if err == nil && example == nil {
		err = errors.New("formatter returned no example")
	}
	if err == nil && p.verify {
		err = format.VerifyOffsets(example)
	}
	if err != nil {
		skipped := &SkippedDocument{DocID: doc.DocID, Reason: classify(err), Err: err}
		p.logger.Warn("Skipped document",
			slog.String("doc_id", doc.DocID),
			slog.String("reason", string(skipped.Reason)),
			slog.String("error", err.Error()),
		)
		p.metrics.observeSkipped(skipped.Reason)
		return outcome{skipped: skipped}
	}

	if len(example.Templates) == 0 {
		p.logger.Debug("Document yielded no templates", slog.String("doc_id", doc.DocID))
		p.metrics.observeFiltered()
	} else {
		p.metrics.observeAccepted(len(example.Templates))
	}

	return outcome{example: example}
}

func classify(err error) SkipReason {
	switch {
	case errors.Is(err, format.ErrFaultyDCT):
		return SkipReasonFaultyDCT
	case errors.Is(err, format.ErrOffsetMismatch):
		return SkipReasonOffsetMismatch
	case errors.Is(err, model.ErrMalformedDocument):
		return SkipReasonMalformed
	}
	return SkipReasonFormatError
}
