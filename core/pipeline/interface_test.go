package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/siherrmann/timeliner/core/format"
	"github.com/siherrmann/timeliner/helper"
	"github.com/siherrmann/timeliner/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocument(t *testing.T, docID, dct string, labels model.LabelSequence) *model.Document {
	t.Helper()

	doc, err := model.NewDocument(model.RawDocument{
		DocID: docID,
		Title: "Aspirin",
		Body:  "I started aspirin on 2020-01-05 and stopped 2020-01-10",
		DCT:   dct,
		Meds: []model.Mention{
			{Type: model.EntityTypeMedication, EntityID: "med_1", Source: model.SourceTitle, Span: model.Span{Start: 0, End: 7}, String: "Aspirin"},
		},
		Dates: []model.Mention{
			{Type: model.EntityTypeDate, EntityID: "date_1", Source: model.SourceBody, Span: model.Span{Start: 21, End: 31}, String: "2020-01-05"},
			{Type: model.EntityTypeDate, EntityID: "date_2", Source: model.SourceBody, Span: model.Span{Start: 44, End: 54}, String: "2020-01-10"},
		},
		Labels: model.Labels{"med_1": labels},
	})
	require.NoError(t, err)

	return doc
}

var (
	acceptedLabels = model.LabelSequence{
		{DateID: "date_1", Label: model.LabelStart},
		{DateID: "date_2", Label: model.LabelStop},
	}
	rejectedLabels = model.LabelSequence{
		{DateID: model.DCTKey, Label: model.LabelBefore},
		{DateID: "date_1", Label: model.LabelStart},
	}
)

func TestNewPipeline(t *testing.T) {
	t.Run("Create pipeline with defaults", func(t *testing.T) {
		p := NewPipeline()

		require.NotNil(t, p)
		assert.NotNil(t, p.Formatter)
		assert.Positive(t, p.workers)
		assert.True(t, p.verify)
		assert.Nil(t, p.Metrics())
	})

	t.Run("Create pipeline with options", func(t *testing.T) {
		metrics := NewMetrics(prometheus.NewRegistry())
		p := NewPipeline(WithWorkers(3), WithVerify(false), WithMetrics(metrics), WithWorkers(0))

		assert.Equal(t, 3, p.workers)
		assert.False(t, p.verify)
		assert.Same(t, metrics, p.Metrics())
	})

	t.Run("SetFormatter replaces the formatter", func(t *testing.T) {
		p := NewPipeline()
		called := false
		p.SetFormatter(func(doc *model.Document) (*model.Example, error) {
			called = true
			return &model.Example{DocID: doc.DocID}, nil
		})

		_, err := p.Run(context.Background(), []*model.Document{{DocID: "doc_1"}})

		require.NoError(t, err)
		assert.True(t, called)
	})
}

func TestPipelineRun(t *testing.T) {
	t.Run("Separates accepted, filtered and skipped documents", func(t *testing.T) {
		var buf bytes.Buffer
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)
		p := NewPipeline(WithLogger(helper.NewLogger(&buf, slog.LevelInfo)), WithMetrics(metrics))

		docs := []*model.Document{
			newDocument(t, "doc_ok", "2020-01-01", acceptedLabels),
			newDocument(t, "doc_faulty", model.MinDate, acceptedLabels),
			newDocument(t, "doc_empty", "2020-01-01", rejectedLabels),
		}

		result, err := p.Run(context.Background(), docs)

		require.NoError(t, err)
		require.Len(t, result.Examples, 1)
		assert.Equal(t, "doc_ok", result.Examples[0].DocID)
		assert.Equal(t, []string{"doc_empty"}, result.Filtered)

		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "doc_faulty", result.Skipped[0].DocID)
		assert.Equal(t, SkipReasonFaultyDCT, result.Skipped[0].Reason)
		assert.ErrorIs(t, result.Skipped[0].Err, format.ErrFaultyDCT)

		assert.Equal(t, 1, strings.Count(buf.String(), "Skipped document"), "Expected exactly one diagnostic")
		assert.Contains(t, buf.String(), "doc_faulty")

		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Documents.WithLabelValues("accepted")))
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Documents.WithLabelValues("skipped")))
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Documents.WithLabelValues("filtered")))
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Skipped.WithLabelValues("faulty_dct")))
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Templates))
	})

	t.Run("Returns empty result for no documents", func(t *testing.T) {
		p := NewPipeline(WithLogger(slog.New(slog.DiscardHandler)))

		result, err := p.Run(context.Background(), nil)

		require.NoError(t, err, "Expected a finished run to not report its own cancellation")
		require.NotNil(t, result)
		assert.Empty(t, result.Examples)
		assert.Empty(t, result.Skipped)
	})

	t.Run("Keeps input order with many workers", func(t *testing.T) {
		p := NewPipeline(WithWorkers(8), WithLogger(slog.New(slog.DiscardHandler)))

		var docs []*model.Document
		for i := 0; i < 50; i++ {
			docs = append(docs, newDocument(t, fmt.Sprintf("doc_%02d", i), "2020-01-01", acceptedLabels))
		}

		result, err := p.Run(context.Background(), docs)

		require.NoError(t, err)
		require.Len(t, result.Examples, 50)
		for i, ex := range result.Examples {
			assert.Equal(t, fmt.Sprintf("doc_%02d", i), ex.DocID)
		}
	})

	t.Run("Offset mismatch is skipped when verifying", func(t *testing.T) {
		p := NewPipeline(
			WithLogger(slog.New(slog.DiscardHandler)),
			WithFormatter(func(doc *model.Document) (*model.Example, error) {
				return &model.Example{
					DocID:     doc.DocID,
					DocText:   "text",
					Templates: model.Templates{{StartMax: model.Slot{{String: "nope", Offset: 0}}}},
				}, nil
			}),
		)

		result, err := p.Run(context.Background(), []*model.Document{{DocID: "doc_1"}})

		require.NoError(t, err)
		assert.Empty(t, result.Examples)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, SkipReasonOffsetMismatch, result.Skipped[0].Reason)
	})

	t.Run("Unknown formatter errors are skipped", func(t *testing.T) {
		p := NewPipeline(
			WithLogger(slog.New(slog.DiscardHandler)),
			WithFormatter(func(doc *model.Document) (*model.Example, error) {
				return nil, errors.New("boom")
			}),
		)

		result, err := p.Run(context.Background(), []*model.Document{{DocID: "doc_1"}, {DocID: "doc_2"}})

		require.NoError(t, err)
		require.Len(t, result.Skipped, 2)
		assert.Equal(t, SkipReasonFormatError, result.Skipped[1].Reason)
	})

	t.Run("Cancelled context aborts the run", func(t *testing.T) {
		var calls atomic.Int32
		p := NewPipeline(
			WithWorkers(1),
			WithLogger(slog.New(slog.DiscardHandler)),
			WithFormatter(func(doc *model.Document) (*model.Example, error) {
				calls.Add(1)
				return &model.Example{DocID: doc.DocID}, nil
			}),
		)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := p.Run(ctx, []*model.Document{{DocID: "doc_1"}, {DocID: "doc_2"}})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, result)
		assert.Zero(t, calls.Load())
	})
}

func TestMetricsObserveRejected(t *testing.T) {
	t.Run("Counts rejected documents as malformed skips", func(t *testing.T) {
		metrics := NewMetrics(prometheus.NewRegistry())

		metrics.ObserveRejected(2)
		metrics.ObserveRejected(0)

		assert.Equal(t, float64(2), testutil.ToFloat64(metrics.Skipped.WithLabelValues("malformed")))
		assert.Equal(t, float64(2), testutil.ToFloat64(metrics.Documents.WithLabelValues("skipped")))
	})

	t.Run("Nil metrics are ignored", func(t *testing.T) {
		var metrics *Metrics

		assert.NotPanics(t, func() { metrics.ObserveRejected(1) })
	})
}
