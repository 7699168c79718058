package helper

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrettyHandler(t *testing.T) {
	t.Run("Create PrettyHandler with default options", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		require.NotNil(t, handler, "Expected NewPrettyHandler to return a non-nil handler")
		assert.NotNil(t, handler.Handler, "Expected handler to have a non-nil Handler field")
		assert.NotNil(t, handler.l, "Expected handler to have a non-nil logger field")
	})

	t.Run("Respects configured level", func(t *testing.T) {
		var buf bytes.Buffer
		opts := PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{Level: slog.LevelWarn},
		}
		handler := NewPrettyHandler(&buf, opts)

		assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
		assert.True(t, handler.Enabled(context.Background(), slog.LevelError))
	})
}

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		level slog.Level
		attr  slog.Attr
		want  []string
	}{
		{
			name:  "Handle DEBUG level log",
			level: slog.LevelDebug,
			attr:  slog.String("doc_id", "doc_1"),
			want:  []string{"DEBUG:", "doc_id", "doc_1"},
		},
		{
			name:  "Handle INFO level log",
			level: slog.LevelInfo,
			attr:  slog.Int("accepted", 42),
			want:  []string{"INFO:", "accepted", "42"},
		},
		{
			name:  "Handle WARN level log",
			level: slog.LevelWarn,
			attr:  slog.String("reason", "faulty dct"),
			want:  []string{"WARN:", "reason", "faulty dct"},
		},
		{
			name:  "Handle ERROR level log",
			level: slog.LevelError,
			attr:  slog.Bool("fatal", true),
			want:  []string{"ERROR:", "fatal", "true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewPrettyHandler(&buf, PrettyHandlerOptions{
				SlogOpts: slog.HandlerOptions{Level: slog.LevelDebug},
			})

			record := slog.NewRecord(time.Now(), tt.level, "document skipped", 0)
			record.AddAttrs(tt.attr)

			err := handler.Handle(ctx, record)
			assert.NoError(t, err, "Expected Handle to not return an error")

			output := buf.String()
			assert.Contains(t, output, "document skipped")
			for _, w := range tt.want {
				assert.Contains(t, output, w)
			}
		})
	}

	t.Run("Handle log with no attributes", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "simple message", 0)
		err := handler.Handle(ctx, record)

		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "{}", "Expected output to contain empty JSON object for attributes")
	})

	t.Run("Handle log formats timestamp correctly", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "time test", 0)
		err := handler.Handle(ctx, record)

		assert.NoError(t, err)
		assert.Regexp(t, `\[\d{2}:\d{2}:\d{2}\.\d{3}\]`, buf.String())
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Logs through the pretty handler", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, slog.LevelInfo)

		logger.Info("accepted examples", slog.Int("count", 3))
		logger.Debug("hidden")

		assert.Contains(t, buf.String(), "accepted examples")
		assert.Contains(t, buf.String(), "count")
		assert.NotContains(t, buf.String(), "hidden")
	})
}

func TestPrettyHandlerWithAttrsAndGroup(t *testing.T) {
	t.Run("Derived logger keeps pretty format and attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, slog.LevelInfo).With(slog.String("doc_id", "doc_1"))

		logger.Info("skipped document", slog.String("reason", "faulty_dct"))

		output := buf.String()
		assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\.\d{3}\]`, output, "Expected pretty line instead of plain JSON")
		assert.Contains(t, output, "INFO:")
		assert.NotContains(t, output, `"msg"`)
		assert.Contains(t, output, `"doc_id": "doc_1"`)
		assert.Contains(t, output, `"reason": "faulty_dct"`)
	})

	t.Run("Groups nest later attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, slog.LevelInfo).With(slog.String("run", "train")).WithGroup("pipeline")

		logger.Info("formatted documents", slog.Int("accepted", 2))

		var fields map[string]interface{}
		output := buf.String()
		start := strings.Index(output, "{")
		require.GreaterOrEqual(t, start, 0)
		require.NoError(t, json.Unmarshal([]byte(output[start:]), &fields))

		assert.Equal(t, "train", fields["run"])
		assert.Equal(t, map[string]interface{}{"accepted": float64(2)}, fields["pipeline"])
	})

	t.Run("Empty attributes and group return the same handler", func(t *testing.T) {
		handler := NewPrettyHandler(&bytes.Buffer{}, PrettyHandlerOptions{})

		assert.Same(t, handler, handler.WithAttrs(nil))
		assert.Same(t, handler, handler.WithGroup(""))
	})
}
