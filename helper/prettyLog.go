package helper

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"slices"

	"github.com/fatih/color"
)

// PrettyHandlerOptions configures a PrettyHandler.
type PrettyHandlerOptions struct {
	SlogOpts slog.HandlerOptions
}

// PrettyHandler is a slog.Handler printing one colored line per record:
// [15:04:05.000] LEVEL: message {attrs}
type PrettyHandler struct {
	slog.Handler
	l      *log.Logger
	attrs  []slog.Attr
	groups []string
}

// NewPrettyHandler creates a PrettyHandler writing to out.
func NewPrettyHandler(out io.Writer, opts PrettyHandlerOptions) *PrettyHandler {
	return &PrettyHandler{
		Handler: slog.NewJSONHandler(out, &opts.SlogOpts),
		l:       log.New(out, "", 0),
	}
}

// Handle formats and writes the record.
func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch r.Level {
	case slog.LevelDebug:
		level = color.MagentaString(level)
	case slog.LevelInfo:
		level = color.BlueString(level)
	case slog.LevelWarn:
		level = color.YellowString(level)
	case slog.LevelError:
		level = color.RedString(level)
	}

	fields := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		addAttr(fields, a)
	}

	recordAttrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		recordAttrs = append(recordAttrs, a)
		return true
	})
	for _, a := range h.scoped(recordAttrs) {
		addAttr(fields, a)
	}

	b, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return err
	}

	timeStr := r.Time.Format("[15:04:05.000]")
	msg := color.CyanString(r.Message)

	h.l.Println(timeStr, level, msg, color.WhiteString(string(b)))

	return nil
}

// WithAttrs returns a PrettyHandler adding attrs to every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return &PrettyHandler{
		Handler: h.Handler.WithAttrs(attrs),
		l:       h.l,
		attrs:   append(slices.Clip(h.attrs), h.scoped(attrs)...),
		groups:  h.groups,
	}
}

// WithGroup returns a PrettyHandler nesting later attributes under name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &PrettyHandler{
		Handler: h.Handler.WithGroup(name),
		l:       h.l,
		attrs:   h.attrs,
		groups:  append(slices.Clip(h.groups), name),
	}
}

// scoped nests attrs under the open groups, innermost first.
func (h *PrettyHandler) scoped(attrs []slog.Attr) []slog.Attr {
	if len(attrs) == 0 {
		return attrs
	}
	for i := len(h.groups) - 1; i >= 0; i-- {
		attrs = []slog.Attr{{Key: h.groups[i], Value: slog.GroupValue(attrs...)}}
	}
	return attrs
}

func addAttr(fields map[string]interface{}, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() != slog.KindGroup {
		fields[a.Key] = a.Value.Any()
		return
	}

	group := a.Value.Group()
	if len(group) == 0 {
		return
	}
	target := fields
	if a.Key != "" {
		sub, ok := fields[a.Key].(map[string]interface{})
		if !ok {
			sub = map[string]interface{}{}
			fields[a.Key] = sub
		}
		target = sub
	}
	for _, ga := range group {
		addAttr(target, ga)
	}
}

// NewLogger returns a slog.Logger using a PrettyHandler on out.
func NewLogger(out io.Writer, level slog.Level) *slog.Logger {
	opts := PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: level,
		},
	}
	return slog.New(NewPrettyHandler(out, opts))
}
