package collector

import (
	"context"
	"log/slog"
	"slices"

	"github.com/samber/lo"
)

// Handler returns a slog.Handler storing records at or above level in the recorder.
//
// Combine it with the run logger via slogmulti.Fanout to keep the log lines of a single test.
func (r *Recorder) Handler(level slog.Leveler) slog.Handler {
	return &logHandler{
		recorder: r,
		level:    level,
	}
}

type logHandler struct {
	recorder *Recorder
	level    slog.Leveler

	attrs  []slog.Attr
	groups []string
}

func (h *logHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.level.Level() <= level
}

func (h *logHandler) Handle(_ context.Context, record slog.Record) error {
	// Handler attributes must come before the record attributes, so the record is rebuilt.
	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	newRecord.AddAttrs(h.attrs...)

	attrs := []slog.Attr{}
	record.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, attr)
		return true
	})

	// Nest record attributes into the open groups, innermost first
	for i := len(h.groups) - 1; i >= 0; i-- {
		attrs = []slog.Attr{
			slog.Group(h.groups[i], lo.ToAnySlice(attrs)...),
		}
	}
	newRecord.AddAttrs(attrs...)

	h.recorder.logs.Add(newRecord)
	return nil
}

func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &logHandler{
		recorder: h.recorder,
		level:    h.level,

		attrs:  appendAttrsToGroup(h.groups, h.attrs, attrs...),
		groups: h.groups,
	}
}

func (h *logHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return &logHandler{
		recorder: h.recorder,
		level:    h.level,

		attrs:  h.attrs,
		groups: append(slices.Clone(h.groups), name),
	}
}

// Copied from github.com/samber/slog-mock
func appendAttrsToGroup(groups []string, actualAttrs []slog.Attr, newAttrs ...slog.Attr) []slog.Attr {
	actualAttrs = slices.Clone(actualAttrs)

	if len(groups) == 0 {
		return append(actualAttrs, newAttrs...)
	}

	for i := range actualAttrs {
		attr := actualAttrs[i]
		if attr.Key == groups[0] && attr.Value.Kind() == slog.KindGroup {
			actualAttrs[i] = slog.Group(groups[0], lo.ToAnySlice(appendAttrsToGroup(groups[1:], attr.Value.Group(), newAttrs...))...)
			return actualAttrs
		}
	}

	return append(
		actualAttrs,
		slog.Group(
			groups[0],
			lo.ToAnySlice(appendAttrsToGroup(groups[1:], []slog.Attr{}, newAttrs...))...,
		),
	)
}
