package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/kardianos/service"
	slogmulti "github.com/samber/slog-multi"
)

// Setup builds the process logger. Records go to out as text and, when svc
// is non-nil, to the system logger as well. The result is also installed as
// the slog default.
func Setup(svc service.Logger, out io.Writer, level slog.Level) *slog.Logger {
	handlers := []slog.Handler{
		slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}),
	}
	if svc != nil {
		handlers = append(handlers, &ServiceHandler{svc: svc, level: level})
	}

	logger := slog.New(slogmulti.Fanout(handlers...))
	slog.SetDefault(logger)
	return logger
}

// ServiceHandler forwards slog records to a kardianos/service logger
// (journald, syslog or the Windows event log).
type ServiceHandler struct {
	svc   service.Logger
	level slog.Leveler
	// steps holds WithAttrs and WithGroup calls in call order.
	steps []step
}

// step is one WithGroup (group set) or WithAttrs (attrs set) call.
type step struct {
	group string
	attrs []slog.Attr
}

// NewServiceHandler returns a handler writing records at or above level to svc.
func NewServiceHandler(svc service.Logger, level slog.Leveler) *ServiceHandler {
	return &ServiceHandler{svc: svc, level: level}
}

func (h *ServiceHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.level != nil {
		threshold = h.level.Level()
	}
	return level >= threshold
}

// Handle renders the record without time and level, which the system
// logger adds itself.
func (h *ServiceHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.svc == nil {
		return nil
	}

	var buf bytes.Buffer
	var handler slog.Handler = slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
				return slog.Attr{}
			}
			return a
		},
	})
	for _, st := range h.steps {
		if st.group != "" {
			handler = handler.WithGroup(st.group)
		} else {
			handler = handler.WithAttrs(st.attrs)
		}
	}
	if err := handler.Handle(ctx, r); err != nil {
		return err
	}
	msg := strings.TrimSpace(buf.String())

	switch {
	case r.Level >= slog.LevelError:
		return h.svc.Error(msg)
	case r.Level >= slog.LevelWarn:
		return h.svc.Warning(msg)
	default:
		return h.svc.Info(msg)
	}
}

func (h *ServiceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(step{attrs: attrs})
}

func (h *ServiceHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(step{group: name})
}

func (h *ServiceHandler) with(st step) *ServiceHandler {
	next := *h
	next.steps = append(append([]step{}, h.steps...), st)
	return &next
}
