package gologger

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-invites/internal/logging"
	"github.com/goliatone/go-invites/pkg/interfaces"
)

// ErrUnknownFormat is returned for formats go-logger does not provide.
var ErrUnknownFormat = errors.New("gologger: unknown format")

// Config selects the go-logger backend.
type Config struct {
	Level  string
	Format string
	Source bool
	// Focus limits output to the named module loggers (invites.pipeline, ...).
	Focus []string
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

func formatOption(format string) (glog.Option, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return glog.WithLoggerTypeJSON(), nil
	case "console":
		return glog.WithLoggerTypeConsole(), nil
	case "pretty":
		return glog.WithLoggerTypePretty(), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// Provider hands out go-logger children named after invites modules.
type Provider struct {
	root *glog.BaseLogger
}

func NewProvider(cfg Config) (*Provider, error) {
	format, err := formatOption(cfg.Format)
	if err != nil {
		return nil, err
	}
	options := []glog.Option{format}
	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		options = append(options, glog.WithLevel(level))
	}
	if cfg.Source {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	focus := slices.DeleteFunc(slices.Clone(cfg.Focus), func(name string) bool {
		return strings.TrimSpace(name) == ""
	})
	if len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root}, nil
}

func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name == "" {
		return wrap(p.root)
	}
	return wrap(p.root.GetLogger(name))
}

func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &adapter{inner: inner}
}

// adapter forwards to go-logger. Task fields carried on the context and
// fields pinned on a backend without WithFields support are sent as
// leading key/value pairs.
type adapter struct {
	inner  glog.Logger
	ctx    context.Context
	pinned map[string]any
}

func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, l.args(args)...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, l.args(args)...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, l.args(args)...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, l.args(args)...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, l.args(args)...) }
func (l *adapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, l.args(args)...) }

func (l *adapter) args(args []any) []any {
	extra := logging.ContextFields(l.ctx)
	if len(l.pinned) > 0 {
		if extra == nil {
			extra = map[string]any{}
		}
		maps.Copy(extra, l.pinned)
	}
	if len(extra) == 0 {
		return args
	}
	out := make([]any, 0, len(extra)*2+len(args))
	for _, key := range slices.Sorted(maps.Keys(extra)) {
		out = append(out, key, extra[key])
	}
	return append(out, args...)
}

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	if with, ok := l.inner.(glog.FieldsLogger); ok {
		return &adapter{inner: with.WithFields(maps.Clone(fields)), ctx: l.ctx, pinned: l.pinned}
	}
	pinned := maps.Clone(l.pinned)
	if pinned == nil {
		pinned = make(map[string]any, len(fields))
	}
	maps.Copy(pinned, fields)
	return &adapter{inner: l.inner, ctx: l.ctx, pinned: pinned}
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return &adapter{inner: l.inner.WithContext(ctx), ctx: ctx, pinned: l.pinned}
}
