// Package zap adapts a go.uber.org/zap logger to l2cache.Logger.
package zap

import (
	"go.uber.org/zap"

	"github.com/Johntang666/l2cache"
)

var _ l2cache.Logger = Logger{}

// Logger writes l2cache logs to L.
type Logger struct{ L *zap.Logger }

// New returns a Logger writing to l, named "l2cache".
func New(l *zap.Logger) Logger {
	return Logger{L: l.Named("l2cache")}
}

func (z Logger) Debug(msg string, f l2cache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f l2cache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f l2cache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f l2cache.Fields) { z.L.Error(msg, fields(f)...) }

func fields(f l2cache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
