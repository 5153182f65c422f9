// Package logrus adapts a github.com/sirupsen/logrus logger to l2cache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/Johntang666/l2cache"
)

var _ l2cache.Logger = Logger{}

// Logger writes l2cache logs to E.
type Logger struct{ E *logrus.Entry }

// New returns a Logger writing to l with a "component" field.
func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "l2cache")}
}

func (l Logger) Debug(msg string, f l2cache.Fields) { l.E.WithFields(logrus.Fields(f)).Debug(msg) }
func (l Logger) Info(msg string, f l2cache.Fields)  { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f l2cache.Fields)  { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f l2cache.Fields) { l.E.WithFields(logrus.Fields(f)).Error(msg) }
