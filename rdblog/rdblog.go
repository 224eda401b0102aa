// Package rdblog is a thin logrus wrapper giving every subsystem the
// same bracketed-prefix line shape a plain log.Printf call would use
// (e.g. "[Cluster] Added cluster member %s"), but as structured fields
// instead of format-string interpolation.
package rdblog

import (
	"github.com/sirupsen/logrus"
)

// Logger is a component-scoped logger: every entry it emits carries a
// "component" field instead of a "[Component]" string prefix.
type Logger struct {
	entry *logrus.Entry
}

var base = logrus.New()

// For returns a Logger scoped to component, e.g. "dispatch",
// "backfill", "cluster".
func For(component string) *Logger {
	return &Logger{entry: base.WithField("component", component)}
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// WithField returns a Logger that also carries key/value on every
// entry, for call sites that want to attach e.g. a shard index or
// request id without repeating it in every format string.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// SetLevel adjusts the package-wide logrus level every Logger shares.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}
