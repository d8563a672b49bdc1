package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/kvcell"
)

var _ kvcell.Logger = LogrusLogger{}

// LogrusLogger adapts a *logrus.Entry. An "err" field is attached with
// WithError so formatters render it as logrus.ErrorKey.
type LogrusLogger struct{ E *logrus.Entry }

func (l LogrusLogger) entry(f kvcell.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	fields := make(logrus.Fields, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			fields[logrus.ErrorKey] = err
			continue
		}
		fields[k] = v
	}
	return l.E.WithFields(fields)
}

func (l LogrusLogger) Debug(msg string, f kvcell.Fields) { l.entry(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f kvcell.Fields)  { l.entry(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f kvcell.Fields)  { l.entry(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f kvcell.Fields) { l.entry(f).Error(msg) }
