package kvcell

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a small leveled logger. Adapters for common stacks live in
// log/zap, log/logrus and log/slog. A nil Logger in Options disables logging.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// fieldLogger stamps every record with the cell's fixed fields. Fields given
// at the call site win on conflict.
type fieldLogger struct {
	next  Logger
	fixed Fields
}

func withFields(l Logger, fixed Fields) Logger {
	if _, ok := l.(NopLogger); ok || len(fixed) == 0 {
		return l
	}
	return fieldLogger{next: l, fixed: fixed}
}

func (l fieldLogger) merge(f Fields) Fields {
	out := make(Fields, len(l.fixed)+len(f))
	for k, v := range l.fixed {
		out[k] = v
	}
	for k, v := range f {
		out[k] = v
	}
	return out
}

func (l fieldLogger) Debug(msg string, f Fields) { l.next.Debug(msg, l.merge(f)) }
func (l fieldLogger) Info(msg string, f Fields)  { l.next.Info(msg, l.merge(f)) }
func (l fieldLogger) Warn(msg string, f Fields)  { l.next.Warn(msg, l.merge(f)) }
func (l fieldLogger) Error(msg string, f Fields) { l.next.Error(msg, l.merge(f)) }
