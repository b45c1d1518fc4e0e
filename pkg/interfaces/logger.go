package interfaces

import "context"

// Logger is the leveled logger every invites component writes to. Its
// method set matches go-logger so a glog logger needs only a thin wrapper.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// FieldsLogger is implemented by loggers that can pin fields (module,
// task_id, adapter) onto every later entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}

// LoggerProvider returns the logger for a module name such as
// "invites.pipeline" or "invites.adapters.geocoder".
type LoggerProvider interface {
	GetLogger(name string) Logger
}
