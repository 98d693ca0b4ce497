package log

import "github.com/sirupsen/logrus"

type logrusLogger struct {
	backend logrus.FieldLogger
}

var _ Logger = (*logrusLogger)(nil)

var rootLogger = &logrusLogger{
	backend: logrus.New(),
}

func (l *logrusLogger) Trace(msg string, fields ...interface{}) {
	if l.isEnabled(LevelTrace) {
		l.parseFields(fields).Debug(msg)
	}
}

func (l *logrusLogger) Debug(msg string, fields ...interface{}) {
	if l.isEnabled(LevelDebug) {
		l.parseFields(fields).Debug(msg)
	}
}

func (l *logrusLogger) Info(msg string, fields ...interface{}) {
	if l.isEnabled(LevelInfo) {
		l.parseFields(fields).Info(msg)
	}
}

func (l *logrusLogger) Warn(msg string, fields ...interface{}) {
	if l.isEnabled(LevelWarn) {
		l.parseFields(fields).Warn(msg)
	}
}

func (l *logrusLogger) Error(msg string, fields ...interface{}) {
	if l.isEnabled(LevelError) {
		l.parseFields(fields).Error(msg)
	}
}

func (l *logrusLogger) Sub(fields ...interface{}) Logger {
	return &logrusLogger{
		backend: l.parseFields(fields),
	}
}

func (l *logrusLogger) setBackendLevel(level Level) {
	backend, ok := l.backend.(*logrus.Logger)
	if !ok {
		return
	}
	switch level {
	case LevelTrace:
		backend.SetLevel(logrus.TraceLevel)
	case LevelDebug:
		backend.SetLevel(logrus.DebugLevel)
	case LevelInfo:
		backend.SetLevel(logrus.InfoLevel)
	case LevelWarn:
		backend.SetLevel(logrus.WarnLevel)
	case LevelError:
		backend.SetLevel(logrus.ErrorLevel)
	}
}

func (l *logrusLogger) isEnabled(level Level) bool {
	return level >= currLevel
}

func (l *logrusLogger) parseFields(fields []interface{}) logrus.FieldLogger {
	argLen := len(fields)
	if argLen == 0 {
		return l.backend
	}
	if argLen%2 != 0 {
		panic("must specify arguments as tuples")
	}

	lFields := make(logrus.Fields)
	for i := 0; i < argLen; i += 2 {
		k, ok := fields[i].(string)
		if !ok {
			panic("argument keys must be strings")
		}
		lFields[k] = fields[i+1]
	}
	return l.backend.WithFields(lFields)
}
