// Package log is a small leveled, structured logging facade used by the
// destream trace middleware. Fields are passed as alternating key-value
// pairs.
package log

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func NewLevel(l string) (Level, error) {
	switch l {
	case LevelTrace.String():
		return LevelTrace, nil
	case LevelDebug.String():
		return LevelDebug, nil
	case LevelInfo.String():
		return LevelInfo, nil
	case LevelWarn.String():
		return LevelWarn, nil
	case LevelError.String():
		return LevelError, nil
	default:
		return LevelTrace, errors.New("invalid log level")
	}
}

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		panic("invalid level")
	}
}

type Logger interface {
	Trace(string, ...interface{})
	Debug(string, ...interface{})
	Info(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Sub(...interface{}) Logger
}

var currLevel = LevelInfo

// SetLevel sets the level for the root logger and every logger derived from
// it.
func SetLevel(level Level) {
	currLevel = level
	rootLogger.setBackendLevel(level)
}

// WithModule returns a logger tagged with a module name.
func WithModule(name string) Logger {
	return rootLogger.Sub("module", name)
}

func init() {
	// trace by default under go test
	if strings.HasSuffix(os.Args[0], ".test") {
		SetLevel(LevelTrace)
	}
}
