package auth

import (
	"io"
	"os"

	"github.com/goliatone/go-errors"
	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to Logger
type ZerologLogger struct {
	zl zerolog.Logger
}

var _ Logger = ZerologLogger{}

// NewLogger returns a console Logger writing to w at the given level
// ("debug", "info", ...). Unknown levels fall back to info.
func NewLogger(w io.Writer, level, name string) ZerologLogger {
	if w == nil {
		w = os.Stdout
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(lvl).
		With().
		Timestamp().
		Str("logger", name).
		Logger()

	return ZerologLogger{zl: zl}
}

// NewZerologLogger wraps an existing zerolog.Logger
func NewZerologLogger(zl zerolog.Logger) ZerologLogger {
	return ZerologLogger{zl: zl}
}

func (l ZerologLogger) Debug(msg string, args ...any) { l.log(l.zl.Debug(), msg, args) }
func (l ZerologLogger) Info(msg string, args ...any)  { l.log(l.zl.Info(), msg, args) }
func (l ZerologLogger) Warn(msg string, args ...any)  { l.log(l.zl.Warn(), msg, args) }
func (l ZerologLogger) Error(msg string, args ...any) { l.log(l.zl.Error(), msg, args) }

func (l ZerologLogger) log(e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			e = e.Interface("!BADKEY", args[i])
			continue
		}
		e = withField(e, key, args[i+1])
	}
	e.Msg(msg)
}

func withField(e *zerolog.Event, key string, val any) *zerolog.Event {
	err, ok := val.(error)
	if !ok {
		return e.Interface(key, val)
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		e = e.Str("category", richErr.Category.String())
		if richErr.TextCode != "" {
			e = e.Str("text_code", richErr.TextCode)
		}
	}
	return e.AnErr(key, err)
}

func defLogger() Logger {
	return NewLogger(os.Stdout, "info", "auth")
}
