package xlog

import (
	"bytes"
	"io"

	"github.com/rs/zerolog"
)

// WriterSink returns a sink that writes every line to w with one Write call.
// Useful to send the safe path somewhere else than the formatted one.
func WriterSink(w io.Writer) Sink {
	return func(_ Level, buf []byte) (int, error) {
		return w.Write(buf)
	}
}

// ZerologSink returns a sink that forwards composed lines to a zerolog logger
// as the message of one event. The trailing line feed is dropped, the rest of
// the line (prefix included) is kept as is, so callers usually turn the
// OPT_DATE and OPT_TIME options off. FATAL lines are logged at fatal level
// without exiting. The sink reports the full line length as written.
func ZerologSink(zl zerolog.Logger) Sink {
	return func(level Level, buf []byte) (int, error) {
		zl.WithLevel(zerologLevel(level)).Msg(string(bytes.TrimSuffix(buf, []byte{'\n'})))
		return len(buf), nil
	}
}

func zerologLevel(level Level) zerolog.Level {
	switch level {
	case LVL_ALL, LVL_DEBUG:
		return zerolog.DebugLevel
	case LVL_INFO:
		return zerolog.InfoLevel
	case LVL_WARN:
		return zerolog.WarnLevel
	case LVL_ERROR:
		return zerolog.ErrorLevel
	case LVL_FATAL:
		return zerolog.FatalLevel
	default:
		return zerolog.NoLevel
	}
}
