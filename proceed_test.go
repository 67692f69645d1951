package xlog

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func warnArgs(id ModuleID) *Args {
	return &Args{OPT_DEFAULT, COLOR_NONE, FUNCTION_NONE, LINE_NONE, LVL_WARN, id}
}

func Test_Logger_EndToEnd(t *testing.T) {
	src := &FileConfigSource{DevDir: t.TempDir(), PrdDir: t.TempDir()}
	l, out, ferr := newTestLogger(WithConfigSource(src))
	assert.NoError(t, l.Init(testCORE, "", 0))
	assert.Equal(t, LVL_INFO, l.GetLevel(testCORE))
	out.Clear()

	n, err := l.Printf(warnArgs(testCORE), "disk at %d%%", 91)
	assert.NoError(t, err)
	assert.Positive(t, n)
	assert.Equal(t, len(out.buffer), n)
	assert.True(t, strings.HasSuffix(out.String(), " :WARN : disk at 91%\n"), out.String())
	assert.Regexp(t, `^\d{8} \d{2}:\d{2}:\d{2}:\d{3} CORE  :WARN : disk at 91%\n$`, out.String())

	out.Clear()
	debug := *warnArgs(testCORE)
	debug.Level = LVL_DEBUG
	n, err = l.Printf(&debug, "disk at %d%%", 91)
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, out.buffer)
	assert.Empty(t, ferr.buffer)
}

func Test_Logger_Printf(t *testing.T) {
	l, out, ferr := newTestLogger()
	args := &Args{OPT_LF | OPT_MOD_NAME, COLOR_NONE, FUNCTION_NONE, LINE_NONE, LVL_INFO, testCORE}
	prep := func() {
		out.Clear()
		ferr.Clear()
	}

	t.Run("default_args", func(t *testing.T) {
		prep()
		l.SetLevel(MODULE_XLOG, LVL_FATAL)
		n, err := l.Printf(nil, "hello %s", "world")
		assert.NoError(t, err)
		assert.Equal(t, len(out.buffer), n)
		assert.True(t, strings.HasSuffix(out.String(), " XLOG  : hello world\n"), out.String())
	})
	t.Run("plain", func(t *testing.T) {
		prep()
		n, err := l.Printf(args, "%d-%s", 7, "x")
		assert.NoError(t, err)
		assert.Equal(t, 12, n)
		assert.Equal(t, "CORE  : 7-x\n", out.String())
	})
	t.Run("vprintf", func(t *testing.T) {
		prep()
		n, err := l.Vprintf(args, "%d-%s", []any{7, "x"})
		assert.NoError(t, err)
		assert.Equal(t, 12, n)
		assert.Equal(t, "CORE  : 7-x\n", out.String())
	})
	t.Run("filtered", func(t *testing.T) {
		prep()
		l.SetLevel(testCORE, LVL_ERROR)
		defer l.SetLevel(testCORE, LVL_INFO)
		n, err := l.Printf(args, "")
		assert.NoError(t, err, "filtered before the format is checked")
		assert.Zero(t, n)
		assert.Empty(t, out.buffer)
	})
	t.Run("empty_format", func(t *testing.T) {
		prep()
		n, err := l.Printf(args, "")
		assert.ErrorIs(t, err, ErrEmptyMessage)
		assert.Zero(t, n)
		assert.Empty(t, out.buffer)
	})
	t.Run("bad_color", func(t *testing.T) {
		prep()
		bad := *args
		bad.Options |= OPT_COLOR
		bad.Color = "\x1b[1;33m"
		n, err := l.Printf(&bad, "x")
		assert.ErrorIs(t, err, ErrBadColor)
		assert.Zero(t, n)
		assert.Empty(t, out.buffer)
	})
	t.Run("invalid_module", func(t *testing.T) {
		prep()
		l.SetLevel(MODULE_XLOG, LVL_ALL)
		defer l.SetLevel(MODULE_XLOG, LVL_FATAL)
		bad := *args
		bad.ID = 77
		n, err := l.Printf(&bad, "x")
		assert.NoError(t, err)
		assert.Zero(t, n)
		assert.Contains(t, out.String(), "invalid module id <77>")
		assert.NotContains(t, out.String(), "x\n")
	})
}

func Test_Logger_Fprintf(t *testing.T) {
	l, out, ferr := newTestLogger()
	args := &Args{OPT_LF, COLOR_NONE, FUNCTION_NONE, LINE_NONE, LVL_WARN, testNET}
	prep := func() {
		out.Clear()
		ferr.Clear()
	}
	t.Run("stream", func(t *testing.T) {
		prep()
		w := &FakeWriter{}
		n, err := l.Fprintf(args, w, "to %s", "stream")
		assert.NoError(t, err)
		assert.Equal(t, 10, n)
		assert.Equal(t, "to stream\n", w.String())
		assert.Empty(t, out.buffer)
	})
	t.Run("vfprintf", func(t *testing.T) {
		prep()
		w := &FakeWriter{}
		n, err := l.Vfprintf(args, w, "to %s", []any{"stream"})
		assert.NoError(t, err)
		assert.Equal(t, 10, n)
		assert.Equal(t, "to stream\n", w.String())
	})
	t.Run("nil_stream", func(t *testing.T) {
		prep()
		n, err := l.Fprintf(args, nil, "x")
		assert.ErrorIs(t, err, ErrNilWriter)
		assert.Zero(t, n)
	})
	t.Run("error_writer", func(t *testing.T) {
		prep()
		n, err := l.Fprintf(args, &ErrorWriter{}, "x")
		assert.EqualError(t, err, errorStr)
		assert.Zero(t, n)
		assert.Contains(t, ferr.String(), errorStr+"\n")
	})
	t.Run("panic_writers", func(t *testing.T) {
		prep()
		for _, w := range []io.Writer{&PanicWriter{}, &NilPanicWriter{}, &ZeroPanicWriter{}} {
			assert.NotPanics(t, func() {
				n, err := l.Fprintf(args, w, "x")
				assert.Error(t, err)
				assert.Zero(t, n)
			})
		}
		assert.Contains(t, ferr.String(), "`"+panicStr+"`\n")
		assert.Equal(t, 1, strings.Count(ferr.String(), _ERROR_UNKNOWN_PANIC_TEXT+"\n"))
		assert.Equal(t, 3, strings.Count(ferr.String(), "panic writing log to output"))
	})
	t.Run("short_write_not_retried", func(t *testing.T) {
		prep()
		calls := 0
		w := writerFunc(func(p []byte) (int, error) {
			calls++
			return len(p) / 2, io.ErrShortWrite
		})
		n, err := l.Fprintf(args, w, "abcdefgh")
		assert.ErrorIs(t, err, io.ErrShortWrite)
		assert.Equal(t, 4, n)
		assert.Equal(t, 1, calls)
	})
	t.Run("truncated", func(t *testing.T) {
		l, _, _ := newTestLogger(WithBufferSize(8))
		w := &FakeWriter{}
		n, err := l.Fprintf(args, w, "%s", "0123456789")
		assert.NoError(t, err)
		assert.Equal(t, 8, n)
		assert.Equal(t, "01234567", w.String())
	})
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func Test_Logger_Dprintf(t *testing.T) {
	l, _, _ := newTestLogger()
	args := &Args{OPT_LF | OPT_MOD_NAME, COLOR_NONE, FUNCTION_NONE, LINE_NONE, LVL_ERROR, testDB}
	t.Run("pipe", func(t *testing.T) {
		r, w, err := os.Pipe()
		assert.NoError(t, err)
		defer r.Close()
		n, err := l.Dprintf(args, int(w.Fd()), "fd %d", 3)
		assert.NoError(t, err)
		n2, err := l.Vdprintf(args, int(w.Fd()), "fd %d", []any{4})
		assert.NoError(t, err)
		w.Close()
		data, err := io.ReadAll(r)
		assert.NoError(t, err)
		assert.Equal(t, "DB  : fd 3\nDB  : fd 4\n", string(data))
		assert.Equal(t, 11, n)
		assert.Equal(t, 11, n2)
	})
	t.Run("invalid_fd", func(t *testing.T) {
		n, err := l.Dprintf(args, -1, "x")
		assert.ErrorIs(t, err, ErrInvalidFD)
		assert.Zero(t, n)
	})
	t.Run("filtered_before_fd_check", func(t *testing.T) {
		l.SetLevel(testDB, LVL_FATAL)
		defer l.SetLevel(testDB, LVL_INFO)
		n, err := l.Dprintf(args, -1, "x")
		assert.NoError(t, err)
		assert.Zero(t, n)
	})
}

func Test_Logger_Snprintf(t *testing.T) {
	l, out, _ := newTestLogger()
	args := &Args{OPT_LF | OPT_MOD_NAME | OPT_LEVEL, COLOR_NONE, FUNCTION_NONE, LINE_NONE, LVL_ERROR, testDB}
	t.Run("fits", func(t *testing.T) {
		dst := make([]byte, 64)
		n, err := l.Snprintf(args, dst, "%s=%d", "a", 1)
		assert.NoError(t, err)
		assert.Equal(t, "DB  :ERROR : a=1\n", string(dst[:n]))
		n, err = l.Vsnprintf(args, dst, "%s=%d", []any{"b", 2})
		assert.NoError(t, err)
		assert.Equal(t, "DB  :ERROR : b=2\n", string(dst[:n]))
		assert.Empty(t, out.buffer, "buffer destination only")
	})
	t.Run("bounded", func(t *testing.T) {
		for capacity := range 32 {
			buf, all := guarded(capacity)
			n, err := l.Snprintf(args, buf, "%s", strings.Repeat("z", 40))
			assert.NoError(t, err)
			assert.LessOrEqual(t, n, capacity)
			assert.Equal(t, strings.Repeat("\xee", 16), string(all[capacity:]))
		}
	})
	t.Run("nil_buffer", func(t *testing.T) {
		n, err := l.Snprintf(args, nil, "x")
		assert.ErrorIs(t, err, ErrNilBuffer)
		assert.Zero(t, n)
	})
	t.Run("filtered", func(t *testing.T) {
		dst := []byte("untouched")
		info := *args
		info.Level = LVL_DEBUG
		n, err := l.Snprintf(&info, dst, "x")
		assert.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, "untouched", string(dst))
	})
}

func Test_Logger_sinks(t *testing.T) {
	type call struct {
		level Level
		line  string
	}
	var printed, safe []call
	printSink := func(level Level, buf []byte) (int, error) {
		printed = append(printed, call{level, string(buf)})
		return len(buf), nil
	}
	safeSink := func(level Level, buf []byte) (int, error) {
		safe = append(safe, call{level, string(buf)})
		return 1, nil
	}
	l, out, ferr := newTestLogger()
	assert.NoError(t, l.InitWithSink(testCORE, printSink, safeSink))
	l.SetLevel(MODULE_XLOG, LVL_FATAL)
	out.Clear()
	args := &Args{OPT_LF, COLOR_NONE, FUNCTION_NONE, LINE_NONE, LVL_ERROR, testCORE}
	w := &FakeWriter{}

	n, err := l.Printf(args, "p%d", 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = l.Fprintf(args, w, "p%d", 2)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = l.Safe().Fprint(args, w, "s1")
	assert.NoError(t, err)
	assert.Equal(t, 1, n, "sink result is returned as is")

	assert.Equal(t, []call{{LVL_ERROR, "p1\n"}, {LVL_ERROR, "p2\n"}}, printed)
	assert.Equal(t, []call{{LVL_ERROR, "s1\n"}}, safe)
	assert.Empty(t, out.buffer)
	assert.Empty(t, w.buffer)
	assert.Empty(t, ferr.buffer)

	t.Run("panic_sink", func(t *testing.T) {
		l, _, ferr := newTestLogger()
		l.InitWithSink(testCORE, func(Level, []byte) (int, error) { panic(panicStr) }, nil)
		n, err := l.Printf(args, "x")
		assert.ErrorContains(t, err, panicStr)
		assert.Zero(t, n)
		assert.Contains(t, ferr.String(), "panic writing log to sink: `"+panicStr+"`\n")
	})
	t.Run("nil_safe_sink_writes_stream", func(t *testing.T) {
		l, out, _ := newTestLogger()
		l.InitWithSink(testCORE, printSink, nil)
		l.SetLevel(MODULE_XLOG, LVL_FATAL)
		out.Clear()
		n, err := l.Safe().Print(args, "direct")
		assert.NoError(t, err)
		assert.Equal(t, 7, n)
		assert.Equal(t, "direct\n", out.String())
	})
}
