package xlog

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_New(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		l := New()
		assert.Equal(t, 1, l.Modules().Len())
		assert.Equal(t, os.Stdout, l.defaultOutput())
		assert.Equal(t, os.Stderr, l.fallbck)
		assert.Equal(t, DEFAULT_STACK_BUF_SIZE, l.bufsize)
		assert.Len(t, *l.getBuffer(), DEFAULT_STACK_BUF_SIZE)
		assert.IsType(t, &FileConfigSource{}, l.source)
		assert.False(t, l.validated)
		assert.Nil(t, l.metrics)
		assert.False(t, l.IsInitialized())
		assert.Equal(t, DEFAULT_LOG_LEVEL, l.GetLevel(MODULE_XLOG))
	})
	t.Run("nil_options_ignored", func(t *testing.T) {
		l := New(WithOutput(nil), WithModules(nil), WithClock(nil), WithBufferSize(-1))
		assert.Equal(t, os.Stdout, l.defaultOutput())
		assert.Equal(t, 1, l.Modules().Len())
		assert.NotNil(t, l.clock)
		assert.Equal(t, DEFAULT_STACK_BUF_SIZE, l.bufsize)
	})
	t.Run("options", func(t *testing.T) {
		out := &FakeWriter{}
		l := New(WithModules(testModules), WithOutput(out), WithBufferSize(64), WithValidatedLevelCheck(), WithConfigSource(nil))
		assert.Same(t, testModules, l.Modules())
		assert.Equal(t, out, l.defaultOutput())
		assert.Len(t, *l.getBuffer(), 64)
		assert.True(t, l.validated)
		assert.Nil(t, l.source)
		assert.Len(t, l.Levels(), 4)
	})
}

func Test_Logger_Init(t *testing.T) {
	t.Run("resets_levels", func(t *testing.T) {
		l, _, _ := newTestLogger()
		l.SetLevelAll(LVL_FATAL)
		assert.NoError(t, l.Init(testCORE, "", 0))
		assert.True(t, l.IsInitialized())
		for _, level := range l.Levels() {
			assert.Equal(t, LVL_INFO, level)
		}
	})
	t.Run("double_init", func(t *testing.T) {
		l, out, _ := newTestLogger()
		assert.NoError(t, l.Init(testCORE, "", 0))
		l.SetLevel(testNET, LVL_ERROR)
		out.Clear()
		assert.ErrorIs(t, l.Init(testCORE, "", 0), ErrAlreadyInitialized)
		assert.Equal(t, LVL_ERROR, l.GetLevel(testNET))
		assert.Contains(t, out.String(), "XLOG (*Logger).initInt :WARN : Already initialized")
		assert.True(t, l.IsInitialized())
	})
	t.Run("diagnostics", func(t *testing.T) {
		l, out, _ := newTestLogger()
		l.SetLevel(MODULE_XLOG, LVL_ALL)
		assert.NoError(t, l.Init(testCORE, "", 0))
		assert.Contains(t, out.String(), "XLOG (*Logger).initInt : Initializing...\n")
	})
	t.Run("shutdown_and_reinit", func(t *testing.T) {
		l, _, _ := newTestLogger()
		assert.NoError(t, l.Init(testCORE, "", 0))
		l.SetLevel(testDB, LVL_DEBUG)
		assert.NoError(t, l.Shutdown())
		assert.False(t, l.IsInitialized())
		assert.Equal(t, LVL_DEBUG, l.GetLevel(testDB), "levels survive Shutdown")
		assert.NoError(t, l.Init(testCORE, "", 0))
		assert.True(t, l.IsInitialized())
		assert.Equal(t, LVL_INFO, l.GetLevel(testDB))
	})
	t.Run("shutdown_uninitialized", func(t *testing.T) {
		l, _, _ := newTestLogger()
		assert.NoError(t, l.Shutdown())
		assert.False(t, l.IsInitialized())
	})
	t.Run("log_before_init", func(t *testing.T) {
		l, out, _ := newTestLogger()
		_, err := l.NewClient(testCORE).Infof("early")
		assert.NoError(t, err)
		assert.Contains(t, out.String(), "CORE  : early\n")
	})
}

func Test_Logger_InitFile(t *testing.T) {
	t.Run("writes_file", func(t *testing.T) {
		l, out, _ := newTestLogger()
		name := filepath.Join(t.TempDir(), "logs", "app.log")
		assert.NoError(t, l.Init(testCORE, name, 4096))
		assert.FileExists(t, name)
		args := &Args{OPT_LF | OPT_MOD_NAME, COLOR_NONE, FUNCTION_NONE, LINE_NONE, LVL_WARN, testNET}
		_, err := l.Printf(args, "to file %d", 1)
		assert.NoError(t, err)
		_, err = l.Safe().Print(args, "safe to file")
		assert.NoError(t, err)
		assert.NoError(t, l.Flush())
		assert.NoError(t, l.Shutdown())

		data, err := os.ReadFile(name)
		assert.NoError(t, err)
		assert.Equal(t, "NET  : to file 1\nNET  : safe to file\n", string(data))
		assert.Empty(t, out.buffer)

		_, err = l.Printf(args, "back to output")
		assert.NoError(t, err)
		assert.Equal(t, "NET  : back to output\n", out.String())
	})
	t.Run("bad_path", func(t *testing.T) {
		l, _, _ := newTestLogger()
		blocker := filepath.Join(t.TempDir(), "file")
		writeFile(t, blocker, "x")
		err := l.Init(testCORE, filepath.Join(blocker, "app.log"), 0)
		assert.Error(t, err)
		assert.False(t, l.IsInitialized())
		assert.Nil(t, l.backend)
	})
}

func Test_openFileBackend(t *testing.T) {
	tests := []struct {
		maxSize uint32
		wants   int
	}{
		{0, 0},
		{1, 1},
		{1 << 20, 1},
		{1<<20 + 1, 2},
		{10 << 20, 10},
	}
	dir := t.TempDir()
	for i, tt := range tests {
		b, err := openFileBackend(filepath.Join(dir, "b", strings.Repeat("x", i+1)+".log"), tt.maxSize)
		assert.NoError(t, err)
		assert.Equal(t, tt.wants, b.lj.MaxSize)
		assert.Equal(t, 1, b.lj.MaxBackups)
		assert.NoError(t, b.Close())
	}
}

func Test_fileBackend_Close(t *testing.T) {
	name := filepath.Join(t.TempDir(), "closed.log")
	b, err := openFileBackend(name, 0)
	assert.NoError(t, err)
	n, err := b.Write([]byte("kept\n"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close())

	assert.NoError(t, os.Remove(name))
	n, err = b.Write([]byte("late\n"))
	assert.ErrorIs(t, err, ErrFileClosed)
	assert.Zero(t, n)
	assert.NoFileExists(t, name, "a closed backend must not reopen its file")
}

func Test_Logger_ShutdownStaleOutput(t *testing.T) {
	l, out, ferr := newTestLogger()
	name := filepath.Join(t.TempDir(), "app.log")
	assert.NoError(t, l.Init(testCORE, name, 0))
	stale := l.defaultOutput()
	assert.NoError(t, l.Shutdown())
	assert.NoError(t, os.Remove(name))

	args := &Args{OPT_LF, COLOR_NONE, FUNCTION_NONE, LINE_NONE, LVL_WARN, testCORE}
	n, err := l.Fprintf(args, stale, "after shutdown")
	assert.ErrorIs(t, err, ErrFileClosed)
	assert.Zero(t, n)
	assert.NoFileExists(t, name)
	assert.Contains(t, ferr.String(), _ERROR_MESSAGE_FILE_CLOSED)
	assert.Empty(t, out.buffer)
}

func Test_Logger_SetFallback(t *testing.T) {
	l, _, _ := newTestLogger()
	assert.Same(t, l, l.SetFallback(nil))
	assert.Equal(t, io.Discard, l.fallbck)
	ferr := &FakeWriter{}
	l.SetFallback(ferr)
	l.Fprintf(nil, &ErrorWriter{}, "x")
	assert.Contains(t, ferr.String(), "error writing log to output (0 bytes written): "+errorStr+"\n")
}

func Test_Logger_Flush(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		f, err := os.CreateTemp(t.TempDir(), "flush")
		assert.NoError(t, err)
		defer f.Close()
		l, _, _ := newTestLogger(WithOutput(f))
		assert.NoError(t, l.Flush())
	})
	t.Run("plain_writer", func(t *testing.T) {
		l, _, _ := newTestLogger()
		assert.NoError(t, l.Flush())
	})
}

func Test_shortFuncName(t *testing.T) {
	tests := []struct {
		name  string
		wants string
	}{
		{"github.com/abyssdigger/xlog.(*Logger).SetLevel", "(*Logger).SetLevel"},
		{"github.com/abyssdigger/xlog.Test_x.func1", "Test_x.func1"},
		{"main.main", "main"},
		{"runtime.goexit", "goexit"},
		{"nodot", "nodot"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.wants, func(t *testing.T) {
			assert.Equal(t, tt.wants, shortFuncName(tt.name))
		})
	}
}

func Test_callerName(t *testing.T) {
	assert.Equal(t, "Test_callerName", callerName(0))
	func() {
		assert.Equal(t, "Test_callerName.func1", callerName(0))
		assert.Equal(t, "Test_callerName", callerName(1))
	}()
}
