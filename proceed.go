package xlog

/*
proceed.go

Formatted dispatch. Every call shape funnels into one core:
 - resolve the Args (nil means defaultArgs) and drop the line early if the
   module level filters it out
 - reject an empty format and invalid destinations before any formatting
 - compose prefix, payload and postfix into one bounded buffer
 - hand the line to the print sink if one is installed, else to the stream

Descriptor and buffer destinations never go through sinks. Panics raised by
user sinks and writers are recovered, reported to the fallback writer and
returned as errors.
*/

import (
	"errors"
	"io"
	"strconv"

	"golang.org/x/sys/unix"
)

// Printf writes a formatted line to the default output (stdout or the file
// backend) or to the print sink if one was installed by InitWithSink.
// A nil args uses the default record (INFO, OPT_DEFAULT, module XLOG) and is
// never filtered. Returns the result of the single underlying write, or 0
// and nil if the line is filtered out by the module level.
func (l *Logger) Printf(args *Args, format string, a ...any) (int, error) {
	return l.vfprintf(args, l.defaultOutput(), format, a)
}

// Vprintf is Printf for an already collected argument list.
func (l *Logger) Vprintf(args *Args, format string, a []any) (int, error) {
	return l.vfprintf(args, l.defaultOutput(), format, a)
}

// Fprintf is Printf to the given stream.
func (l *Logger) Fprintf(args *Args, w io.Writer, format string, a ...any) (int, error) {
	return l.vfprintf(args, w, format, a)
}

// Vfprintf is Fprintf for an already collected argument list.
func (l *Logger) Vfprintf(args *Args, w io.Writer, format string, a []any) (int, error) {
	return l.vfprintf(args, w, format, a)
}

// Dprintf writes a formatted line to a file descriptor with one write(2).
// Sinks are not used.
func (l *Logger) Dprintf(args *Args, fd int, format string, a ...any) (int, error) {
	return l.vdprintf(args, fd, format, a)
}

// Vdprintf is Dprintf for an already collected argument list.
func (l *Logger) Vdprintf(args *Args, fd int, format string, a []any) (int, error) {
	return l.vdprintf(args, fd, format, a)
}

// Snprintf composes a line into dst, never past len(dst), and returns the
// number of bytes composed. The line is not terminated by anything but the
// optional line feed. Sinks are not used.
func (l *Logger) Snprintf(args *Args, dst []byte, format string, a ...any) (int, error) {
	return l.vsnprintf(args, dst, format, a)
}

// Vsnprintf is Snprintf for an already collected argument list.
func (l *Logger) Vsnprintf(args *Args, dst []byte, format string, a []any) (int, error) {
	return l.vsnprintf(args, dst, format, a)
}

/////////////////////////////////////////////////////////////////////////////////////////

func (l *Logger) vfprintf(args *Args, w io.Writer, format string, a []any) (int, error) {
	args, ok := l.resolveArgs(args)
	if !ok {
		return 0, nil
	}
	return l.emitf(args, w, format, a)
}

// emitf is vfprintf for a record already known to be enabled.
func (l *Logger) emitf(args *Args, w io.Writer, format string, a []any) (int, error) {
	if err := l.checkFormat(format); err != nil {
		return 0, err
	}
	if w == nil {
		l.diagf(LVL_WARN, "nil stream")
		l.metrics.error(_METRIC_ERR_ARGUMENT)
		return 0, ErrNilWriter
	}
	p := l.getBuffer()
	defer l.buffers.Put(p)
	b := boundedBuf{buf: *p}
	if err := l.composeFormat(args, &b, format, a); err != nil {
		return 0, l.composeFailed(err)
	}
	l.metrics.composed(args.Level, &b)
	if sink := l.sinks.Load().print; sink != nil {
		return l.callSink(sink, args.Level, b.bytes())
	}
	return l.callWriter(w, b.bytes())
}

func (l *Logger) vdprintf(args *Args, fd int, format string, a []any) (int, error) {
	args, ok := l.resolveArgs(args)
	if !ok {
		return 0, nil
	}
	if err := l.checkFormat(format); err != nil {
		return 0, err
	}
	if fd < 0 {
		l.diagf(LVL_WARN, "invalid fd <%d>", fd)
		l.metrics.error(_METRIC_ERR_ARGUMENT)
		return 0, ErrInvalidFD
	}
	p := l.getBuffer()
	defer l.buffers.Put(p)
	b := boundedBuf{buf: *p}
	if err := l.composeFormat(args, &b, format, a); err != nil {
		return 0, l.composeFailed(err)
	}
	l.metrics.composed(args.Level, &b)
	return l.writeFD(fd, b.bytes())
}

func (l *Logger) vsnprintf(args *Args, dst []byte, format string, a []any) (int, error) {
	args, ok := l.resolveArgs(args)
	if !ok {
		return 0, nil
	}
	if err := l.checkFormat(format); err != nil {
		return 0, err
	}
	if dst == nil {
		l.diagf(LVL_WARN, "nil buffer")
		l.metrics.error(_METRIC_ERR_ARGUMENT)
		return 0, ErrNilBuffer
	}
	b := boundedBuf{buf: dst}
	if err := l.composeFormat(args, &b, format, a); err != nil {
		return 0, l.composeFailed(err)
	}
	l.metrics.composed(args.Level, &b)
	return b.used, nil
}

// resolveArgs returns the record to use and whether the line is enabled.
func (l *Logger) resolveArgs(args *Args) (*Args, bool) {
	if args == nil {
		return &defaultArgs, true
	}
	if !l.isEnabled(args.ID, args.Level) {
		l.metrics.filtered()
		return args, false
	}
	return args, true
}

func (l *Logger) checkFormat(format string) error {
	if format == "" {
		l.diagf(LVL_WARN, "empty format string")
		l.metrics.error(_METRIC_ERR_ARGUMENT)
		return ErrEmptyMessage
	}
	return nil
}

func (l *Logger) composeFailed(err error) error {
	l.diagf(LVL_ERROR, "unable to compose line <%v>", err)
	l.metrics.error(_METRIC_ERR_COMPOSE)
	return err
}

func (l *Logger) getBuffer() *[]byte {
	return l.buffers.Get().(*[]byte)
}

/////////////////////////////////////////////////////////////////////////////////////////

// callSink hands a line to a user sink. The sink result is returned as is;
// errors and panics are also reported to the fallback writer.
func (l *Logger) callSink(sink Sink, level Level, line []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, errors.New("panic writing log to sink"+panicDesc(r))
			l.handleLogWriteError(err.Error())
			l.metrics.error(_METRIC_ERR_PANIC)
		}
	}()
	n, err = sink(level, line)
	if err != nil {
		l.handleLogWriteError("error writing log to sink (" + strconv.Itoa(n) + " bytes written): " + err.Error())
		l.metrics.error(_METRIC_ERR_WRITE)
	}
	return
}

// callWriter writes a line with one Write call, short writes are not retried.
func (l *Logger) callWriter(w io.Writer, line []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, errors.New("panic writing log to output"+panicDesc(r))
			l.handleLogWriteError(err.Error())
			l.metrics.error(_METRIC_ERR_PANIC)
		}
	}()
	n, err = w.Write(line)
	if err != nil {
		l.handleLogWriteError("error writing log to output (" + strconv.Itoa(n) + " bytes written): " + err.Error())
		l.metrics.error(_METRIC_ERR_WRITE)
	}
	return
}

// writeFD writes a line to a descriptor with one write(2).
func (l *Logger) writeFD(fd int, line []byte) (int, error) {
	n, err := unix.Write(fd, line)
	if err != nil {
		l.handleLogWriteError("error writing log to fd " + strconv.Itoa(fd) + ": " + err.Error())
		l.metrics.error(_METRIC_ERR_WRITE)
		return 0, err
	}
	return n, nil
}

// handleLogWriteError writes a human-readable error message to the fallback
// writer. A read lock is used since we only need consistent access to fallbck.
func (l *Logger) handleLogWriteError(errormsg string) {
	l.sync.fbckMtx.RLock()
	defer l.sync.fbckMtx.RUnlock()
	if l.fallbck != nil {
		l.fallbck.Write([]byte(errormsg + "\n"))
	}
}
