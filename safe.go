package xlog

import "io"

// SafeLogger is the raw string entry point of a Logger. Its methods do no
// formatting and no reflection, take no locks and compose into pooled fixed
// size buffers, so they can be used where the formatted calls must not be
// (signal handling goroutines, allocation sensitive loops). Lines go to the
// safe sink installed by InitWithSink instead of the print sink.
//
// Failure reports to the fallback writer (write errors and panics of the
// destination) are the only part that may allocate.
type SafeLogger struct {
	l *Logger
}

// Safe returns the raw string entry point of the logger.
func (l *Logger) Safe() SafeLogger {
	return SafeLogger{l}
}

// Print writes msg as one line to the default output or the safe sink.
func (s SafeLogger) Print(args *Args, msg string) (int, error) {
	return s.Fprint(args, s.l.defaultOutput(), msg)
}

// Fprint writes msg as one line to w or the safe sink.
func (s SafeLogger) Fprint(args *Args, w io.Writer, msg string) (int, error) {
	l := s.l
	args, ok := l.resolveArgsSafe(args)
	if !ok {
		return 0, nil
	}
	if msg == "" {
		l.safeDiag(LVL_WARN, "empty message")
		l.metrics.error(_METRIC_ERR_ARGUMENT)
		return 0, ErrEmptyMessage
	}
	if w == nil {
		l.safeDiag(LVL_WARN, "nil stream")
		l.metrics.error(_METRIC_ERR_ARGUMENT)
		return 0, ErrNilWriter
	}
	return l.safeWrite(args, w, msg)
}

// Dprint writes msg as one line to fd with one write(2).
func (s SafeLogger) Dprint(args *Args, fd int, msg string) (int, error) {
	l := s.l
	args, ok := l.resolveArgsSafe(args)
	if !ok {
		return 0, nil
	}
	if msg == "" {
		l.safeDiag(LVL_WARN, "empty message")
		l.metrics.error(_METRIC_ERR_ARGUMENT)
		return 0, ErrEmptyMessage
	}
	if fd < 0 {
		l.safeDiag(LVL_WARN, "invalid fd")
		l.metrics.error(_METRIC_ERR_ARGUMENT)
		return 0, ErrInvalidFD
	}
	p := l.getBuffer()
	defer l.buffers.Put(p)
	b := boundedBuf{buf: *p}
	if err := l.composeString(args, &b, msg); err != nil {
		return 0, l.safeComposeFailed(err)
	}
	l.metrics.composed(args.Level, &b)
	return l.writeFD(fd, b.bytes())
}

// Snprint composes msg as one line into dst and returns the composed length.
func (s SafeLogger) Snprint(args *Args, dst []byte, msg string) (int, error) {
	l := s.l
	args, ok := l.resolveArgsSafe(args)
	if !ok {
		return 0, nil
	}
	if msg == "" {
		l.safeDiag(LVL_WARN, "empty message")
		l.metrics.error(_METRIC_ERR_ARGUMENT)
		return 0, ErrEmptyMessage
	}
	if dst == nil {
		l.safeDiag(LVL_WARN, "nil buffer")
		l.metrics.error(_METRIC_ERR_ARGUMENT)
		return 0, ErrNilBuffer
	}
	b := boundedBuf{buf: dst}
	if err := l.composeString(args, &b, msg); err != nil {
		return 0, l.safeComposeFailed(err)
	}
	l.metrics.composed(args.Level, &b)
	return b.used, nil
}

/////////////////////////////////////////////////////////////////////////////////////////

func (l *Logger) resolveArgsSafe(args *Args) (*Args, bool) {
	if args == nil {
		return &defaultArgs, true
	}
	if !l.isEnabledSafe(args.ID, args.Level) {
		l.metrics.filtered()
		return args, false
	}
	return args, true
}

// safeWrite composes and writes one line without any checks on args.
func (l *Logger) safeWrite(args *Args, w io.Writer, msg string) (int, error) {
	p := l.getBuffer()
	defer l.buffers.Put(p)
	b := boundedBuf{buf: *p}
	if err := l.composeString(args, &b, msg); err != nil {
		return 0, l.safeComposeFailed(err)
	}
	l.metrics.composed(args.Level, &b)
	if sink := l.sinks.Load().safe; sink != nil {
		return l.callSink(sink, args.Level, b.bytes())
	}
	return l.callWriter(w, b.bytes())
}

func (l *Logger) safeComposeFailed(err error) error {
	l.safeDiag(LVL_ERROR, "unable to compose line")
	l.metrics.error(_METRIC_ERR_COMPOSE)
	return err
}
