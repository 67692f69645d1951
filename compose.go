package xlog

/*
Line composition. Every line is built into one fixed capacity buffer:

	[<color>][<date> <time>:<ms> ][<module> ][<function>][(<line>)][ :<TAG>][ : ]<payload>[<reset>][\n]

All writes go through boundedBuf so nothing is ever written past the
capacity. Fields that do not fit are dropped, earlier fields win.
*/

import (
	"errors"
	"fmt"
	"time"
)

var errTruncated = errors.New("payload truncated")

// boundedBuf is a cursor over a fixed capacity span (len(buf)). It never
// grows; writes past the end are cut and remembered in cut.
type boundedBuf struct {
	buf  []byte
	used int
	cut  bool
}

func (b *boundedBuf) room() int {
	return len(b.buf) - b.used
}

func (b *boundedBuf) bytes() []byte {
	return b.buf[:b.used]
}

// putString copies as much of s as fits and returns the copied length.
func (b *boundedBuf) putString(s string) int {
	n := copy(b.buf[b.used:], s)
	b.used += n
	if n < len(s) {
		b.cut = true
	}
	return n
}

func (b *boundedBuf) putByte(c byte) {
	if b.used < len(b.buf) {
		b.buf[b.used] = c
		b.used++
	} else {
		b.cut = true
	}
}

// Write implements io.Writer for fmt.Fprintf. A short write returns
// errTruncated as io.Writer requires, fmt ignores it.
func (b *boundedBuf) Write(p []byte) (int, error) {
	n := copy(b.buf[b.used:], p)
	b.used += n
	if n < len(p) {
		b.cut = true
		return n, errTruncated
	}
	return n, nil
}

/////////////////////////////////////////////////////////////////////////////////////////

// composePrefix appends the enabled header fields and returns the number of
// bytes appended. A color code of the wrong length aborts the whole line
// with ErrBadColor.
func (l *Logger) composePrefix(args *Args, b *boundedBuf) (int, error) {
	start := b.used
	opts := args.Options

	// Color begin
	if opts&OPT_COLOR != 0 && args.Color != COLOR_NONE {
		if n := len(args.Color); n < _COLOR_LEN_MIN || n > _COLOR_LEN_MAX {
			return 0, ErrBadColor
		}
		if b.room() > len(COLOR_NRM) {
			b.putString(args.Color)
		}
	}
	fields := b.used

	// Date and Time
	if opts&(OPT_DATE|OPT_TIME) != 0 && b.room() > PREFIX_SIZE {
		b.used += putDateTime(b.buf[b.used:], opts, l.clock())
	}

	// Module Name
	if opts&OPT_MOD_NAME != 0 {
		if name, ok := l.modules.Name(args.ID); ok && b.room() > len(name) {
			b.putString(name)
			b.putByte(' ')
		}
	}

	// Function
	if args.Function != FUNCTION_NONE && b.room() > len(args.Function) {
		b.putString(args.Function)
	}

	// Line Number
	if args.Line >= 0 {
		digits := lineDigits(args.Line)
		if b.room() > digits+2 {
			b.putByte('(')
			b.used += putUint(b.buf[b.used:], uint64(args.Line), digits)
			b.putByte(')')
		}
	}

	// Level tag, only for WARN and above
	if opts&OPT_LEVEL != 0 && args.Level >= LVL_WARN && b.room() > 9 {
		b.putString(" :")
		b.putString(levelTag(args.Level))
	}

	// Separator, only after at least one field
	if b.used > fields && b.room() > 3 {
		b.putString(" : ")
	}
	return b.used - start, nil
}

// composePostfix appends the color reset and the line feed when enabled and
// when they fit.
func composePostfix(args *Args, b *boundedBuf) int {
	start := b.used
	if args.Options&OPT_COLOR != 0 && args.Color != COLOR_NONE && b.room() >= len(COLOR_NRM) {
		b.putString(COLOR_NRM)
	}
	if args.Options&OPT_LF != 0 && b.room() >= 1 {
		b.putByte('\n')
	}
	return b.used - start
}

// composeString builds a complete line around a raw payload. Nothing here
// allocates, it is shared by the signal-safe path.
func (l *Logger) composeString(args *Args, b *boundedBuf, payload string) error {
	if _, err := l.composePrefix(args, b); err != nil {
		return err
	}
	b.putString(payload)
	if !b.cut {
		composePostfix(args, b)
	}
	return nil
}

// composeFormat builds a complete line around a formatted payload. The
// formatter writes into the remaining space only.
func (l *Logger) composeFormat(args *Args, b *boundedBuf, format string, a []any) error {
	if _, err := l.composePrefix(args, b); err != nil {
		return err
	}
	if b.room() > 0 {
		fmt.Fprintf(b, format, a...)
	} else {
		b.cut = true
	}
	if !b.cut {
		composePostfix(args, b)
	}
	return nil
}

/////////////////////////////////////////////////////////////////////////////////////////

// putDateTime renders "YYYYMMDD ", "HH:MM:SS:mmm " or "YYYYMMDD HH:MM:SS:mmm "
// into dst, which must hold PREFIX_SIZE bytes. Integer arithmetic only.
func putDateTime(dst []byte, opts Options, now time.Time) int {
	if opts&OPT_GMT != 0 {
		now = now.UTC()
	} else {
		now = now.Local()
	}
	n := 0
	if opts&OPT_DATE != 0 {
		year, month, day := now.Date()
		n += putUint(dst[n:], uint64(year), 4)
		n += putUint(dst[n:], uint64(month), 2)
		n += putUint(dst[n:], uint64(day), 2)
		if opts&OPT_TIME != 0 {
			dst[n] = ' '
			n++
		}
	}
	if opts&OPT_TIME != 0 {
		hour, min, sec := now.Clock()
		n += putUint(dst[n:], uint64(hour), 2)
		dst[n] = ':'
		n++
		n += putUint(dst[n:], uint64(min), 2)
		dst[n] = ':'
		n++
		n += putUint(dst[n:], uint64(sec), 2)
		dst[n] = ':'
		n++
		n += putUint(dst[n:], uint64(now.Nanosecond()/1000000), 3)
	}
	dst[n] = ' '
	return n + 1
}

// putUint writes the width lowest decimal digits of v, zero padded.
func putUint(dst []byte, v uint64, width int) int {
	for i := width - 1; i >= 0; i-- {
		dst[i] = byte('0' + v%10)
		v /= 10
	}
	return width
}

// lineDigits returns the printed width of a line number. Values of ten or
// more digits are printed as their ten lowest digits.
func lineDigits(line int) int {
	digits := 1
	for v := line; v >= 10 && digits < MAX_LINE_DIGITS; v /= 10 {
		digits++
	}
	return digits
}

func levelTag(level Level) string {
	switch level {
	case LVL_WARN:
		return "WARN"
	case LVL_ERROR:
		return "ERROR"
	case LVL_FATAL:
		return "FATAL"
	default:
		return "INVALID"
	}
}
