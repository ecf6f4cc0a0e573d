package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"
	"unicode/utf8"
)

const (
	textPrefixSize = 4
	textUnitSize   = 2
	colorSize      = 4

	// MaxTextUnits is the largest text field, in UTF-16 code units, that
	// encoders produce and decoders accept.
	MaxTextUnits = 1 << 20
)

// writer appends fixed-width big-endian fields after the identifier byte.
// The first failure sticks and later puts are no-ops.
type writer struct {
	cmd Command
	buf []byte
	err error
}

func newWriter(cmd Command, sizeHint int) *writer {
	buf := make([]byte, 1, 1+sizeHint)
	buf[0] = byte(cmd)
	return &writer{cmd: cmd, buf: buf}
}

func (w *writer) putInt32(v int32) {
	if w.err != nil {
		return
	}
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

func (w *writer) putCoord(field string, v int32) {
	if w.err == nil && v < 0 {
		w.err = fmt.Errorf("%w: command=%s field=%s negative value %d", ErrInvalidArgument, w.cmd, field, v)
		return
	}
	w.putInt32(v)
}

func (w *writer) putFloat64(v float64) {
	if w.err != nil {
		return
	}
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
}

func (w *writer) putColor(c Color) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, c.R, c.G, c.B, c.A)
}

func (w *writer) putText(field, s string) {
	if w.err != nil {
		return
	}
	if !utf8.ValidString(s) {
		w.err = fmt.Errorf("%w: command=%s field=%s invalid utf-8", ErrInvalidArgument, w.cmd, field)
		return
	}
	units := 0
	for _, r := range s {
		units += utf16.RuneLen(r)
	}
	if units > MaxTextUnits {
		w.err = fmt.Errorf("%w: command=%s field=%s units=%d max=%d", ErrEncodingOverflow, w.cmd, field, units, MaxTextUnits)
		return
	}
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(units))
	for _, r := range s {
		var pair [2]uint16
		enc := utf16.AppendRune(pair[:0], r)
		for _, u := range enc {
			w.buf = binary.BigEndian.AppendUint16(w.buf, u)
		}
	}
}

func (w *writer) message() (Message, error) {
	if w.err != nil {
		return nil, w.err
	}
	return Message(w.buf), nil
}

// reader consumes fields from a payload in declared order. The first
// failure is kept as a *PayloadError and later reads return zero values.
type reader struct {
	cmd Command
	buf []byte
	off int
	err error
}

func newReader(cmd Command, payload []byte) *reader {
	return &reader{cmd: cmd, buf: payload}
}

func (r *reader) fail(field string, err error) {
	if r.err == nil {
		r.err = &PayloadError{Command: r.cmd, Field: field, Offset: r.off, Err: err}
	}
}

func (r *reader) take(field string, n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.buf)-r.off < n {
		r.fail(field, ErrTruncated)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) int32(field string) int32 {
	b := r.take(field, 4)
	if b == nil {
		return 0
	}
	return int32(binary.BigEndian.Uint32(b))
}

func (r *reader) coord(field string) int32 {
	at := r.off
	v := r.int32(field)
	if r.err == nil && v < 0 {
		r.off = at
		r.fail(field, ErrInvalidValue)
		return 0
	}
	return v
}

func (r *reader) float64(field string) float64 {
	b := r.take(field, 8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

func (r *reader) color(field string) Color {
	b := r.take(field, colorSize)
	if b == nil {
		return Color{}
	}
	return Color{R: b[0], G: b[1], B: b[2], A: b[3]}
}

func (r *reader) text(field string) string {
	prefix := r.take(field, textPrefixSize)
	if prefix == nil {
		return ""
	}
	units := binary.BigEndian.Uint32(prefix)
	if units > MaxTextUnits || uint64(units)*textUnitSize > uint64(len(r.buf)-r.off) {
		r.off -= textPrefixSize
		r.fail(field, ErrInvalidLength)
		return ""
	}
	if units == 0 {
		return ""
	}
	start := r.off
	raw := r.buf[start : start+int(units)*textUnitSize]
	out := make([]rune, 0, units)
	for i := 0; i < len(raw); i += textUnitSize {
		u := binary.BigEndian.Uint16(raw[i:])
		switch {
		case utf16.IsSurrogate(rune(u)):
			if u >= 0xdc00 || i+2*textUnitSize > len(raw) {
				r.off = start + i
				r.fail(field, ErrInvalidValue)
				return ""
			}
			lo := binary.BigEndian.Uint16(raw[i+textUnitSize:])
			ch := utf16.DecodeRune(rune(u), rune(lo))
			if ch == utf8.RuneError {
				r.off = start + i
				r.fail(field, ErrInvalidValue)
				return ""
			}
			out = append(out, ch)
			i += textUnitSize
		default:
			out = append(out, rune(u))
		}
	}
	r.off = start + len(raw)
	return string(out)
}

func (r *reader) finish() error {
	if r.err != nil {
		return r.err
	}
	if r.off != len(r.buf) {
		r.fail("", ErrTrailingBytes)
		return r.err
	}
	return nil
}
