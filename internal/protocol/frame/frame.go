// Package frame delimits protocol messages on byte streams.
//
// Wire layout per frame: [uint32 BE length][length bytes of message].
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const HeaderLen = 4

var (
	ErrShortHeader   = errors.New("frame: short length header")
	ErrShortBody     = errors.New("frame: short frame body")
	ErrEmptyFrame    = errors.New("frame: empty frame")
	ErrFrameTooLarge = errors.New("frame: frame too large")
)

// Limits constrains frame decode/encode memory use. A zero MaxFrameBytes
// means the default limit, never an unbounded one.
type Limits struct {
	MaxFrameBytes uint32
}

// DefaultLimits admits the largest text message the protocol produces with
// headroom for its prefix.
func DefaultLimits() Limits {
	return Limits{
		MaxFrameBytes: 4 * 1024 * 1024,
	}
}

func (l Limits) check(n uint64) error {
	if n == 0 {
		return ErrEmptyFrame
	}
	if limit := l.Max(); n > uint64(limit) {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, limit)
	}
	return nil
}

// Max returns the effective frame size limit.
func (l Limits) Max() uint32 {
	if l.MaxFrameBytes == 0 {
		return DefaultLimits().MaxFrameBytes
	}
	return l.MaxFrameBytes
}

// ReadFrame reads one complete message. io.EOF is returned unchanged when the
// stream ends cleanly between frames.
func ReadFrame(r io.Reader, limits Limits) ([]byte, error) {
	var head [HeaderLen]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortHeader
		}
		return nil, err
	}
	n := binary.BigEndian.Uint32(head[:])
	if err := limits.check(uint64(n)); err != nil {
		return nil, err
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortBody
		}
		return nil, err
	}
	return body, nil
}

// WriteFrame writes msg as one frame with a single Write call so that a
// serialized writer never interleaves partial frames.
func WriteFrame(w io.Writer, msg []byte, limits Limits) error {
	if err := limits.check(uint64(len(msg))); err != nil {
		return err
	}
	buf := Append(make([]byte, 0, HeaderLen+len(msg)), msg)
	_, err := w.Write(buf)
	return err
}

// Append appends the framed form of msg to dst.
func Append(dst, msg []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(msg)))
	return append(dst, msg...)
}
