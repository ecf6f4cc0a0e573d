package transport

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/danmuck/logowire/internal/observability"
	"github.com/danmuck/logowire/internal/protocol/frame"
)

const kindStream = "stream"

// deadliner is the subset of net.Conn used to interrupt blocking I/O.
type deadliner interface {
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// Stream carries framed messages over a byte stream. Sends from several
// goroutines are serialized; Receive must be driven by one goroutine. A
// Receive cancelled partway through a frame leaves the stream misaligned, so
// callers close it afterwards.
type Stream struct {
	rw     io.ReadWriteCloser
	r      *bufio.Reader
	limits frame.Limits

	wmu       sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

func NewStream(rw io.ReadWriteCloser, limits frame.Limits) *Stream {
	return &Stream{
		rw:     rw,
		r:      bufio.NewReader(rw),
		limits: limits,
		closed: make(chan struct{}),
	}
}

// Pipe returns two connected in-memory streams.
func Pipe(limits frame.Limits) (*Stream, *Stream) {
	a, b := net.Pipe()
	return NewStream(a, limits), NewStream(b, limits)
}

func (s *Stream) Send(ctx context.Context, msg []byte) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()

	stop := s.interrupt(ctx, func(d deadliner, t time.Time) { _ = d.SetWriteDeadline(t) })
	defer stop()
	if err := frame.WriteFrame(s.rw, msg, s.limits); err != nil {
		return s.translate(ctx, err)
	}
	observability.RecordFrame(kindStream, "send", len(msg))
	return nil
}

func (s *Stream) Receive(ctx context.Context) ([]byte, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	stop := s.interrupt(ctx, func(d deadliner, t time.Time) { _ = d.SetReadDeadline(t) })
	defer stop()
	msg, err := frame.ReadFrame(s.r, s.limits)
	if err != nil {
		return nil, s.translate(ctx, err)
	}
	observability.RecordFrame(kindStream, "receive", len(msg))
	return msg, nil
}

func (s *Stream) Close() error {
	err := ErrClosed
	s.closeOnce.Do(func() {
		close(s.closed)
		err = s.rw.Close()
	})
	return err
}

func (s *Stream) ready(ctx context.Context) error {
	select {
	case <-s.closed:
		return ErrClosed
	default:
	}
	return ctx.Err()
}

// interrupt arranges for blocked I/O to return when ctx ends, for streams
// that support deadlines. The deadline is always reset up front so a value
// left by an earlier call cannot leak in. The returned func must be called
// once I/O is done.
func (s *Stream) interrupt(ctx context.Context, set func(deadliner, time.Time)) func() {
	d, ok := s.rw.(deadliner)
	if !ok {
		return func() {}
	}
	deadline, _ := ctx.Deadline()
	set(d, deadline)
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(fired)
		set(d, time.Now())
	})
	return func() {
		if !stop() {
			<-fired
		}
		set(d, time.Time{})
	}
}

func (s *Stream) translate(ctx context.Context, err error) error {
	select {
	case <-s.closed:
		return ErrClosed
	default:
	}
	if errors.Is(err, os.ErrDeadlineExceeded) && ctxExpiring(ctx) {
		<-ctx.Done()
		return ctx.Err()
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return io.EOF
	}
	return err
}

// ctxExpiring reports whether ctx is done or its deadline has passed, i.e. a
// deadline error on I/O bound to ctx was caused by ctx.
func ctxExpiring(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	deadline, ok := ctx.Deadline()
	return ok && !time.Now().Before(deadline)
}
