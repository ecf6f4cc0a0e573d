// Package kernel is the kernel side of a session: typed commands out, and
// blocking console queries answered by the frontend's reply messages.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/danmuck/logowire/internal/dispatch"
	logs "github.com/danmuck/logowire/internal/logging"
	"github.com/danmuck/logowire/internal/protocol"
	"github.com/danmuck/logowire/internal/transport"
)

var (
	ErrQueryInFlight = errors.New("kernel: query already in flight")
	ErrNotRunning    = errors.New("kernel: client not running")
)

type cursor struct {
	row, column int32
}

// Client sends commands over conn. Start must be called before issuing
// queries; replies are dispatched on the client's own goroutine.
type Client struct {
	conn transport.Conn
	d    *dispatch.Dispatcher

	chars   waiter[rune]
	lines   waiter[string]
	cursors waiter[cursor]

	startOnce sync.Once
	running   atomic.Bool
	done      chan struct{}
	runErr    error
}

func NewClient(conn transport.Conn) (*Client, error) {
	c := &Client{conn: conn, done: make(chan struct{})}
	d, err := dispatch.NewKernel(replies{c})
	if err != nil {
		return nil, err
	}
	c.d = d
	return c, nil
}

// Start begins dispatching replies until ctx ends or the connection closes.
func (c *Client) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		c.running.Store(true)
		go func() {
			defer close(c.done)
			c.runErr = c.d.Serve(ctx, c.conn, func(msg []byte, err error) error {
				logs.Warnf("kernel rejected reply len=%d err=%v", len(msg), err)
				return nil
			})
		}()
	})
}

// Done is closed once the reply loop has ended.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err reports why the reply loop ended; valid after Done is closed.
func (c *Client) Err() error {
	<-c.done
	return c.runErr
}

// Close closes the connection and waits for the reply loop, if started.
func (c *Client) Close() error {
	err := c.conn.Close()
	c.startOnce.Do(func() { close(c.done) })
	<-c.done
	if errors.Is(err, transport.ErrClosed) {
		return nil
	}
	return err
}

func (c *Client) Send(ctx context.Context, p protocol.Payload) error {
	msg, err := protocol.Encode(p)
	if err != nil {
		return err
	}
	return c.conn.Send(ctx, msg)
}

func (c *Client) PrintString(ctx context.Context, text string) error {
	return c.Send(ctx, protocol.PrintString{Text: text})
}

func (c *Client) SetTextSize(ctx context.Context, size float64) error {
	return c.Send(ctx, protocol.SetTextSize{Size: size})
}

func (c *Client) SetCursorPos(ctx context.Context, row, column int32) error {
	return c.Send(ctx, protocol.SetCursorPos{Row: row, Column: column})
}

func (c *Client) SetTextColor(ctx context.Context, foreground, background protocol.Color) error {
	return c.Send(ctx, protocol.SetTextColor{Foreground: foreground, Background: background})
}

func (c *Client) ClearText(ctx context.Context) error {
	return c.Send(ctx, protocol.ClearText{})
}

func (c *Client) SetFont(ctx context.Context, name string) error {
	return c.Send(ctx, protocol.SetFont{Name: name})
}

func (c *Client) SetTurtlePos(ctx context.Context, x, y, heading float64) error {
	return c.Send(ctx, protocol.SetTurtlePos{X: x, Y: y, Heading: heading})
}

// ReadCharacter asks the frontend for one character and waits for it.
func (c *Client) ReadCharacter(ctx context.Context) (rune, error) {
	return query(ctx, c, &c.chars, protocol.RequestCharacter{})
}

// ReadLine shows prompt and waits for one line of input, without its
// terminator.
func (c *Client) ReadLine(ctx context.Context, prompt string) (string, error) {
	return query(ctx, c, &c.lines, protocol.RequestLine{Prompt: prompt})
}

func (c *Client) CursorPos(ctx context.Context) (row, column int32, err error) {
	pos, err := query(ctx, c, &c.cursors, protocol.RequestCursorPos{})
	return pos.row, pos.column, err
}

func query[T any](ctx context.Context, c *Client, w *waiter[T], req protocol.Payload) (T, error) {
	var zero T
	if !c.running.Load() {
		return zero, ErrNotRunning
	}
	select {
	case <-c.done:
		return zero, ErrNotRunning
	default:
	}
	ch, err := w.arm()
	if err != nil {
		return zero, fmt.Errorf("%w: %s", err, req.Command())
	}
	defer w.disarm(ch)
	if err := c.Send(ctx, req); err != nil {
		return zero, err
	}
	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-c.done:
		if c.runErr != nil {
			return zero, c.runErr
		}
		return zero, ErrNotRunning
	}
}

// waiter holds the one outstanding query of a kind.
type waiter[T any] struct {
	mu sync.Mutex
	ch chan T
}

func (w *waiter[T]) arm() (chan T, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ch != nil {
		return nil, ErrQueryInFlight
	}
	w.ch = make(chan T, 1)
	return w.ch, nil
}

func (w *waiter[T]) disarm(ch chan T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ch == ch {
		w.ch = nil
	}
}

// deliver hands v to the waiting query; false when nobody asked.
func (w *waiter[T]) deliver(v T) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ch == nil {
		return false
	}
	w.ch <- v
	w.ch = nil
	return true
}

// replies routes frontend answers to the client's waiters.
type replies struct {
	c *Client
}

func (r replies) CharacterResponse(ch rune) {
	if !r.c.chars.deliver(ch) {
		logs.Warnf("kernel unsolicited character response %q", ch)
	}
}

func (r replies) LineResponse(text string) {
	if !r.c.lines.deliver(text) {
		logs.Warnf("kernel unsolicited line response len=%d", len(text))
	}
}

func (r replies) CursorPosResponse(row, column int32) {
	if !r.c.cursors.deliver(cursor{row: row, column: column}) {
		logs.Warnf("kernel unsolicited cursor response %d,%d", row, column)
	}
}
