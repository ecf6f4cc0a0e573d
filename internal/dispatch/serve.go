package dispatch

import (
	"context"
	"errors"
	"io"

	logs "github.com/danmuck/logowire/internal/logging"
)

// Receiver yields complete messages in arrival order.
type Receiver interface {
	Receive(ctx context.Context) ([]byte, error)
}

// ErrorHandler sees every message Dispatch rejected. Returning a non-nil
// error stops Serve with that error.
type ErrorHandler func(msg []byte, err error) error

// Serve dispatches messages from rx one at a time, each to completion before
// the next is received. It returns nil on io.EOF and ctx.Err() on
// cancellation. Without onError, rejected messages are logged and skipped.
func (d *Dispatcher) Serve(ctx context.Context, rx Receiver, onError ErrorHandler) error {
	for {
		msg, err := rx.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				logs.Debugf("dispatch.%s receiver closed", d.side)
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := d.Dispatch(msg); err != nil {
			if onError == nil {
				continue
			}
			if stop := onError(msg, err); stop != nil {
				return stop
			}
		}
	}
}
