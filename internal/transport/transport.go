// Package transport moves whole protocol messages between Kernel and
// Frontend. Every implementation preserves send order and delivers each
// message intact; message boundaries are kept by the transport itself.
package transport

import (
	"context"
	"errors"
)

var (
	ErrClosed      = errors.New("transport: closed")
	ErrOutboxFull  = errors.New("transport: outbox full")
	ErrEmptyConfig = errors.New("transport: address required")
)

// Sender delivers one complete message.
type Sender interface {
	Send(ctx context.Context, msg []byte) error
}

// Receiver returns the next complete message in arrival order. io.EOF marks
// an orderly end of the channel.
type Receiver interface {
	Receive(ctx context.Context) ([]byte, error)
}

type Conn interface {
	Sender
	Receiver
	Close() error
}
