// Package frontend runs the frontend side of a session: messages from the
// kernel are dispatched to a presentation surface and its replies are sent
// back over the same connection.
package frontend

import (
	"context"
	"errors"
	"fmt"

	"github.com/danmuck/logowire/internal/console"
	"github.com/danmuck/logowire/internal/dispatch"
	logs "github.com/danmuck/logowire/internal/logging"
	"github.com/danmuck/logowire/internal/transport"
)

var ErrWrongSide = errors.New("frontend: dispatcher is not a frontend dispatcher")

// ErrorHandler sees every rejected message; see dispatch.ErrorHandler.
type ErrorHandler = dispatch.ErrorHandler

// Run receives messages from rx and dispatches each to completion, in order,
// on the calling goroutine. Malformed messages go to onError and processing
// continues. Run returns nil when rx reaches EOF.
func Run(ctx context.Context, rx transport.Receiver, d *dispatch.Dispatcher, onError ErrorHandler) error {
	if d == nil || d.Side() != dispatch.SideFrontend {
		return ErrWrongSide
	}
	if onError == nil {
		onError = LogErrors
	}
	return d.Serve(ctx, rx, onError)
}

// LogErrors logs the rejection and keeps the session going.
func LogErrors(msg []byte, err error) error {
	logs.Warnf("frontend rejected message len=%d err=%v", len(msg), err)
	return nil
}

// Surface builds the presentation surface once its reply queue exists.
type Surface func(replies console.Replies) dispatch.Frontend

// Options tunes Serve.
type Options struct {
	OutboxDepth int
	OnError     ErrorHandler
}

// Serve owns conn for one session: replies go through an Outbox over conn,
// commands from conn drive the surface. conn is closed on return.
func Serve(ctx context.Context, conn transport.Conn, surface Surface, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outbox := transport.StartOutbox(ctx, conn, opts.OutboxDepth)
	d, err := dispatch.NewFrontend(surface(outbox))
	if err != nil {
		_ = outbox.Close()
		_ = conn.Close()
		return fmt.Errorf("frontend: %w", err)
	}
	logs.Infof("frontend session started")
	runErr := Run(ctx, conn, d, opts.OnError)
	_ = outbox.Close()
	stats := outbox.Stats()
	logs.Infof("frontend session ended replies_sent=%d replies_failed=%d err=%v", stats.Sent, stats.Failed, runErr)
	if err := conn.Close(); err != nil && !errors.Is(err, transport.ErrClosed) {
		logs.Debugf("frontend close err=%v", err)
	}
	return runErr
}
