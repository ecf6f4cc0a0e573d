package transport

import (
	"context"
	"sync"
	"time"

	logs "github.com/danmuck/logowire/internal/logging"
)

const DefaultOutboxDepth = 64

// OutboxStats summarizes delivery through an Outbox.
type OutboxStats struct {
	Queued    int
	Sent      int
	Failed    int
	LastError string
	LastSent  time.Time
}

// Outbox queues messages for one Sender and delivers them in order from its
// own goroutine, so callers never block on the peer.
type Outbox struct {
	sender Sender
	queue  chan []byte
	done   chan struct{}

	mu     sync.RWMutex
	stats  OutboxStats
	closed bool
}

// StartOutbox starts delivery; it stops when ctx ends or Close is called.
func StartOutbox(ctx context.Context, sender Sender, depth int) *Outbox {
	if depth <= 0 {
		depth = DefaultOutboxDepth
	}
	o := &Outbox{
		sender: sender,
		queue:  make(chan []byte, depth),
		done:   make(chan struct{}),
	}
	go o.run(ctx)
	return o
}

// Enqueue copies msg onto the queue without blocking.
func (o *Outbox) Enqueue(msg []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	select {
	case o.queue <- append([]byte(nil), msg...):
		o.stats.Queued++
		return nil
	default:
		return ErrOutboxFull
	}
}

// Close stops accepting messages and waits for queued ones to be delivered.
func (o *Outbox) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		<-o.done
		return ErrClosed
	}
	o.closed = true
	close(o.queue)
	o.mu.Unlock()
	<-o.done
	return nil
}

func (o *Outbox) Stats() OutboxStats {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.stats
}

func (o *Outbox) run(ctx context.Context) {
	defer close(o.done)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-o.queue:
			if !ok {
				return
			}
			err := o.sender.Send(ctx, msg)
			o.mu.Lock()
			if err != nil {
				o.stats.Failed++
				o.stats.LastError = err.Error()
			} else {
				o.stats.Sent++
				o.stats.LastSent = time.Now()
			}
			o.mu.Unlock()
			if err != nil {
				logs.Errf("transport.Outbox send failed bytes=%d err=%v", len(msg), err)
			}
		}
	}
}
