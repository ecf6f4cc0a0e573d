package console

import (
	"testing"
	"time"

	"github.com/danmuck/logowire/internal/protocol"
)

type replyQueue struct {
	ch chan []byte
}

func newReplyQueue() *replyQueue {
	return &replyQueue{ch: make(chan []byte, 16)}
}

func (q *replyQueue) Enqueue(msg []byte) error {
	q.ch <- append([]byte(nil), msg...)
	return nil
}

func (q *replyQueue) next(t *testing.T) protocol.Payload {
	t.Helper()
	select {
	case msg := <-q.ch:
		p, err := protocol.Decode(msg)
		if err != nil {
			t.Fatalf("decode reply: %v", err)
		}
		return p
	case <-time.After(2 * time.Second):
		t.Fatalf("no reply")
		return nil
	}
}

func (q *replyQueue) none(t *testing.T) {
	t.Helper()
	select {
	case msg := <-q.ch:
		t.Fatalf("unexpected reply % x", msg)
	default:
	}
}
