package transport

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/logowire/internal/testutil/testlog"
)

type sinkSender struct {
	mu   sync.Mutex
	got  [][]byte
	fail error
	gate chan struct{}
}

func (s *sinkSender) Send(ctx context.Context, msg []byte) error {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.got = append(s.got, msg)
	return nil
}

func (s *sinkSender) messages() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.got...)
}

func TestOutboxDeliversInOrderOnClose(t *testing.T) {
	testlog.Start(t)
	sink := &sinkSender{}
	o := StartOutbox(context.Background(), sink, 8)

	buf := []byte{1}
	require.NoError(t, o.Enqueue(buf))
	buf[0] = 9 // enqueue copies
	require.NoError(t, o.Enqueue([]byte{2}))
	require.NoError(t, o.Enqueue([]byte{3}))
	require.NoError(t, o.Close())

	assert.Equal(t, [][]byte{{1}, {2}, {3}}, sink.messages())
	stats := o.Stats()
	assert.Equal(t, 3, stats.Queued)
	assert.Equal(t, 3, stats.Sent)
	assert.Zero(t, stats.Failed)
	assert.ErrorIs(t, o.Enqueue([]byte{4}), ErrClosed)
	assert.ErrorIs(t, o.Close(), ErrClosed)
}

func TestOutboxFullDoesNotBlock(t *testing.T) {
	testlog.Start(t)
	sink := &sinkSender{gate: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	o := StartOutbox(ctx, sink, 1)

	// one message may be held by the sender, one fills the queue
	var full bool
	for i := 0; i < 3; i++ {
		if err := o.Enqueue([]byte{byte(i)}); errors.Is(err, ErrOutboxFull) {
			full = true
			break
		}
	}
	assert.True(t, full)
	cancel()
	_ = o.Close()
}

func TestOutboxRecordsFailures(t *testing.T) {
	testlog.Start(t)
	sink := &sinkSender{fail: errors.New("peer gone")}
	o := StartOutbox(context.Background(), sink, 0)
	require.NoError(t, o.Enqueue([]byte{1}))
	require.NoError(t, o.Close())

	stats := o.Stats()
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, "peer gone", stats.LastError)
}
