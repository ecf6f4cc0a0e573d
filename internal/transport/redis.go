package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danmuck/logowire/internal/observability"
	"github.com/danmuck/logowire/internal/protocol/frame"
)

const (
	kindRedis          = "redis"
	DefaultRedisPrefix = "logowire"
	defaultPollTimeout = time.Second
)

// RedisKeys names the two lists of one session: one per direction.
func RedisKeys(prefix, session string) (toFrontend, toKernel string) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return fmt.Sprintf("%s:%s:frontend", prefix, session), fmt.Sprintf("%s:%s:kernel", prefix, session)
}

type RedisOption func(*RedisQueue)

// WithPollTimeout bounds each BLPOP so cancellation is observed promptly.
func WithPollTimeout(d time.Duration) RedisOption {
	return func(q *RedisQueue) {
		if d > 0 {
			q.poll = d
		}
	}
}

func WithRedisLimits(limits frame.Limits) RedisOption {
	return func(q *RedisQueue) { q.limits = limits }
}

// WithOwnedClient makes Close also close the redis client.
func WithOwnedClient() RedisOption {
	return func(q *RedisQueue) { q.owned = true }
}

// RedisQueue exchanges messages through two redis lists. Each list element
// is one message, so no framing is needed.
type RedisQueue struct {
	client  *redis.Client
	sendKey string
	recvKey string
	poll    time.Duration
	limits  frame.Limits
	owned   bool

	closeOnce sync.Once
	closed    chan struct{}
}

func NewRedisQueue(client *redis.Client, sendKey, recvKey string, opts ...RedisOption) *RedisQueue {
	q := &RedisQueue{
		client:  client,
		sendKey: sendKey,
		recvKey: recvKey,
		poll:    defaultPollTimeout,
		limits:  frame.DefaultLimits(),
		closed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// FrontendQueue reads what the kernel sends and writes replies back.
func FrontendQueue(client *redis.Client, prefix, session string, opts ...RedisOption) *RedisQueue {
	toFrontend, toKernel := RedisKeys(prefix, session)
	return NewRedisQueue(client, toKernel, toFrontend, opts...)
}

func KernelQueue(client *redis.Client, prefix, session string, opts ...RedisOption) *RedisQueue {
	toFrontend, toKernel := RedisKeys(prefix, session)
	return NewRedisQueue(client, toFrontend, toKernel, opts...)
}

func (q *RedisQueue) Send(ctx context.Context, msg []byte) error {
	if q.isClosed() {
		return ErrClosed
	}
	if uint64(len(msg)) > uint64(q.limits.Max()) {
		return fmt.Errorf("%w: %d bytes", frame.ErrFrameTooLarge, len(msg))
	}
	if len(msg) == 0 {
		return frame.ErrEmptyFrame
	}
	if err := q.client.RPush(ctx, q.sendKey, msg).Err(); err != nil {
		return err
	}
	observability.RecordFrame(kindRedis, "send", len(msg))
	return nil
}

func (q *RedisQueue) Receive(ctx context.Context) ([]byte, error) {
	for {
		if q.isClosed() {
			return nil, ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := q.client.BLPop(ctx, q.poll, q.recvKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil || (isTimeout(err) && ctxExpiring(ctx)) {
				// the socket deadline follows ctx and may fire first
				<-ctx.Done()
				return nil, ctx.Err()
			}
			if errors.Is(err, redis.ErrClosed) {
				return nil, ErrClosed
			}
			return nil, err
		}
		if len(res) != 2 {
			return nil, fmt.Errorf("transport: unexpected BLPOP reply of %d elements", len(res))
		}
		msg := []byte(res[1])
		observability.RecordFrame(kindRedis, "receive", len(msg))
		return msg, nil
	}
}

func (q *RedisQueue) Close() error {
	err := ErrClosed
	q.closeOnce.Do(func() {
		close(q.closed)
		err = nil
		if q.owned {
			err = q.client.Close()
		}
	})
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func (q *RedisQueue) isClosed() bool {
	select {
	case <-q.closed:
		return true
	default:
		return false
	}
}
