package transport

import (
	"context"
	"math/rand"
	"net"
	"strings"
	"time"

	logs "github.com/danmuck/logowire/internal/logging"
	"github.com/danmuck/logowire/internal/protocol/frame"
)

// DialConfig describes a stream connection to a peer.
type DialConfig struct {
	Network        string
	Address        string
	ConnectTimeout time.Duration
	MaxAttempts    int
	Backoff        BackoffConfig
	Limits         frame.Limits
}

func DefaultDialConfig() DialConfig {
	return DialConfig{
		Network:        "tcp",
		ConnectTimeout: 5 * time.Second,
		MaxAttempts:    5,
		Backoff:        DefaultBackoff(),
		Limits:         frame.DefaultLimits(),
	}
}

// Dial connects to cfg.Address, retrying with backoff until MaxAttempts
// (0 means unbounded) or ctx ends.
func Dial(ctx context.Context, cfg DialConfig) (*Stream, error) {
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, ErrEmptyConfig
	}
	if cfg.Network == "" {
		cfg.Network = "tcp"
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	for attempt := 1; ; attempt++ {
		conn, err := dialer.DialContext(ctx, cfg.Network, cfg.Address)
		if err == nil {
			logs.Debugf("transport.Dial connected network=%s addr=%q attempt=%d", cfg.Network, cfg.Address, attempt)
			return NewStream(conn, cfg.Limits), nil
		}
		logs.Warnf("transport.Dial attempt=%d network=%s addr=%q err=%v", attempt, cfg.Network, cfg.Address, err)
		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			return nil, err
		}
		timer := time.NewTimer(cfg.Backoff.Delay(attempt, rng))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// Listener accepts framed stream connections.
type Listener struct {
	ln     net.Listener
	limits frame.Limits
}

func Listen(network, address string, limits frame.Limits) (*Listener, error) {
	if strings.TrimSpace(address) == "" {
		return nil, ErrEmptyConfig
	}
	ln, err := net.Listen(network, address)
	if err != nil {
		return nil, err
	}
	return &Listener{ln: ln, limits: limits}, nil
}

func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Accept waits for the next peer or ctx cancellation.
func (l *Listener) Accept(ctx context.Context) (*Stream, error) {
	stop := context.AfterFunc(ctx, func() { _ = l.ln.Close() })
	defer stop()
	conn, err := l.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return NewStream(conn, l.limits), nil
}

func (l *Listener) Close() error {
	return l.ln.Close()
}
