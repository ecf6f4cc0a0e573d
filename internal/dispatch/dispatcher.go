package dispatch

import (
	"errors"
	"sync/atomic"

	logs "github.com/danmuck/logowire/internal/logging"
	"github.com/danmuck/logowire/internal/observability"
	"github.com/danmuck/logowire/internal/protocol"
)

const (
	SideFrontend = "frontend"
	SideKernel   = "kernel"
)

var (
	ErrNilHandler        = errors.New("dispatch: nil handler")
	ErrReentrantDispatch = errors.New("dispatch: reentrant dispatch")
)

// State is the dispatcher lifecycle position.
type State int32

const (
	StateIdle State = iota
	StateDispatching
)

func (s State) String() string {
	if s == StateDispatching {
		return "dispatching"
	}
	return "idle"
}

// route decodes the whole message and, only on success, applies it.
type route func(msg protocol.Message) error

func bind[T any](decode func(protocol.Message) (T, error), apply func(T)) route {
	return func(msg protocol.Message) error {
		v, err := decode(msg)
		if err != nil {
			return err
		}
		apply(v)
		return nil
	}
}

// Dispatcher maps identifiers to routes. The table is fixed at construction.
type Dispatcher struct {
	side   string
	routes [256]route
	state  atomic.Int32
}

func newDispatcher(side string, table map[protocol.Command]route) *Dispatcher {
	d := &Dispatcher{side: side}
	for cmd, r := range table {
		d.routes[cmd] = r
	}
	return d
}

// Side names the routing table ("frontend" or "kernel").
func (d *Dispatcher) Side() string {
	return d.side
}

// Handles reports whether cmd has a route in this dispatcher.
func (d *Dispatcher) Handles(cmd protocol.Command) bool {
	return d.routes[cmd] != nil
}

func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Dispatch routes one complete message. Identifiers without a route are
// dropped and nil is returned. A malformed payload is returned as the
// decoder's *protocol.PayloadError and no handler runs.
func (d *Dispatcher) Dispatch(msg []byte) error {
	if !d.state.CompareAndSwap(int32(StateIdle), int32(StateDispatching)) {
		observability.RecordDispatch(d.side, "", observability.OutcomeRejected)
		return ErrReentrantDispatch
	}
	defer d.state.Store(int32(StateIdle))

	m := protocol.Message(msg)
	cmd, ok := m.Command()
	if !ok {
		observability.RecordDispatch(d.side, "", observability.OutcomeMalformed)
		logs.Warnf("dispatch.%s empty message", d.side)
		return protocol.ErrEmptyMessage
	}

	r := d.routes[cmd]
	if r == nil {
		observability.RecordDispatch(d.side, cmd.String(), observability.OutcomeUnknown)
		logs.Debugf("dispatch.%s ignored command=%s len=%d", d.side, cmd, len(msg))
		return nil
	}

	if err := r(m); err != nil {
		observability.RecordDispatch(d.side, cmd.String(), observability.OutcomeMalformed)
		logs.Warnf("dispatch.%s rejected command=%s len=%d err=%v", d.side, cmd, len(msg), err)
		return err
	}
	observability.RecordDispatch(d.side, cmd.String(), observability.OutcomeApplied)
	return nil
}
