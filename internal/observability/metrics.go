package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Dispatch outcomes.
const (
	OutcomeApplied   = "applied"
	OutcomeUnknown   = "unknown"
	OutcomeMalformed = "malformed"
	OutcomeRejected  = "rejected"
)

var (
	registerOnce sync.Once

	dispatchMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "logowire",
			Subsystem: "dispatch",
			Name:      "messages_total",
			Help:      "Messages handed to a dispatcher, by side, command and outcome.",
		},
		[]string{"side", "command", "outcome"},
	)
	transportFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "logowire",
			Subsystem: "transport",
			Name:      "frames_total",
			Help:      "Frames moved by a transport, by transport kind and direction.",
		},
		[]string{"transport", "direction"},
	)
	transportBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "logowire",
			Subsystem: "transport",
			Name:      "bytes_total",
			Help:      "Message bytes moved by a transport, excluding framing.",
		},
		[]string{"transport", "direction"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(dispatchMessages, transportFrames, transportBytes)
	})
}

func RecordDispatch(side, command, outcome string) {
	RegisterMetrics()
	dispatchMessages.WithLabelValues(side, command, outcome).Inc()
}

func RecordFrame(transport, direction string, size int) {
	RegisterMetrics()
	transportFrames.WithLabelValues(transport, direction).Inc()
	transportBytes.WithLabelValues(transport, direction).Add(float64(size))
}

// DispatchCounter exposes one dispatch series for inspection.
func DispatchCounter(side, command, outcome string) prometheus.Counter {
	RegisterMetrics()
	return dispatchMessages.WithLabelValues(side, command, outcome)
}

// FrameCounter exposes one transport frame series for inspection.
func FrameCounter(transport, direction string) prometheus.Counter {
	RegisterMetrics()
	return transportFrames.WithLabelValues(transport, direction)
}
