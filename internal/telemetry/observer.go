package telemetry

import (
	"time"

	"github.com/sirupsen/logrus"
)

// CallEvent records metadata about a single backend HTTP call.
type CallEvent struct {
	Service string
	Op      string
	Status  int
	Latency time.Duration
	Success bool
}

// Observer receives events about backend calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a logrus logger at debug level, or warn
// for failures.
type LogObserver struct {
	log logrus.FieldLogger
}

// NewLogObserver creates an Observer that logs events through log.
func NewLogObserver(log logrus.FieldLogger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	entry := o.log.WithFields(logrus.Fields{
		"service":    event.Service,
		"op":         event.Op,
		"status":     event.Status,
		"latency_ms": event.Latency.Milliseconds(),
	})
	if !event.Success {
		entry.Warn("backend_call failed")
		return
	}
	entry.Debug("backend_call")
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}

// Multi fans an event out to every non-nil observer.
type Multi []Observer

func (m Multi) OnCallComplete(event CallEvent) {
	for _, o := range m {
		if o != nil {
			o.OnCallComplete(event)
		}
	}
}

// OrNoop returns obs, or a NoopObserver when obs is nil.
func OrNoop(obs Observer) Observer {
	if obs == nil {
		return NoopObserver{}
	}
	return obs
}
