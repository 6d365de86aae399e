package event

import (
	"github.com/fkhayef/splitpot/pkg/logger"
)

// Publisher broadcasts committed domain events. Delivery is best-effort and
// at-least-once; publishing must happen only after the mutation's transaction
// has committed.
type Publisher interface {
	Publish(e Event)
}

// LogPublisher is the default publisher; it records events in the server log.
// A real-time fan-out (WebSocket hub, message broker) plugs in behind the same
// interface.
type LogPublisher struct{}

// Publish logs the event
func (LogPublisher) Publish(e Event) {
	logger.Log.WithFields(map[string]interface{}{
		"type":     e.Type,
		"group_id": e.GroupID,
	}).Info("group event")
}
