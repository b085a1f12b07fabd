package dispatch

import (
	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/domain/service"
)

// LogDispatcher writes events to the structured log. Used when no
// message broker is configured.
type LogDispatcher struct{}

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

func (d *LogDispatcher) Dispatch(event service.Event) error {
	log.WithFields(log.Fields{
		"event":   event.Type(),
		"payload": event,
	}).Info("domain event")
	return nil
}
