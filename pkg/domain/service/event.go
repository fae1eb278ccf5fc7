package service

import (
	"github.com/sirupsen/logrus"
)

type Event interface {
	Type() string
}

// EventDispatcher delivers events synchronously: every subscriber has seen
// the event when Dispatch returns.
type EventDispatcher interface {
	Dispatch(event Event) error
}

func dispatchEvent(dispatcher EventDispatcher, logger logrus.FieldLogger, event Event) {
	if err := dispatcher.Dispatch(event); err != nil {
		logger.WithError(err).WithField("event", event.Type()).Error("failed to dispatch event")
	}
}
