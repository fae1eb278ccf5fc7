package event

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"storefront/pkg/domain/service"
)

type Handler func(event service.Event)

// Bus fans events out to subscribers on the dispatching goroutine. Handlers
// may dispatch further events.
type Bus struct {
	mu       sync.RWMutex
	byType   map[string][]Handler
	wildcard []Handler
	logger   logrus.FieldLogger
}

var _ service.EventDispatcher = (*Bus)(nil)

func NewBus(logger logrus.FieldLogger) *Bus {
	return &Bus{
		byType: make(map[string][]Handler),
		logger: logger.WithField("component", "bus"),
	}
}

func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byType[eventType] = append(b.byType[eventType], handler)
}

func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = append(b.wildcard, handler)
}

// Dispatch runs every handler even if one panics; the first panic is
// returned as an error.
func (b *Bus) Dispatch(event service.Event) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.byType[event.Type()])+len(b.wildcard))
	handlers = append(handlers, b.byType[event.Type()]...)
	handlers = append(handlers, b.wildcard...)
	b.mu.RUnlock()

	b.logger.WithField("event", event.Type()).Debug("dispatching")

	var firstErr error
	for _, handler := range handlers {
		if err := invoke(handler, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func invoke(handler Handler, event service.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("handler for %s panicked: %v", event.Type(), r)
		}
	}()
	handler(event)
	return nil
}
