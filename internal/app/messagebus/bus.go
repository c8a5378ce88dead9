package messagebus

import (
	"github.com/burenotti/go_energy_balance/internal/domain"
	"log/slog"
	"sync"
)

type EventHandler func(event domain.Event) error

// MessageBus fans events out to their handlers, each in its own goroutine.
// Register handlers before the first publish.
type MessageBus struct {
	logger   *slog.Logger
	handlers map[string][]EventHandler
	wg       sync.WaitGroup
}

func New(logger *slog.Logger) *MessageBus {
	return &MessageBus{
		logger:   logger,
		handlers: make(map[string][]EventHandler),
		wg:       sync.WaitGroup{},
	}
}

func (b *MessageBus) Register(eventType string, handlers ...EventHandler) {
	b.handlers[eventType] = append(b.handlers[eventType], handlers...)
}

func (b *MessageBus) PublishEvents(events ...domain.Event) error {
	for _, event := range events {
		handlers := b.handlers[event.Type()]
		if len(handlers) == 0 {
			b.logger.Debug("no handlers for event", "type", event.Type())
			continue
		}
		for _, handler := range handlers {
			b.wg.Add(1)
			go func(event domain.Event, handler EventHandler) {
				defer b.wg.Done()
				if err := handler(event); err != nil {
					b.logger.Error("failed to handle event", "type", event.Type(), "err", err)
				}
			}(event, handler)
		}
	}
	return nil
}

// Close waits for in-flight handlers.
func (b *MessageBus) Close() {
	b.wg.Wait()
}
