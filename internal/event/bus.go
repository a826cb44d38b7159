package event

import (
	"log/slog"
	"sync"
)

type HandlerFunc func(raw any)

// Bus fans events out to subscribers. Publish runs handlers on the caller's
// goroutine in subscription order, so tick-ordered events stay ordered.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]HandlerFunc),
	}
}

func (b *Bus) Subscribe(eventName string, handler HandlerFunc) {
	if b == nil || handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// SubscribeAll registers handler for every name in eventNames.
func (b *Bus) SubscribeAll(eventNames []string, handler HandlerFunc) {
	for _, name := range eventNames {
		b.Subscribe(name, handler)
	}
}

func (b *Bus) Publish(eventName string, evt any) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]HandlerFunc, len(b.handlers[eventName]))
	copy(handlers, b.handlers[eventName])
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(eventName, handler, evt)
	}
}

func (b *Bus) dispatch(eventName string, h HandlerFunc, evt any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event handler panicked", "event", eventName, "panic", r)
		}
	}()
	h(evt)
}
