package domain

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Event interface {
	Type() string
	PublishedAt() time.Time
}

type NoCopy struct {
	sync.Mutex
}

// Aggregate buffers domain events until the unit of work that changed it
// collects and publishes them.
type Aggregate struct {
	NoCopy
	events []Event
}

func (a *Aggregate) PopEvents() []Event {
	a.Lock()
	defer a.Unlock()
	events := a.events
	a.events = make([]Event, 0)
	return events
}

func (a *Aggregate) PushEvent(e Event) {
	a.Lock()
	a.events = append(a.events, e)
	a.Unlock()
}

// PendingEvents reports how many events are waiting to be collected.
func (a *Aggregate) PendingEvents() int {
	a.Lock()
	defer a.Unlock()
	return len(a.events)
}
