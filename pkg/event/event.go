// Package event delivers mind-map notifications to listeners.
//
// Notifications are advisory: a [Bus] queues each published [Event] and hands
// it to listeners on its own goroutine, after the publishing call has
// returned. Listeners must not assume they run before the next mutation, and
// must not rely on delivery order across different publishers.
//
//	bus := event.NewBus(64)
//	defer bus.Close()
//	unsubscribe := bus.Subscribe(func(e event.Event) {
//	    log.Info("edit", "action", e.Action, "node", e.NodeID)
//	})
//	defer unsubscribe()
package event

import (
	"fmt"
	"sync"

	"github.com/matzehuels/mindtree/pkg/observability"
)

// Type classifies an event.
type Type int

const (
	Show   Type = 1
	Resize Type = 2
	Edit   Type = 3
	Select Type = 4
)

// String returns the lower-case type name.
func (t Type) String() string {
	switch t {
	case Show:
		return "show"
	case Resize:
		return "resize"
	case Edit:
		return "edit"
	case Select:
		return "select"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Edit actions.
const (
	ActionAddNode          = "addNode"
	ActionInsertNodeBefore = "insertNodeBefore"
	ActionInsertNodeAfter  = "insertNodeAfter"
	ActionRemoveNode       = "removeNode"
	ActionUpdateNode       = "updateNode"
	ActionMoveNode         = "moveNode"
	ActionToggleNode       = "toggleNode"
	ActionStyleNode        = "styleNode"
)

// Event is one notification.
type Event struct {
	Type Type
	// Action names the edit for [Edit] events.
	Action string
	// NodeID is the affected node, if any.
	NodeID string
	// Args carries the operation's arguments in call order.
	Args []any
}

// Listener receives events.
type Listener func(Event)

// DefaultBuffer is the queue length used when NewBus is given zero.
const DefaultBuffer = 64

type subscription struct {
	id int
	fn Listener
}

// Bus is a deferred, best-effort notification queue. It is safe for
// concurrent use.
type Bus struct {
	queue chan Event
	done  chan struct{}

	// mu guards listeners; state guards closed and is held by publishers
	// while they send, so Close cannot close the queue under them.
	mu        sync.RWMutex
	listeners []subscription
	nextID    int
	state     sync.RWMutex
	closed    bool

	pending sync.WaitGroup
}

// NewBus starts a bus with the given queue length.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	b := &Bus{
		queue: make(chan Event, buffer),
		done:  make(chan struct{}),
	}
	go b.run()
	return b
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, subscription{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.listeners {
			if s.id == id {
				b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// Publish queues e for delivery. It blocks only while the queue is full and
// drops the event once the bus is closed. Listeners must not publish to a
// full queue from inside a delivery.
func (b *Bus) Publish(e Event) {
	b.state.RLock()
	defer b.state.RUnlock()
	if b.closed {
		return
	}
	b.pending.Add(1)
	b.queue <- e
}

// Flush waits until every event published so far has been delivered.
func (b *Bus) Flush() {
	b.pending.Wait()
}

// Close stops accepting events, delivers what is queued, and waits for the
// dispatcher to exit. Close is idempotent.
func (b *Bus) Close() {
	b.state.Lock()
	if b.closed {
		b.state.Unlock()
		<-b.done
		return
	}
	b.closed = true
	close(b.queue)
	b.state.Unlock()
	<-b.done
}

func (b *Bus) run() {
	defer close(b.done)
	for e := range b.queue {
		b.deliver(e)
		b.pending.Done()
	}
}

func (b *Bus) deliver(e Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	for i, s := range b.listeners {
		listeners[i] = s.fn
	}
	b.mu.RUnlock()

	for _, fn := range listeners {
		call(fn, e)
	}
	observability.Event().OnDeliver(e.Type.String(), len(listeners))
}

func call(fn Listener, e Event) {
	defer func() {
		if r := recover(); r != nil {
			observability.Event().OnListenerPanic(e.Type.String(), r)
		}
	}()
	fn(e)
}
