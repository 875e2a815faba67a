package event

import (
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/mindtree/pkg/observability"
)

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus(4)
	defer bus.Close()

	var mu sync.Mutex
	var got []string
	bus.Subscribe(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.Action)
	})

	actions := []string{ActionAddNode, ActionMoveNode, ActionRemoveNode, ActionUpdateNode, ActionToggleNode, ActionStyleNode}
	for _, a := range actions {
		bus.Publish(Event{Type: Edit, Action: a})
	}
	bus.Flush()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != len(actions) {
		t.Fatalf("delivered %d events, want %d", len(got), len(actions))
	}
	for i := range actions {
		if got[i] != actions[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], actions[i])
		}
	}
}

func TestBusDeliveryIsDeferred(t *testing.T) {
	bus := NewBus(1)
	defer bus.Close()

	release := make(chan struct{})
	delivered := make(chan struct{})
	bus.Subscribe(func(Event) {
		<-release
		close(delivered)
	})

	// Publish returns while the listener is still blocked.
	bus.Publish(Event{Type: Show})
	select {
	case <-delivered:
		t.Fatal("listener finished before release")
	default:
	}
	close(release)

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(0)
	defer bus.Close()

	var mu sync.Mutex
	counts := map[string]int{}
	listen := func(name string) Listener {
		return func(Event) {
			mu.Lock()
			defer mu.Unlock()
			counts[name]++
		}
	}
	unsubA := bus.Subscribe(listen("a"))
	bus.Subscribe(listen("b"))

	bus.Publish(Event{Type: Select})
	bus.Flush()
	unsubA()
	unsubA()
	bus.Publish(Event{Type: Select})
	bus.Flush()

	mu.Lock()
	defer mu.Unlock()
	if counts["a"] != 1 || counts["b"] != 2 {
		t.Errorf("counts = %v, want a=1 b=2", counts)
	}
}

type panicHooks struct {
	observability.NoopEventHooks
	mu     sync.Mutex
	panics []any
}

func (h *panicHooks) OnListenerPanic(_ string, r any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, r)
}

func TestListenerPanicIsRecovered(t *testing.T) {
	hooks := &panicHooks{}
	observability.SetEventHooks(hooks)
	t.Cleanup(observability.Reset)

	bus := NewBus(0)
	defer bus.Close()

	var mu sync.Mutex
	calls := 0
	bus.Subscribe(func(Event) { panic("boom") })
	bus.Subscribe(func(Event) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})

	bus.Publish(Event{Type: Edit, Action: ActionAddNode})
	bus.Publish(Event{Type: Edit, Action: ActionAddNode})
	bus.Flush()

	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Errorf("healthy listener called %d times, want 2", calls)
	}
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.panics) != 2 || hooks.panics[0] != "boom" {
		t.Errorf("recorded panics = %v", hooks.panics)
	}
}

func TestCloseDrainsAndDrops(t *testing.T) {
	bus := NewBus(8)

	var mu sync.Mutex
	n := 0
	bus.Subscribe(func(Event) {
		mu.Lock()
		defer mu.Unlock()
		n++
	})
	for range 5 {
		bus.Publish(Event{Type: Resize})
	}
	bus.Close()
	bus.Close()
	bus.Publish(Event{Type: Resize})

	mu.Lock()
	defer mu.Unlock()
	if n != 5 {
		t.Errorf("delivered %d events, want 5", n)
	}
}

func TestTypeString(t *testing.T) {
	tests := map[Type]string{Show: "show", Resize: "resize", Edit: "edit", Select: "select", Type(9): "Type(9)"}
	for typ, want := range tests {
		if got := typ.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(typ), got, want)
		}
	}
}
