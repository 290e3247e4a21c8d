package diagnostics

import (
	"log"
	"sync"
)

// Bus is the in-process Dispatcher implementation. Editors (or bridges such
// as lspevents) feed it with DispatchChange/DispatchSave; providers subscribe
// through the Dispatcher interface. Subscribers are invoked synchronously in
// registration order.
type Bus struct {
	mu      sync.Mutex
	logger  *log.Logger
	changes []*busEntry
	saves   []*busEntry
}

type busEntry struct {
	scopes map[string]struct{} // nil means any scope
	fn     func(TextEvent)
}

// NewBus builds an empty bus. A nil logger defaults to log.Default().
func NewBus(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.Default()
	}
	return &Bus{logger: logger}
}

var (
	defaultBusOnce sync.Once
	defaultBus     *Bus
)

// DefaultBus returns the process-wide shared bus, lazily constructed on first
// use. Constructors accept an injected Dispatcher as well, so tests can run
// against an isolated instance.
func DefaultBus() *Bus {
	defaultBusOnce.Do(func() {
		defaultBus = NewBus(nil)
	})
	return defaultBus
}

// SubscribeToChanges implements Dispatcher.
func (b *Bus) SubscribeToChanges(scopes []string, fn func(TextEvent)) Subscription {
	return b.add(&b.changes, "change", scopeSet(scopes), fn)
}

// SubscribeToAnyChanges implements Dispatcher.
func (b *Bus) SubscribeToAnyChanges(fn func(TextEvent)) Subscription {
	return b.add(&b.changes, "change", nil, fn)
}

// SubscribeToSaves implements Dispatcher.
func (b *Bus) SubscribeToSaves(scopes []string, fn func(TextEvent)) Subscription {
	return b.add(&b.saves, "save", scopeSet(scopes), fn)
}

// SubscribeToAnySaves implements Dispatcher.
func (b *Bus) SubscribeToAnySaves(fn func(TextEvent)) Subscription {
	return b.add(&b.saves, "save", nil, fn)
}

// DispatchChange delivers an edit event to every matching change subscriber.
func (b *Bus) DispatchChange(ev TextEvent) {
	ev.Kind = EventChange
	b.dispatch(&b.changes, ev)
}

// DispatchSave delivers a save event to every matching save subscriber.
func (b *Bus) DispatchSave(ev TextEvent) {
	ev.Kind = EventSave
	b.dispatch(&b.saves, ev)
}

func (b *Bus) add(list *[]*busEntry, kind string, scopes map[string]struct{}, fn func(TextEvent)) Subscription {
	if fn == nil {
		fn = func(TextEvent) {}
	}
	entry := &busEntry{scopes: scopes, fn: fn}
	b.mu.Lock()
	*list = append(*list, entry)
	listening := len(*list)
	b.mu.Unlock()
	b.logger.Printf("diagnostics: %s subscriber added, %d listening", kind, listening)

	var once sync.Once
	return subscriptionFunc(func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, e := range *list {
				if e == entry {
					*list = append((*list)[:i], (*list)[i+1:]...)
					return
				}
			}
		})
	})
}

func (b *Bus) dispatch(list *[]*busEntry, ev TextEvent) {
	b.mu.Lock()
	matched := make([]func(TextEvent), 0, len(*list))
	for _, e := range *list {
		if e.scopes == nil {
			matched = append(matched, e.fn)
			continue
		}
		if _, ok := e.scopes[ev.GrammarScope]; ok {
			matched = append(matched, e.fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range matched {
		fn(ev)
	}
}

func scopeSet(scopes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		set[s] = struct{}{}
	}
	return set
}

type subscriptionFunc func()

func (f subscriptionFunc) Dispose() { f() }
