package diagnostics

import (
	"sync"

	"go.lsp.dev/protocol"
)

// Update carries provider-authored diagnostics keyed by file path.
type Update struct {
	Diagnostics map[string][]protocol.Diagnostic
}

// InvalidationScope selects what an invalidation clears.
type InvalidationScope int

const (
	// InvalidateAll clears every diagnostic the provider published.
	InvalidateAll InvalidationScope = iota

	// InvalidateFiles clears diagnostics for the listed files only.
	InvalidateFiles
)

// Invalidation asks consumers to drop previously published diagnostics.
type Invalidation struct {
	Scope     InvalidationScope
	FilePaths []string
}

// UpdateCallback consumes published updates.
type UpdateCallback func(Update)

// InvalidateCallback consumes published invalidations.
type InvalidateCallback func(Invalidation)

// Config describes a provider's subscription scope and lifecycle hooks. All
// callbacks are optional; missing ones are normalized to no-ops.
type Config struct {
	// GrammarScopes limits text events to these grammars. Ignored when
	// AllGrammarScopes is set.
	GrammarScopes []string

	// AllGrammarScopes subscribes across every grammar.
	AllGrammarScopes bool

	// RunOnTheFly selects continuous edit events instead of save events
	// for the initial subscription.
	RunOnTheFly bool

	// OnTextEvent fires for every text event the active subscription sees.
	OnTextEvent func(TextEvent)

	// OnNewUpdateSubscriber fires once, with the first callback ever
	// registered through OnUpdate, before that callback is added.
	OnNewUpdateSubscriber func(UpdateCallback)

	// OnNewInvalidateSubscriber fires once, with the first callback ever
	// registered through OnInvalidate, before that callback is added.
	OnNewInvalidateSubscriber func(InvalidateCallback)
}

// ProviderBase owns a single live text-event subscription and the two
// publish/subscribe channels a diagnostics provider exposes. At most one
// event subscription is active at any instant: switching modes disposes the
// old subscription before creating the new one.
type ProviderBase struct {
	dispatcher       Dispatcher
	grammarScopes    []string
	allGrammarScopes bool
	onTextEvent      func(TextEvent)

	updates       *callbackChannel[Update]
	invalidations *callbackChannel[Invalidation]

	mu       sync.Mutex
	active   Subscription
	disposed bool
}

// NewProviderBase builds a provider base and immediately establishes the
// initial subscription per cfg.RunOnTheFly. A nil dispatcher binds to the
// process-wide shared bus.
func NewProviderBase(cfg Config, dispatcher Dispatcher) *ProviderBase {
	if dispatcher == nil {
		dispatcher = DefaultBus()
	}
	onTextEvent := cfg.OnTextEvent
	if onTextEvent == nil {
		onTextEvent = func(TextEvent) {}
	}
	onNewUpdate := cfg.OnNewUpdateSubscriber
	if onNewUpdate == nil {
		onNewUpdate = func(UpdateCallback) {}
	}
	onNewInvalidate := cfg.OnNewInvalidateSubscriber
	if onNewInvalidate == nil {
		onNewInvalidate = func(InvalidateCallback) {}
	}
	p := &ProviderBase{
		dispatcher:       dispatcher,
		grammarScopes:    append([]string(nil), cfg.GrammarScopes...),
		allGrammarScopes: cfg.AllGrammarScopes,
		onTextEvent:      onTextEvent,
		updates:          newCallbackChannel[Update](func(fn func(Update)) { onNewUpdate(fn) }),
		invalidations:    newCallbackChannel[Invalidation](func(fn func(Invalidation)) { onNewInvalidate(fn) }),
	}
	p.SetRunOnTheFly(cfg.RunOnTheFly)
	return p
}

// SetRunOnTheFly replaces the active subscription: edit events when onTheFly
// is set, save events otherwise. The previous subscription is disposed before
// the new one is created, so there is no overlap window.
func (p *ProviderBase) SetRunOnTheFly(onTheFly bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil {
		p.active.Dispose()
		p.active = nil
	}
	if p.disposed {
		return
	}
	switch {
	case onTheFly && p.allGrammarScopes:
		p.active = p.dispatcher.SubscribeToAnyChanges(p.onTextEvent)
	case onTheFly:
		p.active = p.dispatcher.SubscribeToChanges(p.grammarScopes, p.onTextEvent)
	case p.allGrammarScopes:
		p.active = p.dispatcher.SubscribeToAnySaves(p.onTextEvent)
	default:
		p.active = p.dispatcher.SubscribeToSaves(p.grammarScopes, p.onTextEvent)
	}
}

// PublishUpdate broadcasts the update to all current update subscribers,
// synchronously, in registration order.
func (p *ProviderBase) PublishUpdate(update Update) {
	p.updates.publish(update)
}

// PublishInvalidation broadcasts the invalidation to all current invalidate
// subscribers, synchronously, in registration order.
func (p *ProviderBase) PublishInvalidation(message Invalidation) {
	p.invalidations.publish(message)
}

// OnUpdate registers a callback on the update channel and returns a handle
// deregistering only this callback.
func (p *ProviderBase) OnUpdate(fn UpdateCallback) Subscription {
	return p.updates.subscribe(fn)
}

// OnInvalidate registers a callback on the invalidate channel and returns a
// handle deregistering only this callback.
func (p *ProviderBase) OnInvalidate(fn InvalidateCallback) Subscription {
	return p.invalidations.subscribe(fn)
}

// Dispose releases both channels and the active event subscription. No
// further emissions are possible afterwards. Idempotent.
func (p *ProviderBase) Dispose() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	active := p.active
	p.active = nil
	p.mu.Unlock()

	if active != nil {
		active.Dispose()
	}
	p.updates.dispose()
	p.invalidations.dispose()
}

// callbackChannel is an ordered publish/subscribe registry. The onFirst hook
// runs exactly once per channel lifetime, with the first callback, before
// that callback is registered.
type callbackChannel[T any] struct {
	mu       sync.Mutex
	onFirst  func(func(T))
	fired    bool
	entries  []*channelEntry[T]
	disposed bool
}

type channelEntry[T any] struct {
	fn func(T)
}

func newCallbackChannel[T any](onFirst func(func(T))) *callbackChannel[T] {
	return &callbackChannel[T]{onFirst: onFirst}
}

func (c *callbackChannel[T]) subscribe(fn func(T)) Subscription {
	if fn == nil {
		fn = func(T) {}
	}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return subscriptionFunc(func() {})
	}
	first := !c.fired
	c.fired = true
	c.mu.Unlock()

	// The hook observes the channel before this callback joins it.
	if first {
		c.onFirst(fn)
	}

	entry := &channelEntry[T]{fn: fn}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return subscriptionFunc(func() {})
	}
	c.entries = append(c.entries, entry)
	c.mu.Unlock()

	var once sync.Once
	return subscriptionFunc(func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, e := range c.entries {
				if e == entry {
					c.entries = append(c.entries[:i], c.entries[i+1:]...)
					return
				}
			}
		})
	})
}

func (c *callbackChannel[T]) publish(value T) {
	c.mu.Lock()
	fns := make([]func(T), 0, len(c.entries))
	for _, e := range c.entries {
		fns = append(fns, e.fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

func (c *callbackChannel[T]) dispose() {
	c.mu.Lock()
	c.disposed = true
	c.entries = nil
	c.mu.Unlock()
}
