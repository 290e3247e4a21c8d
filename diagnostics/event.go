// Package diagnostics provides the base a diagnostics provider builds on: a
// dual-mode text-event subscription (on-the-fly edits vs. saves, scoped to
// grammar sets or to every grammar) and two publish/subscribe channels that
// relay provider-authored updates and invalidations to interested consumers.
package diagnostics

// EventKind distinguishes continuous edit events from save events.
type EventKind int

const (
	// EventChange fires continuously as the user edits a buffer.
	EventChange EventKind = iota

	// EventSave fires when a buffer is written to disk.
	EventSave
)

// String returns a short name for the kind.
func (k EventKind) String() string {
	switch k {
	case EventChange:
		return "change"
	case EventSave:
		return "save"
	default:
		return "unknown"
	}
}

// TextEvent describes a buffer modification or save observed by a dispatcher.
type TextEvent struct {
	// Path is the document path the event concerns.
	Path string

	// GrammarScope identifies the document's grammar (its language id).
	GrammarScope string

	// Kind tells edits apart from saves.
	Kind EventKind
}

// Subscription deregisters a single listener. Disposing twice is a no-op.
type Subscription interface {
	Dispose()
}

// Dispatcher is the text-event source a ProviderBase subscribes to. Every
// Subscribe variant returns a handle releasing only that listener, so many
// provider instances can share one dispatcher and tear down independently.
type Dispatcher interface {
	// SubscribeToChanges observes edit events for documents whose grammar
	// scope is in scopes.
	SubscribeToChanges(scopes []string, fn func(TextEvent)) Subscription

	// SubscribeToAnyChanges observes edit events for every grammar.
	SubscribeToAnyChanges(fn func(TextEvent)) Subscription

	// SubscribeToSaves observes save events for documents whose grammar
	// scope is in scopes.
	SubscribeToSaves(scopes []string, fn func(TextEvent)) Subscription

	// SubscribeToAnySaves observes save events for every grammar.
	SubscribeToAnySaves(fn func(TextEvent)) Subscription
}
