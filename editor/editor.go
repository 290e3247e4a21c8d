// Package editor declares the capabilities the toolkit consumes from the
// embedding editor. The core packages never touch concrete UI objects; hosts
// implement these interfaces, and tests substitute doubles that record the
// decorations created and destroyed per line.
package editor

// Subscription releases a previously registered listener. Disposing twice is
// a no-op.
type Subscription interface {
	Dispose()
}

// SubscriptionFunc adapts a plain release function to Subscription.
type SubscriptionFunc func()

// Dispose calls the wrapped function.
func (f SubscriptionFunc) Dispose() {
	if f != nil {
		f()
	}
}

// Host is the per-editor surface needed to attach gutter UI.
type Host interface {
	// Path returns the path of the document the editor displays.
	Path() string

	// AddGutter allocates a named gutter alongside the editor.
	AddGutter(name string) (Gutter, error)

	// IsDestroyed reports whether the editor itself has been torn down.
	// Destroying a gutter on a dead editor is a host-API fault, so callers
	// check this before Gutter.Destroy.
	IsDestroyed() bool
}

// Gutter is a vertical strip alongside the editor rendering per-line
// annotations.
type Gutter interface {
	// MarkLine places a zero-width marker at the given buffer line.
	MarkLine(line int) (Marker, error)

	// Decorate binds a renderable decoration to a marker.
	Decorate(marker Marker, props Props) (Decoration, error)

	// SetWidth resizes the gutter to the given width in character units.
	SetWidth(chars int)

	// SetLoading shows or hides the gutter's loading indicator.
	SetLoading(visible bool)

	// OnClick registers a single delegated click listener over the whole
	// gutter. Hosts report the buffer line that was clicked.
	OnClick(fn func(ClickEvent)) Subscription

	// Destroy removes the gutter and everything rendered in it.
	Destroy()
}

// Marker is a position handle within the document.
type Marker interface {
	Destroy()
}

// Decoration is a rendered element bound to a marker.
type Decoration interface {
	SetProps(props Props)
	Destroy()
}

// Props describe how a decoration renders.
type Props struct {
	// Label is the text shown in the gutter cell.
	Label string

	// Interactive marks the decoration as clickable.
	Interactive bool
}

// ClickEvent reports a click on a gutter cell.
type ClickEvent struct {
	Line int
}
