// Package blame defines the line-attribution capability a gutter renders:
// per-line author and changeset metadata produced asynchronously by a
// pluggable provider.
package blame

import (
	"context"

	"github.com/massimiliano76/nuclide/editor"
)

// Attribution describes the last modification of one buffer line.
type Attribution struct {
	// Author is the display name of the last author.
	Author string

	// Changeset identifies the committed change, abbreviated. Empty for
	// lines not committed yet.
	Changeset string
}

// Snapshot maps zero-based buffer lines to their attribution. A snapshot is
// produced atomically for one editor at one point in time and always replaces
// the previous one wholesale; it is never merged incrementally.
type Snapshot map[int]Attribution

// Provider fetches attribution for an editor's document.
type Provider interface {
	Attribute(ctx context.Context, ed editor.Host) (Snapshot, error)
}

// URLResolver is the optional capability of turning a changeset into a
// navigable URL. An empty result with a nil error means no URL is known,
// which is a valid non-error state.
type URLResolver interface {
	ResolveURL(ctx context.Context, path, changeset string) (string, error)
}
