// Package gutter renders per-line blame attribution in an editor gutter. A
// Reconciler fetches a snapshot asynchronously and diffs it against the
// previously rendered state, reusing decorations for lines present in both so
// the gutter never flickers on refresh.
package gutter

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/massimiliano76/nuclide/blame"
	"github.com/massimiliano76/nuclide/editor"
)

// defaultLoadingDelay is how long a fetch may run before the loading
// indicator appears.
const defaultLoadingDelay = 2 * time.Second

// clickEventName is the tracking event recorded for every gutter click that
// resolves to a changeset.
const clickEventName = "blame-gutter-click"

// Options tune a Reconciler. The zero value is usable: notices go to the log,
// tracking is dropped, and navigation is a no-op.
type Options struct {
	Notifier     editor.Notifier
	Tracker      editor.Tracker
	Logger       *log.Logger
	LoadingDelay time.Duration

	// Navigate opens a resolved changeset URL externally.
	Navigate func(url string) error
}

type loadingState int

const (
	loadingIdle loadingState = iota
	loadingPending
	loadingVisible
)

type lineDecoration struct {
	marker     editor.Marker
	decoration editor.Decoration
}

// Reconciler owns one gutter on one editor. Construction triggers a single
// asynchronous attribution fetch; Refresh re-runs it once the previous fetch
// has settled. Destroy is idempotent and neutralizes late fetch results.
type Reconciler struct {
	host     editor.Host
	provider blame.Provider
	resolver blame.URLResolver // nil when the provider cannot resolve URLs

	notifier editor.Notifier
	tracker  editor.Tracker
	logger   *log.Logger
	navigate func(string) error
	delay    time.Duration

	mu           sync.Mutex
	gutter       editor.Gutter
	decorations  map[int]lineDecoration
	snapshot     blame.Snapshot
	loading      loadingState
	loadingTimer *time.Timer
	clickSub     editor.Subscription
	fetching     bool
	destroyed    bool
	cancel       context.CancelFunc
}

// New allocates a named gutter on the editor and starts fetching attribution.
// The delegated click listener is attached only when the provider can resolve
// changeset URLs.
func New(name string, host editor.Host, provider blame.Provider, opts Options) (*Reconciler, error) {
	if name == "" {
		return nil, fmt.Errorf("gutter name required")
	}
	if host == nil {
		return nil, fmt.Errorf("editor host required")
	}
	if provider == nil {
		return nil, fmt.Errorf("blame provider required")
	}
	g, err := host.AddGutter(name)
	if err != nil {
		return nil, fmt.Errorf("add gutter %q: %w", name, err)
	}

	r := &Reconciler{
		host:        host,
		provider:    provider,
		gutter:      g,
		decorations: make(map[int]lineDecoration),
		notifier:    opts.Notifier,
		tracker:     opts.Tracker,
		logger:      opts.Logger,
		navigate:    opts.Navigate,
		delay:       opts.LoadingDelay,
	}
	if r.notifier == nil {
		r.notifier = editor.LogNotifier{}
	}
	if r.tracker == nil {
		r.tracker = editor.NopTracker{}
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	if r.navigate == nil {
		r.navigate = func(string) error { return nil }
	}
	if r.delay <= 0 {
		r.delay = defaultLoadingDelay
	}
	if resolver, ok := provider.(blame.URLResolver); ok {
		r.resolver = resolver
		r.clickSub = g.OnClick(r.handleClick)
	}

	r.mu.Lock()
	r.startFetchLocked()
	r.mu.Unlock()
	return r, nil
}

// Refresh fetches a new snapshot and reconciles against it. It is a no-op
// while a fetch is already outstanding or after Destroy.
func (r *Reconciler) Refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startFetchLocked()
}

func (r *Reconciler) startFetchLocked() {
	if r.destroyed || r.fetching {
		return
	}
	r.fetching = true
	r.loading = loadingPending
	r.loadingTimer = time.AfterFunc(r.delay, r.showLoading)

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go func() {
		snapshot, err := r.provider.Attribute(ctx, r.host)
		r.finishFetch(snapshot, err)
	}()
}

// showLoading fires from the one-shot timer when a fetch is slow.
func (r *Reconciler) showLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed || r.loading != loadingPending {
		return
	}
	r.loading = loadingVisible
	r.gutter.SetLoading(true)
}

// finishFetch runs on the fetch goroutine. Results arriving after Destroy are
// discarded without touching any UI state.
func (r *Reconciler) finishFetch(snapshot blame.Snapshot, err error) {
	r.mu.Lock()
	r.fetching = false
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.clearLoadingLocked()

	var notice string
	if err != nil {
		r.mu.Unlock()
		r.logger.Printf("blame gutter: attribution fetch failed: %v", err)
		r.notifier.Warning("Blame is unavailable for this file.")
		return
	}
	if len(snapshot) == 0 {
		notice = "Found no blame information for this file."
	}
	r.reconcileLocked(snapshot)
	r.mu.Unlock()

	if notice != "" {
		r.notifier.Info(notice)
	}
}

func (r *Reconciler) clearLoadingLocked() {
	if r.loadingTimer != nil {
		r.loadingTimer.Stop()
		r.loadingTimer = nil
	}
	if r.loading == loadingVisible {
		r.gutter.SetLoading(false)
	}
	r.loading = loadingIdle
}

// reconcileLocked replaces the rendered state with the snapshot: decorations
// for surviving lines are updated in place, new lines get a marker and a
// decoration, vanished lines are destroyed. Afterwards the decoration map's
// key set equals the snapshot's exactly.
func (r *Reconciler) reconcileLocked(snapshot blame.Snapshot) {
	width := longestLabel(snapshot)

	for line, attr := range snapshot {
		props := editor.Props{
			Label:       formatLabel(attr, width),
			Interactive: attr.Changeset != "" && r.resolver != nil,
		}
		if existing, ok := r.decorations[line]; ok {
			existing.decoration.SetProps(props)
			continue
		}
		marker, err := r.gutter.MarkLine(line)
		if err != nil {
			r.logger.Printf("blame gutter: mark line %d: %v", line, err)
			continue
		}
		decoration, err := r.gutter.Decorate(marker, props)
		if err != nil {
			r.logger.Printf("blame gutter: decorate line %d: %v", line, err)
			marker.Destroy()
			continue
		}
		r.decorations[line] = lineDecoration{marker: marker, decoration: decoration}
	}

	for line, existing := range r.decorations {
		if _, ok := snapshot[line]; ok {
			continue
		}
		existing.decoration.Destroy()
		existing.marker.Destroy()
		delete(r.decorations, line)
	}

	r.gutter.SetWidth(width)
	r.snapshot = snapshot
}

// longestLabel is the widest rendered label in character units: the author
// name, plus the changeset and one separator when present.
func longestLabel(snapshot blame.Snapshot) int {
	width := 0
	for _, attr := range snapshot {
		w := len(attr.Author)
		if attr.Changeset != "" {
			w += len(attr.Changeset) + 1
		}
		if w > width {
			width = w
		}
	}
	return width
}

// formatLabel lays the author out on the left and right-aligns the changeset
// within the computed gutter width. Widths are character cells; rendering is
// assumed monospaced.
func formatLabel(attr blame.Attribution, width int) string {
	if attr.Changeset == "" {
		return fmt.Sprintf("%-*s", width, attr.Author)
	}
	gap := width - len(attr.Author) - len(attr.Changeset)
	if gap < 1 {
		gap = 1
	}
	return attr.Author + strings.Repeat(" ", gap) + attr.Changeset
}

// handleClick resolves the clicked line's changeset to a URL and navigates to
// it. A missing URL surfaces a dismissible warning naming the changeset. The
// click is tracked regardless of outcome.
func (r *Reconciler) handleClick(ev editor.ClickEvent) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	attr, ok := r.snapshot[ev.Line]
	r.mu.Unlock()
	if !ok || attr.Changeset == "" || r.resolver == nil {
		return
	}
	path := r.host.Path()

	go func() {
		url, err := r.resolver.ResolveURL(context.Background(), path, attr.Changeset)
		if err != nil {
			r.logger.Printf("blame gutter: resolve URL for %s: %v", attr.Changeset, err)
			url = ""
		}
		if url != "" {
			if err := r.navigate(url); err != nil {
				r.logger.Printf("blame gutter: open %s: %v", url, err)
			}
		} else {
			r.notifier.Warning(fmt.Sprintf("No URL found for changeset %s.", attr.Changeset))
		}
		r.tracker.Track(clickEventName, map[string]string{
			"editorPath": path,
			"url":        url,
		})
	}()
}

// Destroy tears the gutter down. Idempotent; a fetch resolving afterwards is
// discarded. The gutter element itself is skipped when the owning editor is
// already gone, since destroying gutters on dead editors faults in some
// hosts.
func (r *Reconciler) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return
	}
	r.destroyed = true

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.clearLoadingLocked()
	if r.clickSub != nil {
		r.clickSub.Dispose()
		r.clickSub = nil
	}
	if !r.host.IsDestroyed() {
		r.gutter.Destroy()
	}
	for line, existing := range r.decorations {
		existing.decoration.Destroy()
		existing.marker.Destroy()
		delete(r.decorations, line)
	}
	r.snapshot = nil
}
