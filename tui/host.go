package tui

import (
	"fmt"
	"sync"

	"github.com/massimiliano76/nuclide/editor"
)

// paneHost implements the editor capabilities over in-memory state the
// Bubble Tea model renders. Every mutation schedules a repaint.
type paneHost struct {
	mu        sync.Mutex
	path      string
	destroyed bool
	gutters   map[string]*paneGutter
	repaint   func()
}

func newPaneHost(path string, repaint func()) *paneHost {
	if repaint == nil {
		repaint = func() {}
	}
	return &paneHost{
		path:    path,
		gutters: make(map[string]*paneGutter),
		repaint: repaint,
	}
}

func (h *paneHost) Path() string { return h.path }

func (h *paneHost) IsDestroyed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.destroyed
}

func (h *paneHost) AddGutter(name string) (editor.Gutter, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return nil, fmt.Errorf("editor %s is destroyed", h.path)
	}
	if _, ok := h.gutters[name]; ok {
		return nil, fmt.Errorf("gutter %q already exists", name)
	}
	g := &paneGutter{host: h, name: name, decorations: make(map[*paneMarker]*paneDecoration)}
	h.gutters[name] = g
	return g, nil
}

func (h *paneHost) gutter(name string) *paneGutter {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gutters[name]
}

// paneGutter records width, loading state, and per-line decorations.
type paneGutter struct {
	host        *paneHost
	name        string
	width       int
	loading     bool
	destroyed   bool
	decorations map[*paneMarker]*paneDecoration
	clicks      []*clickEntry
}

type clickEntry struct {
	fn func(editor.ClickEvent)
}

type paneMarker struct {
	g         *paneGutter
	line      int
	destroyed bool
}

type paneDecoration struct {
	g      *paneGutter
	marker *paneMarker
	props  editor.Props
}

func (g *paneGutter) MarkLine(line int) (editor.Marker, error) {
	if line < 0 {
		return nil, fmt.Errorf("negative buffer line %d", line)
	}
	return &paneMarker{g: g, line: line}, nil
}

func (g *paneGutter) Decorate(marker editor.Marker, props editor.Props) (editor.Decoration, error) {
	m, ok := marker.(*paneMarker)
	if !ok || m.g != g {
		return nil, fmt.Errorf("marker does not belong to gutter %q", g.name)
	}
	d := &paneDecoration{g: g, marker: m, props: props}
	g.host.mu.Lock()
	g.decorations[m] = d
	g.host.mu.Unlock()
	g.host.repaint()
	return d, nil
}

func (g *paneGutter) SetWidth(chars int) {
	g.host.mu.Lock()
	g.width = chars
	g.host.mu.Unlock()
	g.host.repaint()
}

func (g *paneGutter) SetLoading(visible bool) {
	g.host.mu.Lock()
	g.loading = visible
	g.host.mu.Unlock()
	g.host.repaint()
}

func (g *paneGutter) OnClick(fn func(editor.ClickEvent)) editor.Subscription {
	entry := &clickEntry{fn: fn}
	g.host.mu.Lock()
	g.clicks = append(g.clicks, entry)
	g.host.mu.Unlock()
	return editor.SubscriptionFunc(func() {
		g.host.mu.Lock()
		defer g.host.mu.Unlock()
		for i, e := range g.clicks {
			if e == entry {
				g.clicks = append(g.clicks[:i], g.clicks[i+1:]...)
				return
			}
		}
	})
}

func (g *paneGutter) Destroy() {
	g.host.mu.Lock()
	g.destroyed = true
	g.decorations = make(map[*paneMarker]*paneDecoration)
	g.clicks = nil
	delete(g.host.gutters, g.name)
	g.host.mu.Unlock()
	g.host.repaint()
}

// emitClick fans a click on a buffer line out to the delegated listeners.
func (g *paneGutter) emitClick(line int) {
	g.host.mu.Lock()
	fns := make([]func(editor.ClickEvent), 0, len(g.clicks))
	for _, e := range g.clicks {
		fns = append(fns, e.fn)
	}
	g.host.mu.Unlock()
	for _, fn := range fns {
		fn(editor.ClickEvent{Line: line})
	}
}

// cells snapshots the render state: gutter width, loading flag, and label
// props per line.
func (g *paneGutter) cells() (width int, loading bool, labels map[int]editor.Props) {
	g.host.mu.Lock()
	defer g.host.mu.Unlock()
	labels = make(map[int]editor.Props, len(g.decorations))
	for m, d := range g.decorations {
		if !m.destroyed {
			labels[m.line] = d.props
		}
	}
	return g.width, g.loading, labels
}

func (m *paneMarker) Destroy() {
	m.g.host.mu.Lock()
	m.destroyed = true
	delete(m.g.decorations, m)
	m.g.host.mu.Unlock()
	m.g.host.repaint()
}

func (d *paneDecoration) SetProps(props editor.Props) {
	d.g.host.mu.Lock()
	d.props = props
	d.g.host.mu.Unlock()
	d.g.host.repaint()
}

func (d *paneDecoration) Destroy() {
	d.g.host.mu.Lock()
	delete(d.g.decorations, d.marker)
	d.g.host.mu.Unlock()
	d.g.host.repaint()
}
