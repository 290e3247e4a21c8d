package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massimiliano76/nuclide/editor"
)

func TestPaneHostAddGutter(t *testing.T) {
	host := newPaneHost("/repo/main.go", nil)

	g, err := host.AddGutter("blame")
	require.NoError(t, err)
	require.NotNil(t, g)

	_, err = host.AddGutter("blame")
	require.Error(t, err, "duplicate gutter names are rejected")

	assert.Equal(t, "/repo/main.go", host.Path())
	assert.False(t, host.IsDestroyed())
}

func TestPaneGutterDecorationLifecycle(t *testing.T) {
	repaints := 0
	host := newPaneHost("/repo/main.go", func() { repaints++ })
	g, err := host.AddGutter("blame")
	require.NoError(t, err)

	marker, err := g.MarkLine(3)
	require.NoError(t, err)
	decoration, err := g.Decorate(marker, editor.Props{Label: "alice abc123", Interactive: true})
	require.NoError(t, err)
	g.SetWidth(12)

	width, _, labels := host.gutter("blame").cells()
	assert.Equal(t, 12, width)
	require.Contains(t, labels, 3)
	assert.Equal(t, "alice abc123", labels[3].Label)
	assert.True(t, labels[3].Interactive)

	decoration.SetProps(editor.Props{Label: "bob def456"})
	_, _, labels = host.gutter("blame").cells()
	assert.Equal(t, "bob def456", labels[3].Label)

	marker.Destroy()
	_, _, labels = host.gutter("blame").cells()
	assert.Empty(t, labels)
	assert.Greater(t, repaints, 0)
}

func TestPaneGutterRejectsForeignMarker(t *testing.T) {
	host := newPaneHost("/repo/main.go", nil)
	g1, err := host.AddGutter("one")
	require.NoError(t, err)
	g2, err := host.AddGutter("two")
	require.NoError(t, err)

	marker, err := g1.MarkLine(0)
	require.NoError(t, err)
	_, err = g2.Decorate(marker, editor.Props{})
	require.Error(t, err)

	_, err = g1.MarkLine(-1)
	require.Error(t, err)
}

func TestPaneGutterClickDelegation(t *testing.T) {
	host := newPaneHost("/repo/main.go", nil)
	gIface, err := host.AddGutter("blame")
	require.NoError(t, err)
	g := gIface.(*paneGutter)

	var clicked []int
	sub := g.OnClick(func(ev editor.ClickEvent) { clicked = append(clicked, ev.Line) })

	g.emitClick(5)
	assert.Equal(t, []int{5}, clicked)

	sub.Dispose()
	g.emitClick(6)
	assert.Equal(t, []int{5}, clicked, "disposed listeners see no clicks")
}

func TestPaneGutterDestroyRemovesFromHost(t *testing.T) {
	host := newPaneHost("/repo/main.go", nil)
	g, err := host.AddGutter("blame")
	require.NoError(t, err)

	g.Destroy()
	assert.Nil(t, host.gutter("blame"))

	// The name becomes available again.
	_, err = host.AddGutter("blame")
	require.NoError(t, err)
}

func TestModelRenderLinesAlignsGutter(t *testing.T) {
	host := newPaneHost("/repo/main.go", nil)
	gIface, err := host.AddGutter("blame")
	require.NoError(t, err)
	g := gIface.(*paneGutter)

	marker, err := g.MarkLine(0)
	require.NoError(t, err)
	_, err = g.Decorate(marker, editor.Props{Label: "alice abc123"})
	require.NoError(t, err)
	g.SetWidth(12)

	m := newModel("/repo/main.go", []string{"package main", "func main() {}"}, host, "blame")
	out := m.renderLines()

	require.Contains(t, out, "alice abc123")
	lines := splitLines(out)
	require.Len(t, lines, 2)
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}
