// Package tui renders a terminal blame viewer: file content in a viewport
// with a blame gutter alongside, backed by the same reconciler an editor
// extension would use.
package tui

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/massimiliano76/nuclide/blame"
	"github.com/massimiliano76/nuclide/config"
	"github.com/massimiliano76/nuclide/editor"
	"github.com/massimiliano76/nuclide/gutter"
)

// Run opens the blame viewer for path and blocks until the user quits.
func Run(ctx context.Context, path string, provider blame.Provider, cfg config.Config) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")

	var prog atomic.Pointer[tea.Program]
	send := func(msg tea.Msg) {
		if p := prog.Load(); p != nil {
			p.Send(msg)
		}
	}
	host := newPaneHost(path, func() { send(repaintMsg{}) })

	model := newModel(path, lines, host, cfg.GutterName)
	program := tea.NewProgram(
		model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	prog.Store(program)

	rec, err := gutter.New(cfg.GutterName, host, provider, gutter.Options{
		Notifier:     statusNotifier{send: send},
		Tracker:      editor.NopTracker{},
		Logger:       log.New(io.Discard, "", 0), // the TUI owns the terminal
		LoadingDelay: cfg.LoadingDelay(),
		Navigate:     OpenURL,
	})
	if err != nil {
		return err
	}
	defer rec.Destroy()

	_, err = program.Run()
	return err
}

// repaintMsg asks the model to rebuild the viewport from host state.
type repaintMsg struct{}

// statusMsg carries a notice into the status bar.
type statusMsg struct {
	text string
	warn bool
}

// statusNotifier implements editor.Notifier by forwarding into the program.
type statusNotifier struct {
	send func(tea.Msg)
}

func (n statusNotifier) Info(message string)    { n.send(statusMsg{text: message}) }
func (n statusNotifier) Warning(message string) { n.send(statusMsg{text: message, warn: true}) }

// Model is the Bubble Tea model for the blame viewer.
type Model struct {
	path       string
	lines      []string
	host       *paneHost
	gutterName string

	content viewport.Model
	spinner spinner.Model

	status     string
	statusWarn bool

	width  int
	height int
	ready  bool
}

func newModel(path string, lines []string, host *paneHost, gutterName string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return Model{
		path:       path,
		lines:      lines,
		host:       host,
		gutterName: gutterName,
		spinner:    sp,
	}
}

// Init fulfills the Bubble Tea Model interface.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// OpenURL launches the platform's URL opener.
func OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
