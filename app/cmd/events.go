package cmd

import (
	"context"
	"io"
	"log"

	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"

	"github.com/massimiliano76/nuclide/config"
	"github.com/massimiliano76/nuclide/diagnostics"
	"github.com/massimiliano76/nuclide/lspevents"
)

// newEventsCmd serves the LSP text-event bridge on stdio. Buffer events from
// the connected editor are dispatched onto the diagnostics bus, and a
// provider subscribed per the workspace config republishes an empty
// diagnostic set for every touched file, keeping the editor's view clear.
func newEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Serve the stdio LSP bridge for editor text events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(cmd.Context(), lspevents.Stdio(), globalCfg, cliLogger(cmd))
		},
	}
}

// runEvents wires the bus, provider, bridge, and publisher over rwc and
// blocks until ctx is done or the client disconnects. The provider must be
// fully constructed before the connection starts reading: its text-event
// callback runs on connection goroutines.
func runEvents(ctx context.Context, rwc io.ReadWriteCloser, cfg config.Config, logger *log.Logger) error {
	bus := diagnostics.NewBus(logger)

	var provider *diagnostics.ProviderBase
	provider = diagnostics.NewProviderBase(diagnostics.Config{
		GrammarScopes:    cfg.GrammarScopes,
		AllGrammarScopes: cfg.AllGrammarScopes,
		RunOnTheFly:      cfg.RunOnTheFly,
		OnTextEvent: func(ev diagnostics.TextEvent) {
			logger.Printf("text event: kind=%s path=%s scope=%s", ev.Kind, ev.Path, ev.GrammarScope)
			provider.PublishUpdate(diagnostics.Update{
				Diagnostics: map[string][]protocol.Diagnostic{
					ev.Path: {},
				},
			})
		},
	}, bus)
	defer provider.Dispose()

	bridge := lspevents.NewBridge(bus, logger)
	conn := lspevents.Serve(ctx, rwc, bridge)
	defer conn.Close()

	publisher := lspevents.NewPublisher(ctx, lspevents.WrapConn(conn), provider, logger)
	defer publisher.Dispose()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-conn.DisconnectNotify():
		return nil
	}
}
