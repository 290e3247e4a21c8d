package lspevents

import (
	"context"
	"log"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/massimiliano76/nuclide/diagnostics"
)

// Notifier is the slice of jsonrpc2.Conn the publisher needs, separated so
// tests can record notifications.
type Notifier interface {
	Notify(ctx context.Context, method string, params interface{}) error
}

// WrapConn adapts a jsonrpc2 connection to Notifier.
func WrapConn(conn *jsonrpc2.Conn) Notifier {
	return connNotifier{conn: conn}
}

type connNotifier struct {
	conn *jsonrpc2.Conn
}

func (c connNotifier) Notify(ctx context.Context, method string, params interface{}) error {
	return c.conn.Notify(ctx, method, params)
}

// Publisher forwards a provider's updates to an LSP client as
// textDocument/publishDiagnostics notifications. Invalidations publish empty
// diagnostic sets for the affected files.
type Publisher struct {
	ctx    context.Context
	conn   Notifier
	logger *log.Logger

	mu        sync.Mutex
	published map[string]struct{}

	subs []diagnostics.Subscription
}

// NewPublisher subscribes to the provider's channels and starts forwarding.
// Dispose stops it.
func NewPublisher(ctx context.Context, conn Notifier, provider *diagnostics.ProviderBase, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.Default()
	}
	p := &Publisher{
		ctx:       ctx,
		conn:      conn,
		logger:    logger,
		published: make(map[string]struct{}),
	}
	p.subs = append(p.subs,
		provider.OnUpdate(p.handleUpdate),
		provider.OnInvalidate(p.handleInvalidation),
	)
	return p
}

func (p *Publisher) handleUpdate(update diagnostics.Update) {
	for path, diags := range update.Diagnostics {
		p.publish(path, diags)
	}
}

func (p *Publisher) handleInvalidation(inv diagnostics.Invalidation) {
	if inv.Scope == diagnostics.InvalidateAll {
		p.mu.Lock()
		paths := make([]string, 0, len(p.published))
		for path := range p.published {
			paths = append(paths, path)
		}
		p.mu.Unlock()
		for _, path := range paths {
			p.publish(path, nil)
		}
		return
	}
	for _, path := range inv.FilePaths {
		p.publish(path, nil)
	}
}

func (p *Publisher) publish(path string, diags []protocol.Diagnostic) {
	p.mu.Lock()
	if len(diags) == 0 {
		delete(p.published, path)
	} else {
		p.published[path] = struct{}{}
	}
	p.mu.Unlock()

	if diags == nil {
		diags = []protocol.Diagnostic{}
	}
	params := protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(PathToURI(path)),
		Diagnostics: diags,
	}
	if err := p.conn.Notify(p.ctx, "textDocument/publishDiagnostics", params); err != nil {
		p.logger.Printf("lspevents: publish diagnostics for %s: %v", path, err)
	}
}

// Dispose deregisters from the provider's channels.
func (p *Publisher) Dispose() {
	for _, sub := range p.subs {
		sub.Dispose()
	}
	p.subs = nil
}
