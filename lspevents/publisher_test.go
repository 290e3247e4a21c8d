package lspevents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/massimiliano76/nuclide/diagnostics"
)

type recordedNotification struct {
	method string
	params protocol.PublishDiagnosticsParams
}

type fakeNotifier struct {
	sent []recordedNotification
}

func (f *fakeNotifier) Notify(ctx context.Context, method string, params interface{}) error {
	f.sent = append(f.sent, recordedNotification{
		method: method,
		params: params.(protocol.PublishDiagnosticsParams),
	})
	return nil
}

func newTestProvider(t *testing.T) *diagnostics.ProviderBase {
	t.Helper()
	p := diagnostics.NewProviderBase(diagnostics.Config{AllGrammarScopes: true},
		diagnostics.NewBus(testLogger()))
	t.Cleanup(p.Dispose)
	return p
}

func TestPublisherForwardsUpdates(t *testing.T) {
	provider := newTestProvider(t)
	conn := &fakeNotifier{}
	pub := NewPublisher(context.Background(), conn, provider, testLogger())
	defer pub.Dispose()

	provider.PublishUpdate(diagnostics.Update{
		Diagnostics: map[string][]protocol.Diagnostic{
			"/repo/main.go": {{Message: "unused variable"}},
		},
	})

	require.Len(t, conn.sent, 1)
	assert.Equal(t, "textDocument/publishDiagnostics", conn.sent[0].method)
	assert.Equal(t, protocol.DocumentURI("file:///repo/main.go"), conn.sent[0].params.URI)
	require.Len(t, conn.sent[0].params.Diagnostics, 1)
	assert.Equal(t, "unused variable", conn.sent[0].params.Diagnostics[0].Message)
}

func TestPublisherInvalidateFilesPublishesEmpty(t *testing.T) {
	provider := newTestProvider(t)
	conn := &fakeNotifier{}
	pub := NewPublisher(context.Background(), conn, provider, testLogger())
	defer pub.Dispose()

	provider.PublishInvalidation(diagnostics.Invalidation{
		Scope:     diagnostics.InvalidateFiles,
		FilePaths: []string{"/repo/a.go", "/repo/b.go"},
	})

	require.Len(t, conn.sent, 2)
	for _, n := range conn.sent {
		assert.Empty(t, n.params.Diagnostics)
	}
}

func TestPublisherInvalidateAllClearsPublishedFiles(t *testing.T) {
	provider := newTestProvider(t)
	conn := &fakeNotifier{}
	pub := NewPublisher(context.Background(), conn, provider, testLogger())
	defer pub.Dispose()

	provider.PublishUpdate(diagnostics.Update{
		Diagnostics: map[string][]protocol.Diagnostic{
			"/repo/a.go": {{Message: "x"}},
		},
	})
	conn.sent = nil

	provider.PublishInvalidation(diagnostics.Invalidation{Scope: diagnostics.InvalidateAll})

	require.Len(t, conn.sent, 1)
	assert.Equal(t, protocol.DocumentURI("file:///repo/a.go"), conn.sent[0].params.URI)
	assert.Empty(t, conn.sent[0].params.Diagnostics)

	// A second invalidate-all has nothing left to clear.
	conn.sent = nil
	provider.PublishInvalidation(diagnostics.Invalidation{Scope: diagnostics.InvalidateAll})
	assert.Empty(t, conn.sent)
}

func TestPublisherDisposeStopsForwarding(t *testing.T) {
	provider := newTestProvider(t)
	conn := &fakeNotifier{}
	pub := NewPublisher(context.Background(), conn, provider, testLogger())

	pub.Dispose()
	provider.PublishUpdate(diagnostics.Update{
		Diagnostics: map[string][]protocol.Diagnostic{"/repo/a.go": {{Message: "x"}}},
	})
	assert.Empty(t, conn.sent)
}
