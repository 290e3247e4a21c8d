// Package lspevents feeds the diagnostics bus from an editor speaking the
// Language Server Protocol: textDocument lifecycle notifications become text
// events, and provider updates flow back out as publishDiagnostics.
package lspevents

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/massimiliano76/nuclide/diagnostics"
)

// Bridge translates LSP document notifications into bus events. The grammar
// scope of an event is the languageID the client reported at didOpen.
type Bridge struct {
	bus    *diagnostics.Bus
	logger *log.Logger

	mu        sync.Mutex
	languages map[protocol.DocumentURI]string
}

// NewBridge builds a bridge publishing onto bus. A nil logger defaults to
// log.Default().
func NewBridge(bus *diagnostics.Bus, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.Default()
	}
	return &Bridge{
		bus:       bus,
		logger:    logger,
		languages: make(map[protocol.DocumentURI]string),
	}
}

// Serve runs a jsonrpc2 connection over rwc with the bridge as handler and
// returns it. The caller owns the connection's lifetime.
func Serve(ctx context.Context, rwc io.ReadWriteCloser, bridge *Bridge) *jsonrpc2.Conn {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	return jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(bridge.handle))
}

func (b *Bridge) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case "initialize":
		return map[string]interface{}{
			"capabilities": map[string]interface{}{
				"textDocumentSync": map[string]interface{}{
					"openClose": true,
					"change":    1,
					"save":      true,
				},
			},
		}, nil
	case "initialized", "exit":
		return nil, nil
	case "shutdown":
		return nil, nil
	case "textDocument/didOpen":
		var params protocol.DidOpenTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		b.mu.Lock()
		b.languages[params.TextDocument.URI] = string(params.TextDocument.LanguageID)
		b.mu.Unlock()
		return nil, nil
	case "textDocument/didChange":
		var params protocol.DidChangeTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		b.bus.DispatchChange(b.eventFor(params.TextDocument.URI))
		return nil, nil
	case "textDocument/didSave":
		var params protocol.DidSaveTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		b.bus.DispatchSave(b.eventFor(params.TextDocument.URI))
		return nil, nil
	case "textDocument/didClose":
		var params protocol.DidCloseTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		b.mu.Lock()
		delete(b.languages, params.TextDocument.URI)
		b.mu.Unlock()
		return nil, nil
	default:
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not handled"}
	}
}

func (b *Bridge) eventFor(uri protocol.DocumentURI) diagnostics.TextEvent {
	b.mu.Lock()
	lang := b.languages[uri]
	b.mu.Unlock()
	if lang == "" {
		b.logger.Printf("lspevents: event for untracked document %s", uri)
	}
	return diagnostics.TextEvent{
		Path:         URIToPath(string(uri)),
		GrammarScope: lang,
	}
}

func unmarshalParams(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}

// Stdio returns a ReadWriteCloser over the process's stdin/stdout, the usual
// transport for editor-spawned servers.
func Stdio() io.ReadWriteCloser {
	return &stdioReadWriteCloser{reader: os.Stdin, writer: os.Stdout}
}

type stdioReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error)  { return s.reader.Read(p) }
func (s *stdioReadWriteCloser) Write(p []byte) (int, error) { return s.writer.Write(p) }

func (s *stdioReadWriteCloser) Close() error {
	_ = s.reader.Close()
	return s.writer.Close()
}

// PathToURI converts a filesystem path to a file:// URI, percent-escaping
// reserved characters.
func PathToURI(path string) string {
	path = filepath.ToSlash(filepath.Clean(path))
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String()
}

// URIToPath converts a file:// URI back to a filesystem path. URIs with
// other schemes come back unchanged.
func URIToPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "file" {
		return raw
	}
	path := u.Path
	if runtime.GOOS == "windows" {
		path = strings.TrimPrefix(path, "/")
	}
	return filepath.FromSlash(path)
}
