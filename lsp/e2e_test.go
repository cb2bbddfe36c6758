// Copyright © 2024 The ELPS authors

package lsp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/tslint/config"
	"github.com/luthersystems/tslint/rules"
)

// jsonRPCRequest builds a JSON-RPC 2.0 request.
func jsonRPCRequest(id int, method string, params any) []byte {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	}
	b, _ := json.Marshal(msg)
	return b
}

// jsonRPCNotification builds a JSON-RPC 2.0 notification (no id).
func jsonRPCNotification(method string, params any) []byte {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	b, _ := json.Marshal(msg)
	return b
}

// lspMessage wraps JSON content with the LSP Content-Length header.
func lspMessage(content []byte) []byte {
	return fmt.Appendf(nil, "Content-Length: %d\r\n\r\n%s", len(content), content)
}

// readLSPMessage reads a single LSP message from a buffered reader.
// Returns the parsed JSON as a map.
func readLSPMessage(t *testing.T, r *bufio.Reader) map[string]any {
	t.Helper()

	// Read headers until blank line.
	var contentLength int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("failed to read LSP header: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if val, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			n, err := strconv.Atoi(val)
			require.NoError(t, err, "parsing Content-Length")
			contentLength = n
		}
	}
	require.Greater(t, contentLength, 0, "Content-Length must be positive")

	// Read content body.
	body := make([]byte, contentLength)
	_, err := io.ReadFull(r, body)
	require.NoError(t, err, "reading message body")

	var msg map[string]any
	require.NoError(t, json.Unmarshal(body, &msg), "parsing JSON body")
	return msg
}

// readResponse reads LSP messages until a response with the given id appears.
// Returns the response and any notifications received along the way.
func readResponse(t *testing.T, r *bufio.Reader, id int) (map[string]any, []map[string]any) {
	t.Helper()
	var notifications []map[string]any
	deadline := time.After(10 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timeout waiting for response id=%d", id)
		default:
		}
		msg := readLSPMessage(t, r)
		// If this message has the expected id, it's our response.
		if msgID, ok := msg["id"]; ok {
			var msgIDFloat float64
			switch v := msgID.(type) {
			case float64:
				msgIDFloat = v
			case json.Number:
				f, _ := v.Float64()
				msgIDFloat = f
			}
			if int(msgIDFloat) == id {
				return msg, notifications
			}
		}
		// Otherwise it's a notification (no id, or different id).
		notifications = append(notifications, msg)
	}
}

// e2eServer starts an LSP server on a random TCP port and returns the
// connection and a cleanup function.
func e2eServer(t *testing.T) (net.Conn, func()) {
	t.Helper()

	rs, err := config.Default().Resolve(rules.Lookup, nil)
	require.NoError(t, err)
	log, _ := logtest.NewNullLogger()
	srv := New(WithRules(rs), WithLogger(log))
	srv.exitFn = func(int) {}

	// Find a free port.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	_ = listener.Close()

	// Start the server in the background.
	done := make(chan error, 1)
	go func() {
		done <- srv.RunTCP(addr)
	}()

	// Give server a moment to start listening, then connect.
	var conn net.Conn
	for range 50 {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err, "failed to connect to LSP server at %s", addr)

	cleanup := func() {
		_ = conn.Close()
	}

	return conn, cleanup
}

// send writes an LSP message to the connection.
func send(t *testing.T, conn net.Conn, data []byte) {
	t.Helper()
	_, err := conn.Write(lspMessage(data))
	require.NoError(t, err, "writing LSP message")
}

// readDiagnostics reads messages until diagnostics for uri are published.
func readDiagnostics(t *testing.T, r *bufio.Reader, uri string) []any {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for diagnostics notification")
		default:
		}
		msg := readLSPMessage(t, r)
		if method, ok := msg["method"].(string); !ok || method != "textDocument/publishDiagnostics" {
			continue
		}
		params := msg["params"].(map[string]any)
		if params["uri"] != uri {
			continue
		}
		diags, _ := params["diagnostics"].([]any)
		return diags
	}
}

func initialize(t *testing.T, conn net.Conn, r *bufio.Reader) map[string]any {
	t.Helper()
	send(t, conn, jsonRPCRequest(1, "initialize", map[string]any{
		"capabilities": map[string]any{},
	}))
	resp, _ := readResponse(t, r, 1)
	send(t, conn, jsonRPCNotification("initialized", map[string]any{}))
	return resp
}

func shutdown(t *testing.T, conn net.Conn, r *bufio.Reader) {
	t.Helper()
	send(t, conn, jsonRPCRequest(99, "shutdown", nil))
	resp, _ := readResponse(t, r, 99)
	assert.Nil(t, resp["error"], "shutdown should not error")
	send(t, conn, jsonRPCNotification("exit", nil))
}

func TestE2E_FullLifecycle(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()

	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-test/test.ts"

	// --- Step 1: Initialize ---
	resp := initialize(t, conn, reader)
	result := resp["result"].(map[string]any)
	caps := result["capabilities"].(map[string]any)
	assert.NotNil(t, caps["textDocumentSync"], "should sync documents")
	require.NotNil(t, caps["codeActionProvider"], "should have code actions")
	kinds := caps["codeActionProvider"].(map[string]any)["codeActionKinds"].([]any)
	assert.Contains(t, kinds, "quickfix")
	assert.Contains(t, kinds, "source.fixAll.tslint")
	assert.Nil(t, caps["hoverProvider"])

	serverInfo := result["serverInfo"].(map[string]any)
	assert.Equal(t, "tslint-lsp", serverInfo["name"])

	// --- Step 2: Open a document with failures ---
	send(t, conn, jsonRPCNotification("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        testURI,
			"languageId": "typescript",
			"version":    1,
			"text":       padded,
		},
	}))
	diags := readDiagnostics(t, reader, testURI)
	require.Len(t, diags, 3)
	last := diags[2].(map[string]any)
	assert.Equal(t, "no-trailing-whitespace", last["code"])
	assert.Equal(t, "tslint", last["source"])

	// --- Step 3: Ask for the fix of the trailing whitespace ---
	send(t, conn, jsonRPCRequest(2, "textDocument/codeAction", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"range":        last["range"],
		"context": map[string]any{
			"diagnostics": []any{last},
			"only":        []any{"quickfix"},
		},
	}))
	actResp, _ := readResponse(t, reader, 2)
	actions := actResp["result"].([]any)
	require.Len(t, actions, 2)
	fix := actions[0].(map[string]any)
	assert.Equal(t, "Fix: trailing whitespace", fix["title"])
	edits := fix["edit"].(map[string]any)["changes"].(map[string]any)[testURI].([]any)
	require.Len(t, edits, 1)
	edit := edits[0].(map[string]any)
	assert.Equal(t, "", edit["newText"])
	start := edit["range"].(map[string]any)["start"].(map[string]any)
	assert.Equal(t, float64(15), start["character"])

	// --- Step 4: Change the document to clean code ---
	send(t, conn, jsonRPCNotification("textDocument/didChange", map[string]any{
		"textDocument": map[string]any{"uri": testURI, "version": 2},
		"contentChanges": []any{
			map[string]any{"text": "let a = { x: 1 };\n"},
		},
	}))
	assert.Empty(t, readDiagnostics(t, reader, testURI), "debounced lint clears the failures")

	// --- Step 5: Close document ---
	send(t, conn, jsonRPCNotification("textDocument/didClose", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
	}))
	assert.Empty(t, readDiagnostics(t, reader, testURI))

	shutdown(t, conn, reader)
}

func TestE2E_DiagnosticsPublishedOnOpen(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()

	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-diag/test.ts"
	initialize(t, conn, reader)

	// Open document with a syntax error.
	send(t, conn, jsonRPCNotification("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        testURI,
			"languageId": "typescript",
			"version":    1,
			"text":       "function broken(x {\n",
		},
	}))

	diags := readDiagnostics(t, reader, testURI)
	require.Len(t, diags, 1, "a syntax error replaces all failures")
	diag := diags[0].(map[string]any)
	assert.Equal(t, float64(1), diag["severity"]) // 1 = Error
	assert.Equal(t, "tslint", diag["source"])

	shutdown(t, conn, reader)
}

func TestE2E_EmptyDocument(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()

	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-empty/test.ts"
	initialize(t, conn, reader)

	send(t, conn, jsonRPCNotification("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        testURI,
			"languageId": "typescript",
			"version":    1,
			"text":       "",
		},
	}))
	assert.Empty(t, readDiagnostics(t, reader, testURI))

	send(t, conn, jsonRPCRequest(2, "textDocument/codeAction", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"range": map[string]any{
			"start": map[string]any{"line": 0, "character": 0},
			"end":   map[string]any{"line": 0, "character": 0},
		},
		"context": map[string]any{"diagnostics": []any{}},
	}))
	resp, _ := readResponse(t, reader, 2)
	assert.Nil(t, resp["result"])
	assert.Nil(t, resp["error"])

	shutdown(t, conn, reader)
}
