// Copyright © 2024 The ELPS authors

package lsp

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/tslint/config"
	"github.com/luthersystems/tslint/lint"
	"github.com/luthersystems/tslint/parser"
	"github.com/luthersystems/tslint/rules"
)

// padded has one failure for each brace of the object literal and one for
// the trailing whitespace, all of them fixable.
const padded = "let a = {x: 1};  \n"

// testServer creates a server linting with the default configuration.
func testServer(t *testing.T) *Server {
	t.Helper()
	rs, err := config.Default().Resolve(rules.Lookup, nil)
	require.NoError(t, err)
	log, _ := logtest.NewNullLogger()
	return New(WithRules(rs), WithLogger(log))
}

// openDoc opens a document in the test server and returns it.
func openDoc(s *Server, uri, content string) *Document {
	return s.docs.Open(uri, 1, content)
}

// mockContext returns a minimal glsp.Context for testing.
func mockContext() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {},
	}
}

// capturingContext returns a context that captures published diagnostics.
func capturingContext() (*glsp.Context, *[]*protocol.PublishDiagnosticsParams) {
	var captured []*protocol.PublishDiagnosticsParams
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				captured = append(captured, params.(*protocol.PublishDiagnosticsParams))
			}
		},
	}
	return ctx, &captured
}

func didOpen(t *testing.T, s *Server, ctx *glsp.Context, uri, text string) {
	t.Helper()
	err := s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: "typescript",
			Version:    1,
			Text:       text,
		},
	})
	require.NoError(t, err)
}

// --- Position conversion tests ---

func TestPositionConversion(t *testing.T) {
	pos := toProtocol("ab\ncd\nefghijkl", lint.Position{Pos: 12, Line: 2, Character: 4})
	assert.Equal(t, protocol.UInteger(2), pos.Line)
	assert.Equal(t, protocol.UInteger(4), pos.Character)

	// Characters count UTF-16 code units: é is one, 😀 a surrogate pair.
	text := "x;\nlet s = 'é😀';\n"
	pos = toProtocol(text, lint.Position{Pos: 3 + 17, Line: 1, Character: 17})
	assert.Equal(t, protocol.Position{Line: 1, Character: 14}, pos)
	assert.Equal(t, 3+17, pos.IndexIn(text))

	assert.Equal(t, protocol.UInteger(0), safeUint(-3))
}

func TestOffsetToProtocol(t *testing.T) {
	f, err := parser.ParseFile(t.Context(), "a.ts", []byte("let a;\nlet bc;\n"))
	require.NoError(t, err)
	assert.Equal(t, protocol.Position{Line: 0, Character: 0}, offsetToProtocol(f, 0))
	assert.Equal(t, protocol.Position{Line: 1, Character: 4}, offsetToProtocol(f, 11))
	assert.Equal(t, protocol.Position{Line: 2, Character: 0}, offsetToProtocol(f, 100), "clamped to the end")

	f, err = parser.ParseFile(t.Context(), "b.ts", []byte("let s = '😀';\n"))
	require.NoError(t, err)
	assert.Equal(t, protocol.Position{Line: 0, Character: 12}, offsetToProtocol(f, 14))
}

func TestOverlaps(t *testing.T) {
	r := func(l1, c1, l2, c2 int) protocol.Range {
		return protocol.Range{
			Start: protocol.Position{Line: safeUint(l1), Character: safeUint(c1)},
			End:   protocol.Position{Line: safeUint(l2), Character: safeUint(c2)},
		}
	}
	assert.True(t, overlaps(r(0, 2, 0, 5), r(0, 4, 0, 4)), "cursor inside")
	assert.True(t, overlaps(r(0, 2, 0, 5), r(0, 5, 0, 5)), "cursor at end")
	assert.True(t, overlaps(r(0, 2, 2, 0), r(1, 0, 1, 3)), "multi-line")
	assert.False(t, overlaps(r(0, 2, 0, 5), r(0, 6, 0, 8)))
	assert.False(t, overlaps(r(1, 0, 1, 5), r(0, 0, 0, 9)))
}

func TestURIConversion(t *testing.T) {
	assert.Equal(t, "/tmp/a.ts", uriToPath("file:///tmp/a.ts"))
	assert.Equal(t, "untitled:1", uriToPath("untitled:1"))
	assert.Equal(t, "file:///tmp/a.ts", pathToURI("/tmp/a.ts"))
	assert.Equal(t, "rel/a.ts", pathToURI("rel/a.ts"))
}

// --- Document store tests ---

func TestDocumentStore(t *testing.T) {
	t.Run("Open", func(t *testing.T) {
		store := NewDocumentStore()
		doc := store.Open("file:///a.ts", 1, "let a;")
		require.NotNil(t, doc)
		assert.Equal(t, "let a;", doc.Content)
		assert.Nil(t, doc.result, "documents are linted on demand")
	})
	t.Run("Get", func(t *testing.T) {
		store := NewDocumentStore()
		store.Open("file:///a.ts", 1, "let a;")
		got := store.Get("file:///a.ts")
		require.NotNil(t, got)
		assert.Equal(t, "let a;", got.Content)
		assert.Nil(t, store.Get("file:///missing.ts"))
	})
	t.Run("Change", func(t *testing.T) {
		s := testServer(t)
		doc := openDoc(s, "file:///a.ts", padded)
		s.ensureLinted(doc)
		require.NotNil(t, doc.result)

		changed := s.docs.Change("file:///a.ts", 2, "let b;\n")
		assert.Same(t, doc, changed)
		assert.Equal(t, "let b;\n", changed.Content)
		assert.Equal(t, int32(2), changed.Version)
		assert.Nil(t, changed.result, "lint cache should be cleared on change")
	})
	t.Run("ChangeUnknown", func(t *testing.T) {
		store := NewDocumentStore()
		doc := store.Change("file:///new.ts", 3, "let c;")
		assert.Same(t, doc, store.Get("file:///new.ts"))
	})
	t.Run("Close", func(t *testing.T) {
		store := NewDocumentStore()
		store.Open("file:///a.ts", 1, "let a;")
		store.Close("file:///a.ts")
		assert.Nil(t, store.Get("file:///a.ts"))
	})
}

func TestDocumentLintIsCached(t *testing.T) {
	s := testServer(t)
	doc := openDoc(s, "file:///a.ts", padded)
	s.ensureLinted(doc)
	first := doc.result
	require.NotNil(t, first)
	s.ensureLinted(doc)
	assert.Same(t, first, doc.result)
}

// --- Diagnostics tests ---

func TestDiagnosticsOnOpen_CleanCode(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	didOpen(t, s, ctx, "file:///clean.ts", "let a = { x: 1 };\n")

	require.Len(t, *captured, 1)
	assert.Equal(t, "file:///clean.ts", (*captured)[0].URI)
	assert.Empty(t, (*captured)[0].Diagnostics)
	assert.NotNil(t, (*captured)[0].Diagnostics, "an empty list clears earlier diagnostics")
}

func TestDiagnosticsOnOpen_Failures(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	didOpen(t, s, ctx, "file:///a.ts", padded)

	require.Len(t, *captured, 1)
	diags := (*captured)[0].Diagnostics
	require.Len(t, diags, 3)

	var codes []string
	for _, d := range diags {
		require.NotNil(t, d.Source)
		assert.Equal(t, "tslint", *d.Source)
		require.NotNil(t, d.Severity)
		assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
		codes = append(codes, d.Code.Value.(string))
	}
	assert.Equal(t, []string{"object-literal-padding", "object-literal-padding", "no-trailing-whitespace"}, codes)

	ws := diags[2]
	assert.Equal(t, "trailing whitespace", ws.Message)
	assert.Equal(t, protocol.Position{Line: 0, Character: 15}, ws.Range.Start)
	assert.Equal(t, protocol.Position{Line: 0, Character: 17}, ws.Range.End)
}

func TestDiagnosticsOnOpen_UTF16Characters(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	text := "let s = 'é😀';  \n"
	didOpen(t, s, ctx, "file:///a.ts", text)

	require.Len(t, *captured, 1)
	var ws *protocol.Diagnostic
	for i, d := range (*captured)[0].Diagnostics {
		if d.Code != nil && d.Code.Value == "no-trailing-whitespace" {
			ws = &(*captured)[0].Diagnostics[i]
		}
	}
	require.NotNil(t, ws)
	assert.Equal(t, protocol.Position{Line: 0, Character: 14}, ws.Range.Start)
	assert.Equal(t, protocol.Position{Line: 0, Character: 16}, ws.Range.End)
	assert.Equal(t, strings.Index(text, "  "), ws.Range.Start.IndexIn(text))
}

func TestDiagnosticsOnParseError(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	didOpen(t, s, ctx, "file:///broken.ts", "let a = ;\nfunction (\n")

	require.Len(t, *captured, 1)
	diags := (*captured)[0].Diagnostics
	require.Len(t, diags, 1, "an unparseable file yields a single diagnostic")
	assert.Equal(t, protocol.DiagnosticSeverityError, *diags[0].Severity)
	assert.Nil(t, diags[0].Code)
	assert.NotEmpty(t, diags[0].Message)
}

func TestErrorDiagnostic(t *testing.T) {
	d := errorDiagnostic("a;\nb;\nfoo(x));\n", &parser.Error{File: "a.ts", Line: 3, Column: 7, Message: `unexpected ")"`})
	assert.Equal(t, protocol.Position{Line: 2, Character: 6}, d.Range.Start)
	assert.Equal(t, `unexpected ")"`, d.Message)

	d = errorDiagnostic("a;\né(x));\n", &parser.Error{File: "a.ts", Line: 2, Column: 5, Message: `unexpected ")"`})
	assert.Equal(t, protocol.Position{Line: 1, Character: 3}, d.Range.Start)

	d = errorDiagnostic("", errors.New("rule failed"))
	assert.Equal(t, protocol.Range{}, d.Range)
	assert.Equal(t, "rule failed", d.Message)
}

func TestDiagnosticsSuppressedByDirective(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	didOpen(t, s, ctx, "file:///a.ts", "// tslint:disable-next-line\n"+padded)

	require.Len(t, *captured, 1)
	assert.Empty(t, (*captured)[0].Diagnostics)
}

func TestDiagnosticsOnClose_Cleared(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	didOpen(t, s, ctx, "file:///a.ts", padded)

	err := s.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.ts"},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 2)
	assert.Empty(t, (*captured)[1].Diagnostics)
	assert.Nil(t, s.docs.Get("file:///a.ts"))
}

func TestDiagnosticsOnChange_Debounced(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	didOpen(t, s, ctx, "file:///a.ts", "let a;\n")
	require.Len(t, *captured, 1)

	err := s.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///a.ts"},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: padded}},
	})
	require.NoError(t, err)
	assert.Len(t, *captured, 1, "change is not published immediately")

	// Saving cancels the timer and publishes at once.
	err = s.textDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.ts"},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 2)
	assert.Len(t, (*captured)[1].Diagnostics, 3)

	time.Sleep(debounceDelay + 100*time.Millisecond)
	assert.Len(t, *captured, 2, "cancelled timer does not publish")
}

func TestConvertFailure(t *testing.T) {
	f := lint.Failure{
		File:     "a.ts",
		RuleName: "comment-format",
		Message:  "comment must start with a space",
		Severity: lint.SeverityWarning,
		Start:    lint.Position{Pos: 10, Line: 1, Character: 2},
		End:      lint.Position{Pos: 14, Line: 1, Character: 6},
	}
	d := convertFailure(strings.Repeat("a", 20), f)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *d.Severity)
	assert.Equal(t, "comment-format", d.Code.Value)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 2},
		End:   protocol.Position{Line: 1, Character: 6},
	}, d.Range)
	assert.Equal(t, protocol.DiagnosticSeverityError, mapSeverity(lint.SeverityError))
}

// --- Lifecycle tests ---

func TestInitializeLifecycle(t *testing.T) {
	s := testServer(t)
	root := "file:///tmp/project"
	res, err := s.initialize(mockContext(), &protocol.InitializeParams{RootURI: &root})
	require.NoError(t, err)
	init, ok := res.(protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, serverName, init.ServerInfo.Name)
	assert.Equal(t, "/tmp/project", s.rootPath)

	opts, ok := init.Capabilities.CodeActionProvider.(*protocol.CodeActionOptions)
	require.True(t, ok)
	assert.Contains(t, opts.CodeActionKinds, codeActionKindFixAll)

	require.NoError(t, s.shutdown(mockContext()))
}

func TestInitializeLoadsWorkspaceConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := `{"rules": {"no-trailing-whitespace": true}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tslint.json"), []byte(cfg), 0o600))

	log, hook := logtest.NewNullLogger()
	s := New(WithLogger(log))
	_, err := s.initialize(mockContext(), &protocol.InitializeParams{RootPath: &dir})
	require.NoError(t, err)
	require.Len(t, s.rules, 1)
	assert.Equal(t, "no-trailing-whitespace", s.rules[0].Name())
	assert.Empty(t, hook.Entries)
}

func TestInitializeWithLookup(t *testing.T) {
	dir := t.TempDir()
	cfg := `{"rules": {"no-var-x": true}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tslint.json"), []byte(cfg), 0o600))

	custom := &lint.Rule{
		Name: "no-var-x",
		Run: func(pass *lint.Pass) error {
			pass.AddFailureAt(0, 1, "custom failure")
			return nil
		},
	}
	lookup := func(name string) (*lint.Rule, bool) {
		if name == custom.Name {
			return custom, true
		}
		return rules.Lookup(name)
	}

	log, _ := logtest.NewNullLogger()
	s := New(WithLogger(log), WithLookup(lookup))
	_, err := s.initialize(mockContext(), &protocol.InitializeParams{RootPath: &dir})
	require.NoError(t, err)
	require.Len(t, s.rules, 1)
	assert.Equal(t, "no-var-x", s.rules[0].Name())

	ctx, captured := capturingContext()
	didOpen(t, s, ctx, "file:///a.ts", "let x = 1;\n")
	require.Len(t, *captured, 1)
	require.Len(t, (*captured)[0].Diagnostics, 1)
	assert.Equal(t, "custom failure", (*captured)[0].Diagnostics[0].Message)
}

func TestInitializeBadWorkspaceConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := `{"rules": {"object-literal-padding": [true, "sideways"]}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tslint.json"), []byte(cfg), 0o600))

	log, hook := logtest.NewNullLogger()
	s := New(WithLogger(log))
	_, err := s.initialize(mockContext(), &protocol.InitializeParams{RootPath: &dir})
	require.NoError(t, err)
	assert.NotEmpty(t, s.rules, "falls back to the default rules")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestExitHandler(t *testing.T) {
	s := testServer(t)
	code := -1
	s.exitFn = func(c int) { code = c }
	require.NoError(t, s.exit(mockContext()))
	assert.Equal(t, 0, code)
}

func TestMultipleDocuments(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	didOpen(t, s, ctx, "file:///a.ts", padded)
	didOpen(t, s, ctx, "file:///b.ts", "let b = { y: 2 };\n")

	require.Len(t, *captured, 2)
	assert.Len(t, (*captured)[0].Diagnostics, 3)
	assert.Empty(t, (*captured)[1].Diagnostics)
	assert.NotNil(t, s.docs.Get("file:///a.ts"))
	assert.NotNil(t, s.docs.Get("file:///b.ts"))
}
