// Copyright © 2024 The ELPS authors

package lsp

import (
	"context"
	"errors"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/tslint/lint"
	"github.com/luthersystems/tslint/parser"
)

const debounceDelay = 300 * time.Millisecond

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
	)
	s.lintAndPublish(doc)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		content,
	)

	// Debounce: delay linting to avoid thrashing during rapid edits.
	s.debounceMu.Lock()
	if t, ok := s.debounce[doc.URI]; ok {
		t.Stop()
	}
	s.debounce[doc.URI] = time.AfterFunc(debounceDelay, func() {
		defer func() { _ = recover() }() // don't crash the server on a rule panic
		d := s.docs.Get(doc.URI)
		if d != nil {
			s.lintAndPublish(d)
		}
	})
	s.debounceMu.Unlock()
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	s.cancelDebounce(params.TextDocument.URI)

	doc := s.docs.Get(params.TextDocument.URI)
	if doc != nil {
		s.lintAndPublish(doc)
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.cancelDebounce(params.TextDocument.URI)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	s.docs.Close(params.TextDocument.URI)
	return nil
}

func (s *Server) cancelDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

// ensureLinted lints doc unless its cached result is current.
func (s *Server) ensureLinted(doc *Document) {
	l := s.linter()
	doc.mu.Lock()
	doc.lint(context.Background(), l)
	doc.mu.Unlock()
}

// lintAndPublish lints a document and publishes the resulting diagnostics
// to the client.
func (s *Server) lintAndPublish(doc *Document) {
	s.ensureLinted(doc)
	content, res, err := doc.snapshot()

	diags := []protocol.Diagnostic{}
	switch {
	case err != nil:
		diags = append(diags, errorDiagnostic(content, err))
	case res != nil:
		text := resultText(content, res)
		for _, f := range res.Failures {
			diags = append(diags, convertFailure(text, f))
		}
	}

	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Diagnostics: diags,
	})
}

// resultText returns the text res was linted from.
func resultText(content string, res *lint.FileResult) string {
	if res.File != nil {
		return res.File.Text
	}
	return content
}

// convertFailure converts a lint.Failure in text to an LSP Diagnostic.
func convertFailure(text string, f lint.Failure) protocol.Diagnostic {
	sev := mapSeverity(f.Severity)
	return protocol.Diagnostic{
		Range:    rangeOf(text, f),
		Severity: &sev,
		Source:   strPtr(source),
		Code:     &protocol.IntegerOrString{Value: f.RuleName},
		Message:  f.Message,
	}
}

// mapSeverity converts a lint.Severity to a protocol.DiagnosticSeverity.
func mapSeverity(sev lint.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case lint.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityError
	}
}

// errorDiagnostic reports a file that could not be linted at all. Syntax
// errors point at their location, anything else at the top of the file.
func errorDiagnostic(text string, err error) protocol.Diagnostic {
	var rng protocol.Range
	var perr *parser.Error
	msg := err.Error()
	if errors.As(err, &perr) {
		pos := lineToProtocol(text, perr.Line-1, perr.Column-1)
		rng = protocol.Range{Start: pos, End: pos}
		msg = perr.Message
	}
	return protocol.Diagnostic{
		Range:    rng,
		Severity: severity(protocol.DiagnosticSeverityError),
		Source:   strPtr(source),
		Message:  msg,
	}
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func strPtr(s string) *string {
	return &s
}
