// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/tslint/ast"
	"github.com/luthersystems/tslint/lint"
)

const codeActionKindFixAll protocol.CodeActionKind = "source.fixAll.tslint"

// textDocumentCodeAction handles the textDocument/codeAction request. For
// every failure in the requested range it offers the failure's fix and a
// directive disabling the rule on that line, and it offers one action
// applying every fix in the document.
func (s *Server) textDocumentCodeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureLinted(doc)
	content, res, err := doc.snapshot()
	if err != nil || res == nil {
		return nil, nil
	}
	text := resultText(content, res)

	uri := params.TextDocument.URI
	only := params.Context.Only
	var actions []protocol.CodeAction

	if wants(only, protocol.CodeActionKindQuickFix) {
		for _, f := range res.Failures {
			if !overlaps(rangeOf(text, f), params.Range) {
				continue
			}
			diag := matchDiagnostic(params.Context.Diagnostics, text, f)
			if f.HasFix() {
				actions = append(actions, fixAction(uri, res.File, f, diag))
			}
			actions = append(actions, suppressLintAction(uri, res.File, f, diag))
		}
	}
	if wants(only, codeActionKindFixAll) {
		if a, ok := fixAllAction(uri, res); ok {
			actions = append(actions, a)
		}
	}

	if len(actions) == 0 {
		return nil, nil
	}
	return actions, nil
}

// wants reports whether a client restricted to only accepts kind. Kinds
// are hierarchical: "source" admits "source.fixAll.tslint".
func wants(only []protocol.CodeActionKind, kind protocol.CodeActionKind) bool {
	if len(only) == 0 {
		return true
	}
	return slices.ContainsFunc(only, func(k protocol.CodeActionKind) bool {
		return k == kind || strings.HasPrefix(kind, k+".")
	})
}

// matchDiagnostic returns the client's copy of the diagnostic published
// for f, or a fresh conversion when the client sent none.
func matchDiagnostic(diags []protocol.Diagnostic, text string, f lint.Failure) protocol.Diagnostic {
	for _, d := range diags {
		if d.Source == nil || *d.Source != source || d.Code == nil {
			continue
		}
		if fmt.Sprint(d.Code.Value) == f.RuleName && d.Range == rangeOf(text, f) && d.Message == f.Message {
			return d
		}
	}
	return convertFailure(text, f)
}

func textEdits(file *ast.File, reps []lint.Replacement) []protocol.TextEdit {
	edits := make([]protocol.TextEdit, 0, len(reps))
	for _, r := range reps {
		edits = append(edits, protocol.TextEdit{
			Range: protocol.Range{
				Start: offsetToProtocol(file, r.Start),
				End:   offsetToProtocol(file, r.End()),
			},
			NewText: r.Text,
		})
	}
	return edits
}

// fixAction creates a quick fix applying the failure's own fix.
func fixAction(uri string, file *ast.File, f lint.Failure, diag protocol.Diagnostic) protocol.CodeAction {
	kind := protocol.CodeActionKindQuickFix
	return protocol.CodeAction{
		Title:       fmt.Sprintf("Fix: %s", f.Message),
		Kind:        &kind,
		Diagnostics: []protocol.Diagnostic{diag},
		IsPreferred: boolPtr(true),
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{
				uri: textEdits(file, f.Fix.Replacements),
			},
		},
	}
}

// suppressLintAction creates a code action that inserts a
// tslint:disable-next-line comment above the failure's first line,
// indented like that line.
func suppressLintAction(uri string, file *ast.File, f lint.Failure, diag protocol.Diagnostic) protocol.CodeAction {
	line := f.Start.Line
	text := file.Text[file.LineStart(line):file.LineEnd(line)]
	indent := text[:len(text)-len(strings.TrimLeft(text, " \t"))]

	kind := protocol.CodeActionKindQuickFix
	insertPos := protocol.Position{Line: safeUint(line), Character: 0}
	return protocol.CodeAction{
		Title:       fmt.Sprintf("Disable %s for this line", f.RuleName),
		Kind:        &kind,
		Diagnostics: []protocol.Diagnostic{diag},
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{
				uri: {
					{
						Range:   protocol.Range{Start: insertPos, End: insertPos},
						NewText: indent + "// tslint:disable-next-line:" + f.RuleName + "\n",
					},
				},
			},
		},
	}
}

// fixAllAction creates a source action applying every fix that does not
// conflict with an earlier one.
func fixAllAction(uri string, res *lint.FileResult) (protocol.CodeAction, bool) {
	fixed := lint.ApplyFixes(res.File.Text, res.Failures)
	if len(fixed.Applied) == 0 {
		return protocol.CodeAction{}, false
	}
	var reps []lint.Replacement
	for _, f := range fixed.Applied {
		reps = append(reps, f.Fix.Replacements...)
	}
	kind := codeActionKindFixAll
	return protocol.CodeAction{
		Title: "Fix all auto-fixable tslint failures",
		Kind:  &kind,
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{
				uri: textEdits(res.File, reps),
			},
		},
	}, true
}
