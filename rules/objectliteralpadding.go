// Copyright © 2024 The ELPS authors

package rules

import (
	"fmt"
	"strings"

	"github.com/luthersystems/tslint/ast"
	"github.com/luthersystems/tslint/lint"
)

const (
	optionPadding   = "padding"
	optionNoPadding = "no-padding"

	msgShouldBePadded    = "Object literals should be padded with whitespace."
	msgShouldNotBePadded = "Object literals should not be padded with whitespace."
)

// ObjectLiteralPadding enforces consistent whitespace inside the braces of
// single-line object literals.
var ObjectLiteralPadding = &lint.Rule{
	Name: "object-literal-padding",
	Doc:  "Enforces consistent whitespace padding inside object literals.",
	Type: lint.RuleTypeStyle,
	OptionsDoc: `One of the following arguments must be provided:

* "no-padding" enforces not having a space inside brackets for object literals.
* "padding" enforces having padding inside object literals.`,
	OptionExamples: []string{`[true, "no-padding"]`, `[true, "padding"]`},
	Fixable:        true,
	Options: func(args []any) (any, error) {
		if len(args) == 1 {
			if s, ok := args[0].(string); ok && (s == optionPadding || s == optionNoPadding) {
				return s == optionPadding, nil
			}
		}
		return nil, fmt.Errorf("expected %q or %q, got %v", optionPadding, optionNoPadding, args)
	},
	Run: func(pass *lint.Pass) error {
		padding, _ := pass.Options.(bool)
		return pass.Walk(lint.Hooks{
			ast.KindObject: func(w *lint.Walker, n ast.Node) {
				checkObjectPadding(w.Pass, n, padding)
				w.WalkChildren(n)
			},
		})
	},
}

func checkObjectPadding(pass *lint.Pass, obj ast.Node, padding bool) {
	lbrace, rbrace := obj.FirstToken(), obj.LastToken()
	if lbrace.Kind() != ast.KindOpenBrace || rbrace.Kind() != ast.KindCloseBrace {
		return
	}
	first, last := lbrace.NextToken(), rbrace.PrevToken()
	if first == rbrace {
		return
	}
	f := pass.File
	if f.LineAndCharacter(lbrace.Start()).Line != f.LineAndCharacter(rbrace.Start()).Line {
		return
	}
	if gap, ok := whitespace(f.Text, lbrace.End(), first.Start()); ok {
		switch {
		case padding && gap == 0:
			pass.AddFailureAt(lbrace.Start(), 1, msgShouldBePadded, lint.AppendText(lbrace.End(), " "))
		case !padding && gap > 0:
			pass.AddFailure(lbrace.Start(), first.Start(), msgShouldNotBePadded, lint.DeleteFromTo(lbrace.End(), first.Start()))
		}
	}
	if gap, ok := whitespace(f.Text, last.End(), rbrace.Start()); ok {
		switch {
		case padding && gap == 0:
			pass.AddFailureAt(rbrace.Start(), 1, msgShouldBePadded, lint.AppendText(rbrace.Start(), " "))
		case !padding && gap > 0:
			pass.AddFailure(last.End(), rbrace.End(), msgShouldNotBePadded, lint.DeleteFromTo(last.End(), rbrace.Start()))
		}
	}
}

// whitespace returns the width of text[start:end], which must hold only
// whitespace. Gaps holding comments are left alone.
func whitespace(text string, start, end int) (int, bool) {
	gap := text[start:end]
	return len(gap), strings.TrimSpace(gap) == ""
}
