// Copyright © 2024 The ELPS authors

package rules

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/luthersystems/tslint/ast"
	"github.com/luthersystems/tslint/lint"
)

const utfAssertPrefix = "UTF.Assert."

// utfToChai maps UTF assertion methods to their chai.assert equivalents.
var utfToChai = map[string]string{
	"DoesNotThrow": "doesNotThrow",
	"Equal":        "equal",
	"False":        "isFalse",
	"NotEqual":     "notEqual",
	"True":         "isTrue",
	"Throws":       "throws",
	"IsNull":       "isNull",
	"IsNotNull":    "isNotNull",
	"IsUndefined":  "isUndefined",
	"Fail":         "fail",
}

// utfFixes lists the methods that can be rewritten automatically. The
// value reports whether the expected and actual arguments swap places.
var utfFixes = map[string]bool{
	"DoesNotThrow": false,
	"Equal":        true,
	"False":        false,
	"NotEqual":     true,
	"True":         false,
}

// NoUtfAssert reports UTF.Assert calls and rewrites them to chai.
var NoUtfAssert = &lint.Rule{
	Name:           "no-utf-assert",
	Doc:            "Converts UTF.Assert calls to their chai equivalents.",
	Type:           lint.RuleTypeFunctionality,
	OptionExamples: []string{"true"},
	TypeScriptOnly: true,
	Fixable:        true,
	Run: func(pass *lint.Pass) error {
		return pass.Walk(lint.Hooks{
			ast.KindCallExpression: func(w *lint.Walker, n ast.Node) {
				checkUtfAssert(w.Pass, n)
				w.WalkChildren(n)
			},
		})
	},
}

func checkUtfAssert(pass *lint.Pass, call ast.Node) {
	callee := call.Child(0)
	text := callee.Text()
	method, ok := strings.CutPrefix(text, utfAssertPrefix)
	if !ok || method == "" || strings.ContainsRune(method, '.') {
		return
	}
	chai, ok := utfToChai[method]
	if !ok {
		chai = lowerFirst(method)
	}
	msg := fmt.Sprintf("Use chai.assert.%s instead of %s", chai, text)
	swap, fixable := utfFixes[method]
	if !fixable {
		pass.AddFailureAtNode(call, msg)
		return
	}
	fix := []lint.Replacement{lint.ReplaceNode(callee, "chai.assert."+chai)}
	if swap {
		if args := callArguments(call); len(args) >= 2 {
			fix = append(fix,
				lint.ReplaceNode(args[0], args[1].Text()),
				lint.ReplaceNode(args[1], args[0].Text()))
		}
	}
	pass.AddFailureAtNode(call, msg, fix...)
}

func callArguments(call ast.Node) []ast.Node {
	var args []ast.Node
	for _, c := range call.Children() {
		if c.Kind() != ast.KindArguments {
			continue
		}
		for _, a := range c.Children() {
			if a.IsNamed() && !a.IsTrivia() {
				args = append(args, a)
			}
		}
	}
	return args
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
