// Copyright © 2024 The ELPS authors

// Package completeddocs implements the completed-docs rule, which requires
// JSDoc comments on selected declarations.
package completeddocs

import (
	"fmt"
	"strings"

	"github.com/luthersystems/tslint/ast"
	"github.com/luthersystems/tslint/astutil"
	"github.com/luthersystems/tslint/lint"
)

// Name is the rule name.
const Name = "completed-docs"

// Rule requires documentation comments on declarations.
var Rule = &lint.Rule{
	Name: Name,
	Doc: `Enforces JSDoc comments for important items be filled out.

Each argument is either a doc type or an object mapping doc types to
descriptors that narrow which declarations must be documented.`,
	Type: lint.RuleTypeStyle,
	OptionsDoc: `Doc types: classes, enums, functions, interfaces, methods, namespaces,
properties, types, variables.
Methods and properties accept "locations" (all, instance, static) and
"privacies" (all, public, protected, private). Other doc types accept
"visibilities" (all, exported, internal). Any doc type accepts "tags" with
"existence" (tag names that exempt a declaration) and "content" (tag name to
pattern).`,
	OptionExamples: []string{
		`true`,
		`[true, "enums", "functions", "methods"]`,
		`[true, {"methods": {"locations": "instance", "privacies": ["public", "protected"]}}]`,
		`[true, {"functions": {"tags": {"existence": ["internal"]}}}]`,
	},
	Options: func(args []any) (any, error) {
		parsed, err := ParseArguments(args)
		if err != nil {
			return nil, err
		}
		return NewExclusions(parsed), nil
	},
	Run: run,
}

// Message returns the failure message for an undocumented t.
func Message(t DocType) string {
	return fmt.Sprintf("Documentation must exist for %s.", t)
}

var docTypeKinds = map[ast.Kind]DocType{
	ast.KindClassDeclaration:     DocClasses,
	ast.KindAbstractClass:        DocClasses,
	ast.KindEnumDeclaration:      DocEnums,
	ast.KindFunctionDeclaration:  DocFunctions,
	ast.KindGeneratorDeclaration: DocFunctions,
	ast.KindFunctionSignature:    DocFunctions,
	ast.KindInterfaceDeclaration: DocInterfaces,
	ast.KindMethodDefinition:     DocMethods,
	ast.KindMethodSignature:      DocMethods,
	ast.KindAbstractMethod:       DocMethods,
	ast.KindInternalModule:       DocNamespaces,
	ast.KindModule:               DocNamespaces,
	ast.KindFieldDefinition:      DocProperties,
	ast.KindTypeAliasDeclaration: DocTypes,
	ast.KindVariableDeclarator:   DocVariables,
}

func run(pass *lint.Pass) error {
	ex, ok := pass.Options.(Exclusions)
	if !ok {
		ex = NewExclusions(nil)
	}
	hooks := make(lint.Hooks, len(docTypeKinds))
	for kind, t := range docTypeKinds {
		if !ex.Checks(t) {
			continue
		}
		hooks[kind] = func(w *lint.Walker, n ast.Node) {
			if applies(t, n) && !ex.Excludes(t, n) && !documented(n) {
				w.Pass.AddFailureAtNode(n, Message(t))
			}
			w.WalkChildren(n)
		}
	}
	return pass.Walk(hooks)
}

// applies filters the nodes of a kind down to the declarations a doc type
// covers.
func applies(t DocType, n ast.Node) bool {
	switch t {
	case DocMethods, DocProperties:
		return n.Parent().Kind() == ast.KindClassBody
	case DocVariables:
		return isModuleLevel(n.Parent())
	}
	return true
}

// isModuleLevel reports whether a variable declaration sits at the top of
// a file or namespace body.
func isModuleLevel(decl ast.Node) bool {
	switch decl.Kind() {
	case ast.KindLexicalDeclaration, ast.KindVariableDeclaration:
	default:
		return false
	}
	p := decl.Parent()
	for p.Kind() == ast.KindExportStatement || p.Kind() == ast.KindAmbientDeclaration {
		p = p.Parent()
	}
	switch p.Kind() {
	case ast.KindProgram:
		return true
	case ast.KindStatementBlock:
		k := p.Parent().Kind()
		return k == ast.KindInternalModule || k == ast.KindModule
	}
	return false
}

// documented reports whether n has a doc comment with a description. Tags
// alone do not document a declaration.
func documented(n ast.Node) bool {
	doc, ok := astutil.DocComment(n)
	return ok && strings.TrimSpace(doc.Text) != ""
}
