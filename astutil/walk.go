// Copyright © 2024 The ELPS authors

// Package astutil provides shared AST walking utilities for parsed
// TypeScript files.
//
// These helpers are used by the lint engine and the built-in rules for
// traversing syntax trees, enumerating tokens with their trivia and
// inspecting declarations.
package astutil

import "github.com/luthersystems/tslint/ast"

// Walk calls fn for every node in the tree, depth-first and in source order.
// parent is invalid for the root. Trivia nodes such as JSDoc blocks are not
// visited.
func Walk(root ast.Node, fn func(node, parent ast.Node, depth int)) {
	walkNode(root, root.Parent(), 0, fn)
}

func walkNode(node, parent ast.Node, depth int, fn func(ast.Node, ast.Node, int)) {
	if !node.Valid() || node.IsTrivia() {
		return
	}
	fn(node, parent, depth)
	for _, child := range node.Children() {
		walkNode(child, node, depth+1, fn)
	}
}

// WalkKinds calls fn for every node whose kind is one of kinds.
func WalkKinds(root ast.Node, fn func(node ast.Node), kinds ...ast.Kind) {
	want := make(map[ast.Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	Walk(root, func(node, _ ast.Node, _ int) {
		if want[node.Kind()] {
			fn(node)
		}
	})
}

// ChildOfKind returns the first direct child of n with the given kind.
func ChildOfKind(n ast.Node, kind ast.Kind) (ast.Node, bool) {
	for _, c := range n.Children() {
		if c.Kind() == kind {
			return c, true
		}
	}
	return ast.Node{}, false
}

// AncestorWhere returns the closest ancestor of n, n included, satisfying
// pred.
func AncestorWhere(n ast.Node, pred func(ast.Node) bool) (ast.Node, bool) {
	for ; n.Valid(); n = n.Parent() {
		if pred(n) {
			return n, true
		}
	}
	return ast.Node{}, false
}

// SomeAncestor reports whether n or one of its ancestors satisfies pred.
func SomeAncestor(n ast.Node, pred func(ast.Node) bool) bool {
	_, ok := AncestorWhere(n, pred)
	return ok
}

// UnwrapParentheses strips any number of enclosing parentheses from an
// expression.
func UnwrapParentheses(n ast.Node) ast.Node {
	for n.Kind() == ast.KindParenthesized {
		inner := ast.Node{}
		for _, c := range n.Children() {
			if c.IsNamed() && !c.IsTrivia() {
				inner = c
				break
			}
		}
		if !inner.Valid() {
			return n
		}
		n = inner
	}
	return n
}

// IsAssignment reports whether n is a plain or compound assignment.
func IsAssignment(n ast.Node) bool {
	return n.Kind() == ast.KindAssignment || n.Kind() == ast.KindAugmentedAssignment
}

// IsScopeBoundary reports whether n introduces a function or module scope.
func IsScopeBoundary(n ast.Node) bool {
	switch n.Kind() {
	case ast.KindProgram,
		ast.KindFunctionDeclaration,
		ast.KindGeneratorDeclaration,
		ast.KindFunction,
		"function",
		"generator_function",
		ast.KindArrowFunction,
		ast.KindMethodDefinition,
		ast.KindClassDeclaration,
		ast.KindAbstractClass,
		ast.KindClass,
		ast.KindInternalModule,
		ast.KindModule,
		ast.KindInterfaceDeclaration,
		ast.KindEnumDeclaration:
		return true
	}
	return false
}

// IsBlockScopeBoundary reports whether n bounds the scope of let and const
// declarations.
func IsBlockScopeBoundary(n ast.Node) bool {
	if IsScopeBoundary(n) {
		return true
	}
	switch n.Kind() {
	case ast.KindStatementBlock, ast.KindForStatement, ast.KindForInStatement,
		ast.KindCatchClause, ast.KindSwitchBody:
		return true
	}
	return false
}

// IsBlockScopedVariable reports whether a variable_declarator or
// declaration uses let or const.
func IsBlockScopedVariable(n ast.Node) bool {
	if n.Kind() == ast.KindVariableDeclarator {
		n = n.Parent()
	}
	return n.Kind() == ast.KindLexicalDeclaration
}

var modifierKinds = map[ast.Kind]bool{
	ast.KindStatic:    true,
	ast.KindPublic:    true,
	ast.KindPrivate:   true,
	ast.KindProtected: true,
	ast.KindReadonly:  true,
	ast.KindAbstract:  true,
	ast.KindAsync:     true,
	ast.KindDeclare:   true,
	ast.KindOverride:  true,
}

// Modifiers returns the modifier keywords applied to a declaration. An
// enclosing export statement contributes export (and default), and an
// enclosing ambient declaration contributes declare.
func Modifiers(n ast.Node) []ast.Kind {
	var out []ast.Kind
	for _, c := range n.Children() {
		switch {
		case c.IsToken() && !c.IsNamed() && modifierKinds[c.Kind()]:
			out = append(out, c.Kind())
		case c.Kind() == ast.KindAccessibilityModifier || c.Kind() == ast.KindOverrideModifier:
			for _, m := range c.Children() {
				if modifierKinds[m.Kind()] {
					out = append(out, m.Kind())
				}
			}
		}
	}
	anchor := n
	if anchor.Kind() == ast.KindVariableDeclarator {
		anchor = anchor.Parent()
	}
	for p := anchor.Parent(); p.Valid(); p = p.Parent() {
		switch p.Kind() {
		case ast.KindExportStatement:
			for _, c := range p.Children() {
				if c.Kind() == ast.KindExport || c.Kind() == ast.KindDefault {
					out = append(out, c.Kind())
				}
			}
			continue
		case ast.KindAmbientDeclaration:
			out = append(out, ast.KindDeclare)
			continue
		}
		break
	}
	return out
}

// HasModifier reports whether n carries any of the given modifiers.
func HasModifier(n ast.Node, kinds ...ast.Kind) bool {
	for _, m := range Modifiers(n) {
		for _, k := range kinds {
			if m == k {
				return true
			}
		}
	}
	return false
}

// PrevSibling returns the child of n's parent immediately before n,
// skipping trivia nodes.
func PrevSibling(n ast.Node) ast.Node {
	p := n.Parent()
	prev := ast.Node{}
	for _, c := range p.Children() {
		if c == n {
			return prev
		}
		if !c.IsTrivia() {
			prev = c
		}
	}
	return ast.Node{}
}

// Name returns the identifier naming a declaration, if any.
func Name(n ast.Node) (ast.Node, bool) {
	for _, c := range n.Children() {
		switch c.Kind() {
		case ast.KindIdentifier, ast.KindPropertyIdentifier, ast.KindTypeIdentifier,
			"private_property_identifier", "nested_identifier":
			return c, true
		}
	}
	return ast.Node{}, false
}
