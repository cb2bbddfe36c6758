// Copyright © 2024 The ELPS authors

package lint

import "github.com/luthersystems/tslint/ast"

// Hook handles a node of a particular kind. A hook that wants the subtree
// visited must call w.WalkChildren(n) itself.
type Hook func(w *Walker, n ast.Node)

// Hooks maps node kinds to their handlers. Anonymous tokens and named
// nodes may share a kind (the keyword "string" and a string literal, for
// example); hooks distinguish them with n.IsNamed().
type Hooks map[ast.Kind]Hook

// Walker visits every node of a file once, in document order, handing
// nodes with a registered hook to that hook. Nodes without a hook are
// descended automatically.
type Walker struct {
	Pass  *Pass
	hooks Hooks
}

// NewWalker returns a walker reporting into pass.
func NewWalker(pass *Pass, hooks Hooks) *Walker {
	return &Walker{Pass: pass, hooks: hooks}
}

// Walk visits n.
func (w *Walker) Walk(n ast.Node) {
	if !n.Valid() || n.IsTrivia() {
		return
	}
	if h, ok := w.hooks[n.Kind()]; ok {
		h(w, n)
		return
	}
	w.WalkChildren(n)
}

// WalkChildren visits each child of n.
func (w *Walker) WalkChildren(n ast.Node) {
	for _, c := range n.Children() {
		w.Walk(c)
	}
}

// Walk runs hooks over the pass's file and returns the pass error, if any.
func (p *Pass) Walk(hooks Hooks) error {
	NewWalker(p, hooks).Walk(p.File.Root())
	return p.err
}
