// Copyright © 2024 The ELPS authors

// Package parser converts TypeScript and TSX source into ast.File trees
// using the tree-sitter grammars.
package parser

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/luthersystems/tslint/ast"
)

// Error is a syntax error found while parsing a file.
type Error struct {
	File    string
	Line    int // 1-based
	Column  int // 1-based
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// opaque lists named nodes converted as a single token. Their internals
// (quotes, escapes, regex flags) are never tokens or trivia.
var opaque = map[ast.Kind]bool{
	ast.KindString:  true,
	ast.KindRegex:   true,
	ast.KindJsxText: true,
}

// Normalize converts a path to forward slashes and cleans it.
func Normalize(name string) string {
	if name == "" {
		return name
	}
	return path.Clean(strings.ReplaceAll(name, `\`, "/"))
}

// IsTSX reports whether name should be parsed with the TSX grammar.
func IsTSX(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".tsx", ".jsx":
		return true
	}
	return false
}

// Language returns the tree-sitter grammar for a file name.
func Language(name string) *sitter.Language {
	if IsTSX(name) {
		return tsx.GetLanguage()
	}
	return typescript.GetLanguage()
}

// ParseFile parses src and returns the file's syntax tree. A file with
// syntax errors yields an *Error. A fresh tree-sitter parser is created per
// call so ParseFile may be called from multiple goroutines.
func ParseFile(ctx context.Context, name string, src []byte) (*ast.File, error) {
	name = Normalize(name)
	p := sitter.NewParser()
	p.SetLanguage(Language(name))
	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(name, src, root)
	}
	b := ast.NewBuilder(name, string(src), ast.Kind(root.Type()))
	convert(b, root, src)
	return b.Finish()
}

func convert(b *ast.Builder, n *sitter.Node, src []byte) {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		kind := ast.Kind(child.Type())
		start, end := int(child.StartByte()), int(child.EndByte())
		switch {
		case kind == ast.KindComment || kind == ast.KindHTMLComment:
			// Comments are trivia. A doc block is kept as a childless node
			// when a sibling follows it, so it never extends past its parent.
			if isDocBlock(src[start:end]) && hasNodeAfter(n, i) {
				b.Trivia(ast.KindJSDoc, start, end)
			}
		case start == end:
			// inserted semicolons and other zero-width nodes
		case child.ChildCount() == 0 || child.IsNamed() && opaque[kind]:
			b.Token(kind, child.IsNamed(), start, end)
		default:
			b.Open(kind, child.IsNamed())
			convert(b, child, src)
			b.Close()
		}
	}
}

// isDocBlock reports whether a comment is a /** ... */ documentation block.
func isDocBlock(text []byte) bool {
	return len(text) >= 5 && bytes.HasPrefix(text, []byte("/**")) && bytes.HasSuffix(text, []byte("*/"))
}

// hasNodeAfter reports whether n has a non-comment child of non-zero width
// after child i.
func hasNodeAfter(n *sitter.Node, i int) bool {
	count := int(n.ChildCount())
	for j := i + 1; j < count; j++ {
		c := n.Child(j)
		switch ast.Kind(c.Type()) {
		case ast.KindComment, ast.KindHTMLComment:
			continue
		}
		if c.EndByte() > c.StartByte() {
			return true
		}
	}
	return false
}

func syntaxError(name string, src []byte, root *sitter.Node) error {
	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	pt := bad.StartPoint()
	msg := "syntax error"
	switch {
	case bad.IsMissing():
		msg = fmt.Sprintf("missing %q", bad.Type())
	case bad.EndByte() > bad.StartByte():
		text := string(src[bad.StartByte():bad.EndByte()])
		if i := strings.IndexAny(text, "\r\n"); i >= 0 {
			text = text[:i]
		}
		if len(text) > 40 {
			text = text[:40] + "..."
		}
		msg = fmt.Sprintf("unexpected %q", text)
	}
	return &Error{
		File:    name,
		Line:    int(pt.Row) + 1,
		Column:  int(pt.Column) + 1,
		Message: msg,
	}
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if !c.HasError() && !c.IsMissing() {
			continue
		}
		if bad := firstError(c); bad != nil {
			return bad
		}
	}
	return nil
}
