// Copyright © 2024 The ELPS authors

package astutil

import (
	"iter"

	"github.com/luthersystems/tslint/ast"
	"github.com/luthersystems/tslint/scanner"
)

// Token is one item of a token traversal: either a real token of the tree
// or a trivia item scanned from the gap before a token.
type Token struct {
	Kind ast.Kind
	Pos  ast.TokenPosition

	// Parent is the syntactic parent of the token. Trivia items report the
	// parent of the token that owns the gap they were scanned from.
	Parent ast.Node

	// Node is the token itself. It is invalid for trivia items.
	Node ast.Node

	// Trailing is set on trivia owned by the preceding token: items on the
	// same line, up to and including the first line break.
	Trailing bool
}

// Text returns the token's text within src.
func (t Token) Text(src string) string {
	return src[t.Pos.TokenStart:t.Pos.End]
}

// Filter decides whether the traversal enters a node. Returning false skips
// the node and everything below it.
type Filter func(n ast.Node) bool

// Tokens returns an iterator over the tokens of n in source order. With
// includeTrivia set, the whitespace, line breaks and comments between
// tokens are produced as well, each before the token whose gap contains
// it. Trivia in positions where the grammar treats text literally (JSX
// text, template literal text) is produced as a single text_trivia item
// instead of being scanned. JSDoc nodes are never entered.
func Tokens(n ast.Node, includeTrivia bool, filter Filter) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		if !n.Valid() {
			return
		}
		w := &tokenWalker{
			yield:  yield,
			filter: filter,
			trivia: includeTrivia,
			scan:   scanner.New(n.File().Text),
		}
		w.visit(n)
	}
}

// TokenFunc receives each item of a traversal together with the full
// source text.
type TokenFunc func(text string, kind ast.Kind, pos ast.TokenPosition, parent ast.Node)

// ForEachToken calls fn for every token of n, and for every trivia item
// when includeTrivia is set.
func ForEachToken(n ast.Node, includeTrivia bool, fn TokenFunc, filter Filter) {
	if !n.Valid() {
		return
	}
	text := n.File().Text
	for tok := range Tokens(n, includeTrivia, filter) {
		fn(text, tok.Kind, tok.Pos, tok.Parent)
	}
}

// Comment is a comment found by a trivia-inclusive traversal.
type Comment struct {
	Kind     ast.Kind
	Pos      ast.TokenPosition
	Trailing bool
}

// Text returns the comment's text within src.
func (c Comment) Text(src string) string {
	return src[c.Pos.TokenStart:c.Pos.End]
}

// Comments returns an iterator over the comments within n, in source
// order. Each comment is produced once.
func Comments(n ast.Node) iter.Seq[Comment] {
	return func(yield func(Comment) bool) {
		for tok := range Tokens(n, true, nil) {
			if !tok.Kind.IsComment() {
				continue
			}
			if !yield(Comment{Kind: tok.Kind, Pos: tok.Pos, Trailing: tok.Trailing}) {
				return
			}
		}
	}
}

// CommentFunc receives each comment with the full source text.
type CommentFunc func(text string, kind ast.Kind, pos ast.TokenPosition)

// ForEachComment calls fn for every comment within n.
func ForEachComment(n ast.Node, fn CommentFunc) {
	if !n.Valid() {
		return
	}
	text := n.File().Text
	for c := range Comments(n) {
		fn(text, c.Kind, c.Pos)
	}
}

type tokenWalker struct {
	yield  func(Token) bool
	filter Filter
	trivia bool
	scan   *scanner.Scanner
	done   bool
}

func (w *tokenWalker) visit(n ast.Node) {
	if w.done || n.IsTrivia() || n.Kind() == ast.KindJSDoc {
		return
	}
	if w.filter != nil && !w.filter(n) {
		return
	}
	if n.IsToken() {
		w.token(n)
		return
	}
	for _, c := range n.Children() {
		w.visit(c)
		if w.done {
			return
		}
	}
}

func (w *tokenWalker) emit(t Token) {
	if !w.done && !w.yield(t) {
		w.done = true
	}
}

func (w *tokenWalker) token(tok ast.Node) {
	if w.trivia && tok.FullStart() < tok.Start() {
		w.gap(tok)
	}
	w.emit(Token{
		Kind:   tok.Kind(),
		Pos:    tok.Position(),
		Parent: tok.Parent(),
		Node:   tok,
	})
}

// gap produces the trivia in [tok.FullStart(), tok.Start()). The part up to
// and including the first line break belongs to the previous token; the
// rest belongs to tok. Each part is scanned only if its owner may carry
// trivia there. Every item reports the start of the gap as its full start.
func (w *tokenWalker) gap(tok ast.Node) {
	start, end := tok.FullStart(), tok.Start()
	text := tok.File().Text
	parent := tok.Parent()
	split := start
	if start > 0 {
		prev := tok.PrevToken()
		if prev.Valid() && !canHaveTrailingTrivia(prev) {
			split = lineBreakEnd(text, start, end)
			w.text(start, start, split, parent)
		} else {
			split = w.trailingEnd(start, end)
			w.scanRange(start, start, split, parent, true)
		}
	}
	if split < end {
		if canHaveLeadingTrivia(tok) {
			w.scanRange(start, split, end, parent, false)
		} else {
			w.text(start, split, end, parent)
		}
	}
}

func (w *tokenWalker) text(fullStart, start, end int, parent ast.Node) {
	if start == end {
		return
	}
	w.emit(Token{
		Kind:   ast.KindTextTrivia,
		Pos:    ast.TokenPosition{FullStart: fullStart, TokenStart: start, End: end},
		Parent: parent,
	})
}

func (w *tokenWalker) scanRange(fullStart, start, end int, parent ast.Node, trailing bool) {
	w.scan.SetTextPos(start)
	w.scan.SetLimit(end)
	for !w.scan.Done() && !w.done {
		kind := w.scan.Scan()
		w.emit(Token{
			Kind:     kind,
			Pos:      ast.TokenPosition{FullStart: fullStart, TokenStart: w.scan.TokenPos(), End: w.scan.TextPos()},
			Parent:   parent,
			Trailing: trailing && kind != ast.KindUnknownTrivia,
		})
	}
}

// trailingEnd returns the position just after the first line break that
// the scanner finds in text[start:end], or end when there is none. A line
// break inside a block comment does not count, so a comment that starts
// on the previous token's line stays whole.
func (w *tokenWalker) trailingEnd(start, end int) int {
	w.scan.SetTextPos(start)
	w.scan.SetLimit(end)
	for !w.scan.Done() {
		if w.scan.Scan() == ast.KindNewLineTrivia {
			return w.scan.TextPos()
		}
	}
	return end
}

// lineBreakEnd returns the position just after the first line break in
// text[start:end], or end when there is none.
func lineBreakEnd(text string, start, end int) int {
	for i := start; i < end; i++ {
		switch text[i] {
		case '\n':
			return i + 1
		case '\r':
			if i+1 < end && text[i+1] == '\n' {
				return i + 2
			}
			return i + 1
		case 0xe2:
			// U+2028 and U+2029 are encoded as e2 80 a8 and e2 80 a9.
			if i+2 < end && text[i+1] == 0x80 && (text[i+2] == 0xa8 || text[i+2] == 0xa9) {
				return i + 3
			}
		}
	}
	return end
}

// canHaveLeadingTrivia reports whether the text before tok may hold
// comments. Inside JSX children and template literal text the characters
// are literal text.
func canHaveLeadingTrivia(tok ast.Node) bool {
	parent := tok.Parent()
	switch tok.Kind() {
	case ast.KindJsxText:
		return false
	case ast.KindOpenBrace:
		return !isJsxChildExpression(parent)
	case ast.KindLessThan:
		switch parent.Kind() {
		case ast.KindJsxClosingElement:
			return false
		case ast.KindJsxOpeningElement:
			return !isJsxChild(parent.Parent())
		case ast.KindJsxSelfClosingElement:
			return !isJsxChild(parent)
		}
	case ast.KindDollarBrace:
		return parent.Kind() != ast.KindTemplateSubstitution
	}
	if parent.Kind() == ast.KindTemplateString && parent.FirstToken() != tok {
		return false
	}
	return true
}

// canHaveTrailingTrivia reports whether the text after tok, up to the end
// of its line, may hold comments.
func canHaveTrailingTrivia(tok ast.Node) bool {
	parent := tok.Parent()
	switch tok.Kind() {
	case ast.KindJsxText:
		return false
	case ast.KindCloseBrace:
		if isJsxChildExpression(parent) || parent.Kind() == ast.KindTemplateSubstitution {
			return false
		}
	case ast.KindGreaterThan:
		switch parent.Kind() {
		case ast.KindJsxOpeningElement:
			return false
		case ast.KindJsxClosingElement:
			return !isJsxChild(parent.Parent())
		case ast.KindJsxSelfClosingElement:
			return !isJsxChild(parent)
		}
	}
	if parent.Kind() == ast.KindTemplateString && parent.LastToken() != tok {
		return false
	}
	return true
}

// isJsxChildExpression reports whether n is a {...} expression among the
// children of a JSX element.
func isJsxChildExpression(n ast.Node) bool {
	return n.Kind() == ast.KindJsxExpression && n.Parent().Kind() == ast.KindJsxElement
}

// isJsxChild reports whether the element n is nested among the children of
// another JSX element.
func isJsxChild(n ast.Node) bool {
	return n.Parent().Kind() == ast.KindJsxElement
}
