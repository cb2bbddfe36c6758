// Copyright © 2024 The ELPS authors

// Package ast holds the syntax tree of a single source file.
//
// Nodes live in a flat table owned by a File and are addressed by NodeID.
// Parent and child relations are indices into that table, so a tree never
// contains reference cycles and can be shared read-only between goroutines.
// Node is a small handle pairing a File with a NodeID.
package ast

import (
	"fmt"
	"sort"
)

// NodeID indexes a node in its File's node table.
type NodeID int32

// NoNode is the NodeID of an absent node (the root's parent, for example).
const NoNode NodeID = -1

const (
	flagToken uint8 = 1 << iota
	flagNamed
	flagTrivia
)

type node struct {
	kind       Kind
	parent     NodeID
	firstChild int32 // offset into File.children
	numChild   int32
	fullStart  int32
	start      int32
	end        int32
	tokenIndex int32 // index into File.tokens, -1 for inner nodes
	flags      uint8
}

// TokenPosition locates a token, trivia item or node in the source text.
// FullStart includes leading trivia; TokenStart is the first significant byte.
type TokenPosition struct {
	FullStart  int
	TokenStart int
	End        int
}

// LineAndCharacter is a 0-based line and byte column.
type LineAndCharacter struct {
	Line      int
	Character int
}

// File is an immutable parsed source file.
type File struct {
	// Name is the normalized path of the file.
	Name string

	// Text is the complete source text.
	Text string

	nodes      []node
	children   []NodeID
	tokens     []NodeID
	lineStarts []int
}

// Root returns the root node of the file.
func (f *File) Root() Node {
	return Node{f: f, id: 0}
}

// Node returns the handle for id. An out of range id yields an invalid node.
func (f *File) Node(id NodeID) Node {
	if id < 0 || int(id) >= len(f.nodes) {
		return Node{}
	}
	return Node{f: f, id: id}
}

// NodeCount returns the number of nodes in the file, tokens included.
func (f *File) NodeCount() int {
	return len(f.nodes)
}

// TokenCount returns the number of tokens, including the end of file token.
func (f *File) TokenCount() int {
	return len(f.tokens)
}

// Token returns the i-th token in source order.
func (f *File) Token(i int) Node {
	if i < 0 || i >= len(f.tokens) {
		return Node{}
	}
	return Node{f: f, id: f.tokens[i]}
}

// LineCount returns the number of lines in the file.
func (f *File) LineCount() int {
	return len(f.lineStarts)
}

// LineStart returns the position of the first byte of line.
func (f *File) LineStart(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(f.lineStarts) {
		return len(f.Text)
	}
	return f.lineStarts[line]
}

// LineEnd returns the position just before the line break ending line, or
// the end of the text for the last line.
func (f *File) LineEnd(line int) int {
	if line < 0 {
		line = 0
	}
	if line+1 >= len(f.lineStarts) {
		return len(f.Text)
	}
	end := f.lineStarts[line+1]
	if end > 0 && f.Text[end-1] == '\n' {
		end--
	}
	if end > f.lineStarts[line] && f.Text[end-1] == '\r' {
		end--
	}
	return end
}

// LineAndCharacter converts a position into a line and byte column.
// Positions outside the text are clamped.
func (f *File) LineAndCharacter(pos int) LineAndCharacter {
	if pos < 0 {
		pos = 0
	}
	if pos > len(f.Text) {
		pos = len(f.Text)
	}
	line := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > pos
	}) - 1
	if line < 0 {
		line = 0
	}
	return LineAndCharacter{Line: line, Character: pos - f.lineStarts[line]}
}

// Position converts a line and column back into a position.
func (f *File) Position(lc LineAndCharacter) int {
	pos := f.LineStart(lc.Line) + lc.Character
	if pos > len(f.Text) {
		pos = len(f.Text)
	}
	return pos
}

func computeLineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		case '\n':
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Node is a handle to a node of a File. The zero Node is invalid.
type Node struct {
	f  *File
	id NodeID
}

// Valid reports whether n refers to a node.
func (n Node) Valid() bool {
	return n.f != nil && n.id >= 0
}

// ID returns the node's index in its file.
func (n Node) ID() NodeID {
	if n.f == nil {
		return NoNode
	}
	return n.id
}

// File returns the file the node belongs to.
func (n Node) File() *File {
	return n.f
}

func (n Node) data() *node {
	return &n.f.nodes[n.id]
}

func (n Node) Kind() Kind {
	if !n.Valid() {
		return ""
	}
	return n.data().kind
}

// IsNamed reports whether the node is a named grammar node as opposed to
// an anonymous keyword or punctuation token.
func (n Node) IsNamed() bool {
	return n.Valid() && n.data().flags&flagNamed != 0
}

// IsToken reports whether the node is a leaf token.
func (n Node) IsToken() bool {
	return n.Valid() && n.data().flags&flagToken != 0
}

// IsTrivia reports whether the node was attached from trivia, such as a
// JSDoc block. Trivia nodes have no tokens.
func (n Node) IsTrivia() bool {
	return n.Valid() && n.data().flags&flagTrivia != 0
}

func (n Node) Parent() Node {
	if !n.Valid() {
		return Node{}
	}
	return n.f.Node(n.data().parent)
}

func (n Node) ChildCount() int {
	if !n.Valid() {
		return 0
	}
	return int(n.data().numChild)
}

// Child returns the i-th child or an invalid node.
func (n Node) Child(i int) Node {
	if !n.Valid() || i < 0 || i >= int(n.data().numChild) {
		return Node{}
	}
	return Node{f: n.f, id: n.f.children[int(n.data().firstChild)+i]}
}

// Children returns the ordered children of n.
func (n Node) Children() []Node {
	if !n.Valid() {
		return nil
	}
	d := n.data()
	ids := n.f.children[d.firstChild : d.firstChild+d.numChild]
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{f: n.f, id: id}
	}
	return out
}

func (n Node) FullStart() int {
	if !n.Valid() {
		return 0
	}
	return int(n.data().fullStart)
}

func (n Node) Start() int {
	if !n.Valid() {
		return 0
	}
	return int(n.data().start)
}

func (n Node) End() int {
	if !n.Valid() {
		return 0
	}
	return int(n.data().end)
}

// Width returns End - Start.
func (n Node) Width() int {
	return n.End() - n.Start()
}

func (n Node) Position() TokenPosition {
	return TokenPosition{FullStart: n.FullStart(), TokenStart: n.Start(), End: n.End()}
}

// Text returns the node's source text without leading trivia.
func (n Node) Text() string {
	if !n.Valid() {
		return ""
	}
	return n.f.Text[n.Start():n.End()]
}

// FullText returns the node's source text including leading trivia.
func (n Node) FullText() string {
	if !n.Valid() {
		return ""
	}
	return n.f.Text[n.FullStart():n.End()]
}

// FirstToken returns the first token of n, which is n itself for a token.
func (n Node) FirstToken() Node {
	if !n.Valid() || n.IsToken() {
		return n
	}
	for _, c := range n.Children() {
		if tok := c.FirstToken(); tok.Valid() {
			return tok
		}
	}
	return Node{}
}

// LastToken returns the last token of n, which is n itself for a token.
func (n Node) LastToken() Node {
	if !n.Valid() || n.IsToken() {
		return n
	}
	kids := n.Children()
	for i := len(kids) - 1; i >= 0; i-- {
		if tok := kids[i].LastToken(); tok.Valid() {
			return tok
		}
	}
	return Node{}
}

// PrevToken returns the token preceding n in source order.
func (n Node) PrevToken() Node {
	tok := n.FirstToken()
	if !tok.Valid() {
		return Node{}
	}
	return n.f.Token(int(tok.data().tokenIndex) - 1)
}

// NextToken returns the token following n in source order.
func (n Node) NextToken() Node {
	tok := n.LastToken()
	if !tok.Valid() {
		return Node{}
	}
	return n.f.Token(int(tok.data().tokenIndex) + 1)
}

// Contains reports whether pos lies within [Start, End).
func (n Node) Contains(pos int) bool {
	return pos >= n.Start() && pos < n.End()
}

func (n Node) String() string {
	if !n.Valid() {
		return "<invalid>"
	}
	return fmt.Sprintf("%s[%d,%d)", n.Kind(), n.Start(), n.End())
}
