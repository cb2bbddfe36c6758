// Copyright © 2024 The ELPS authors

package ast

import (
	"errors"
	"fmt"
)

// ErrUnbalanced is returned by Finish when Open and Close calls do not pair.
var ErrUnbalanced = errors.New("unbalanced node construction")

type frame struct {
	id       NodeID
	children []NodeID
	first    NodeID // first token descendant
	last     NodeID // last token descendant
}

// Builder constructs a File in document order. Parser front-ends call Open
// and Close around inner nodes and Token for each leaf. Token spans must be
// ordered and must not overlap; the full start of each token is the end of
// the token before it.
type Builder struct {
	file    *File
	stack   []*frame
	lastEnd int // end of the previous token
	cursor  int // end of the previous token or trivia node
	err     error
}

// NewBuilder starts a file whose root node has kind rootKind.
func NewBuilder(name, text string, rootKind Kind) *Builder {
	b := &Builder{
		file: &File{Name: name, Text: text},
	}
	b.Open(rootKind, true)
	return b
}

func (b *Builder) fail(format string, args ...interface{}) {
	if b.err == nil {
		b.err = fmt.Errorf("%s: %s", b.file.Name, fmt.Sprintf(format, args...))
	}
}

func (b *Builder) top() *frame {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *Builder) add(n node) NodeID {
	id := NodeID(len(b.file.nodes))
	if parent := b.top(); parent != nil {
		n.parent = parent.id
		parent.children = append(parent.children, id)
	} else {
		n.parent = NoNode
	}
	b.file.nodes = append(b.file.nodes, n)
	return id
}

// Open starts an inner node. Subsequent nodes become its children until the
// matching Close.
func (b *Builder) Open(kind Kind, named bool) {
	var flags uint8
	if named {
		flags |= flagNamed
	}
	id := b.add(node{kind: kind, tokenIndex: -1, flags: flags})
	b.stack = append(b.stack, &frame{id: id, first: NoNode, last: NoNode})
}

// Token appends a leaf token spanning [start, end).
func (b *Builder) Token(kind Kind, named bool, start, end int) {
	if len(b.stack) == 0 {
		b.fail("token %s outside of root", kind)
		return
	}
	if start < b.cursor || end < start || end > len(b.file.Text) {
		b.fail("token %s at [%d,%d) out of order (previous end %d)", kind, start, end, b.cursor)
		return
	}
	flags := flagToken
	if named {
		flags |= flagNamed
	}
	id := b.add(node{
		kind:       kind,
		fullStart:  int32(b.lastEnd),
		start:      int32(start),
		end:        int32(end),
		tokenIndex: int32(len(b.file.tokens)),
		flags:      flags,
	})
	b.file.tokens = append(b.file.tokens, id)
	for _, fr := range b.stack {
		if fr.first == NoNode {
			fr.first = id
		}
		fr.last = id
	}
	b.lastEnd = end
	b.cursor = end
}

// Trivia appends a childless node lying inside the trivia before the next
// token, such as a JSDoc block. It does not affect token full starts.
func (b *Builder) Trivia(kind Kind, start, end int) {
	if len(b.stack) == 0 {
		b.fail("trivia node %s outside of root", kind)
		return
	}
	if start < b.cursor || end < start || end > len(b.file.Text) {
		b.fail("trivia node %s at [%d,%d) overlaps preceding text", kind, start, end)
		return
	}
	b.add(node{
		kind:       kind,
		fullStart:  int32(start),
		start:      int32(start),
		end:        int32(end),
		tokenIndex: -1,
		flags:      flagTrivia | flagNamed,
	})
	b.cursor = end
}

// Close ends the innermost open node.
func (b *Builder) Close() {
	if len(b.stack) <= 1 {
		b.fail("%v: close without open", ErrUnbalanced)
		return
	}
	b.closeTop()
}

func (b *Builder) closeTop() {
	fr := b.top()
	b.stack = b.stack[:len(b.stack)-1]
	n := &b.file.nodes[fr.id]
	n.firstChild = int32(len(b.file.children))
	n.numChild = int32(len(fr.children))
	b.file.children = append(b.file.children, fr.children...)
	if fr.first == NoNode {
		n.fullStart = int32(b.lastEnd)
		n.start = int32(b.lastEnd)
		n.end = int32(b.lastEnd)
		return
	}
	first, last := b.file.nodes[fr.first], b.file.nodes[fr.last]
	n.fullStart = first.fullStart
	n.start = first.start
	n.end = last.end
	if len(b.stack) == 0 {
		return
	}
	for _, c := range fr.children {
		if kid := b.file.nodes[c]; kid.flags&flagTrivia != 0 && kid.end > n.end {
			b.fail("trivia node %s at [%d,%d) extends past %s", kid.kind, kid.start, kid.end, n.kind)
		}
	}
}

// Finish appends the end of file token, closes the root and returns the
// file. Trailing trivia of the text becomes the leading trivia of the end
// of file token.
func (b *Builder) Finish() (*File, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stack) != 1 {
		return nil, fmt.Errorf("%s: %w: %d nodes left open", b.file.Name, ErrUnbalanced, len(b.stack)-1)
	}
	n := len(b.file.Text)
	b.Token(KindEndOfFile, false, n, n)
	if b.err != nil {
		return nil, b.err
	}
	b.closeTop()
	root := &b.file.nodes[0]
	root.fullStart = 0
	root.end = int32(n)
	b.file.lineStarts = computeLineStarts(b.file.Text)
	f := b.file
	b.file = nil
	return f, nil
}
