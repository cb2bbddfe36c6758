// Copyright © 2024 The ELPS authors

// Package scanner classifies the trivia (whitespace, line breaks and
// comments) found between tokens of a parsed file.
package scanner

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/luthersystems/tslint/ast"
)

// Scanner is an incremental trivia scanner over a source text. The cursor
// is positioned with SetTextPos and each call to Scan consumes one trivia
// item. A Scanner is not safe for concurrent use; traversals create their
// own.
type Scanner struct {
	text     string
	pos      int // cursor
	tokenPos int // start of the item returned by the last Scan
	limit    int
}

// New returns a scanner over text positioned at 0.
func New(text string) *Scanner {
	return &Scanner{text: text, limit: len(text)}
}

// SetTextPos moves the cursor to pos.
func (s *Scanner) SetTextPos(pos int) {
	s.pos = pos
	s.tokenPos = pos
}

// SetLimit bounds scanning to positions before end.
func (s *Scanner) SetLimit(end int) {
	if end > len(s.text) {
		end = len(s.text)
	}
	s.limit = end
}

// TokenPos returns the start of the item returned by the last Scan.
func (s *Scanner) TokenPos() int {
	return s.tokenPos
}

// TextPos returns the cursor, the end of the item returned by the last Scan.
func (s *Scanner) TextPos() int {
	return s.pos
}

// Done reports whether the cursor reached the limit.
func (s *Scanner) Done() bool {
	return s.pos >= s.limit
}

// Scan consumes one trivia item and returns its kind. At the limit it
// returns the empty kind. Characters that are not trivia are consumed up to
// the limit as a single unknown_trivia item.
func (s *Scanner) Scan() ast.Kind {
	s.tokenPos = s.pos
	if s.pos >= s.limit {
		return ""
	}
	c, _ := s.peek()
	switch {
	case c == '\r':
		s.advance()
		s.acceptRune('\n')
		return ast.KindNewLineTrivia
	case isLineBreak(c):
		s.advance()
		return ast.KindNewLineTrivia
	case isWhitespace(c):
		s.acceptSeq(isWhitespace)
		return ast.KindWhitespaceTrivia
	case c == '#' && s.pos == 0 && s.hasPrefix("#!"):
		s.acceptSeq(func(r rune) bool { return !isLineBreak(r) })
		return ast.KindShebangTrivia
	case c == '/' && s.hasPrefix("//"):
		s.acceptSeq(func(r rune) bool { return !isLineBreak(r) })
		return ast.KindSingleLineComment
	case c == '/' && s.hasPrefix("/*"):
		s.pos += 2
		if i := strings.Index(s.text[s.pos:s.limit], "*/"); i >= 0 {
			s.pos += i + 2
		} else {
			s.pos = s.limit
		}
		return ast.KindMultiLineComment
	case (c == '<' || c == '=' || c == '>') && s.isConflictMarker():
		s.acceptSeq(func(r rune) bool { return !isLineBreak(r) })
		return ast.KindConflictMarker
	}
	s.pos = s.limit
	return ast.KindUnknownTrivia
}

func (s *Scanner) peek() (rune, int) {
	if s.pos >= s.limit {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(s.text[s.pos:s.limit])
}

func (s *Scanner) advance() {
	_, n := s.peek()
	s.pos += n
}

func (s *Scanner) acceptRune(c rune) bool {
	r, n := s.peek()
	if n == 0 || r != c {
		return false
	}
	s.pos += n
	return true
}

func (s *Scanner) acceptSeq(fn func(rune) bool) int {
	var n int
	for {
		r, size := s.peek()
		if size == 0 || !fn(r) {
			return n
		}
		s.pos += size
		n++
	}
}

func (s *Scanner) hasPrefix(p string) bool {
	return strings.HasPrefix(s.text[s.pos:s.limit], p)
}

// isConflictMarker matches version control merge markers (seven identical
// characters at the start of a line).
func (s *Scanner) isConflictMarker() bool {
	if s.pos > 0 && !isLineBreak(rune(s.text[s.pos-1])) {
		return false
	}
	const markerLength = 7
	if s.pos+markerLength > s.limit {
		return false
	}
	ch := s.text[s.pos]
	for i := 1; i < markerLength; i++ {
		if s.text[s.pos+i] != ch {
			return false
		}
	}
	return ch == '=' || s.pos+markerLength == s.limit || s.text[s.pos+markerLength] == ' '
}

func isLineBreak(c rune) bool {
	return c == '\n' || c == '\r' || c == '\u2028' || c == '\u2029'
}

func isWhitespace(c rune) bool {
	switch c {
	case ' ', '\t', '\v', '\f', '\u00a0', '\u0085', '\u1680', '\u200b', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return c >= '\u2000' && c <= '\u200a' || c > unicode.MaxLatin1 && !isLineBreak(c) && unicode.Is(unicode.Zs, c)
}
