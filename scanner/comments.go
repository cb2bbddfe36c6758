// Copyright © 2024 The ELPS authors

package scanner

import "github.com/luthersystems/tslint/ast"

// CommentRange locates a comment in a source text.
type CommentRange struct {
	Pos                int
	End                int
	Kind               ast.Kind
	HasTrailingNewLine bool
}

// Text returns the comment's source text.
func (c CommentRange) Text(src string) string {
	return src[c.Pos:c.End]
}

// LeadingCommentRanges returns the comments owned as leading trivia by the
// token whose full start is pos: those following the first line break
// after pos. At the start of the file every comment is leading.
func LeadingCommentRanges(text string, pos int) []CommentRange {
	return commentRanges(text, pos, false)
}

// TrailingCommentRanges returns the comments on the same line after pos,
// which are owned as trailing trivia by the token ending at pos.
func TrailingCommentRanges(text string, pos int) []CommentRange {
	return commentRanges(text, pos, true)
}

func commentRanges(text string, pos int, trailing bool) []CommentRange {
	if pos < 0 || pos > len(text) {
		return nil
	}
	collecting := trailing || pos == 0
	s := New(text)
	s.SetTextPos(pos)
	var out []CommentRange
	for {
		kind := s.Scan()
		switch kind {
		case ast.KindNewLineTrivia:
			if len(out) > 0 {
				out[len(out)-1].HasTrailingNewLine = true
			}
			if trailing {
				return out
			}
			collecting = true
		case ast.KindWhitespaceTrivia, ast.KindShebangTrivia:
		case ast.KindSingleLineComment, ast.KindMultiLineComment:
			if collecting {
				out = append(out, CommentRange{Pos: s.TokenPos(), End: s.TextPos(), Kind: kind})
			}
		default:
			return out
		}
	}
}
