// Copyright © 2024 The ELPS authors

package astutil

import (
	"strings"

	"github.com/luthersystems/tslint/ast"
	"github.com/luthersystems/tslint/scanner"
)

// JSDoc is a parsed /** ... */ documentation comment.
type JSDoc struct {
	Range scanner.CommentRange

	// Text is the description preceding the first tag, with comment
	// decoration removed.
	Text string

	Tags []JSDocTag
}

// JSDocTag is a block tag such as "@deprecated use bar".
type JSDocTag struct {
	Name string
	Text string
}

// IsEmpty reports whether the comment has neither description nor tags.
func (d JSDoc) IsEmpty() bool {
	return strings.TrimSpace(d.Text) == "" && len(d.Tags) == 0
}

// Tag returns the first tag with the given name.
func (d JSDoc) Tag(name string) (JSDocTag, bool) {
	for _, t := range d.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return JSDocTag{}, false
}

// IsJSDoc reports whether the comment text opens with /** and is not the
// empty block comment /**/.
func IsJSDoc(text string) bool {
	return strings.HasPrefix(text, "/**") && text != "/**/" && strings.HasSuffix(text, "*/") && len(text) >= 5
}

// LeadingComments returns the comments owned as leading trivia by n's first
// token.
func LeadingComments(n ast.Node) []scanner.CommentRange {
	if !n.Valid() {
		return nil
	}
	return scanner.LeadingCommentRanges(n.File().Text, n.FullStart())
}

// JSDocComments returns the documentation comments attached to a
// declaration, nearest last. Comments before an enclosing export or
// variable statement and before leading decorators are attached to the
// declaration.
func JSDocComments(n ast.Node) []JSDoc {
	if !n.Valid() {
		return nil
	}
	text := n.File().Text
	var out []JSDoc
	for _, c := range LeadingComments(docAnchor(n)) {
		s := c.Text(text)
		if c.Kind == ast.KindMultiLineComment && IsJSDoc(s) {
			doc := ParseJSDoc(s)
			doc.Range = c
			out = append(out, doc)
		}
	}
	return out
}

// DocComment returns the documentation comment nearest to a declaration.
func DocComment(n ast.Node) (JSDoc, bool) {
	docs := JSDocComments(n)
	if len(docs) == 0 {
		return JSDoc{}, false
	}
	return docs[len(docs)-1], true
}

func docAnchor(n ast.Node) ast.Node {
	if n.Kind() == ast.KindVariableDeclarator {
		n = n.Parent()
	}
	for {
		p := n.Parent()
		switch p.Kind() {
		case ast.KindExportStatement, ast.KindAmbientDeclaration, ast.KindExpressionStatement:
			n = p
			continue
		}
		break
	}
	for prev := PrevSibling(n); prev.Kind() == "decorator"; prev = PrevSibling(prev) {
		n = prev
	}
	return n
}

// ParseJSDoc splits a /** ... */ comment into its description and block
// tags.
func ParseJSDoc(comment string) JSDoc {
	body := strings.TrimPrefix(comment, "/**")
	body = strings.TrimSuffix(body, "*/")
	var (
		doc  JSDoc
		desc []string
		tag  *JSDocTag
	)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		if strings.HasPrefix(line, "@") {
			name, rest, _ := strings.Cut(line[1:], " ")
			doc.Tags = append(doc.Tags, JSDocTag{Name: name, Text: strings.TrimSpace(rest)})
			tag = &doc.Tags[len(doc.Tags)-1]
			continue
		}
		if tag != nil {
			if line != "" {
				tag.Text = strings.TrimSpace(tag.Text + " " + line)
			}
			continue
		}
		desc = append(desc, line)
	}
	doc.Text = strings.TrimSpace(strings.Join(desc, "\n"))
	return doc
}

// HasCommentAfterPosition reports whether a comment follows pos before the
// next token.
func HasCommentAfterPosition(text string, pos int) bool {
	return len(scanner.TrailingCommentRanges(text, pos)) > 0 ||
		len(scanner.LeadingCommentRanges(text, pos)) > 0
}
