// Copyright © 2024 The ELPS authors

package rules

import (
	"fmt"
	"strings"

	"github.com/luthersystems/tslint/ast"
	"github.com/luthersystems/tslint/astutil"
	"github.com/luthersystems/tslint/lint"
)

const msgTrailingWhitespace = "trailing whitespace"

type trailingWhitespaceOptions struct {
	ignoreComments   bool
	ignoreJSDoc      bool
	ignoreBlankLines bool
}

// NoTrailingWhitespace disallows whitespace at the end of a line. Text of
// template strings and JSX is never reported.
var NoTrailingWhitespace = &lint.Rule{
	Name: "no-trailing-whitespace",
	Doc:  "Disallows trailing whitespace at the end of a line.",
	Type: lint.RuleTypeFormatting,
	OptionsDoc: `Possible settings are:

* "ignore-comments": Allows trailing whitespace in comments.
* "ignore-jsdoc": Allows trailing whitespace only in JSDoc comments.
* "ignore-blank-lines": Allows trailing whitespace on lines containing nothing else.`,
	OptionExamples: []string{"true", `[true, "ignore-comments"]`},
	Fixable:        true,
	Options: func(args []any) (any, error) {
		opts := &trailingWhitespaceOptions{}
		for _, arg := range args {
			switch arg {
			case "ignore-comments":
				opts.ignoreComments = true
			case "ignore-jsdoc":
				opts.ignoreJSDoc = true
			case "ignore-blank-lines":
				opts.ignoreBlankLines = true
			case "ignore-template-strings":
			default:
				return nil, fmt.Errorf("unknown option %v", arg)
			}
		}
		return opts, nil
	},
	Run: func(pass *lint.Pass) error {
		opts, _ := pass.Options.(*trailingWhitespaceOptions)
		if opts == nil {
			opts = &trailingWhitespaceOptions{}
		}
		f := pass.File
		var prev astutil.Token
		for tok := range astutil.Tokens(f.Root(), true, nil) {
			switch tok.Kind {
			case ast.KindNewLineTrivia, ast.KindEndOfFile:
				checkTrailingSpace(pass, opts, prev, tok.Pos.TokenStart)
			case ast.KindSingleLineComment, ast.KindMultiLineComment:
				checkCommentWhitespace(pass, opts, tok)
			}
			prev = tok
		}
		checkTrailingSpace(pass, opts, prev, len(f.Text))
		return nil
	},
}

// checkTrailingSpace reports prev when it is whitespace ending at a line
// break.
func checkTrailingSpace(pass *lint.Pass, opts *trailingWhitespaceOptions, prev astutil.Token, lineEnd int) {
	if prev.Kind != ast.KindWhitespaceTrivia || prev.Pos.End != lineEnd {
		return
	}
	start := prev.Pos.TokenStart
	if opts.ignoreBlankLines {
		line := pass.File.LineAndCharacter(start).Line
		if pass.File.LineStart(line) == start {
			return
		}
	}
	pass.AddFailure(start, lineEnd, msgTrailingWhitespace, lint.DeleteFromTo(start, lineEnd))
}

// checkCommentWhitespace reports whitespace before the line breaks inside a
// comment, and at the end of a single-line comment.
func checkCommentWhitespace(pass *lint.Pass, opts *trailingWhitespaceOptions, tok astutil.Token) {
	text := tok.Text(pass.File.Text)
	if opts.ignoreComments || opts.ignoreJSDoc && astutil.IsJSDoc(text) {
		return
	}
	base := tok.Pos.TokenStart
	for offset := 0; ; {
		i := strings.IndexByte(text[offset:], '\n')
		lineEnd := len(text)
		if i >= 0 {
			lineEnd = offset + i
		}
		line := strings.TrimSuffix(text[offset:lineEnd], "\r")
		trimmed := strings.TrimRight(line, " \t")
		if len(trimmed) < len(line) && (i >= 0 || tok.Kind == ast.KindSingleLineComment) {
			start, end := base+offset+len(trimmed), base+offset+len(line)
			pass.AddFailure(start, end, msgTrailingWhitespace, lint.DeleteFromTo(start, end))
		}
		if i < 0 {
			return
		}
		offset = lineEnd + 1
	}
}
