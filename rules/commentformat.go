// Copyright © 2024 The ELPS authors

package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/luthersystems/tslint/ast"
	"github.com/luthersystems/tslint/astutil"
	"github.com/luthersystems/tslint/lint"
)

const (
	optionCheckSpace     = "check-space"
	optionCheckLowercase = "check-lowercase"
	optionCheckUppercase = "check-uppercase"

	msgCommentSpace     = "comment must start with a space"
	msgCommentLowercase = "comment must start with lowercase letter"
	msgCommentUppercase = "comment must start with uppercase letter"
)

// exempt comments: triple-slash directives, regions and lint directives.
var commentExempt = regexp.MustCompile(`^(/|#(end)?region\b|\s*tslint:)`)

type commentFormatOptions struct {
	space, lowercase, uppercase bool

	// ignore skips the case checks for comments whose text, after leading
	// spaces, it matches.
	ignore *regexp.Regexp
}

// CommentFormat enforces formatting rules for single-line comments.
var CommentFormat = &lint.Rule{
	Name: "comment-format",
	Doc:  "Enforces formatting rules for single-line comments.",
	Type: lint.RuleTypeStyle,
	OptionsDoc: `Three arguments may be optionally provided:

* "check-space" requires that all single-line comments must begin with a space, as in // comment
  * note that for comments starting with multiple slashes, e.g. ///, leading slashes are ignored
  * TypeScript reference comments are ignored completely
* "check-lowercase" requires that the first non-whitespace character of a comment must be lowercase, if applicable.
* "check-uppercase" requires that the first non-whitespace character of a comment must be uppercase, if applicable.

Exceptions to check-lowercase or check-uppercase can be managed with object
that may be passed as last argument: {"ignore-words": ["TODO"]} or
{"ignore-pattern": "STD\\w{2,3}\\b"}.`,
	OptionExamples: []string{
		`[true, "check-space", "check-uppercase"]`,
		`[true, "check-lowercase", {"ignore-words": ["TODO", "HACK"]}]`,
	},
	Fixable: true,
	Options: parseCommentFormatOptions,
	Run: func(pass *lint.Pass) error {
		opts, _ := pass.Options.(*commentFormatOptions)
		if opts == nil {
			return nil
		}
		text := pass.File.Text
		for c := range astutil.Comments(pass.File.Root()) {
			if c.Kind == ast.KindSingleLineComment {
				checkComment(pass, opts, c.Pos.TokenStart, c.Text(text))
			}
		}
		return nil
	},
}

func parseCommentFormatOptions(args []any) (any, error) {
	opts := &commentFormatOptions{}
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			switch v {
			case optionCheckSpace:
				opts.space = true
			case optionCheckLowercase:
				opts.lowercase = true
			case optionCheckUppercase:
				opts.uppercase = true
			default:
				return nil, fmt.Errorf("unknown option %q", v)
			}
		case map[string]any:
			re, err := commentIgnorePattern(v)
			if err != nil {
				return nil, err
			}
			opts.ignore = re
		default:
			return nil, fmt.Errorf("unexpected argument %v", arg)
		}
	}
	if opts.lowercase && opts.uppercase {
		return nil, errors.New("check-lowercase and check-uppercase are mutually exclusive")
	}
	return opts, nil
}

func commentIgnorePattern(m map[string]any) (*regexp.Regexp, error) {
	if p, ok := m["ignore-pattern"]; ok {
		s, ok := p.(string)
		if !ok {
			return nil, fmt.Errorf("ignore-pattern: expected a string, got %T", p)
		}
		re, err := regexp.Compile(`^(?:` + s + `)`)
		if err != nil {
			return nil, fmt.Errorf("ignore-pattern: %w", err)
		}
		return re, nil
	}
	raw, ok := m["ignore-words"].([]any)
	if !ok {
		return nil, fmt.Errorf("expected ignore-words or ignore-pattern, got %v", m)
	}
	words := make([]string, 0, len(raw))
	for _, w := range raw {
		s, ok := w.(string)
		if !ok {
			return nil, fmt.Errorf("ignore-words: expected a string, got %T", w)
		}
		words = append(words, regexp.QuoteMeta(strings.TrimSpace(s)))
	}
	return regexp.Compile(`^(?:` + strings.Join(words, "|") + `)\b`)
}

func checkComment(pass *lint.Pass, opts *commentFormatOptions, pos int, comment string) {
	body := strings.TrimPrefix(comment, "//")
	if body == "" || commentExempt.MatchString(body) {
		return
	}
	start := pos + len("//")
	if opts.space && !strings.HasPrefix(body, " ") {
		pass.AddFailure(start, pos+len(comment), msgCommentSpace, lint.AppendText(start, " "))
	}
	if !opts.lowercase && !opts.uppercase {
		return
	}
	words := strings.TrimLeft(body, " ")
	if words == "" || opts.ignore != nil && opts.ignore.MatchString(words) {
		return
	}
	r, _ := utf8.DecodeRuneInString(words)
	switch {
	case opts.lowercase && unicode.IsUpper(r):
		pass.AddFailure(start, pos+len(comment), msgCommentLowercase)
	case opts.uppercase && unicode.IsLower(r):
		pass.AddFailure(start, pos+len(comment), msgCommentUppercase)
	}
}
