// Copyright © 2024 The ELPS authors

package lint

import (
	"strings"
	"unicode"

	parsec "github.com/prataprc/goparsec"

	"github.com/luthersystems/tslint/ast"
	"github.com/luthersystems/tslint/astutil"
)

// DirectiveScope is the extent of a suppression directive.
type DirectiveScope int

const (
	// ScopeBlock switches rules from the directive to the next opposite
	// directive or the end of the file.
	ScopeBlock DirectiveScope = iota
	// ScopeLine applies to the line holding the comment.
	ScopeLine
	// ScopeNextLine applies to the line after the comment.
	ScopeNextLine
)

// Directive is a parsed tslint:enable or tslint:disable comment.
type Directive struct {
	Enable bool
	Scope  DirectiveScope

	// Rules lists the affected rules. Empty means every rule.
	Rules []string

	// Pos and End locate the comment.
	Pos int
	End int
}

// Applies reports whether the directive switches rule.
func (d Directive) Applies(rule string) bool {
	if len(d.Rules) == 0 {
		return true
	}
	for _, r := range d.Rules {
		if r == rule || r == "all" {
			return true
		}
	}
	return false
}

type directiveParser struct {
	marker parsec.Parser
	rules  parsec.Parser
}

// newDirectiveParser builds the grammar
//
//	directive := marker (':' | space | end) rules
//	marker    := 'tslint:' ('enable' | 'disable') ('-line' | '-next-line')?
//	rules     := /\S+/*
func newDirectiveParser() *directiveParser {
	marker := parsec.Token(`tslint:(?:enable|disable)(?:-next-line|-line)?`, "MARKER")
	rule := parsec.Token(`\S+`, "RULE")
	rules := parsec.Kleene(func(ns []parsec.ParsecNode) parsec.ParsecNode {
		names := make([]string, 0, len(ns))
		for _, n := range ns {
			if t, ok := n.(*parsec.Terminal); ok {
				names = append(names, t.Value)
			}
		}
		return names
	}, rule)
	return &directiveParser{marker: marker, rules: rules}
}

// parse interprets the body of a comment, without its delimiters.
func (p *directiveParser) parse(body string) (Directive, bool) {
	node, _ := p.marker(parsec.NewScanner([]byte(body)))
	term, ok := node.(*parsec.Terminal)
	if !ok || strings.TrimSpace(body[:term.Position]) != "" {
		return Directive{}, false
	}
	rest := body[term.Position+len(term.Value):]
	explicit := strings.HasPrefix(rest, ":")
	switch {
	case rest == "", explicit:
	default:
		if r := []rune(rest)[0]; !unicode.IsSpace(r) {
			return Directive{}, false
		}
	}
	if explicit {
		rest = rest[1:]
	}
	var names []string
	if rest != "" {
		n, _ := p.rules(parsec.NewScanner([]byte(rest)))
		names, _ = n.([]string)
	}
	if len(names) == 0 {
		if explicit {
			// an explicit separator with nothing after it switches nothing
			return Directive{}, false
		}
		names = nil
	}

	d := Directive{Rules: names}
	kind := strings.TrimPrefix(term.Value, "tslint:")
	d.Enable = strings.HasPrefix(kind, "enable")
	switch {
	case strings.HasSuffix(kind, "-next-line"):
		d.Scope = ScopeNextLine
	case strings.HasSuffix(kind, "-line"):
		d.Scope = ScopeLine
	}
	for _, r := range d.Rules {
		if r == "all" {
			d.Rules = nil
			break
		}
	}
	return d, true
}

// ParseDirective parses a complete comment, delimiters included.
func ParseDirective(comment string) (Directive, bool) {
	return newDirectiveParser().parse(commentBody(comment))
}

func commentBody(comment string) string {
	if strings.HasPrefix(comment, "//") {
		return comment[2:]
	}
	body := strings.TrimPrefix(comment, "/*")
	return strings.TrimSuffix(body, "*/")
}

// ParseDirectives returns the suppression directives found in the comments
// of f, in source order.
func ParseDirectives(f *ast.File) []Directive {
	p := newDirectiveParser()
	var out []Directive
	for c := range astutil.Comments(f.Root()) {
		text := c.Text(f.Text)
		if !strings.Contains(text, "tslint:") {
			continue
		}
		d, ok := p.parse(commentBody(text))
		if !ok {
			continue
		}
		d.Pos, d.End = c.Pos.TokenStart, c.Pos.End
		out = append(out, d)
	}
	return out
}
