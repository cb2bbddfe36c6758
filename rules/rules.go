// Copyright © 2024 The ELPS authors

// Package rules registers the built-in lint rules.
package rules

import (
	"cmp"
	"slices"

	"github.com/luthersystems/tslint/lint"
	"github.com/luthersystems/tslint/rules/completeddocs"
)

var registry = []*lint.Rule{
	CommentFormat,
	completeddocs.Rule,
	NoTrailingWhitespace,
	NoUtfAssert,
	ObjectLiteralPadding,
}

// All returns the built-in rules sorted by name.
func All() []*lint.Rule {
	out := slices.Clone(registry)
	slices.SortFunc(out, func(a, b *lint.Rule) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Lookup returns the built-in rule with the given name.
func Lookup(name string) (*lint.Rule, bool) {
	for _, r := range registry {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Names returns the sorted names of the built-in rules.
func Names() []string {
	var names []string
	for _, r := range All() {
		names = append(names, r.Name)
	}
	return names
}
