// Copyright © 2024 The ELPS authors

package lint

import (
	"cmp"
	"fmt"
	"slices"
)

// Position identifies a location in source code. Line and Character are
// 0-based; Character counts bytes.
type Position struct {
	Pos       int `json:"position"`
	Line      int `json:"line"`
	Character int `json:"character"`
}

// String returns the position in 1-based line:col format.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

// Failure is a single reported problem.
type Failure struct {
	// File is the normalized path of the file.
	File string `json:"name"`

	// RuleName is the name of the rule that found this problem.
	RuleName string `json:"ruleName"`

	// Message is a human-readable description of the problem.
	Message string `json:"failure"`

	Severity Severity `json:"ruleSeverity"`

	Start Position `json:"startPosition"`
	End   Position `json:"endPosition"`

	// Fix is an optional edit resolving the problem.
	Fix *Fix `json:"fix,omitempty"`
}

// String returns the failure in file:line:col: message (rule) format.
func (f Failure) String() string {
	return fmt.Sprintf("%s:%s: %s (%s)", f.File, f.Start, f.Message, f.RuleName)
}

// HasFix reports whether the failure carries a fix.
func (f Failure) HasFix() bool {
	return f.Fix != nil && len(f.Fix.Replacements) > 0
}

// Equals reports whether two failures describe the same problem: same
// file, rule, span and message.
func (f Failure) Equals(o Failure) bool {
	return f.key() == o.key()
}

type failureKey struct {
	file, rule, message string
	start, end          int
}

func (f Failure) key() failureKey {
	return failureKey{file: f.File, rule: f.RuleName, message: f.Message, start: f.Start.Pos, end: f.End.Pos}
}

// Dedupe removes repeated failures, keeping the first of each.
func Dedupe(failures []Failure) []Failure {
	seen := make(map[failureKey]bool, len(failures))
	out := failures[:0:0]
	for _, f := range failures {
		k := f.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	return out
}

// SortFailures orders failures by file, start, end and rule name.
func SortFailures(failures []Failure) {
	slices.SortStableFunc(failures, func(a, b Failure) int {
		return cmp.Or(
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.Start.Pos, b.Start.Pos),
			cmp.Compare(a.End.Pos, b.End.Pos),
			cmp.Compare(a.RuleName, b.RuleName),
		)
	})
}
