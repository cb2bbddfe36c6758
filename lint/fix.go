// Copyright © 2024 The ELPS authors

package lint

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/luthersystems/tslint/ast"
)

// ErrOverlappingReplacements is returned when the replacements of a single
// fix overlap.
var ErrOverlappingReplacements = errors.New("overlapping replacements")

// Replacement substitutes Text for the Length bytes at Start. A zero
// Length inserts.
type Replacement struct {
	Start  int    `json:"innerStart"`
	Length int    `json:"innerLength"`
	Text   string `json:"innerText"`
}

// End returns the position just past the replaced range.
func (r Replacement) End() int {
	return r.Start + r.Length
}

// ReplaceFromTo replaces [start, end) with text.
func ReplaceFromTo(start, end int, text string) Replacement {
	return Replacement{Start: start, Length: end - start, Text: text}
}

// ReplaceNode replaces the text of n, excluding leading trivia.
func ReplaceNode(n ast.Node, text string) Replacement {
	return Replacement{Start: n.Start(), Length: n.Width(), Text: text}
}

// DeleteFromTo removes [start, end).
func DeleteFromTo(start, end int) Replacement {
	return ReplaceFromTo(start, end, "")
}

// DeleteText removes length bytes at start.
func DeleteText(start, length int) Replacement {
	return Replacement{Start: start, Length: length}
}

// AppendText inserts text at pos.
func AppendText(pos int, text string) Replacement {
	return Replacement{Start: pos, Text: text}
}

// Fix is a set of non-overlapping replacements applied together.
type Fix struct {
	Replacements []Replacement
}

// NewFix returns a fix made of reps sorted by position. Overlapping
// replacements yield ErrOverlappingReplacements.
func NewFix(reps ...Replacement) (*Fix, error) {
	sorted := slices.Clone(reps)
	sortReplacements(sorted)
	for i := 1; i < len(sorted); i++ {
		if conflicts(sorted[i-1], sorted[i]) {
			a, b := sorted[i-1], sorted[i]
			return nil, fmt.Errorf("%w: [%d,%d) and [%d,%d)", ErrOverlappingReplacements, a.Start, a.End(), b.Start, b.End())
		}
	}
	for _, r := range sorted {
		if r.Start < 0 || r.Length < 0 {
			return nil, fmt.Errorf("invalid replacement at %d", r.Start)
		}
	}
	return &Fix{Replacements: sorted}, nil
}

// Start returns the position of the first replacement.
func (f *Fix) Start() int {
	if f == nil || len(f.Replacements) == 0 {
		return 0
	}
	return f.Replacements[0].Start
}

// Apply returns text with the fix applied.
func (f *Fix) Apply(text string) string {
	if f == nil {
		return text
	}
	return applyReplacements(text, f.Replacements)
}

// MarshalJSON writes the fix as a bare list of replacements.
func (f *Fix) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Replacements)
}

// UnmarshalJSON reads a list of replacements.
func (f *Fix) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &f.Replacements)
}

// FixResult is the outcome of applying the fixes of a file's failures.
type FixResult struct {
	// Text is the fixed source.
	Text string

	// Applied lists the failures whose fixes were applied.
	Applied []Failure

	// Unfixed lists failures whose fix conflicted with an earlier one.
	// They remain reported.
	Unfixed []Failure
}

// ApplyFixes applies as many fixes as possible to text. Fixes are taken in
// order of their first replacement (ties keep failure order); a fix that
// touches a range already claimed by an earlier fix is skipped entirely.
func ApplyFixes(text string, failures []Failure) FixResult {
	var fixable []Failure
	for _, f := range failures {
		if f.HasFix() {
			fixable = append(fixable, f)
		}
	}
	slices.SortStableFunc(fixable, func(a, b Failure) int {
		return cmp.Compare(a.Fix.Start(), b.Fix.Start())
	})

	var (
		res     FixResult
		claimed []Replacement
	)
	for _, f := range fixable {
		if anyConflict(claimed, f.Fix.Replacements) {
			res.Unfixed = append(res.Unfixed, f)
			continue
		}
		claimed = append(claimed, f.Fix.Replacements...)
		res.Applied = append(res.Applied, f)
	}
	sortReplacements(claimed)
	res.Text = applyReplacements(text, claimed)
	return res
}

func anyConflict(claimed, reps []Replacement) bool {
	for _, r := range reps {
		for _, c := range claimed {
			if conflicts(c, r) {
				return true
			}
		}
	}
	return false
}

// conflicts reports whether two replacements cannot both be applied:
// their ranges overlap, they insert at the same offset, or one inserts
// strictly inside the other's range.
func conflicts(a, b Replacement) bool {
	switch {
	case a.Length == 0 && b.Length == 0:
		return a.Start == b.Start
	case a.Length == 0:
		return a.Start > b.Start && a.Start < b.End()
	case b.Length == 0:
		return b.Start > a.Start && b.Start < a.End()
	}
	return a.Start < b.End() && b.Start < a.End()
}

// sortReplacements orders by start, with insertions before a range that
// begins at the same offset.
func sortReplacements(reps []Replacement) {
	slices.SortStableFunc(reps, func(a, b Replacement) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.Length, b.Length))
	})
}

// applyReplacements applies sorted, non-conflicting replacements.
func applyReplacements(text string, reps []Replacement) string {
	var b strings.Builder
	last := 0
	for _, r := range reps {
		start := clamp(r.Start, last, len(text))
		end := clamp(r.End(), start, len(text))
		b.WriteString(text[last:start])
		b.WriteString(r.Text)
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}
