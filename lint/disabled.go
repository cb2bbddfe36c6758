// Copyright © 2024 The ELPS authors

package lint

import (
	"cmp"
	"slices"

	"github.com/luthersystems/tslint/ast"
)

// DisabledInterval is an inclusive range of positions where a rule is
// switched off.
type DisabledInterval struct {
	Start int
	End   int
}

// DisabledIntervals computes where rule is disabled in f. Block directives
// switch the rule off from the comment to the next enabling comment (or
// the end of the file). Line directives cover one line, from its first
// byte to the byte before its line break; an enabling line directive cuts
// that line out of any disabled region.
func DisabledIntervals(f *ast.File, directives []Directive, rule string) []DisabledInterval {
	var (
		out      []DisabledInterval
		enabled  []DisabledInterval
		disabled = -1
	)
	for _, d := range directives {
		if !d.Applies(rule) {
			continue
		}
		switch d.Scope {
		case ScopeBlock:
			switch {
			case !d.Enable && disabled < 0:
				disabled = d.Pos
			case d.Enable && disabled >= 0:
				out = append(out, DisabledInterval{Start: disabled, End: d.Pos})
				disabled = -1
			}
		default:
			line := f.LineAndCharacter(d.Pos).Line
			if d.Scope == ScopeNextLine {
				line++
				if line >= f.LineCount() {
					continue
				}
			}
			iv := DisabledInterval{Start: f.LineStart(line), End: f.LineEnd(line)}
			if d.Enable {
				enabled = append(enabled, iv)
			} else {
				out = append(out, iv)
			}
		}
	}
	if disabled >= 0 {
		out = append(out, DisabledInterval{Start: disabled, End: len(f.Text)})
	}
	for _, cut := range enabled {
		out = subtract(out, cut)
	}
	slices.SortFunc(out, func(a, b DisabledInterval) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
	})
	return out
}

func subtract(ivs []DisabledInterval, cut DisabledInterval) []DisabledInterval {
	var out []DisabledInterval
	for _, iv := range ivs {
		if iv.End < cut.Start || iv.Start > cut.End {
			out = append(out, iv)
			continue
		}
		if iv.Start < cut.Start {
			out = append(out, DisabledInterval{Start: iv.Start, End: cut.Start - 1})
		}
		if iv.End > cut.End {
			out = append(out, DisabledInterval{Start: cut.End + 1, End: iv.End})
		}
	}
	return out
}

// Intersects reports whether the failure overlaps any interval. Ranges
// that merely touch count as overlapping.
func Intersects(f Failure, intervals []DisabledInterval) bool {
	for _, iv := range intervals {
		if max(f.Start.Pos, iv.Start) <= min(f.End.Pos, iv.End) {
			return true
		}
	}
	return false
}
