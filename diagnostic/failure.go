// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"github.com/luthersystems/tslint/lint"
)

// FromFailure converts a lint failure. Failures spanning several lines are
// underlined to the end of their first line.
func FromFailure(f lint.Failure) Diagnostic {
	d := Diagnostic{
		Severity: SeverityError,
		Code:     f.RuleName,
		Message:  f.Message,
	}
	if f.Severity == lint.SeverityWarning {
		d.Severity = SeverityWarning
	}
	span := Span{
		File: f.File,
		Line: f.Start.Line + 1,
		Col:  f.Start.Character + 1,
	}
	switch {
	case f.End.Line == f.Start.Line && f.End.Character > f.Start.Character:
		span.EndCol = f.End.Character
	case f.End.Line > f.Start.Line:
		span.EndCol = 1 << 30
	}
	d.Spans = []Span{span}
	if f.HasFix() {
		d.Help = append(d.Help, "a fix is available (run with --fix)")
	}
	return d
}

// FromFailures converts failures in order.
func FromFailures(failures []lint.Failure) []Diagnostic {
	out := make([]Diagnostic, 0, len(failures))
	for _, f := range failures {
		out = append(out, FromFailure(f))
	}
	return out
}
