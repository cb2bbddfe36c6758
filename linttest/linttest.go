// Copyright © 2024 The ELPS authors

// Package linttest contains helpers for testing lint rules against inline
// TypeScript sources.
package linttest

import (
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/luthersystems/tslint/lint"
)

// Runner lints test sources with a single rule.
type Runner struct {
	Rule *lint.Rule

	// Args are passed to Rule.Configure.
	Args []any

	// FileName defaults to "test.ts".
	FileName string
}

func (r *Runner) linter(t testing.TB, fix bool) *lint.Linter {
	t.Helper()
	cr, err := r.Rule.Configure(r.Args, 0)
	if err != nil {
		t.Fatalf("Unable to configure rule %s: %v", r.Rule.Name, err)
	}
	logger := logrus.New()
	logger.SetOutput(NewLogger(t))
	logger.SetLevel(logrus.DebugLevel)
	return &lint.Linter{
		Rules:  []*lint.ConfiguredRule{cr},
		Fix:    fix,
		Logger: logger,
	}
}

func (r *Runner) name() string {
	if r.FileName == "" {
		return "test.ts"
	}
	return r.FileName
}

// Lint returns the failures reported for source.
func (r *Runner) Lint(t testing.TB, source string) []lint.Failure {
	t.Helper()
	res, err := r.linter(t, false).LintFile(context.Background(), r.name(), []byte(source))
	if err != nil {
		t.Fatalf("Lint failure: %v", err)
	}
	return res.Failures
}

// Fix returns source with every applicable fix applied.
func (r *Runner) Fix(t testing.TB, source string) string {
	t.Helper()
	res, err := r.linter(t, true).LintFile(context.Background(), r.name(), []byte(source))
	if err != nil {
		t.Fatalf("Lint failure: %v", err)
	}
	return res.Fix.Text
}

// Lint runs rule with args over source.
func Lint(t testing.TB, rule *lint.Rule, args []any, source string) []lint.Failure {
	t.Helper()
	r := &Runner{Rule: rule, Args: args}
	return r.Lint(t, source)
}

// Fix runs rule with args over source and applies the fixes.
func Fix(t testing.TB, rule *lint.Rule, args []any, source string) string {
	t.Helper()
	r := &Runner{Rule: rule, Args: args}
	return r.Fix(t, source)
}

// AssertHasFailure checks that at least one failure message contains
// substr.
func AssertHasFailure(t testing.TB, failures []lint.Failure, substr string) {
	t.Helper()
	for _, f := range failures {
		if strings.Contains(f.Message, substr) {
			return
		}
	}
	t.Errorf("expected failure containing %q, got: %v", substr, Messages(failures))
}

// AssertNoFailures checks that failures is empty.
func AssertNoFailures(t testing.TB, failures []lint.Failure) {
	t.Helper()
	for _, f := range failures {
		t.Errorf("unexpected failure: %s", f)
	}
}

// Messages renders failures for test output.
func Messages(failures []lint.Failure) []string {
	msgs := make([]string, 0, len(failures))
	for _, f := range failures {
		msgs = append(msgs, f.String())
	}
	return msgs
}

// Texts returns the source text spanned by each failure.
func Texts(source string, failures []lint.Failure) []string {
	out := make([]string, 0, len(failures))
	for _, f := range failures {
		out = append(out, source[f.Start.Pos:f.End.Pos])
	}
	return out
}
