// Copyright © 2024 The ELPS authors

// Package lint provides static analysis for TypeScript source files.
//
// Each check is an independent Rule that receives a parsed file and reports
// failures through a Pass. The Linter handles parsing, running rules,
// suppression comments, fixes and output formatting.
//
// Rules are composable and extensible. Embedders can define custom checks
// alongside the built-in set.
package lint

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/luthersystems/tslint/ast"
)

// Severity indicates the severity level of a lint failure.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityOff:
		return "off"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a configuration string into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return severityUnset, nil
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "off", "none":
		return SeverityOff, nil
	}
	return severityUnset, fmt.Errorf("unknown severity: %q", s)
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "error".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("error")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	sev, err := ParseSeverity(str)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// RuleType classifies a rule for documentation.
type RuleType string

const (
	RuleTypeFunctionality   RuleType = "functionality"
	RuleTypeMaintainability RuleType = "maintainability"
	RuleTypeStyle           RuleType = "style"
	RuleTypeFormatting      RuleType = "formatting"
	RuleTypeTypeScript      RuleType = "typescript"
)

// Rule defines a single lint check.
type Rule struct {
	// Name is a short identifier for this check (e.g. "completed-docs").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	Type RuleType

	// OptionsDoc describes the arguments accepted by the rule.
	OptionsDoc string

	// OptionExamples are sample configuration values.
	OptionExamples []string

	// TypeScriptOnly rules are not run on .js and .jsx files.
	TypeScriptOnly bool

	// Fixable rules attach fixes to some of their failures.
	Fixable bool

	// Severity is the default severity for failures from this rule.
	Severity Severity

	// Options validates and converts the configured arguments. The result
	// is available to Run as Pass.Options. A nil Options accepts anything.
	Options func(args []any) (any, error)

	// Run executes the check. It should call pass.AddFailure for each
	// finding.
	Run func(pass *Pass) error
}

// Summary returns the first line of the rule's documentation.
func (r *Rule) Summary() string {
	summary, _, _ := strings.Cut(r.Doc, "\n")
	return summary
}

// ConfiguredRule is a rule with validated arguments and an effective
// severity.
type ConfiguredRule struct {
	Rule     *Rule
	Args     []any
	Options  any
	Severity Severity
}

// Configure validates args and returns a runnable rule. An unset severity
// falls back to the rule's default, and then to SeverityError.
func (r *Rule) Configure(args []any, severity Severity) (*ConfiguredRule, error) {
	if severity == severityUnset {
		severity = r.Severity
	}
	if severity == severityUnset {
		severity = SeverityError
	}
	var opts any
	if r.Options != nil {
		var err error
		opts, err = r.Options(args)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name, err)
		}
	}
	return &ConfiguredRule{Rule: r, Args: args, Options: opts, Severity: severity}, nil
}

// Name returns the rule name.
func (c *ConfiguredRule) Name() string {
	return c.Rule.Name
}

// Enabled reports whether the rule should run.
func (c *ConfiguredRule) Enabled() bool {
	return c.Severity != SeverityOff
}

// Pass provides context to a running rule and collects its failures.
type Pass struct {
	// Rule is the currently running check.
	Rule *Rule

	// File is the source file being analyzed.
	File *ast.File

	// Args are the configured arguments. Options is their validated form.
	Args    []any
	Options any

	Severity Severity

	failures []Failure
	err      error
}

// NewPass returns a pass running rule over file.
func NewPass(rule *ConfiguredRule, file *ast.File) *Pass {
	return &Pass{
		Rule:     rule.Rule,
		File:     file,
		Args:     rule.Args,
		Options:  rule.Options,
		Severity: rule.Severity,
	}
}

// Failures returns the failures recorded so far.
func (p *Pass) Failures() []Failure {
	return p.failures
}

// Err returns the first error recorded by the pass, such as an invalid fix.
func (p *Pass) Err() error {
	return p.err
}

// AddFailure records a failure spanning [start, end). Positions are clamped
// into the file. The optional replacements form the failure's fix; a fix
// with overlapping replacements is an error that aborts the rule.
func (p *Pass) AddFailure(start, end int, message string, fix ...Replacement) {
	var f *Fix
	if len(fix) > 0 {
		var err error
		f, err = NewFix(fix...)
		if err != nil {
			if p.err == nil {
				p.err = fmt.Errorf("failure %q: %w", message, err)
			}
			return
		}
	}
	n := len(p.File.Text)
	start = clamp(start, 0, n)
	end = clamp(end, start, n)
	p.failures = append(p.failures, Failure{
		File:     p.File.Name,
		RuleName: p.Rule.Name,
		Message:  message,
		Severity: p.Severity,
		Start:    p.position(start),
		End:      p.position(end),
		Fix:      f,
	})
}

// AddFailureAt records a failure of the given width at start.
func (p *Pass) AddFailureAt(start, width int, message string, fix ...Replacement) {
	p.AddFailure(start, start+width, message, fix...)
}

// AddFailureAtNode records a failure spanning n without its leading trivia.
func (p *Pass) AddFailureAtNode(n ast.Node, message string, fix ...Replacement) {
	p.AddFailure(n.Start(), n.End(), message, fix...)
}

func (p *Pass) position(pos int) Position {
	lc := p.File.LineAndCharacter(pos)
	return Position{Pos: pos, Line: lc.Line, Character: lc.Character}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
