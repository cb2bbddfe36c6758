// Copyright © 2024 The ELPS authors

package lint

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/luthersystems/tslint/ast"
	"github.com/luthersystems/tslint/parser"
)

const tracerName = "tslint"

// ParseFunc parses one source file.
type ParseFunc func(ctx context.Context, name string, src []byte) (*ast.File, error)

// FileFix is the outcome of fixing one file.
type FileFix struct {
	File string `json:"file"`

	// Text is the file content with the applied fixes.
	Text string `json:"-"`

	Applied []Failure `json:"applied"`
	Unfixed []Failure `json:"unfixed,omitempty"`
}

// FileResult holds the outcome of linting one file.
type FileResult struct {
	File     *ast.File
	Failures []Failure

	// Fix is set when the linter was asked to fix. Failures then lists only
	// the failures that were not fixed.
	Fix *FileFix
}

// Result is the accumulated outcome of a run.
type Result struct {
	Failures     []Failure
	FailureCount int
	ErrorCount   int
	WarningCount int

	// Output is the formatted report.
	Output string
	Format string

	Fixes []FileFix
}

// Linter runs a set of configured rules over source files and accumulates
// their failures.
type Linter struct {
	Rules []*ConfiguredRule

	// Formatter names the output format: prose (default), verbose or json.
	Formatter string

	// Fix computes fixed file contents for failures that carry fixes.
	Fix bool

	// Logger receives warnings and debug timing. A nil Logger logs warnings
	// to stderr.
	Logger *logrus.Logger

	// Parse defaults to parser.ParseFile.
	Parse ParseFunc

	// Parallelism bounds how many files LintFiles processes at once.
	// Values below 2 lint sequentially.
	Parallelism int

	mu       sync.Mutex
	failures []Failure
	fixes    []FileFix
	log      *logrus.Logger
	logOnce  sync.Once
}

func (l *Linter) logger() *logrus.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	l.logOnce.Do(func() {
		l.log = logrus.New()
		l.log.SetOutput(os.Stderr)
		l.log.SetLevel(logrus.WarnLevel)
	})
	return l.log
}

func (l *Linter) parse(ctx context.Context, name string, src []byte) (*ast.File, error) {
	if l.Parse != nil {
		return l.Parse(ctx, name, src)
	}
	return parser.ParseFile(ctx, name, src)
}

// LintFile parses and lints a single file without accumulating the result.
func (l *Linter) LintFile(ctx context.Context, name string, src []byte) (*FileResult, error) {
	start := time.Now()
	ctx, span := otel.GetTracerProvider().Tracer(tracerName).Start(ctx, "tslint.lint_file",
		trace.WithAttributes(semconv.CodeFilepath(name)))
	defer span.End()

	file, err := l.parse(ctx, name, src)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, err
	}

	directives := ParseDirectives(file)
	var all []Failure
	for _, rule := range l.Rules {
		if !rule.Enabled() || rule.Rule.TypeScriptOnly && isJavaScript(file.Name) {
			continue
		}
		failures, err := runRule(ctx, rule, file)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "rule failed")
			return nil, fmt.Errorf("%s: rule %s: %w", file.Name, rule.Name(), err)
		}
		intervals := DisabledIntervals(file, directives, rule.Name())
		for _, f := range failures {
			if !Intersects(f, intervals) {
				all = append(all, f)
			}
		}
	}
	all = Dedupe(all)
	SortFailures(all)

	res := &FileResult{File: file, Failures: all}
	if l.Fix {
		fixed := ApplyFixes(file.Text, all)
		res.Fix = &FileFix{File: file.Name, Text: fixed.Text, Applied: fixed.Applied, Unfixed: fixed.Unfixed}
		res.Failures = remaining(all, fixed.Applied)
	}
	span.SetAttributes(attribute.Int("tslint.failures", len(res.Failures)))
	l.logger().WithFields(logrus.Fields{
		"file":     file.Name,
		"failures": len(res.Failures),
		"elapsed":  time.Since(start),
	}).Debug("linted file")
	return res, nil
}

func runRule(ctx context.Context, rule *ConfiguredRule, file *ast.File) ([]Failure, error) {
	_, span := otel.GetTracerProvider().Tracer(tracerName).Start(ctx, "tslint.rule",
		trace.WithAttributes(
			semconv.CodeFunction(rule.Name()),
			semconv.CodeFilepath(file.Name),
		))
	defer span.End()

	pass := NewPass(rule, file)
	err := rule.Rule.Run(pass)
	if err == nil {
		err = pass.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("tslint.failures", len(pass.failures)))
	return pass.failures, nil
}

func remaining(all, applied []Failure) []Failure {
	if len(applied) == 0 {
		return all
	}
	fixed := make(map[failureKey]bool, len(applied))
	for _, f := range applied {
		fixed[f.key()] = true
	}
	var out []Failure
	for _, f := range all {
		if !fixed[f.key()] {
			out = append(out, f)
		}
	}
	return out
}

// Lint lints one file and accumulates its failures.
func (l *Linter) Lint(ctx context.Context, name string, src []byte) error {
	if l.skip(name, src) {
		return nil
	}
	res, err := l.LintFile(ctx, name, src)
	if err != nil {
		return err
	}
	l.add(res)
	return nil
}

// LintFiles reads and lints paths, concurrently when Parallelism allows,
// and accumulates the results in the order of paths. Any read or parse
// error aborts the batch and nothing from it is accumulated.
func (l *Linter) LintFiles(ctx context.Context, paths []string) error {
	results := make([]*FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(l.Parallelism, 1))
	for i, p := range paths {
		g.Go(func() error {
			src, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			if l.skip(p, src) {
				return nil
			}
			res, err := l.LintFile(gctx, p, src)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, res := range results {
		if res != nil {
			l.add(res)
		}
	}
	return nil
}

func (l *Linter) add(res *FileResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures = append(l.failures, res.Failures...)
	if res.Fix != nil {
		l.fixes = append(l.fixes, *res.Fix)
	}
}

// skip reports whether src is an MPEG transport stream that happens to use
// the .ts extension.
func (l *Linter) skip(name string, src []byte) bool {
	if !isMPEGTransportStream(src) {
		return false
	}
	l.logger().WithField("file", name).Warn("skipping MPEG transport stream")
	return true
}

func isMPEGTransportStream(src []byte) bool {
	const syncByte, packetSize = 0x47, 188
	return len(src) > packetSize && src[0] == syncByte && src[packetSize] == syncByte
}

func isJavaScript(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return true
	}
	return false
}

// Result returns the accumulated failures rendered with the configured
// formatter.
func (l *Linter) Result() (*Result, error) {
	format, err := LookupFormatter(l.Formatter)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	failures := append([]Failure(nil), l.failures...)
	fixes := append([]FileFix(nil), l.fixes...)
	l.mu.Unlock()

	var buf bytes.Buffer
	if err := format(&buf, failures, fixes); err != nil {
		return nil, err
	}
	res := &Result{
		Failures:     failures,
		FailureCount: len(failures),
		Output:       buf.String(),
		Format:       l.Formatter,
		Fixes:        fixes,
	}
	if res.Format == "" {
		res.Format = "prose"
	}
	for _, f := range failures {
		switch f.Severity {
		case SeverityWarning:
			res.WarningCount++
		default:
			res.ErrorCount++
		}
	}
	return res, nil
}
