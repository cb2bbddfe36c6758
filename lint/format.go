// Copyright © 2024 The ELPS authors

package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Formatter renders a run's failures. fixes holds the per-file fix results
// when fixing was requested.
type Formatter func(w io.Writer, failures []Failure, fixes []FileFix) error

var formatters = map[string]Formatter{
	"prose":   FormatProse,
	"verbose": FormatVerbose,
	"json":    FormatJSON,
}

// LookupFormatter returns the named formatter. The empty name selects
// prose.
func LookupFormatter(name string) (Formatter, error) {
	if name == "" {
		name = "prose"
	}
	f, ok := formatters[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter %q (available: %s)", name, strings.Join(FormatterNames(), ", "))
	}
	return f, nil
}

// FormatterNames lists the available formatters.
func FormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// FormatProse writes one line per failure:
//
//	ERROR: file:line:col - message
func FormatProse(w io.Writer, failures []Failure, fixes []FileFix) error {
	return formatLines(w, failures, fixes, false)
}

// FormatVerbose is FormatProse with the rule name added to each line.
func FormatVerbose(w io.Writer, failures []Failure, fixes []FileFix) error {
	return formatLines(w, failures, fixes, true)
}

func formatLines(w io.Writer, failures []Failure, fixes []FileFix, verbose bool) error {
	ew := &errWriter{w: w}
	for _, fix := range fixes {
		if n := len(fix.Applied); n > 0 {
			ew.printf("Fixed %d %s in %s\n", n, plural(n, "error", "errors"), fix.File)
		}
	}
	if len(fixes) > 0 && len(failures) > 0 {
		ew.printf("\n")
	}
	for _, f := range failures {
		sev := strings.ToUpper(f.Severity.String())
		if verbose {
			ew.printf("%s: (%s) %s:%s - %s\n", sev, f.RuleName, f.File, f.Start, f.Message)
		} else {
			ew.printf("%s: %s:%s - %s\n", sev, f.File, f.Start, f.Message)
		}
	}
	return ew.err
}

// FormatJSON writes failures as a JSON array.
func FormatJSON(w io.Writer, failures []Failure, _ []FileFix) error {
	if failures == nil {
		failures = []Failure{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(failures)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
