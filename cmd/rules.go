// Copyright © 2024 The ELPS authors

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/luthersystems/tslint/docs"
	"github.com/luthersystems/tslint/lint"
	"github.com/luthersystems/tslint/rules"
)

// RulesCommand creates the "rules" cobra command.
func RulesCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	var guide bool
	cmd := &cobra.Command{
		Use:           "rules [RULE...]",
		SilenceUsage:  true,
		SilenceErrors: true,
		Short:         "Show documentation for lint rules",
		Long: `Show documentation for lint rules.

With no arguments, lists every available rule with a one line summary.
With rule names, shows each rule's full documentation, its options and
example configurations. --guide prints the configuration guide instead.

Examples:
  tslint rules                     List the rules
  tslint rules completed-docs      Show docs for completed-docs
  tslint rules --guide             Show how to configure rules`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush() //nolint:errcheck // best-effort flush on exit
			if guide {
				_, err := io.WriteString(out, docs.ConfigGuide)
				return err
			}
			if len(args) == 0 {
				return renderRuleList(out, availableRules(cfg))
			}
			for i, name := range args {
				r, ok := cfg.lookup(name)
				if !ok {
					return badInvocation(fmt.Errorf("unknown rule: %s", name))
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				if err := renderRule(out, r); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&guide, "guide", false, "Print the configuration guide.")
	return cmd
}

// availableRules returns the built-in rules followed by added rules that
// do not shadow one.
func availableRules(cfg *cmdConfig) []*lint.Rule {
	all := rules.All()
	for _, r := range cfg.extra {
		if _, ok := rules.Lookup(r.Name); !ok {
			all = append(all, r)
		}
	}
	return all
}

func renderRuleList(w io.Writer, rs []*lint.Rule) error {
	width := 0
	for _, r := range rs {
		width = max(width, len(r.Name))
	}
	for _, r := range rs {
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width, r.Name, r.Summary()); err != nil {
			return err
		}
	}
	return nil
}

func renderRule(w io.Writer, r *lint.Rule) error {
	var tags []string
	if r.Type != "" {
		tags = append(tags, string(r.Type))
	}
	if r.Fixable {
		tags = append(tags, "fixable")
	}
	if r.TypeScriptOnly {
		tags = append(tags, "typescript only")
	}
	ew := &errWriter{w: w}
	ew.printf("%s", r.Name)
	if len(tags) > 0 {
		ew.printf(" (%s)", strings.Join(tags, ", "))
	}
	ew.printf("\n")
	if doc := cleanDoc(r.Doc); doc != "" {
		ew.printf("%s\n", doc)
	}
	if doc := cleanDoc(r.OptionsDoc); doc != "" {
		ew.printf("\nOptions:\n%s\n", doc)
	}
	if len(r.OptionExamples) > 0 {
		ew.printf("\nExamples:\n")
		for _, ex := range r.OptionExamples {
			ew.printf("  %q: %s\n", r.Name, ex)
		}
	}
	return ew.err
}

// cleanDoc wraps documentation at 72 columns and indents it by two spaces.
func cleanDoc(doc string) string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return ""
	}
	doc = indent.String(wordwrap.String(doc, 72), 2)
	return strings.TrimSuffix(doc, "\n")
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

func init() {
	rootCmd.AddCommand(RulesCommand())
}
