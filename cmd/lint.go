// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luthersystems/tslint/config"
	"github.com/luthersystems/tslint/lint"
	"github.com/luthersystems/tslint/rules"
)

// Exit codes of the lint command.
const (
	exitOK            = 0
	exitFailures      = 1
	exitBadInvocation = 2
)

// stdinName is the file name failures on standard input are reported
// under.
const stdinName = "stdin.ts"

// exitError carries a process exit code out of a command. A nil err exits
// without printing anything.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func badInvocation(err error) error {
	return &exitError{code: exitBadInvocation, err: err}
}

// exitCode returns the process exit code for the error a command returned,
// printing the error when there is one to print.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(w, ee.err)
		}
		return ee.code
	}
	fmt.Fprintln(w, err)
	return exitBadInvocation
}

type lintFlags struct {
	excludes []string
	format   string
	force    bool
	rules    string
	out      string
	fix      bool
	jobs     int
}

// LintCommand creates the "lint" cobra command. Embedders can pass
// WithRules to make their own rules configurable.
func LintCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	var flags lintFlags

	cmd := &cobra.Command{
		Use:           "lint [flags] [files...]",
		SilenceUsage:  true,
		SilenceErrors: true,
		Short:         "Lint TypeScript and JavaScript source files",
		Long: `Lint TypeScript and JavaScript source files.

Each argument is a file, a shell glob, or a directory followed by "/..."
which selects every .ts, .tsx, .js and .jsx file below it. With no
arguments the source is read from stdin.

The rules come from the file named by --config, else from the nearest
tslint.json, tslint.yaml, tslint.yml or .tslintrc above the first argument,
else from the defaults written by "tslint init".

Exit codes:
  0  No failures of error severity (or --force)
  1  One or more failures of error severity were reported
  2  Bad invocation, bad configuration, or an unreadable or unparseable file

Available rules (use --rules to select specific ones):
` + rulesSummary() + `
Examples:
  tslint lint src/a.ts                       # Lint a single file
  tslint lint 'src/*.ts'                     # Lint files matching a glob
  tslint lint --format=json src/...          # Output failures as JSON
  tslint lint --rules=comment-format src/... # Run only specific rules
  tslint lint --exclude='*.d.ts' src/...     # Exclude files
  tslint lint --fix src/...                  # Report fixable failures as fixed
  cat a.ts | tslint lint                     # Lint from stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, cfg, &flags, args)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.excludes, "exclude", "e", nil,
		"Gitignore style pattern for files to exclude (may be repeated).")
	cmd.Flags().StringVarP(&flags.format, "format", "t", "prose",
		fmt.Sprintf("Output format: %s.", strings.Join(formatNames(), ", ")))
	cmd.Flags().BoolVar(&flags.force, "force", false,
		"Exit with status 0 even when failures are reported.")
	cmd.Flags().StringVarP(&flags.rules, "rules", "r", "",
		"Comma-separated list of configured rules to run (default: all).")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "",
		"Write the report to this file instead of stdout.")
	cmd.Flags().BoolVar(&flags.fix, "fix", false,
		"Apply fixes and report only the failures left unfixed. Files are not rewritten.")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", runtime.NumCPU(),
		"Number of files linted concurrently.")

	return cmd
}

func formatNames() []string {
	names := append(lint.FormatterNames(), formatCodeFrame)
	slices.Sort(names)
	return names
}

func rulesSummary() string {
	var b strings.Builder
	for _, r := range rules.All() {
		fmt.Fprintf(&b, "  %-24s %s\n", r.Name, r.Summary())
	}
	return b.String()
}

func runLint(cmd *cobra.Command, cfg *cmdConfig, flags *lintFlags, args []string) error {
	log := cfg.logger()

	if flags.format != formatCodeFrame {
		if _, err := lint.LookupFormatter(flags.format); err != nil {
			return badInvocation(err)
		}
	}

	dir := "."
	if len(args) > 0 {
		dir = filepath.Dir(strings.TrimSuffix(args[0], "/..."))
	}
	conf, err := config.LoadFor(cfgFile, dir)
	if err != nil {
		return badInvocation(err)
	}
	if conf.Path != "" {
		log.WithField("config", conf.Path).Debug("loaded configuration")
	}
	configured, err := conf.Resolve(cfg.lookup, log)
	if err != nil {
		return badInvocation(fmt.Errorf("%s: %w", configPath(conf), err))
	}
	configured, err = selectRules(configured, flags.rules)
	if err != nil {
		return badInvocation(err)
	}

	l := &lint.Linter{
		Rules:       configured,
		Fix:         flags.fix,
		Logger:      log,
		Parallelism: flags.jobs,
	}
	if flags.format != formatCodeFrame {
		l.Formatter = flags.format
	}

	ctx := cmd.Context()
	sources := map[string][]byte{}
	if len(args) == 0 {
		src, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return badInvocation(fmt.Errorf("reading stdin: %w", err))
		}
		sources[stdinName] = src
		if err := l.Lint(ctx, stdinName, src); err != nil {
			return badInvocation(err)
		}
	} else {
		paths, err := expandArgs(args, conf.Excluder(), config.NewExcluder("", flags.excludes...))
		if err != nil {
			return badInvocation(err)
		}
		if err := l.LintFiles(ctx, paths); err != nil {
			return badInvocation(err)
		}
	}

	res, err := l.Result()
	if err != nil {
		return badInvocation(err)
	}

	out := cmd.OutOrStdout()
	if flags.out != "" {
		f, err := os.Create(flags.out)
		if err != nil {
			return badInvocation(err)
		}
		defer f.Close() //nolint:errcheck // closed after a checked write
		out = f
	}
	if flags.format == formatCodeFrame {
		var buf bytes.Buffer
		if err := renderFailures(&buf, res.Failures, sources); err != nil {
			return badInvocation(err)
		}
		res.Output = buf.String()
	}
	if _, err := io.WriteString(out, res.Output); err != nil {
		return badInvocation(err)
	}

	if res.ErrorCount > 0 && !flags.force {
		return &exitError{code: exitFailures}
	}
	return nil
}

func configPath(c *config.Config) string {
	if c.Path == "" {
		return "default configuration"
	}
	return c.Path
}

// selectRules keeps the configured rules named in a comma-separated list.
// An empty list keeps every rule.
func selectRules(configured []*lint.ConfiguredRule, list string) ([]*lint.ConfiguredRule, error) {
	if list == "" {
		return configured, nil
	}
	want := make(map[string]bool)
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			want[name] = true
		}
	}
	var out []*lint.ConfiguredRule
	for _, r := range configured {
		if want[r.Name()] {
			out = append(out, r)
			delete(want, r.Name())
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for name := range want {
			missing = append(missing, name)
		}
		slices.Sort(missing)
		return nil, fmt.Errorf("rules not enabled by the configuration: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(LintCommand())
}
