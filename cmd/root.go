// Copyright © 2018 The ELPS authors

package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	colorFlag string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tslint",
	Short: "tslint is a rule engine for TypeScript lint",
	Long: `tslint runs configurable lint rules over TypeScript and JavaScript
sources and reports failures, optionally with automatic fixes.

Getting started:
  tslint init                  Write a default tslint.json
  tslint lint src/...          Lint every source file under src
  tslint lint --fix a.ts       Report which failures have fixes applied
  tslint rules                 List the built-in rules
  tslint lsp                   Serve diagnostics to an editor

Configuration:
  The nearest tslint.json, tslint.yaml or .tslintrc above the linted files
  configures the rules. Each rule maps to true, false, an array whose first
  element enables the rule and whose rest are its options, or an object with
  "severity" and "options" keys. Without a file the defaults of
  "tslint init" apply.

Suppressing failures:
  // tslint:disable-next-line:rule-name
  // tslint:disable-line
  /* tslint:disable */ ... /* tslint:enable */`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	os.Exit(exitCode(os.Stderr, rootCmd.Execute()))
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"configuration file (default is the nearest tslint.json)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log debug output, including per-file timing.")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads settings from TSLINT_* environment variables. Flags
// given on the command line take precedence.
func initConfig() {
	viper.SetEnvPrefix("tslint")
	viper.AutomaticEnv() // read in environment variables that match

	if cfgFile == "" {
		cfgFile = viper.GetString("config")
	}
	colorFlag = viper.GetString("color")
	verbose = viper.GetBool("verbose")
}

// newLogger returns the logger shared by the commands of one invocation.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
