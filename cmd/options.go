// Copyright © 2024 The ELPS authors

package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/luthersystems/tslint/lint"
	"github.com/luthersystems/tslint/rules"
)

// Option configures an exported command factory (LintCommand, LSPCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	extra []*lint.Rule
	log   *logrus.Logger
}

// WithRules makes additional rules available to configuration files. An
// added rule shadows a built-in rule of the same name.
func WithRules(rs ...*lint.Rule) Option {
	return func(c *cmdConfig) { c.extra = append(c.extra, rs...) }
}

// WithLogger replaces the logger built from the --verbose flag.
func WithLogger(log *logrus.Logger) Option {
	return func(c *cmdConfig) { c.log = log }
}

func newCmdConfig(opts []Option) *cmdConfig {
	var cfg cmdConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &cfg
}

// lookup resolves a configured rule name against the added rules, then
// the built-in ones.
func (c *cmdConfig) lookup(name string) (*lint.Rule, bool) {
	for _, r := range c.extra {
		if r.Name == name {
			return r, true
		}
	}
	return rules.Lookup(name)
}

func (c *cmdConfig) logger() *logrus.Logger {
	if c.log != nil {
		return c.log
	}
	return newLogger()
}
