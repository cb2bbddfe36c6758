// Copyright © 2024 The ELPS authors

// Package config loads tslint configuration files.
//
// A configuration file is JSON or YAML:
//
//	{
//	  "defaultSeverity": "error",
//	  "rules": {
//	    "comment-format": [true, "check-space"],
//	    "no-trailing-whitespace": {"severity": "warning"},
//	    "no-utf-assert": false
//	  },
//	  "linterOptions": {"exclude": ["build/**"]}
//	}
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/luthersystems/tslint/lint"
)

// FileNames are the configuration file names searched by Find, in order.
var FileNames = []string{"tslint.json", "tslint.yaml", "tslint.yml", ".tslintrc"}

// ErrNotFound is returned by Find when no configuration file exists.
var ErrNotFound = errors.New("no tslint configuration found")

// DefaultFile is the configuration written by "tslint init" and used when
// no file is found.
const DefaultFile = `{
  "defaultSeverity": "error",
  "rules": {
    "comment-format": [true, "check-space"],
    "completed-docs": false,
    "no-trailing-whitespace": true,
    "no-utf-assert": false,
    "object-literal-padding": [true, "padding"]
  },
  "linterOptions": {
    "exclude": ["node_modules/"]
  }
}
`

// Lookup finds a rule by name.
type Lookup func(name string) (*lint.Rule, bool)

// RuleConfig is the configuration of one rule.
type RuleConfig struct {
	Enabled bool
	// Severity is unset when the file does not name one.
	Severity lint.Severity
	Args     []any
}

// Config is a loaded configuration file.
type Config struct {
	// Path is the file the configuration was read from. It is empty for
	// the default configuration.
	Path string

	DefaultSeverity lint.Severity
	Rules           map[string]RuleConfig
	Exclude         []string
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader([]byte(DefaultFile))); err != nil {
		panic(err)
	}
	c, err := decode(v)
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads the configuration file at path. Files without a recognized
// extension are read as YAML, which also accepts JSON.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	switch filepath.Ext(path) {
	case ".json", ".yaml", ".yml":
	default:
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c, err := decode(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Find returns the nearest configuration file in dir or its parents.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range FileNames {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// LoadFor returns the configuration for files in dir: the file at path when
// path is set, else the nearest file found from dir, else the default.
func LoadFor(path, dir string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	found, err := Find(dir)
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return Load(found)
}

func decode(v *viper.Viper) (*Config, error) {
	c := &Config{Rules: map[string]RuleConfig{}}
	var err error
	if c.DefaultSeverity, err = lint.ParseSeverity(v.GetString("defaultSeverity")); err != nil {
		return nil, fmt.Errorf("defaultSeverity: %w", err)
	}
	c.Exclude = v.GetStringSlice("linterOptions.exclude")
	rules := v.GetStringMap("rules")
	for name, raw := range rules {
		rc, err := decodeRule(raw)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", name, err)
		}
		c.Rules[name] = rc
	}
	return c, nil
}

func decodeRule(raw any) (RuleConfig, error) {
	switch v := raw.(type) {
	case bool:
		return RuleConfig{Enabled: v}, nil
	case []any:
		if len(v) == 0 {
			return RuleConfig{}, errors.New("empty rule configuration")
		}
		enabled, ok := v[0].(bool)
		if !ok {
			return RuleConfig{Enabled: true, Args: v}, nil
		}
		return RuleConfig{Enabled: enabled, Args: v[1:]}, nil
	case map[string]any:
		rc := RuleConfig{Enabled: true}
		if s, ok := v["severity"]; ok {
			str, ok := s.(string)
			if !ok {
				return RuleConfig{}, fmt.Errorf("severity: expected a string, got %T", s)
			}
			sev, err := lint.ParseSeverity(str)
			if err != nil {
				return RuleConfig{}, err
			}
			rc.Severity = sev
			rc.Enabled = sev != lint.SeverityOff
		}
		switch opts := v["options"].(type) {
		case nil:
		case []any:
			rc.Args = opts
		default:
			rc.Args = []any{opts}
		}
		return rc, nil
	}
	return RuleConfig{}, fmt.Errorf("unexpected value %v", raw)
}

// Resolve configures every enabled rule. Rules that lookup does not know
// are logged and skipped. Invalid rule arguments are an error.
func (c *Config) Resolve(lookup Lookup, log *logrus.Logger) ([]*lint.ConfiguredRule, error) {
	names := make([]string, 0, len(c.Rules))
	for name := range c.Rules {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []*lint.ConfiguredRule
	for _, name := range names {
		rc := c.Rules[name]
		if !rc.Enabled {
			continue
		}
		rule, ok := lookup(name)
		if !ok {
			if log != nil {
				log.WithField("rule", name).Warn("unknown rule in configuration")
			}
			continue
		}
		sev := rc.Severity
		if sev == 0 {
			sev = c.DefaultSeverity
		}
		cr, err := rule.Configure(rc.Args, sev)
		if err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, nil
}

// Excluder matches paths against gitignore style patterns.
type Excluder struct {
	base    string
	ignores *ignore.GitIgnore
}

// NewExcluder compiles patterns. Paths are matched relative to base; an
// empty base matches paths as given.
func NewExcluder(base string, patterns ...string) *Excluder {
	if len(patterns) == 0 {
		return &Excluder{}
	}
	return &Excluder{base: base, ignores: ignore.CompileIgnoreLines(patterns...)}
}

// Excluder returns the matcher for the configuration's exclude patterns,
// relative to the directory holding the configuration file.
func (c *Config) Excluder() *Excluder {
	base := ""
	if c.Path != "" {
		base = filepath.Dir(c.Path)
	}
	return NewExcluder(base, c.Exclude...)
}

// Excludes reports whether path matches a pattern. A trailing slash marks
// path as a directory.
func (e *Excluder) Excludes(path string) bool {
	if e == nil || e.ignores == nil {
		return false
	}
	if e.base != "" {
		abs, err := filepath.Abs(path)
		if err == nil {
			base, _ := filepath.Abs(e.base)
			if rel, err := filepath.Rel(base, abs); err == nil {
				if strings.HasSuffix(path, "/") {
					rel += "/"
				}
				path = rel
			}
		}
	}
	return e.ignores.MatchesPath(filepath.ToSlash(path))
}
