// Copyright © 2024 The ELPS authors

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/tslint/lint"
	"github.com/luthersystems/tslint/rules"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "tslint.json"), `{
  "defaultSeverity": "warning",
  "rules": {
    "comment-format": [true, "check-space", "check-lowercase"],
    "no-utf-assert": false,
    "no-trailing-whitespace": {"severity": "error", "options": ["ignore-comments"]},
    "object-literal-padding": {"options": "padding"}
  },
  "linterOptions": {"exclude": ["gen/**"]}
}`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, c.Path)
	assert.Equal(t, lint.SeverityWarning, c.DefaultSeverity)
	assert.Equal(t, []string{"gen/**"}, c.Exclude)

	assert.Equal(t, RuleConfig{Enabled: true, Args: []any{"check-space", "check-lowercase"}}, c.Rules["comment-format"])
	assert.False(t, c.Rules["no-utf-assert"].Enabled)
	assert.Equal(t, RuleConfig{Enabled: true, Severity: lint.SeverityError, Args: []any{"ignore-comments"}}, c.Rules["no-trailing-whitespace"])
	assert.Equal(t, []any{"padding"}, c.Rules["object-literal-padding"].Args)
}

func TestLoad_YAMLAndRC(t *testing.T) {
	dir := t.TempDir()
	yml := writeFile(t, filepath.Join(dir, "tslint.yaml"), "rules:\n  no-trailing-whitespace: true\n  comment-format:\n    severity: off\n")
	c, err := Load(yml)
	require.NoError(t, err)
	assert.True(t, c.Rules["no-trailing-whitespace"].Enabled)
	assert.False(t, c.Rules["comment-format"].Enabled)

	rc := writeFile(t, filepath.Join(dir, ".tslintrc"), `{"rules": {"no-utf-assert": true}}`)
	c, err = Load(rc)
	require.NoError(t, err)
	assert.True(t, c.Rules["no-utf-assert"].Enabled)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := writeFile(t, filepath.Join(dir, "tslint.json"), `{"rules": {"x": "yes"}}`)
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule x")

	sev := writeFile(t, filepath.Join(dir, "sev", "tslint.json"), `{"defaultSeverity": "loud"}`)
	_, err = Load(sev)
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, filepath.Join(root, "tslint.json"), `{}`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := Find(nested)
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(path)
	got, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, want, got)

	c, err := LoadFor("", nested)
	require.NoError(t, err)
	assert.Equal(t, found, c.Path)
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Empty(t, c.Path)
	assert.Equal(t, lint.SeverityError, c.DefaultSeverity)
	configured, err := c.Resolve(rules.Lookup, nil)
	require.NoError(t, err)
	var names []string
	for _, cr := range configured {
		names = append(names, cr.Name())
		assert.Equal(t, lint.SeverityError, cr.Severity)
	}
	assert.Equal(t, []string{"comment-format", "no-trailing-whitespace", "object-literal-padding"}, names)
	assert.True(t, c.Excluder().Excludes("node_modules/pkg/index.ts"))
}

func TestResolve(t *testing.T) {
	c := &Config{
		DefaultSeverity: lint.SeverityWarning,
		Rules: map[string]RuleConfig{
			"no-such-rule":           {Enabled: true},
			"no-trailing-whitespace": {Enabled: true},
			"no-utf-assert":          {Enabled: true, Severity: lint.SeverityError},
		},
	}
	logger, hook := logtest.NewNullLogger()
	configured, err := c.Resolve(rules.Lookup, logger)
	require.NoError(t, err)
	require.Len(t, configured, 2)
	assert.Equal(t, lint.SeverityWarning, configured[0].Severity)
	assert.Equal(t, lint.SeverityError, configured[1].Severity)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "no-such-rule", hook.LastEntry().Data["rule"])
}

func TestResolve_BadArguments(t *testing.T) {
	c := &Config{Rules: map[string]RuleConfig{
		"object-literal-padding": {Enabled: true, Args: []any{"sideways"}},
	}}
	_, err := c.Resolve(rules.Lookup, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule object-literal-padding")
}

func TestExcluder(t *testing.T) {
	e := NewExcluder("", "build/", "*.d.ts", "!keep.d.ts")
	assert.True(t, e.Excludes("build/out.ts"))
	assert.True(t, e.Excludes("src/types.d.ts"))
	assert.False(t, e.Excludes("src/keep.d.ts"))
	assert.False(t, e.Excludes("src/main.ts"))

	var none *Excluder
	assert.False(t, none.Excludes("x.ts"))
	assert.False(t, NewExcluder("").Excludes("x.ts"))
}

func TestLoadFor_Explicit(t *testing.T) {
	_, err := LoadFor(filepath.Join(t.TempDir(), "nope.json"), ".")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
