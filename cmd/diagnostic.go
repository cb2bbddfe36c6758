// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"
	"os"

	"github.com/luthersystems/tslint/diagnostic"
	"github.com/luthersystems/tslint/lint"
)

// formatCodeFrame names the output format that shows each failure under
// the source line it points at.
const formatCodeFrame = "codeFrame"

func newRenderer(sources map[string][]byte) *diagnostic.Renderer {
	return &diagnostic.Renderer{
		Color: diagnostic.ParseColorMode(colorFlag),
		SourceReader: func(name string) ([]byte, error) {
			if src, ok := sources[name]; ok {
				return src, nil
			}
			return os.ReadFile(name) //nolint:gosec // CLI tool reads user-specified files
		},
	}
}

// renderFailures writes failures as annotated source snippets. sources
// supplies file content that is not on disk, such as stdin.
func renderFailures(w io.Writer, failures []lint.Failure, sources map[string][]byte) error {
	return newRenderer(sources).RenderAll(w, diagnostic.FromFailures(failures))
}
