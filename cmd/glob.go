// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/luthersystems/tslint/config"
)

var sourceExts = map[string]bool{
	".ts":  true,
	".tsx": true,
	".js":  true,
	".jsx": true,
}

type excluders []*config.Excluder

func (exs excluders) excludes(path string) bool {
	return slices.ContainsFunc(exs, func(ex *config.Excluder) bool {
		return ex.Excludes(path)
	})
}

// expandArgs expands arguments, resolving patterns ending with "/..." to all
// source files found recursively under the given directory and shell style
// globs to their matches. Other arguments pass through unchanged. Paths
// matched by an excluder are dropped and every path appears once.
func expandArgs(args []string, exs ...*config.Excluder) ([]string, error) {
	ex := excluders(exs)
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = filepath.Clean(p)
		if seen[p] || ex.excludes(p) {
			return
		}
		seen[p] = true
		out = append(out, p)
	}
	for _, arg := range args {
		switch dir, ok := strings.CutSuffix(arg, "/..."); {
		case ok:
			if dir == "" {
				dir = "."
			}
			files, err := findSourceFiles(dir, ex)
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			for _, f := range files {
				add(f)
			}
		case strings.ContainsAny(arg, "*?["):
			matches, err := filepath.Glob(arg)
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			for _, m := range matches {
				add(m)
			}
		default:
			add(arg)
		}
	}
	return out, nil
}

func findSourceFiles(root string, ex excluders) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && ex.excludes(path+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if sourceExts[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
