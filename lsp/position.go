// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/tslint/ast"
	"github.com/luthersystems/tslint/lint"
)

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// utf16Len returns the length of s in UTF-16 code units, the unit LSP
// characters are counted in. Invalid bytes count one each.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// column converts col, the byte column of offset off in text, to UTF-16
// code units.
func column(text string, off, col int) protocol.UInteger {
	off = min(max(off, 0), len(text))
	start := max(off-col, 0)
	return safeUint(utf16Len(text[start:off]))
}

// toProtocol converts a failure position in text. Both sides count lines
// from zero.
func toProtocol(text string, p lint.Position) protocol.Position {
	return protocol.Position{Line: safeUint(p.Line), Character: column(text, p.Pos, p.Character)}
}

// offsetToProtocol converts a byte offset in f.
func offsetToProtocol(f *ast.File, off int) protocol.Position {
	off = min(max(off, 0), len(f.Text))
	lc := f.LineAndCharacter(off)
	return protocol.Position{Line: safeUint(lc.Line), Character: column(f.Text, off, lc.Character)}
}

// lineToProtocol converts a 0-based line and byte column in text.
func lineToProtocol(text string, line, col int) protocol.Position {
	start := 0
	for i := 0; i < line; i++ {
		nl := strings.IndexByte(text[start:], '\n')
		if nl < 0 {
			break
		}
		start += nl + 1
	}
	return protocol.Position{Line: safeUint(line), Character: column(text, start+max(col, 0), max(col, 0))}
}

// rangeOf returns the range covered by a failure in text.
func rangeOf(text string, f lint.Failure) protocol.Range {
	return protocol.Range{Start: toProtocol(text, f.Start), End: toProtocol(text, f.End)}
}

// overlaps reports whether two ranges share a position. Touching ranges
// overlap so that a cursor at either end of a failure selects it.
func overlaps(a, b protocol.Range) bool {
	return !before(a.End, b.Start) && !before(b.End, a.Start)
}

func before(a, b protocol.Position) bool {
	return a.Line < b.Line || a.Line == b.Line && a.Character < b.Character
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
