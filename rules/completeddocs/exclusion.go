// Copyright © 2024 The ELPS authors

package completeddocs

import (
	"slices"

	"github.com/luthersystems/tslint/ast"
	"github.com/luthersystems/tslint/astutil"
)

// Exclusion exempts declarations from the documentation requirement.
type Exclusion interface {
	Excludes(n ast.Node) bool
}

// ClassExclusion matches class members by location and privacy. A member
// must be documented only when both its location and its privacy are
// selected.
type ClassExclusion struct {
	Locations []string
	Privacies []string
}

// NewClassExclusion returns the class member matcher for d.
func NewClassExclusion(d Descriptor) *ClassExclusion {
	return &ClassExclusion{Locations: d.Locations, Privacies: d.Privacies}
}

func (e *ClassExclusion) Excludes(n ast.Node) bool {
	return !(e.locationDocumented(n) && e.privacyDocumented(n))
}

func (e *ClassExclusion) locationDocumented(n ast.Node) bool {
	return selects(e.Locations, Location(n))
}

func (e *ClassExclusion) privacyDocumented(n ast.Node) bool {
	return selects(e.Privacies, Privacy(n))
}

// Location returns static for members with the static modifier and
// instance otherwise.
func Location(n ast.Node) string {
	if astutil.HasModifier(n, ast.KindStatic) {
		return Static
	}
	return Instance
}

// Privacy returns the member's accessibility. Members without an
// accessibility modifier are public, except #private names.
func Privacy(n ast.Node) string {
	switch {
	case astutil.HasModifier(n, ast.KindPrivate):
		return Private
	case astutil.HasModifier(n, ast.KindProtected):
		return Protected
	}
	if name, ok := astutil.Name(n); ok && name.Kind() == "private_property_identifier" {
		return Private
	}
	return Public
}

// BlockExclusion matches other declarations by visibility.
type BlockExclusion struct {
	Visibilities []string
}

// NewBlockExclusion returns the declaration matcher for d.
func NewBlockExclusion(d Descriptor) *BlockExclusion {
	return &BlockExclusion{Visibilities: d.Visibilities}
}

func (e *BlockExclusion) Excludes(n ast.Node) bool {
	return !selects(e.Visibilities, Visibility(n))
}

// Visibility returns exported for exported declarations and internal
// otherwise.
func Visibility(n ast.Node) string {
	if astutil.HasModifier(n, ast.KindExport) {
		return Exported
	}
	return Internal
}

// TagExclusion matches declarations by the tags of their doc comment.
type TagExclusion struct {
	Tags *TagDescriptor
}

// NewTagExclusion returns the tag matcher for d, or nil when d configures
// no tags.
func NewTagExclusion(d Descriptor) *TagExclusion {
	if d.Tags == nil {
		return nil
	}
	return &TagExclusion{Tags: d.Tags}
}

func (e *TagExclusion) Excludes(n ast.Node) bool {
	doc, ok := astutil.DocComment(n)
	if !ok {
		return false
	}
	for _, tag := range doc.Tags {
		if slices.Contains(e.Tags.Existence, tag.Name) {
			return true
		}
		if re, ok := e.Tags.Content[tag.Name]; ok && re.MatchString(tag.Text) {
			return true
		}
	}
	return false
}

func selects(set []string, class string) bool {
	return len(set) == 0 || slices.Contains(set, All) || slices.Contains(set, class)
}

// Exclusions holds the matchers configured for each doc type. Doc types
// absent from the map are not checked.
type Exclusions map[DocType][]Exclusion

// NewExclusions builds the matchers for args. A later argument replaces
// the matchers an earlier one configured for the same doc type. Without
// arguments every doc type is checked with no exclusions.
func NewExclusions(args []Argument) Exclusions {
	ex := make(Exclusions)
	if len(args) == 0 {
		for _, t := range AllDocTypes {
			ex[t] = exclusionsFor(t, Descriptor{})
		}
		return ex
	}
	for _, arg := range args {
		for _, t := range arg.docTypes() {
			ex[t] = exclusionsFor(t, arg.descriptor(t))
		}
	}
	return ex
}

func exclusionsFor(t DocType, d Descriptor) []Exclusion {
	var out []Exclusion
	if t == DocMethods || t == DocProperties {
		out = append(out, NewClassExclusion(d))
	} else {
		out = append(out, NewBlockExclusion(d))
	}
	if tags := NewTagExclusion(d); tags != nil {
		out = append(out, tags)
	}
	return out
}

// Checks reports whether declarations of doc type t are checked.
func (ex Exclusions) Checks(t DocType) bool {
	_, ok := ex[t]
	return ok
}

// Excludes reports whether any matcher configured for t exempts n.
func (ex Exclusions) Excludes(t DocType, n ast.Node) bool {
	for _, e := range ex[t] {
		if e.Excludes(n) {
			return true
		}
	}
	return false
}
