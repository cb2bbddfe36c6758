// Copyright © 2024 The ELPS authors

package completeddocs

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// DocType is a category of declaration that may require documentation.
type DocType string

const (
	DocClasses    DocType = "classes"
	DocEnums      DocType = "enums"
	DocFunctions  DocType = "functions"
	DocInterfaces DocType = "interfaces"
	DocMethods    DocType = "methods"
	DocNamespaces DocType = "namespaces"
	DocProperties DocType = "properties"
	DocTypes      DocType = "types"
	DocVariables  DocType = "variables"
)

// AllDocTypes lists every known doc type.
var AllDocTypes = []DocType{
	DocClasses, DocEnums, DocFunctions, DocInterfaces, DocMethods,
	DocNamespaces, DocProperties, DocTypes, DocVariables,
}

// Selector values shared by locations, privacies and visibilities.
const (
	All       = "all"
	Instance  = "instance"
	Static    = "static"
	Public    = "public"
	Protected = "protected"
	Private   = "private"
	Exported  = "exported"
	Internal  = "internal"
)

// Argument is one configured rule argument: a Category or Descriptors.
type Argument interface {
	docTypes() []DocType
	descriptor(DocType) Descriptor
}

// Category requires documentation for every declaration of a doc type.
type Category struct {
	DocType DocType
}

func (c Category) docTypes() []DocType          { return []DocType{c.DocType} }
func (c Category) descriptor(DocType) Descriptor { return Descriptor{} }

// Descriptors configure the documentation requirement per doc type.
type Descriptors map[DocType]Descriptor

func (d Descriptors) docTypes() []DocType {
	out := make([]DocType, 0, len(d))
	for t := range d {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (d Descriptors) descriptor(t DocType) Descriptor { return d[t] }

// Descriptor narrows which declarations of a doc type must be documented.
// Empty selector lists mean all.
type Descriptor struct {
	// Locations applies to methods and properties: all, instance or static.
	Locations []string
	// Privacies applies to methods and properties: all, public, protected
	// or private.
	Privacies []string
	// Visibilities applies to other doc types: all, exported or internal.
	Visibilities []string

	Tags *TagDescriptor
}

// TagDescriptor exempts declarations by JSDoc tag.
type TagDescriptor struct {
	// Existence lists tags whose presence exempts a declaration.
	Existence []string
	// Content maps a tag name to a pattern its text must match to exempt
	// a declaration.
	Content map[string]*regexp.Regexp
}

// ParseArguments converts raw configuration values into arguments. Strings
// become categories and objects become descriptors; anything else is an
// error.
func ParseArguments(args []any) ([]Argument, error) {
	out := make([]Argument, 0, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			out = append(out, Category{DocType: DocType(v)})
		case map[string]any:
			d, err := parseDescriptors(v)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			out = append(out, d)
		default:
			return nil, fmt.Errorf("argument %d: expected a doc type or an object, got %T", i, arg)
		}
	}
	return out, nil
}

func parseDescriptors(m map[string]any) (Descriptors, error) {
	out := make(Descriptors, len(m))
	for name, raw := range m {
		var d Descriptor
		switch v := raw.(type) {
		case bool:
			if !v {
				continue
			}
		case map[string]any:
			var err error
			d, err = parseDescriptor(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
		default:
			return nil, fmt.Errorf("%s: expected an object, got %T", name, raw)
		}
		out[DocType(name)] = d
	}
	return out, nil
}

func parseDescriptor(m map[string]any) (Descriptor, error) {
	var d Descriptor
	var err error
	for key, raw := range m {
		switch key {
		case "locations":
			d.Locations, err = selectors(raw, All, Instance, Static)
		case "privacies":
			d.Privacies, err = selectors(raw, All, Public, Protected, Private)
		case "visibilities":
			d.Visibilities, err = selectors(raw, All, Exported, Internal)
		case "tags":
			d.Tags, err = parseTags(raw)
		default:
			err = errors.New("unknown key")
		}
		if err != nil {
			return Descriptor{}, fmt.Errorf("%s: %w", key, err)
		}
	}
	return d, nil
}

func selectors(raw any, allowed ...string) ([]string, error) {
	values, err := stringList(raw)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		values[i] = strings.ToLower(v)
		if !slices.Contains(allowed, values[i]) {
			return nil, fmt.Errorf("invalid value %q", v)
		}
	}
	return values, nil
}

func stringList(raw any) ([]string, error) {
	switch v := raw.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return slices.Clone(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			s, ok := x.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string, got %T", x)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a list of strings, got %T", raw)
}

func parseTags(raw any) (*TagDescriptor, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %T", raw)
	}
	tags := &TagDescriptor{Content: map[string]*regexp.Regexp{}}
	if v, ok := m["existence"]; ok {
		names, err := stringList(v)
		if err != nil {
			return nil, fmt.Errorf("existence: %w", err)
		}
		tags.Existence = names
	}
	if v, ok := m["content"]; ok {
		content, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("content: expected an object, got %T", v)
		}
		for name, pattern := range content {
			s, ok := pattern.(string)
			if !ok {
				return nil, fmt.Errorf("content: %s: expected a pattern, got %T", name, pattern)
			}
			re, err := regexp.Compile(s)
			if err != nil {
				return nil, fmt.Errorf("content: %s: %w", name, err)
			}
			tags.Content[name] = re
		}
	}
	return tags, nil
}
