// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package schema generates JSON schemas for run files from their Go types.
// Property names come from yaml tags and descriptions from docdesc tags.
package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
)

// Draft is the JSON schema dialect of generated documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Property is one node of a JSON schema.
type Property struct {
	Type                 string               `json:"type,omitempty"`
	Description          string               `json:"description,omitempty"`
	Properties           map[string]*Property `json:"properties,omitempty"`
	Required             []string             `json:"required,omitempty"`
	Items                *Property            `json:"items,omitempty"`
	AdditionalProperties *bool                `json:"additionalProperties,omitempty"`
}

// Document is a complete JSON schema.
type Document struct {
	Schema string `json:"$schema"`
	Title  string `json:"title,omitempty"`
	Property
}

// Generator builds schemas from struct definitions.
type Generator struct{}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns the schema document for the type of def, which must be a
// struct or a pointer to one.
func (g *Generator) Generate(title, description string, def any) (*Document, error) {
	prop, err := g.structProperty(reflect.TypeOf(def))
	if err != nil {
		return nil, err
	}

	prop.Description = description

	return &Document{
		Schema:   Draft,
		Title:    title,
		Property: *prop,
	}, nil
}

// WriteJSONSchema writes the indented schema of def to w.
func (g *Generator) WriteJSONSchema(w io.Writer, title, description string, def any) error {
	doc, err := g.Generate(title, description, def)
	if err != nil {
		return err
	}

	bytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err //nolint:wrapcheck
	}

	bytes = append(bytes, '\n')
	_, err = w.Write(bytes)

	return err //nolint:wrapcheck
}

// structProperty extracts an object schema from a struct type using reflection.
func (g *Generator) structProperty(t reflect.Type) (*Property, error) {
	if t == nil {
		return nil, fmt.Errorf("expected struct type, got nil")
	}

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct type, got %s", t.Kind())
	}

	closed := false
	prop := &Property{
		Type:                 "object",
		Properties:           make(map[string]*Property),
		AdditionalProperties: &closed,
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		yamlTag := field.Tag.Get("yaml")
		if yamlTag == "-" {
			continue
		}

		name, opts, _ := strings.Cut(yamlTag, ",")
		if name == "" {
			name = strings.ToLower(field.Name)
		}

		fp, err := g.typeProperty(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		fp.Description = field.Tag.Get("docdesc")
		prop.Properties[name] = fp

		if !strings.Contains(opts, "omitempty") {
			prop.Required = append(prop.Required, name)
		}
	}

	sort.Strings(prop.Required)

	return prop, nil
}

// typeProperty converts a Go type to a schema property.
func (g *Generator) typeProperty(t reflect.Type) (*Property, error) {
	switch t.Kind() {
	case reflect.String:
		return &Property{Type: "string"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Property{Type: "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return &Property{Type: "number"}, nil
	case reflect.Bool:
		return &Property{Type: "boolean"}, nil
	case reflect.Slice, reflect.Array:
		items, err := g.typeProperty(t.Elem())
		if err != nil {
			return nil, err
		}

		return &Property{Type: "array", Items: items}, nil
	case reflect.Struct:
		return g.structProperty(t)
	case reflect.Map:
		return &Property{Type: "object"}, nil
	case reflect.Ptr:
		return g.typeProperty(t.Elem())
	default:
		return &Property{Type: "string"}, nil // Default fallback
	}
}
