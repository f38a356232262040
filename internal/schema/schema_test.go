// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package schema

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	Key   string   `yaml:"key" docdesc:"Item key"`
	Tags  []string `yaml:"tags,omitempty"`
	Count *int     `yaml:"count,omitempty"`
}

type testDefinition struct {
	Name    string     `yaml:"name" docdesc:"Name of the thing"`
	Ratio   float64    `yaml:"ratio,omitempty"`
	Enabled bool       `yaml:"enabled,omitempty"`
	Nested  *testItem  `yaml:"nested,omitempty"`
	Items   []testItem `yaml:"items,omitempty" docdesc:"All items"`
	Skipped string     `yaml:"-"`
	NoTag   string
	private string //nolint:unused
}

func TestGenerate(t *testing.T) {
	doc, err := NewGenerator().Generate("Test", "A test schema", testDefinition{})
	require.NoError(t, err)

	assert.Equal(t, Draft, doc.Schema)
	assert.Equal(t, "Test", doc.Title)
	assert.Equal(t, "object", doc.Type)
	assert.Equal(t, "A test schema", doc.Description)
	assert.Equal(t, []string{"name", "notag"}, doc.Required)
	require.NotNil(t, doc.AdditionalProperties)
	assert.False(t, *doc.AdditionalProperties)

	assert.Len(t, doc.Properties, 6)
	assert.NotContains(t, doc.Properties, "skipped")
	assert.NotContains(t, doc.Properties, "private")

	assert.Equal(t, &Property{Type: "string", Description: "Name of the thing"}, doc.Properties["name"])
	assert.Equal(t, "number", doc.Properties["ratio"].Type)
	assert.Equal(t, "boolean", doc.Properties["enabled"].Type)

	nested := doc.Properties["nested"]
	assert.Equal(t, "object", nested.Type)
	assert.Equal(t, []string{"key"}, nested.Required)
	assert.Equal(t, "integer", nested.Properties["count"].Type)

	items := doc.Properties["items"]
	assert.Equal(t, "array", items.Type)
	assert.Equal(t, "All items", items.Description)
	require.NotNil(t, items.Items)
	assert.Equal(t, "Item key", items.Items.Properties["key"].Description)
	assert.Equal(t, &Property{Type: "array", Items: &Property{Type: "string"}}, items.Items.Properties["tags"])
}

func TestGenerate_NotAStruct(t *testing.T) {
	_, err := NewGenerator().Generate("Test", "", "a string")
	require.Error(t, err)

	_, err = NewGenerator().Generate("Test", "", nil)
	require.Error(t, err)
}

func TestWriteJSONSchema_ValidJSON(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewGenerator().WriteJSONSchema(&buf, "Test", "A test schema", &testDefinition{}))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, Draft, doc["$schema"])
	assert.Equal(t, "object", doc["type"])
	assert.Contains(t, doc, "properties")
}
