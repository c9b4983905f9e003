// Package schema embeds the JSON Schemas for the todo and changelog documents.
package schema

import _ "embed"

// Todo is the JSON Schema for todo.json documents.
//
//go:embed todo.schema.json
var Todo string

// Changelog is the JSON Schema for changelog.json documents.
//
//go:embed changelog.schema.json
var Changelog string
