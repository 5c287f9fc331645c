package schema

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// ErrSchemaMismatch is returned when a configuration document does not have
// the shape the context expects.
var ErrSchemaMismatch = errors.New("schema mismatch")

// Document is a configuration document for one experiment. The core never
// interprets field semantics; it only cares about the plain key/value view
// and the schema identity used for shape matching.
//
// Two concrete forms exist: SchemaDocument (fields declared up front, with
// descriptions and defaults) and DynamicDocument (fields are whatever keys
// were supplied at runtime).
type Document interface {
	// PlainMap returns a copy of the document as plain key/value data,
	// suitable for serialization.
	PlainMap() map[string]any

	// SchemaID identifies the document's shape. Two documents are
	// interchangeable iff their SchemaIDs are equal.
	SchemaID() string

	// Fields returns the field names in declaration order.
	Fields() []string

	// FieldComments maps field names to human-readable descriptions,
	// used as YAML comments. May be nil.
	FieldComments() map[string]string

	// Clone returns an independent copy of the document.
	Clone() Document
}

// MatchSchema verifies that doc has the same shape as want. It wraps
// ErrSchemaMismatch when the kinds or field sets differ.
func MatchSchema(doc, want Document) error {
	if doc == nil {
		return fmt.Errorf("%w: no document supplied", ErrSchemaMismatch)
	}
	if doc.SchemaID() != want.SchemaID() {
		return fmt.Errorf("%w: expected %s, got %s", ErrSchemaMismatch, want.SchemaID(), doc.SchemaID())
	}
	return nil
}

// fingerprint hashes the sorted field names so documents with the same
// field set share an identity regardless of declaration order.
func fingerprint(kind string, fields []string) string {
	sorted := make([]string, len(fields))
	copy(sorted, fields)
	sort.Strings(sorted)

	h := fnv.New64a()
	for _, f := range sorted {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%s:%016x", kind, h.Sum64())
}

// kindOf reduces a value to a coarse type label for consistency checks.
// All numeric types collapse to "number" so that JSON/YAML round trips
// (which decode integers as float64 or int) stay compatible.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "any"
	case bool:
		return "bool"
	case string:
		return "string"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// FieldSpec declares one field of a Schema.
type FieldSpec struct {
	Name        string // field name, must be unique within the schema
	Description string // optional, becomes a YAML comment
	Default     any    // default value; also anchors the field's type
}

// Schema is a declared field set for schema-typed documents.
type Schema struct {
	name   string
	fields []FieldSpec
	byName map[string]int
}

// NewSchema builds a schema from the given field specs.
func NewSchema(name string, fields ...FieldSpec) (*Schema, error) {
	if name == "" {
		return nil, errors.New("schema name must not be empty")
	}
	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return nil, errors.New("schema field name must not be empty")
		}
		if _, dup := byName[f.Name]; dup {
			return nil, fmt.Errorf("duplicate schema field '%s'", f.Name)
		}
		byName[f.Name] = i
	}
	return &Schema{name: name, fields: fields, byName: byName}, nil
}

// Name returns the schema's declared name.
func (s *Schema) Name() string { return s.name }

// FieldNames returns the field names in declaration order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Fingerprint returns the identity shared by every document of this schema.
func (s *Schema) Fingerprint() string {
	return fingerprint("typed", s.FieldNames())
}

// DefaultDocument builds a document carrying every field's default value.
func (s *Schema) DefaultDocument() *SchemaDocument {
	values := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		values[f.Name] = f.Default
	}
	return &SchemaDocument{schema: s, values: values}
}

// NewDocument builds a validated document from the supplied values.
// Missing fields fall back to their declared defaults; unknown fields and
// values whose coarse type contradicts the default are rejected.
func (s *Schema) NewDocument(values map[string]any) (*SchemaDocument, error) {
	for name := range values {
		if _, ok := s.byName[name]; !ok {
			return nil, fmt.Errorf("%w: unknown field '%s' for schema '%s'", ErrSchemaMismatch, name, s.name)
		}
	}
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		v, ok := values[f.Name]
		if !ok {
			out[f.Name] = f.Default
			continue
		}
		if want, got := kindOf(f.Default), kindOf(v); want != "any" && got != "any" && want != got {
			return nil, fmt.Errorf("%w: field '%s' expects %s, got %s", ErrSchemaMismatch, f.Name, want, got)
		}
		out[f.Name] = v
	}
	return &SchemaDocument{schema: s, values: out}, nil
}

// SchemaDocument is the schema-typed configuration document form.
type SchemaDocument struct {
	schema *Schema
	values map[string]any
}

// Schema returns the schema the document was validated against.
func (d *SchemaDocument) Schema() *Schema { return d.schema }

// Get returns the value of the named field.
func (d *SchemaDocument) Get(name string) (any, bool) {
	v, ok := d.values[name]
	return v, ok
}

func (d *SchemaDocument) PlainMap() map[string]any {
	out := make(map[string]any, len(d.values))
	for k, v := range d.values {
		out[k] = v
	}
	return out
}

func (d *SchemaDocument) SchemaID() string { return d.schema.Fingerprint() }

func (d *SchemaDocument) Fields() []string { return d.schema.FieldNames() }

func (d *SchemaDocument) FieldComments() map[string]string {
	comments := make(map[string]string)
	for _, f := range d.schema.fields {
		if f.Description != "" {
			comments[f.Name] = f.Description
		}
	}
	if len(comments) == 0 {
		return nil
	}
	return comments
}

func (d *SchemaDocument) Clone() Document {
	return &SchemaDocument{schema: d.schema, values: d.PlainMap()}
}

// DynamicDocument is a configuration document whose fields are whatever
// keys were supplied at runtime. Field order is the sorted key order so the
// identity and serialization stay deterministic.
type DynamicDocument struct {
	fields []string
	values map[string]any
}

// NewDynamicDocument builds a dynamic document from arbitrary key/value
// pairs.
func NewDynamicDocument(values map[string]any) *DynamicDocument {
	fields := make([]string, 0, len(values))
	vals := make(map[string]any, len(values))
	for k, v := range values {
		fields = append(fields, k)
		vals[k] = v
	}
	sort.Strings(fields)
	return &DynamicDocument{fields: fields, values: vals}
}

// Get returns the value of the named field.
func (d *DynamicDocument) Get(name string) (any, bool) {
	v, ok := d.values[name]
	return v, ok
}

func (d *DynamicDocument) PlainMap() map[string]any {
	out := make(map[string]any, len(d.values))
	for k, v := range d.values {
		out[k] = v
	}
	return out
}

func (d *DynamicDocument) SchemaID() string { return fingerprint("dynamic", d.fields) }

func (d *DynamicDocument) Fields() []string {
	out := make([]string, len(d.fields))
	copy(out, d.fields)
	return out
}

func (d *DynamicDocument) FieldComments() map[string]string { return nil }

func (d *DynamicDocument) Clone() Document {
	return NewDynamicDocument(d.values)
}

// String renders the document for debugging.
func (d *DynamicDocument) String() string {
	parts := make([]string, 0, len(d.fields))
	for _, f := range d.fields {
		parts = append(parts, fmt.Sprintf("%s=%v", f, d.values[f]))
	}
	return "DynamicDocument(" + strings.Join(parts, ", ") + ")"
}
