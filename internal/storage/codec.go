package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// IsJSON reports whether the path has a JSON extension.
func IsJSON(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".json"
}

// IsYAML reports whether the path has a YAML extension.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// SaveOptions carries serialization settings for Save.
type SaveOptions struct {
	// Comments maps field names to head comments. Only honored by the
	// YAML codec; JSON has no comment syntax.
	Comments map[string]string

	// FieldOrder fixes the key order for map data in YAML output. Keys
	// not listed are appended in sorted order.
	FieldOrder []string

	// Indent is the indent width. For YAML a width below one falls back
	// to two spaces.
	Indent int

	// FilePermission is applied to the written file; 0 leaves the OS
	// default.
	FilePermission uint32

	// DirPermission is applied to created parent directories; 0 leaves
	// the OS default.
	DirPermission uint32
}

// Save serializes data to path in the format selected by the extension,
// creating parent directories as needed.
func Save(path string, data any, opts SaveOptions) error {
	b, err := marshal(path, data, opts)
	if err != nil {
		return err
	}
	return writeFile(path, b, opts.FilePermission, opts.DirPermission)
}

func marshal(path string, data any, opts SaveOptions) ([]byte, error) {
	switch {
	case IsJSON(path):
		return marshalJSON(data, opts.Indent)
	case IsYAML(path):
		if m, ok := data.(map[string]any); ok {
			return MarshalYAML(m, opts.FieldOrder, opts.Comments, opts.Indent)
		}
		return marshalYAMLValue(data, opts.Indent)
	default:
		return nil, fmt.Errorf("%w: '%s' (only .json, .yaml and .yml are supported)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func marshalJSON(data any, indent int) ([]byte, error) {
	if m, ok := data.(map[string]any); ok {
		data = sanitizeValue(m)
	}
	b, err := json.MarshalIndent(data, "", strings.Repeat(" ", indent))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return append(b, '\n'), nil
}

func marshalYAMLValue(data any, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent(indent))
	if err := enc.Encode(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return buf.Bytes(), nil
}

// MarshalYAML renders map data as YAML with a fixed key order and optional
// per-field head comments.
func MarshalYAML(data map[string]any, order []string, comments map[string]string, indent int) ([]byte, error) {
	node, err := mapToNode(data, order, comments)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent(indent))
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return buf.Bytes(), nil
}

func yamlIndent(indent int) int {
	if indent < 1 {
		return 2
	}
	return indent
}

func mapToNode(data map[string]any, order []string, comments map[string]string) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range keyOrder(data, order) {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
		if c := comments[key]; c != "" {
			keyNode.HeadComment = c
		}
		valNode := &yaml.Node{}
		if err := valNode.Encode(sanitizeValue(data[key])); err != nil {
			return nil, fmt.Errorf("%w: field '%s': %v", ErrSerialization, key, err)
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}

// keyOrder returns the declared order first, then any remaining keys
// sorted, skipping declared keys absent from the data.
func keyOrder(data map[string]any, order []string) []string {
	out := make([]string, 0, len(data))
	used := make(map[string]bool, len(data))
	for _, key := range order {
		if _, ok := data[key]; ok && !used[key] {
			out = append(out, key)
			used[key] = true
		}
	}
	rest := make([]string, 0, len(data))
	for key := range data {
		if !used[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// sanitizeValue makes a value serializable, substituting a string
// representation for anything the codecs cannot handle natively.
func sanitizeValue(v any) any {
	switch val := v.(type) {
	case nil, bool, string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64, time.Time:
		return v
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = sanitizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item)
		}
		return out
	case []string:
		return val
	default:
		if _, err := json.Marshal(v); err != nil {
			return fmt.Sprintf("%v", v)
		}
		return v
	}
}

// Load reads and parses a JSON or YAML file into plain map data. A
// syntactically empty file yields an empty map.
func Load(path string, encoding string) (map[string]any, error) {
	data := map[string]any{}
	if err := LoadInto(path, encoding, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// LoadInto reads and parses a JSON or YAML file into out. A syntactically
// empty file leaves out untouched.
func LoadInto(path string, encoding string, out any) error {
	if !IsJSON(path) && !IsYAML(path) {
		return fmt.Errorf("%w: '%s' (only .json, .yaml and .yml are supported)", ErrUnsupportedFormat, filepath.Ext(path))
	}
	b, err := readFile(path)
	if err != nil {
		return err
	}
	if err := checkEncoding(b, encoding, path); err != nil {
		return err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if IsJSON(path) {
		if err := json.Unmarshal(b, out); err != nil {
			return fmt.Errorf("%w: error parsing JSON file %s: %v", ErrParse, path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: error parsing YAML file %s: %v", ErrParse, path, err)
	}
	return nil
}

// checkEncoding validates the file bytes against the configured encoding.
// Only UTF-8 is supported; any other encoding name is rejected outright.
func checkEncoding(b []byte, encoding string, path string) error {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		if !utf8.Valid(b) {
			return fmt.Errorf("%w: file %s is not encoded in UTF-8", ErrEncoding, path)
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported encoding '%s' (only UTF-8 is supported)", ErrEncoding, encoding)
	}
}
