package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// invalidNameChars are characters that are unsafe in file and directory
// names across platforms: path separators, glob/wildcard characters,
// quotes and whitespace.
const invalidNameChars = `\/:*?"<>| `

// ErrInvalidName is returned when a name contains path-unsafe characters.
var ErrInvalidName = errors.New("invalid name")

// ValidateSafeName checks that name is safe to use as a file or directory
// name and returns it unchanged. It wraps ErrInvalidName otherwise.
func ValidateSafeName(name string) (string, error) {
	if strings.ContainsAny(name, invalidNameChars) {
		return "", fmt.Errorf("%w: invalid characters or spaces found in '%s'. Prohibited: %s",
			ErrInvalidName, name, prohibitedDisplay())
	}
	return name, nil
}

func prohibitedDisplay() string {
	chars := strings.Split(invalidNameChars, "")
	sort.Strings(chars)
	return strings.Join(chars, ", ")
}

// EnsureUnique removes duplicates from items while preserving the order of
// first occurrence. It never returns nil.
func EnsureUnique(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
