// Package storage translates between the in-memory index/config objects and
// on-disk JSON or YAML files, selected by file extension.
//
// There is no cross-process locking: concurrent invocations against the same
// storage root can race (last save wins on the index file, directory
// operations can conflict). The tool is single-user and sequential by
// contract.
package storage

import "errors"

// Error taxonomy for storage failures. Callers test with errors.Is.
var (
	// ErrNotFound marks a missing file or directory.
	ErrNotFound = errors.New("not found")

	// ErrExists marks a destination that already exists.
	ErrExists = errors.New("already exists")

	// ErrUnsupportedFormat marks a file extension other than .json,
	// .yaml or .yml.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrSerialization marks content that could not be serialized.
	ErrSerialization = errors.New("serialization failed")

	// ErrParse marks malformed JSON or YAML content.
	ErrParse = errors.New("parse error")

	// ErrEncoding marks file bytes that do not decode under the
	// configured text encoding.
	ErrEncoding = errors.New("encoding error")

	// ErrStorage marks filesystem-level failures (permissions, disk
	// full, missing parent rights).
	ErrStorage = errors.New("storage failure")
)
