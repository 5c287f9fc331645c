package storage

import (
	"fmt"

	"expman/internal/schema"
)

// IO reads and writes experiment files for one context: the index file and
// per-experiment config files. Each call is a full read or a full rewrite;
// the whole file is the unit of consistency.
type IO struct {
	ctx *schema.ExperimentContext
}

// NewIO binds an IO handler to a context.
func NewIO(ctx *schema.ExperimentContext) *IO {
	return &IO{ctx: ctx}
}

// LoadIndex reads the experiment index. A missing index file yields a fresh
// empty index, not an error.
func (io *IO) LoadIndex() (*schema.ExperimentIndex, error) {
	path := io.ctx.IndexFile()
	present, err := statPath(path)
	if err != nil {
		return nil, err
	}
	if !present {
		return schema.NewExperimentIndex(), nil
	}
	idx := schema.NewExperimentIndex()
	if err := LoadInto(path, io.ctx.Encoding(), idx); err != nil {
		return nil, err
	}
	idx.Normalize()
	return idx, nil
}

// SaveIndex validates the index invariants and rewrites the whole index
// file.
func (io *IO) SaveIndex(idx *schema.ExperimentIndex) error {
	if err := idx.Validate(); err != nil {
		return fmt.Errorf("index validation failed: %w", err)
	}
	return Save(io.ctx.IndexFile(), idx, SaveOptions{
		Indent:         io.ctx.Indent(),
		FilePermission: uint32(io.ctx.FilePermission()),
		DirPermission:  uint32(io.ctx.DirPermission()),
	})
}

// SaveConfig writes an experiment's configuration file. When the document
// carries field descriptions and no explicit comments are supplied, the
// descriptions become YAML comments.
func (io *IO) SaveConfig(experimentName string, doc schema.Document, comments map[string]string) error {
	if comments == nil {
		comments = doc.FieldComments()
	}
	return Save(io.ctx.ConfigFile(experimentName), doc.PlainMap(), SaveOptions{
		Comments:       comments,
		FieldOrder:     doc.Fields(),
		Indent:         io.ctx.Indent(),
		FilePermission: uint32(io.ctx.FilePermission()),
		DirPermission:  uint32(io.ctx.DirPermission()),
	})
}

// LoadConfig reads an experiment's configuration file and reconstructs the
// document in the form the context's default declares: schema-typed when
// the default is schema-typed, dynamic otherwise.
func (io *IO) LoadConfig(experimentName string) (schema.Document, error) {
	data, err := Load(io.ctx.ConfigFile(experimentName), io.ctx.Encoding())
	if err != nil {
		return nil, err
	}
	if typed, ok := io.ctx.DefaultConfig().(*schema.SchemaDocument); ok {
		return typed.Schema().NewDocument(data)
	}
	return schema.NewDynamicDocument(data), nil
}

// DeleteExperimentData removes the experiment directory and everything in
// it. Absent directories are a no-op.
func (io *IO) DeleteExperimentData(experimentName string) error {
	return DeleteDir(io.ctx.ExperimentDir(experimentName))
}

// RenameExperimentDir renames an experiment directory.
func (io *IO) RenameExperimentDir(oldName, newName string) error {
	return RenameDir(io.ctx.ExperimentDir(oldName), io.ctx.ExperimentDir(newName))
}
