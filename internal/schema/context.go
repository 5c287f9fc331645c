package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Defaults for a freshly built context.
const (
	DefaultRootName       = "experiments"
	DefaultConfigFileName = "config.yaml"
	DefaultIndexFileName  = "experiment_index.json"
	DefaultEncoding       = "utf-8"
	DefaultIndent         = 2

	DefaultDirPermission  os.FileMode = 0o755
	DefaultFilePermission os.FileMode = 0o644
)

// ExperimentContext describes the storage layout and the expected shape of
// configuration documents. It is built once at startup and read-only
// afterwards; every derived path is a pure function of the context fields.
type ExperimentContext struct {
	defaultConfig  Document
	baseDir        string
	rootName       string
	configFileName string
	indexFileName  string
	encoding       string
	indent         int
	dirPermission  os.FileMode // 0 leaves directory permissions to the OS
	filePermission os.FileMode // 0 leaves file permissions to the OS
}

// ContextOption customizes a context at construction time.
type ContextOption func(*ExperimentContext)

// WithBaseDir sets the parent directory of the experiment root.
func WithBaseDir(dir string) ContextOption {
	return func(c *ExperimentContext) { c.baseDir = dir }
}

// WithRootName sets the directory name holding all experiments.
func WithRootName(name string) ContextOption {
	return func(c *ExperimentContext) { c.rootName = name }
}

// WithConfigFileName sets the per-experiment config file name (.json,
// .yaml or .yml).
func WithConfigFileName(name string) ContextOption {
	return func(c *ExperimentContext) { c.configFileName = name }
}

// WithIndexFileName sets the index file name (.json, .yaml or .yml).
func WithIndexFileName(name string) ContextOption {
	return func(c *ExperimentContext) { c.indexFileName = name }
}

// WithEncoding sets the text encoding of stored files. Only UTF-8 is
// supported.
func WithEncoding(encoding string) ContextOption {
	return func(c *ExperimentContext) { c.encoding = encoding }
}

// WithIndent sets the serialization indent width (0..8).
func WithIndent(indent int) ContextOption {
	return func(c *ExperimentContext) { c.indent = indent }
}

// WithDirPermission sets the permission applied to created directories.
// Zero leaves permissions to the OS default.
func WithDirPermission(perm os.FileMode) ContextOption {
	return func(c *ExperimentContext) { c.dirPermission = perm }
}

// WithFilePermission sets the permission applied to written files. Zero
// leaves permissions to the OS default.
func WithFilePermission(perm os.FileMode) ContextOption {
	return func(c *ExperimentContext) { c.filePermission = perm }
}

// NewContext builds and validates an experiment context. defaultConfig
// declares the shape every experiment configuration must match.
func NewContext(defaultConfig Document, opts ...ContextOption) (*ExperimentContext, error) {
	if defaultConfig == nil {
		return nil, errors.New("default config document is required")
	}

	ctx := &ExperimentContext{
		defaultConfig:  defaultConfig,
		baseDir:        defaultBaseDir(),
		rootName:       DefaultRootName,
		configFileName: DefaultConfigFileName,
		indexFileName:  DefaultIndexFileName,
		encoding:       DefaultEncoding,
		indent:         DefaultIndent,
		dirPermission:  DefaultDirPermission,
		filePermission: DefaultFilePermission,
	}
	for _, opt := range opts {
		opt(ctx)
	}

	if ctx.baseDir == "" {
		return nil, errors.New("base directory must not be empty")
	}
	if ctx.indent < 0 || ctx.indent > 8 {
		return nil, fmt.Errorf("indent must be between 0 and 8, got %d", ctx.indent)
	}
	switch strings.ToLower(ctx.encoding) {
	case "utf-8", "utf8":
	case "":
		ctx.encoding = DefaultEncoding
	default:
		return nil, fmt.Errorf("unsupported encoding '%s' (only UTF-8 is supported)", ctx.encoding)
	}
	if _, err := ValidateSafeName(ctx.rootName); err != nil {
		return nil, err
	}
	for _, name := range []string{ctx.configFileName, ctx.indexFileName} {
		if _, err := ValidateSafeName(name); err != nil {
			return nil, err
		}
		if !hasStructuredExtension(name) {
			return nil, fmt.Errorf("configuration files must be in JSON or YAML format. Received: %s", name)
		}
	}
	return ctx, nil
}

func defaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "expman")
	}
	return filepath.Join(home, "Documents", "expman")
}

func hasStructuredExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// DefaultConfig returns the document declaring the expected config shape.
func (c *ExperimentContext) DefaultConfig() Document { return c.defaultConfig }

// BaseDir returns the parent directory of the experiment root.
func (c *ExperimentContext) BaseDir() string { return c.baseDir }

// ConfigFileName returns the per-experiment config file name.
func (c *ExperimentContext) ConfigFileName() string { return c.configFileName }

// IndexFileName returns the index file name.
func (c *ExperimentContext) IndexFileName() string { return c.indexFileName }

// Encoding returns the text encoding for all files.
func (c *ExperimentContext) Encoding() string { return c.encoding }

// Indent returns the serialization indent width.
func (c *ExperimentContext) Indent() int { return c.indent }

// DirPermission returns the directory permission bits; 0 means OS default.
func (c *ExperimentContext) DirPermission() os.FileMode { return c.dirPermission }

// FilePermission returns the file permission bits; 0 means OS default.
func (c *ExperimentContext) FilePermission() os.FileMode { return c.filePermission }

// ExperimentRoot returns the root directory holding all experiments.
func (c *ExperimentContext) ExperimentRoot() string {
	return filepath.Join(c.baseDir, c.rootName)
}

// IndexFile returns the path of the experiment index file.
func (c *ExperimentContext) IndexFile() string {
	return filepath.Join(c.ExperimentRoot(), c.indexFileName)
}

// ExperimentDir returns the directory of the named experiment.
func (c *ExperimentContext) ExperimentDir(name string) string {
	return filepath.Join(c.ExperimentRoot(), name)
}

// ConfigFile returns the config file path of the named experiment.
func (c *ExperimentContext) ConfigFile(name string) string {
	return filepath.Join(c.ExperimentDir(name), c.configFileName)
}

// RelativeConfigPath returns the config file path relative to the
// experiment root, as stored in the index.
func (c *ExperimentContext) RelativeConfigPath(name string) string {
	return filepath.ToSlash(filepath.Join(name, c.configFileName))
}
