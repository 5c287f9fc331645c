// Package main implements the expman CLI, a local experiment-configuration
// manager. Experiments live under a single root directory; a master index
// file records which experiments exist, which one is active, and the global
// label vocabulary.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"expman/internal/manager"
	"expman/internal/schema"
	"expman/internal/storage"
)

var (
	// Global flags
	baseDir        string
	rootName       string
	configFileName string
	indexFileName  string
	templatePath   string
	indent         int
	verbose        bool

	// Logger
	logger *zap.Logger

	// Manager, built once in PersistentPreRunE
	mgr *manager.Manager
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "expman",
	Short: "expman - local experiment configuration manager",
	Long: `expman tracks named experiments inside a directory tree.

Each experiment owns a directory with a configuration file (JSON or YAML);
a single index file records all experiments, the active one, and the global
label vocabulary. Commands are grouped into two families:

  expman experiment  create, list, rename, delete, switch, show, update, copy
  expman label       list, add, assign, remove, create

The expected configuration shape comes from a template file (--template) or
from the built-in training template.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ctx, err := buildContext()
		if err != nil {
			return err
		}
		mgr = manager.New(ctx, manager.WithLogger(logger))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// buildContext assembles the experiment context from the global flags.
func buildContext() (*schema.ExperimentContext, error) {
	doc, err := defaultDocument()
	if err != nil {
		return nil, err
	}

	opts := []schema.ContextOption{
		schema.WithRootName(rootName),
		schema.WithConfigFileName(configFileName),
		schema.WithIndexFileName(indexFileName),
		schema.WithIndent(indent),
	}
	if baseDir != "" {
		opts = append(opts, schema.WithBaseDir(baseDir))
	}
	return schema.NewContext(doc, opts...)
}

// defaultDocument returns the configuration shape every experiment must
// match: a dynamic document loaded from --template when given, otherwise
// the built-in training template.
func defaultDocument() (schema.Document, error) {
	if templatePath != "" {
		data, err := storage.Load(templatePath, schema.DefaultEncoding)
		if err != nil {
			return nil, fmt.Errorf("failed to load template %s: %w", templatePath, err)
		}
		return schema.NewDynamicDocument(data), nil
	}
	s, err := schema.NewSchema("training",
		schema.FieldSpec{Name: "lr", Description: "Learning rate.", Default: 1e-4},
		schema.FieldSpec{Name: "batch_size", Description: "Mini-batch size.", Default: 32},
		schema.FieldSpec{Name: "epochs", Description: "Number of training epochs.", Default: 10},
		schema.FieldSpec{Name: "notes", Description: "Free-form notes for this run.", Default: ""},
	)
	if err != nil {
		return nil, err
	}
	return s.DefaultDocument(), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", "", "parent directory of the experiment root (default ~/Documents/expman)")
	rootCmd.PersistentFlags().StringVar(&rootName, "root-name", schema.DefaultRootName, "directory name holding all experiments")
	rootCmd.PersistentFlags().StringVar(&configFileName, "config-file", schema.DefaultConfigFileName, "per-experiment config file name (.json/.yaml/.yml)")
	rootCmd.PersistentFlags().StringVar(&indexFileName, "index-file", schema.DefaultIndexFileName, "index file name (.json/.yaml/.yml)")
	rootCmd.PersistentFlags().StringVar(&templatePath, "template", "", "path to a JSON/YAML template declaring the config shape")
	rootCmd.PersistentFlags().IntVar(&indent, "indent", schema.DefaultIndent, "serialization indent width (0-8)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if err != errHandled {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		}
		os.Exit(1)
	}
}
