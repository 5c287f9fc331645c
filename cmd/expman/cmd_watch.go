// Package main: watch command. Re-renders the experiment table whenever
// the index file changes on disk.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the index file and re-render the experiment list on change",
	Long: `Watches the experiment root directory and reprints the experiment table
whenever the index file is written. Useful next to a second terminal that
mutates experiments. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := mgr.ExperimentRoot()
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("experiment root %s does not exist yet; create an experiment first", root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: saves replace the index file,
	// which would drop a file-level watch.
	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(renderExperimentTable())
	fmt.Println("Watching", mgr.IndexFile(), "(Ctrl-C to stop)")

	indexName := filepath.Base(mgr.IndexFile())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != indexName {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("index file changed", zap.String("event", ev.String()))
			mgr.Refresh()
			fmt.Println(renderExperimentTable())
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(werr))
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
