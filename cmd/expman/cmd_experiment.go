// Package main: experiment command family (create, list, rename, delete,
// switch, show, update, copy).
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"expman/internal/storage"
)

var (
	deleteForce   bool
	createDefault bool
)

// experimentCmd groups all experiment subcommands
var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Manage experiments: create, list, delete and rename",
}

var experimentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all experiments",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(renderExperimentTable())
		return nil
	},
}

var experimentCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new experiment",
	Long: `Creates a new experiment directory and its configuration file.

The configuration template opens in $EDITOR as commented YAML; save and
close to apply, or pass --default to accept the template unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		for _, existing := range mgr.Experiments() {
			if existing == name {
				return handleResult(failureResult(fmt.Sprintf("Experiment '%s' already exists.", name)))
			}
		}

		doc := mgr.Context().DefaultConfig().Clone()
		if !createDefault {
			edited, err := editConfigViaEditor(mgr.Context(), doc)
			if err != nil {
				if errors.Is(err, errEditCancelled) {
					fmt.Println("Operation cancelled.")
					return errHandled
				}
				return err
			}
			doc = edited
		}
		return handleResult(mgr.CreateExperiment(name, doc))
	},
}

var experimentRenameCmd = &cobra.Command{
	Use:   "rename <old-name> <new-name>",
	Short: "Rename an existing experiment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleResult(mgr.RenameExperiment(args[0], args[1]))
	},
}

var experimentDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an experiment and its directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !deleteForce && !confirm(fmt.Sprintf("Are you sure you want to delete '%s'?", name)) {
			fmt.Println("Operation cancelled.")
			return errHandled
		}
		return handleResult(mgr.DeleteExperiment(name))
	},
}

var experimentSwitchCmd = &cobra.Command{
	Use:   "switch <name>",
	Short: "Switch the active experiment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleResult(mgr.SetActiveExperiment(args[0]))
	},
}

var experimentShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active experiment's configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		res := mgr.GetActiveExperimentConfig()
		if !res.Success || res.Config == nil {
			return handleResult(res.Result)
		}
		rendered, err := storage.MarshalYAML(
			res.Config.PlainMap(), res.Config.Fields(), res.Config.FieldComments(), mgr.Context().Indent())
		if err != nil {
			return err
		}
		fmt.Println(headerStyle.Render("Experiment: " + mgr.ActiveExperiment()))
		fmt.Print(string(rendered))
		return nil
	},
}

var experimentUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Edit the active experiment's configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		res := mgr.GetActiveExperimentConfig()
		if !res.Success || res.Config == nil {
			return handleResult(res.Result)
		}
		edited, err := editConfigViaEditor(mgr.Context(), res.Config)
		if err != nil {
			if errors.Is(err, errEditCancelled) {
				fmt.Println("Operation cancelled.")
				return errHandled
			}
			return err
		}
		return handleResult(mgr.UpdateActiveExperimentConfig(edited))
	},
}

var experimentCopyCmd = &cobra.Command{
	Use:   "copy <src-name> <dst-name>",
	Short: "Create a new experiment by copying an existing one",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleResult(mgr.CopyExperiment(args[0], args[1]))
	},
}

func init() {
	experimentCreateCmd.Flags().BoolVar(&createDefault, "default", false, "use the template unchanged instead of opening the editor")
	experimentDeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "delete without confirmation")

	experimentCmd.AddCommand(
		experimentListCmd,
		experimentCreateCmd,
		experimentRenameCmd,
		experimentDeleteCmd,
		experimentSwitchCmd,
		experimentShowCmd,
		experimentUpdateCmd,
		experimentCopyCmd,
	)
	rootCmd.AddCommand(experimentCmd)
}
