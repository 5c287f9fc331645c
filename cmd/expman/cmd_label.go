// Package main: label command family (list, add, assign, remove, create).
package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	labelListVerbose bool
	labelRemoveForce bool
)

// labelCmd groups all label subcommands
var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Manage global labels and experiment assignments",
}

var labelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List global labels and their usage statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		res := mgr.GetLabelUsage()
		if !res.Success {
			return handleResult(res.Result)
		}

		headers := []string{"LABEL", "USAGE COUNT"}
		if labelListVerbose {
			headers = append(headers, "EXPERIMENTS")
		}
		t := table.New().Border(lipgloss.NormalBorder()).Headers(headers...)

		labels := make([]string, 0, len(res.Usage))
		for label := range res.Usage {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			row := []string{label, strconv.Itoa(len(res.Usage[label]))}
			if labelListVerbose {
				row = append(row, strings.Join(res.Usage[label], ", "))
			}
			t.Row(row...)
		}

		fmt.Println(headerStyle.Render("Global Label Usage"))
		fmt.Println(t.String())
		return nil
	},
}

var labelAddCmd = &cobra.Command{
	Use:   "add <label>...",
	Short: "Add labels to the active experiment",
	Long: `Adds labels to the active experiment. Labels not yet part of the global
vocabulary are registered automatically.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleResult(mgr.AddLabelsToActiveExperiment(args))
	},
}

var labelAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign or unassign labels for the active experiment via $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		res := mgr.GetActiveExperimentLabelMap()
		if !res.Success {
			return handleResult(res.Result)
		}

		edited, err := editLabelMapViaEditor(mgr.Context(), res.LabelMap)
		if err != nil {
			if errors.Is(err, errEditCancelled) {
				fmt.Println("Operation cancelled.")
				return errHandled
			}
			return err
		}

		selected := make([]string, 0, len(edited))
		for label, assigned := range edited {
			if assigned {
				selected = append(selected, label)
			}
		}
		sort.Strings(selected)
		return handleResult(mgr.UpdateActiveExperimentLabels(selected))
	},
}

var labelRemoveCmd = &cobra.Command{
	Use:   "remove <label>...",
	Short: "Remove labels from the global vocabulary and all experiments",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := fmt.Sprintf("Remove labels '%s' from the global list and all experiments?", strings.Join(args, ", "))
		if !labelRemoveForce && !confirm(prompt) {
			fmt.Println("Operation cancelled.")
			return errHandled
		}
		return handleResult(mgr.RemoveGlobalLabels(args))
	},
}

var labelCreateCmd = &cobra.Command{
	Use:   "create <label>",
	Short: "Register a label in the global vocabulary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleResult(mgr.AddGlobalLabel(args[0]))
	},
}

func init() {
	labelListCmd.Flags().BoolVarP(&labelListVerbose, "verbose", "V", false, "show experiment names using each label")
	labelRemoveCmd.Flags().BoolVarP(&labelRemoveForce, "force", "f", false, "remove without confirmation")

	labelCmd.AddCommand(
		labelListCmd,
		labelAddCmd,
		labelAssignCmd,
		labelRemoveCmd,
		labelCreateCmd,
	)
	rootCmd.AddCommand(labelCmd)
}
