package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"expman/internal/api"
)

// errHandled marks a failure that has already been rendered for the user;
// main only has to set the exit code.
var errHandled = errors.New("handled")

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	activeMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func failureResult(message string) api.Result {
	return api.Result{Success: false, Message: message}
}

// handleResult renders an operation result and turns failures into a
// non-zero exit.
func handleResult(res api.Result) error {
	if res.Success {
		fmt.Println(successStyle.Render("Success:"), res.Message)
		return nil
	}
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), res.Message)
	return errHandled
}

// confirm asks a yes/no question on stdin and defaults to no.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// renderExperimentTable lists all experiments with their active marker and
// labels.
func renderExperimentTable() string {
	idx := mgr.Index()

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ACTIVE", "NAME", "LABELS")
	if idx != nil {
		for _, name := range idx.Names() {
			mark := ""
			if name == idx.ActiveExperiment {
				mark = activeMark.Render("*")
			}
			t.Row(mark, name, strings.Join(idx.Experiments[name].Labels, ", "))
		}
	}
	title := headerStyle.Render(fmt.Sprintf("Experiments in %s", mgr.ExperimentRoot()))
	return title + "\n" + t.String()
}
