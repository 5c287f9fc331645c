package api

import (
	"fmt"

	"expman/internal/schema"
)

// Result is the uniform response shape shared by every operation.
type Result struct {
	// Success reports whether the operation completed.
	Success bool `json:"is_success"`

	// Message is human-readable and suitable for direct display.
	Message string `json:"message"`

	// Index is the index snapshot after a successful mutation, or nil.
	Index *schema.ExperimentIndex `json:"current_index,omitempty"`
}

// ConfigResult carries a retrieved configuration document.
type ConfigResult struct {
	Result
	Config schema.Document `json:"config,omitempty"`
}

// LabelUsageResult maps each global label to the sorted experiment names
// carrying it.
type LabelUsageResult struct {
	Result
	Usage map[string][]string `json:"usage,omitempty"`
}

// LabelMapResult maps each global label to whether one experiment carries
// it.
type LabelMapResult struct {
	Result
	LabelMap map[string]bool `json:"label_map,omitempty"`
}

func success(idx *schema.ExperimentIndex, format string, args ...any) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...), Index: idx}
}

func failure(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

func failErr(err error) Result {
	return Result{Success: false, Message: err.Error()}
}
