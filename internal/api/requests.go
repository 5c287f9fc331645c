// Package api implements the atomic business operations on the experiment
// index. Every operation is a pure function of (request, context): it loads
// the index from storage, validates preconditions, mutates, persists and
// returns a response. Operations never return Go errors; every failure is
// converted into a response with Success=false and a displayable message.
//
// Operations are not transactional. If a directory step succeeds and the
// subsequent index save fails, the directory is left behind and the index
// does not reflect it. This window is accepted and documented rather than
// rolled back.
package api

import "expman/internal/schema"

// CreateExperimentRequest asks for a new experiment. Config may be nil, in
// which case the context's default configuration is used.
type CreateExperimentRequest struct {
	ExperimentName string
	Config         schema.Document
}

// SetActiveExperimentRequest switches the active experiment.
type SetActiveExperimentRequest struct {
	ExperimentName string
}

// DeleteExperimentRequest removes an experiment and its directory.
type DeleteExperimentRequest struct {
	ExperimentName string
}

// CopyExperimentRequest creates Dst as a copy of Src (config and labels).
type CopyExperimentRequest struct {
	SrcExperimentName string
	DstExperimentName string
}

// UpdateExperimentConfigRequest overwrites an experiment's config file.
type UpdateExperimentConfigRequest struct {
	ExperimentName string
	Config         schema.Document
}

// RenameExperimentRequest renames an experiment.
type RenameExperimentRequest struct {
	OldExperimentName string
	NewExperimentName string
}

// GetExperimentConfigRequest retrieves an experiment's configuration.
type GetExperimentConfigRequest struct {
	ExperimentName string
}

// AddGlobalLabelRequest registers a label in the global vocabulary.
type AddGlobalLabelRequest struct {
	LabelName string
}

// RemoveGlobalLabelsRequest removes labels from the global vocabulary and
// from every experiment carrying them.
type RemoveGlobalLabelsRequest struct {
	Labels []string
}

// AddLabelsToExperimentRequest unions labels into an experiment, self-
// registering them globally.
type AddLabelsToExperimentRequest struct {
	ExperimentName string
	Labels         []string
}

// UpdateExperimentLabelsRequest replaces an experiment's label set. All
// labels must already exist globally.
type UpdateExperimentLabelsRequest struct {
	ExperimentName string
	Labels         []string
}

// GetLabelUsageRequest asks which experiments carry each global label.
type GetLabelUsageRequest struct{}

// GetExperimentLabelMapRequest asks, for each global label, whether the
// experiment carries it.
type GetExperimentLabelMapRequest struct {
	ExperimentName string
}

// GetIndexRequest loads the current index.
type GetIndexRequest struct{}
