package api

import (
	"sort"
	"strings"

	"expman/internal/schema"
	"expman/internal/storage"
)

// AddGlobalLabel registers a label in the global vocabulary. Adding an
// existing label is a no-op success.
func AddGlobalLabel(req AddGlobalLabelRequest, ctx *schema.ExperimentContext) Result {
	io := storage.NewIO(ctx)

	idx, err := io.LoadIndex()
	if err != nil {
		return failErr(err)
	}
	if idx.HasGlobalLabel(req.LabelName) {
		return success(idx, "Label '%s' already exists in the global label set.", req.LabelName)
	}
	idx.AddGlobalLabels(req.LabelName)
	if err := io.SaveIndex(idx); err != nil {
		return failErr(err)
	}
	return success(idx, "Label '%s' has been added to the global label set.", req.LabelName)
}

// RemoveGlobalLabels removes labels from the global vocabulary and cascades
// the removal to every experiment. It fails only when none of the
// requested labels exist; otherwise the message reports which requested
// labels were not found.
func RemoveGlobalLabels(req RemoveGlobalLabelsRequest, ctx *schema.ExperimentContext) Result {
	io := storage.NewIO(ctx)

	idx, err := io.LoadIndex()
	if err != nil {
		return failErr(err)
	}

	var removed, missing []string
	for _, label := range schema.EnsureUnique(req.Labels) {
		if idx.RemoveGlobalLabel(label) {
			removed = append(removed, label)
		} else {
			missing = append(missing, label)
		}
	}
	if len(removed) == 0 {
		return failure("None of the labels exist in the global label set: %s.", joinLabels(missing))
	}
	if err := io.SaveIndex(idx); err != nil {
		return failErr(err)
	}

	msg := "Removed labels globally and from all experiments: " + joinLabels(removed) + "."
	if len(missing) > 0 {
		msg += " Not found: " + joinLabels(missing) + "."
	}
	return success(idx, "%s", msg)
}

// AddLabelsToExperiment unions labels into the experiment's label set and
// registers them in the global vocabulary. An empty label list is a no-op
// success.
func AddLabelsToExperiment(req AddLabelsToExperimentRequest, ctx *schema.ExperimentContext) Result {
	io := storage.NewIO(ctx)

	idx, err := io.LoadIndex()
	if err != nil {
		return failErr(err)
	}
	if !idx.Has(req.ExperimentName) {
		return failure("Experiment '%s' not found.", req.ExperimentName)
	}
	labels := schema.EnsureUnique(req.Labels)
	if len(labels) == 0 {
		return success(idx, "No labels to add.")
	}

	// Labels enter the global vocabulary before the experiment so the
	// subset invariant holds by construction.
	idx.AddGlobalLabels(labels...)
	idx.Experiments[req.ExperimentName].AddLabels(labels...)
	if err := io.SaveIndex(idx); err != nil {
		return failErr(err)
	}
	return success(idx, "Added labels to experiment '%s': %s.", req.ExperimentName, joinLabels(labels))
}

// UpdateExperimentLabels replaces the experiment's label set. Every label
// must already be part of the global vocabulary.
func UpdateExperimentLabels(req UpdateExperimentLabelsRequest, ctx *schema.ExperimentContext) Result {
	io := storage.NewIO(ctx)

	idx, err := io.LoadIndex()
	if err != nil {
		return failErr(err)
	}
	if !idx.Has(req.ExperimentName) {
		return failure("Experiment '%s' not found.", req.ExperimentName)
	}

	labels := schema.EnsureUnique(req.Labels)
	var invalid []string
	for _, label := range labels {
		if !idx.HasGlobalLabel(label) {
			invalid = append(invalid, label)
		}
	}
	if len(invalid) > 0 {
		return failure("Labels must be a subset of global labels. Invalid: %s.", joinLabels(invalid))
	}

	idx.Experiments[req.ExperimentName].SetLabels(labels)
	if err := io.SaveIndex(idx); err != nil {
		return failErr(err)
	}
	return success(idx, "Labels for '%s' updated successfully.", req.ExperimentName)
}

// GetLabelUsage maps every global label to the sorted experiment names
// currently carrying it. Read-only.
func GetLabelUsage(req GetLabelUsageRequest, ctx *schema.ExperimentContext) LabelUsageResult {
	io := storage.NewIO(ctx)

	idx, err := io.LoadIndex()
	if err != nil {
		return LabelUsageResult{Result: failErr(err)}
	}

	usage := make(map[string][]string, len(idx.GlobalLabels))
	for _, label := range idx.GlobalLabels {
		usage[label] = []string{}
	}
	for _, name := range idx.Names() {
		for _, label := range idx.Experiments[name].Labels {
			if _, ok := usage[label]; ok {
				usage[label] = append(usage[label], name)
			}
		}
	}
	return LabelUsageResult{
		Result: Result{Success: true, Message: "Successfully calculated label usage."},
		Usage:  usage,
	}
}

// GetExperimentLabelMap maps every global label to whether the experiment
// carries it. Read-only.
func GetExperimentLabelMap(req GetExperimentLabelMapRequest, ctx *schema.ExperimentContext) LabelMapResult {
	io := storage.NewIO(ctx)

	idx, err := io.LoadIndex()
	if err != nil {
		return LabelMapResult{Result: failErr(err)}
	}
	if !idx.Has(req.ExperimentName) {
		return LabelMapResult{Result: failure("Experiment '%s' not found.", req.ExperimentName)}
	}

	meta := idx.Experiments[req.ExperimentName]
	labelMap := make(map[string]bool, len(idx.GlobalLabels))
	for _, label := range idx.GlobalLabels {
		labelMap[label] = meta.HasLabel(label)
	}
	return LabelMapResult{
		Result: Result{
			Success: true,
			Message: "Successfully retrieved label map for '" + req.ExperimentName + "'.",
		},
		LabelMap: labelMap,
	}
}

func joinLabels(labels []string) string {
	sorted := make([]string, len(labels))
	copy(sorted, labels)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
