package api

import (
	"errors"
	"fmt"
	"time"

	"expman/internal/schema"
	"expman/internal/storage"
)

// CreateExperiment creates the experiment directory, writes its config file
// and registers it in the index. The new experiment becomes active.
func CreateExperiment(req CreateExperimentRequest, ctx *schema.ExperimentContext) Result {
	io := storage.NewIO(ctx)

	doc := req.Config
	if doc == nil {
		doc = ctx.DefaultConfig().Clone()
	}
	idx, err := createExperimentCore(req.ExperimentName, doc, nil, ctx, io)
	if err != nil {
		if errors.Is(err, storage.ErrExists) {
			return failure("Experiment name already exists: %s", req.ExperimentName)
		}
		return failErr(err)
	}
	return success(idx, "Experiment '%s' created.", req.ExperimentName)
}

// CopyExperiment creates a new experiment carrying the source's config and
// labels.
func CopyExperiment(req CopyExperimentRequest, ctx *schema.ExperimentContext) Result {
	io := storage.NewIO(ctx)

	idx, err := io.LoadIndex()
	if err != nil {
		return failErr(err)
	}
	if !idx.Has(req.SrcExperimentName) {
		return failure("Experiment '%s' does not exist.", req.SrcExperimentName)
	}
	srcConfig, err := io.LoadConfig(req.SrcExperimentName)
	if err != nil {
		return failErr(err)
	}
	srcLabels := idx.Experiments[req.SrcExperimentName].Labels

	updated, err := createExperimentCore(req.DstExperimentName, srcConfig, srcLabels, ctx, io)
	if err != nil {
		if errors.Is(err, storage.ErrExists) {
			return failure("Experiment name already exists: %s", req.DstExperimentName)
		}
		return failErr(err)
	}
	return success(updated, "Copied from '%s' to '%s'.", req.SrcExperimentName, req.DstExperimentName)
}

// SetActiveExperiment marks the named experiment as active.
func SetActiveExperiment(req SetActiveExperimentRequest, ctx *schema.ExperimentContext) Result {
	io := storage.NewIO(ctx)

	idx, err := io.LoadIndex()
	if err != nil {
		return failErr(err)
	}
	if !idx.Has(req.ExperimentName) {
		return failure("Experiment '%s' does not exist.", req.ExperimentName)
	}
	idx.ActiveExperiment = req.ExperimentName
	if err := io.SaveIndex(idx); err != nil {
		return failErr(err)
	}
	return success(idx, "Experiment '%s' is now active.", req.ExperimentName)
}

// DeleteExperiment permanently removes the experiment directory and its
// index entry. Deleting the active experiment clears the active marker.
func DeleteExperiment(req DeleteExperimentRequest, ctx *schema.ExperimentContext) Result {
	io := storage.NewIO(ctx)

	idx, err := io.LoadIndex()
	if err != nil {
		return failErr(err)
	}
	if !idx.Has(req.ExperimentName) {
		return failure("Experiment '%s' does not exist.", req.ExperimentName)
	}
	if err := io.DeleteExperimentData(req.ExperimentName); err != nil {
		return failErr(err)
	}
	delete(idx.Experiments, req.ExperimentName)
	if idx.ActiveExperiment == req.ExperimentName {
		idx.ActiveExperiment = ""
	}
	if err := io.SaveIndex(idx); err != nil {
		return failErr(err)
	}
	return success(idx, "Experiment '%s' deleted.", req.ExperimentName)
}

// RenameExperiment renames the directory, moves the metadata to the new key
// with a recomputed config path, and follows the active marker.
func RenameExperiment(req RenameExperimentRequest, ctx *schema.ExperimentContext) Result {
	io := storage.NewIO(ctx)

	if _, err := schema.ValidateSafeName(req.NewExperimentName); err != nil {
		return failErr(err)
	}
	idx, err := io.LoadIndex()
	if err != nil {
		return failErr(err)
	}
	if !idx.Has(req.OldExperimentName) {
		return failure("Experiment '%s' not found.", req.OldExperimentName)
	}
	if idx.Has(req.NewExperimentName) {
		return failure("Experiment '%s' already exists.", req.NewExperimentName)
	}
	if err := io.RenameExperimentDir(req.OldExperimentName, req.NewExperimentName); err != nil {
		return failErr(err)
	}

	meta := idx.Experiments[req.OldExperimentName]
	delete(idx.Experiments, req.OldExperimentName)
	meta.ConfigPath = ctx.RelativeConfigPath(req.NewExperimentName)
	idx.Experiments[req.NewExperimentName] = meta

	if idx.ActiveExperiment == req.OldExperimentName {
		idx.ActiveExperiment = req.NewExperimentName
	}
	if err := io.SaveIndex(idx); err != nil {
		return failErr(err)
	}
	return success(idx, "Experiment '%s' renamed to '%s'.", req.OldExperimentName, req.NewExperimentName)
}

// UpdateExperimentConfig overwrites the experiment's config file. The index
// itself is unchanged beyond being reloaded into the response.
func UpdateExperimentConfig(req UpdateExperimentConfigRequest, ctx *schema.ExperimentContext) Result {
	io := storage.NewIO(ctx)

	idx, err := io.LoadIndex()
	if err != nil {
		return failErr(err)
	}
	if err := schema.MatchSchema(req.Config, ctx.DefaultConfig()); err != nil {
		return failErr(err)
	}
	if !idx.Has(req.ExperimentName) {
		return failure("Experiment '%s' not found.", req.ExperimentName)
	}
	if err := io.SaveConfig(req.ExperimentName, req.Config, nil); err != nil {
		return failErr(err)
	}
	return success(idx, "Configuration for '%s' updated successfully.", req.ExperimentName)
}

// GetExperimentConfig loads the experiment's configuration document.
func GetExperimentConfig(req GetExperimentConfigRequest, ctx *schema.ExperimentContext) ConfigResult {
	io := storage.NewIO(ctx)

	idx, err := io.LoadIndex()
	if err != nil {
		return ConfigResult{Result: failErr(err)}
	}
	if !idx.Has(req.ExperimentName) {
		return ConfigResult{Result: failure("Experiment '%s' not found.", req.ExperimentName)}
	}
	doc, err := io.LoadConfig(req.ExperimentName)
	if err != nil {
		return ConfigResult{Result: failErr(err)}
	}
	return ConfigResult{
		Result: success(idx, "Configuration for experiment '%s' successfully retrieved.", req.ExperimentName),
		Config: doc,
	}
}

// createExperimentCore is the shared path of create and copy: validate,
// write the config file, register the metadata and activate the new
// experiment.
func createExperimentCore(name string, doc schema.Document, labels []string, ctx *schema.ExperimentContext, io *storage.IO) (*schema.ExperimentIndex, error) {
	if _, err := schema.ValidateSafeName(name); err != nil {
		return nil, err
	}
	if err := schema.MatchSchema(doc, ctx.DefaultConfig()); err != nil {
		return nil, err
	}
	if storage.Exists(ctx.ExperimentDir(name)) {
		return nil, fmt.Errorf("experiment name %w: %s", storage.ErrExists, name)
	}

	idx, err := io.LoadIndex()
	if err != nil {
		return nil, err
	}
	if idx.Has(name) {
		return nil, fmt.Errorf("experiment name %w: %s", storage.ErrExists, name)
	}

	if err := io.SaveConfig(name, doc, nil); err != nil {
		return nil, err
	}

	idx.Experiments[name] = &schema.ExperimentMetadata{
		CreatedAt:  time.Now(),
		Labels:     schema.EnsureUnique(labels),
		ConfigPath: ctx.RelativeConfigPath(name),
	}
	idx.ActiveExperiment = name
	if err := io.SaveIndex(idx); err != nil {
		return nil, err
	}
	return idx, nil
}
