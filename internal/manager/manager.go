// Package manager provides the stateful facade over the api operations. It
// caches the last successful index snapshot; all real logic lives in the
// stateless api package, so the cache is only a memoization of the last
// successful load or save.
package manager

import (
	"go.uber.org/zap"

	"expman/internal/api"
	"expman/internal/schema"
)

const noActiveMessage = "No active experiment set."

// Manager orchestrates experiment and label operations for one context.
type Manager struct {
	ctx   *schema.ExperimentContext
	index *schema.ExperimentIndex
	log   *zap.Logger
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger attaches a logger. Without it the manager stays silent.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// New builds a manager and loads the initial index snapshot.
func New(ctx *schema.ExperimentContext, opts ...Option) *Manager {
	m := &Manager{ctx: ctx, log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	m.Refresh()
	return m
}

// Context returns the injected experiment context.
func (m *Manager) Context() *schema.ExperimentContext { return m.ctx }

// apply replaces the cached index after a successful mutation. Failed
// operations leave the cache untouched (stale but valid).
func (m *Manager) apply(res api.Result) api.Result {
	if res.Success && res.Index != nil {
		m.index = res.Index
	}
	if !res.Success {
		m.log.Warn("operation failed", zap.String("message", res.Message))
	} else {
		m.log.Debug("operation succeeded", zap.String("message", res.Message))
	}
	return res
}

// Refresh reloads the index from storage.
func (m *Manager) Refresh() {
	m.apply(api.GetIndex(api.GetIndexRequest{}, m.ctx))
}

// CreateExperiment creates a new experiment. A nil config falls back to the
// context's default configuration.
func (m *Manager) CreateExperiment(name string, config schema.Document) api.Result {
	m.log.Debug("create experiment", zap.String("name", name))
	return m.apply(api.CreateExperiment(api.CreateExperimentRequest{ExperimentName: name, Config: config}, m.ctx))
}

// SetActiveExperiment switches the active experiment.
func (m *Manager) SetActiveExperiment(name string) api.Result {
	return m.apply(api.SetActiveExperiment(api.SetActiveExperimentRequest{ExperimentName: name}, m.ctx))
}

// DeleteExperiment removes the experiment directory and its index entry.
func (m *Manager) DeleteExperiment(name string) api.Result {
	m.log.Debug("delete experiment", zap.String("name", name))
	return m.apply(api.DeleteExperiment(api.DeleteExperimentRequest{ExperimentName: name}, m.ctx))
}

// CopyExperiment creates dstName as a copy of srcName.
func (m *Manager) CopyExperiment(srcName, dstName string) api.Result {
	m.log.Debug("copy experiment", zap.String("src", srcName), zap.String("dst", dstName))
	return m.apply(api.CopyExperiment(api.CopyExperimentRequest{SrcExperimentName: srcName, DstExperimentName: dstName}, m.ctx))
}

// RenameExperiment renames an experiment.
func (m *Manager) RenameExperiment(oldName, newName string) api.Result {
	m.log.Debug("rename experiment", zap.String("old", oldName), zap.String("new", newName))
	return m.apply(api.RenameExperiment(api.RenameExperimentRequest{OldExperimentName: oldName, NewExperimentName: newName}, m.ctx))
}

// RenameActiveExperiment renames the currently active experiment.
func (m *Manager) RenameActiveExperiment(newName string) api.Result {
	name := m.ActiveExperiment()
	if name == "" {
		return api.Result{Success: false, Message: noActiveMessage}
	}
	return m.RenameExperiment(name, newName)
}

// UpdateExperimentConfig overwrites an experiment's configuration file.
func (m *Manager) UpdateExperimentConfig(name string, config schema.Document) api.Result {
	return m.apply(api.UpdateExperimentConfig(api.UpdateExperimentConfigRequest{ExperimentName: name, Config: config}, m.ctx))
}

// UpdateActiveExperimentConfig overwrites the active experiment's
// configuration file.
func (m *Manager) UpdateActiveExperimentConfig(config schema.Document) api.Result {
	name := m.ActiveExperiment()
	if name == "" {
		return api.Result{Success: false, Message: noActiveMessage}
	}
	return m.UpdateExperimentConfig(name, config)
}

// GetExperimentConfig retrieves an experiment's configuration document.
func (m *Manager) GetExperimentConfig(name string) api.ConfigResult {
	return api.GetExperimentConfig(api.GetExperimentConfigRequest{ExperimentName: name}, m.ctx)
}

// GetActiveExperimentConfig retrieves the active experiment's
// configuration document.
func (m *Manager) GetActiveExperimentConfig() api.ConfigResult {
	name := m.ActiveExperiment()
	if name == "" {
		return api.ConfigResult{Result: api.Result{Success: false, Message: noActiveMessage}}
	}
	return m.GetExperimentConfig(name)
}

// AddGlobalLabel registers a label in the global vocabulary.
func (m *Manager) AddGlobalLabel(name string) api.Result {
	return m.apply(api.AddGlobalLabel(api.AddGlobalLabelRequest{LabelName: name}, m.ctx))
}

// RemoveGlobalLabels removes labels globally and from every experiment.
func (m *Manager) RemoveGlobalLabels(labels []string) api.Result {
	return m.apply(api.RemoveGlobalLabels(api.RemoveGlobalLabelsRequest{Labels: labels}, m.ctx))
}

// AddLabelsToExperiment unions labels into the experiment, registering them
// globally as needed.
func (m *Manager) AddLabelsToExperiment(name string, labels []string) api.Result {
	return m.apply(api.AddLabelsToExperiment(api.AddLabelsToExperimentRequest{ExperimentName: name, Labels: labels}, m.ctx))
}

// AddLabelsToActiveExperiment unions labels into the active experiment.
func (m *Manager) AddLabelsToActiveExperiment(labels []string) api.Result {
	name := m.ActiveExperiment()
	if name == "" {
		return api.Result{Success: false, Message: noActiveMessage}
	}
	return m.AddLabelsToExperiment(name, labels)
}

// UpdateExperimentLabels replaces an experiment's label set with labels
// already present in the global vocabulary.
func (m *Manager) UpdateExperimentLabels(name string, labels []string) api.Result {
	return m.apply(api.UpdateExperimentLabels(api.UpdateExperimentLabelsRequest{ExperimentName: name, Labels: labels}, m.ctx))
}

// UpdateActiveExperimentLabels replaces the active experiment's label set.
func (m *Manager) UpdateActiveExperimentLabels(labels []string) api.Result {
	name := m.ActiveExperiment()
	if name == "" {
		return api.Result{Success: false, Message: noActiveMessage}
	}
	return m.UpdateExperimentLabels(name, labels)
}

// GetLabelUsage maps each global label to the experiments carrying it.
func (m *Manager) GetLabelUsage() api.LabelUsageResult {
	return api.GetLabelUsage(api.GetLabelUsageRequest{}, m.ctx)
}

// GetExperimentLabelMap maps each global label to whether the named
// experiment carries it.
func (m *Manager) GetExperimentLabelMap(name string) api.LabelMapResult {
	return api.GetExperimentLabelMap(api.GetExperimentLabelMapRequest{ExperimentName: name}, m.ctx)
}

// GetActiveExperimentLabelMap maps each global label to whether the active
// experiment carries it.
func (m *Manager) GetActiveExperimentLabelMap() api.LabelMapResult {
	name := m.ActiveExperiment()
	if name == "" {
		return api.LabelMapResult{Result: api.Result{Success: false, Message: noActiveMessage}}
	}
	return m.GetExperimentLabelMap(name)
}

// Index returns the cached index snapshot, or nil before the first
// successful load.
func (m *Manager) Index() *schema.ExperimentIndex { return m.index }

// ExperimentRoot returns the root directory for all experiments.
func (m *Manager) ExperimentRoot() string { return m.ctx.ExperimentRoot() }

// IndexFile returns the path of the experiment index file.
func (m *Manager) IndexFile() string { return m.ctx.IndexFile() }

// ExperimentDir returns the directory of the named experiment.
func (m *Manager) ExperimentDir(name string) string { return m.ctx.ExperimentDir(name) }

// ExperimentConfigFile returns the config file path of the named
// experiment.
func (m *Manager) ExperimentConfigFile(name string) string { return m.ctx.ConfigFile(name) }

// ActiveExperiment returns the active experiment's name, or "" when none
// is set.
func (m *Manager) ActiveExperiment() string {
	if m.index == nil {
		return ""
	}
	return m.index.ActiveExperiment
}

// ActiveExperimentDir returns the active experiment's directory, or ""
// when none is set.
func (m *Manager) ActiveExperimentDir() string {
	if name := m.ActiveExperiment(); name != "" {
		return m.ctx.ExperimentDir(name)
	}
	return ""
}

// ActiveExperimentConfigFile returns the active experiment's config file
// path, or "" when none is set.
func (m *Manager) ActiveExperimentConfigFile() string {
	if name := m.ActiveExperiment(); name != "" {
		return m.ctx.ConfigFile(name)
	}
	return ""
}

// ActiveExperimentMetadata returns the active experiment's metadata, or
// nil when none is set.
func (m *Manager) ActiveExperimentMetadata() *schema.ExperimentMetadata {
	if m.index == nil {
		return nil
	}
	if name := m.index.ActiveExperiment; name != "" {
		return m.index.Experiments[name]
	}
	return nil
}

// GlobalLabels returns the global label vocabulary from the cache.
func (m *Manager) GlobalLabels() []string {
	if m.index == nil {
		return []string{}
	}
	return m.index.GlobalLabels
}

// Experiments returns all experiment names from the cache, sorted.
func (m *Manager) Experiments() []string {
	if m.index == nil {
		return []string{}
	}
	return m.index.Names()
}
