package schema

import (
	"fmt"
	"sort"
	"time"
)

// ExperimentMetadata is the per-experiment record owned by the index.
type ExperimentMetadata struct {
	// CreatedAt is set once when the experiment is created.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Labels carried by the experiment. Always a subset of the index's
	// GlobalLabels; unique, first-occurrence order.
	Labels []string `json:"labels" yaml:"labels"`

	// ConfigPath is the config file path relative to the experiment root.
	ConfigPath string `json:"config_path" yaml:"config_path"`
}

// HasLabel reports whether the experiment carries the label.
func (m *ExperimentMetadata) HasLabel(label string) bool {
	for _, l := range m.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// AddLabels unions the given labels into the experiment's label set.
func (m *ExperimentMetadata) AddLabels(labels ...string) {
	m.Labels = EnsureUnique(append(m.Labels, labels...))
}

// SetLabels replaces the experiment's label set.
func (m *ExperimentMetadata) SetLabels(labels []string) {
	m.Labels = EnsureUnique(labels)
}

// RemoveLabel drops the label if present.
func (m *ExperimentMetadata) RemoveLabel(label string) {
	out := m.Labels[:0]
	for _, l := range m.Labels {
		if l != label {
			out = append(out, l)
		}
	}
	m.Labels = out
}

// ExperimentIndex is the master record for all experiments: which exist,
// which is active, and the global label vocabulary. It is the single source
// of truth, persisted as one file and always rewritten whole.
type ExperimentIndex struct {
	// ActiveExperiment names the active experiment; empty means none.
	ActiveExperiment string `json:"active_experiment,omitempty" yaml:"active_experiment,omitempty"`

	// GlobalLabels is the authoritative label vocabulary.
	GlobalLabels []string `json:"global_labels" yaml:"global_labels"`

	// Experiments maps experiment name to its metadata.
	Experiments map[string]*ExperimentMetadata `json:"experiments" yaml:"experiments"`
}

// NewExperimentIndex returns an empty index.
func NewExperimentIndex() *ExperimentIndex {
	return &ExperimentIndex{
		GlobalLabels: []string{},
		Experiments:  map[string]*ExperimentMetadata{},
	}
}

// Has reports whether an experiment with the given name exists.
func (idx *ExperimentIndex) Has(name string) bool {
	_, ok := idx.Experiments[name]
	return ok
}

// Names returns all experiment names, sorted.
func (idx *ExperimentIndex) Names() []string {
	names := make([]string, 0, len(idx.Experiments))
	for name := range idx.Experiments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasGlobalLabel reports whether the label is in the global vocabulary.
func (idx *ExperimentIndex) HasGlobalLabel(label string) bool {
	for _, l := range idx.GlobalLabels {
		if l == label {
			return true
		}
	}
	return false
}

// AddGlobalLabels unions the given labels into the global vocabulary.
func (idx *ExperimentIndex) AddGlobalLabels(labels ...string) {
	idx.GlobalLabels = EnsureUnique(append(idx.GlobalLabels, labels...))
}

// RemoveGlobalLabel removes the label from the vocabulary and cascades the
// removal to every experiment. It reports whether the label was present.
func (idx *ExperimentIndex) RemoveGlobalLabel(label string) bool {
	if !idx.HasGlobalLabel(label) {
		return false
	}
	out := idx.GlobalLabels[:0]
	for _, l := range idx.GlobalLabels {
		if l != label {
			out = append(out, l)
		}
	}
	idx.GlobalLabels = out
	for _, meta := range idx.Experiments {
		if meta == nil {
			continue
		}
		meta.RemoveLabel(label)
	}
	return true
}

// Normalize re-establishes list invariants after a load from disk:
// initialized containers, non-nil metadata and de-duplicated labels.
func (idx *ExperimentIndex) Normalize() {
	if idx.Experiments == nil {
		idx.Experiments = map[string]*ExperimentMetadata{}
	}
	idx.GlobalLabels = EnsureUnique(idx.GlobalLabels)
	for name, meta := range idx.Experiments {
		// A hand-edited index can carry a null entry.
		if meta == nil {
			meta = &ExperimentMetadata{}
			idx.Experiments[name] = meta
		}
		meta.Labels = EnsureUnique(meta.Labels)
	}
}

// Validate checks the index invariants: the active experiment references an
// existing entry and every experiment label is part of the global
// vocabulary.
func (idx *ExperimentIndex) Validate() error {
	if idx.ActiveExperiment != "" && !idx.Has(idx.ActiveExperiment) {
		return fmt.Errorf("active experiment '%s' is not in the index", idx.ActiveExperiment)
	}
	for name, meta := range idx.Experiments {
		if meta == nil {
			return fmt.Errorf("experiment '%s' has no metadata", name)
		}
		for _, label := range meta.Labels {
			if !idx.HasGlobalLabel(label) {
				return fmt.Errorf("experiment '%s' carries unknown label '%s'", name, label)
			}
		}
	}
	return nil
}
