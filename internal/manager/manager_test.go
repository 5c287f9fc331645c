package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"expman/internal/schema"
	"expman/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	s, err := schema.NewSchema("training",
		schema.FieldSpec{Name: "lr", Description: "Learning rate.", Default: 1e-4},
		schema.FieldSpec{Name: "batch_size", Description: "Mini-batch size.", Default: 32},
	)
	require.NoError(t, err)
	ctx, err := schema.NewContext(s.DefaultDocument(), schema.WithBaseDir(t.TempDir()))
	require.NoError(t, err)
	return New(ctx)
}

func TestCreateExperimentAndIOIntegrity(t *testing.T) {
	m := newTestManager(t)

	res := m.CreateExperiment("exp_001", nil)
	require.True(t, res.Success, res.Message)

	assert.Equal(t, "exp_001", m.ActiveExperiment())
	assert.Equal(t, []string{"exp_001"}, m.Experiments())
	assert.True(t, storage.Exists(m.ExperimentDir("exp_001")))
	assert.True(t, storage.Exists(m.ExperimentConfigFile("exp_001")))
	assert.True(t, storage.Exists(m.IndexFile()))

	meta := m.ActiveExperimentMetadata()
	require.NotNil(t, meta)
	assert.Equal(t, "exp_001/config.yaml", meta.ConfigPath)
}

func TestDuplicateCreateKeepsCacheIntact(t *testing.T) {
	m := newTestManager(t)
	require.True(t, m.CreateExperiment("exp_001", nil).Success)

	res := m.CreateExperiment("exp_001", nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "already exists")

	// Failed operations must not disturb the cached snapshot.
	assert.Equal(t, []string{"exp_001"}, m.Experiments())
	assert.Equal(t, "exp_001", m.ActiveExperiment())
}

func TestRenameActiveExperimentFollowsMarker(t *testing.T) {
	m := newTestManager(t)
	require.True(t, m.CreateExperiment("old", nil).Success)

	res := m.RenameActiveExperiment("new")
	require.True(t, res.Success, res.Message)

	assert.Equal(t, "new", m.ActiveExperiment())
	assert.Equal(t, []string{"new"}, m.Experiments())
	assert.False(t, storage.Exists(m.ExperimentDir("old")))
	assert.True(t, storage.Exists(m.ExperimentDir("new")))
	assert.Equal(t, "new/config.yaml", m.ActiveExperimentMetadata().ConfigPath)
}

func TestLabelFlow(t *testing.T) {
	m := newTestManager(t)
	require.True(t, m.CreateExperiment("exp_001", nil).Success)

	res := m.AddLabelsToActiveExperiment([]string{"baseline", "v2"})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, []string{"baseline", "v2"}, m.GlobalLabels())

	res = m.UpdateActiveExperimentLabels([]string{"v2", "rogue"})
	assert.False(t, res.Success)
	assert.Equal(t, "Labels must be a subset of global labels. Invalid: rogue.", res.Message)

	res = m.UpdateActiveExperimentLabels([]string{"v2"})
	require.True(t, res.Success)
	assert.Equal(t, []string{"v2"}, m.ActiveExperimentMetadata().Labels)

	lm := m.GetActiveExperimentLabelMap()
	require.True(t, lm.Success)
	assert.Equal(t, map[string]bool{"baseline": false, "v2": true}, lm.LabelMap)

	res = m.RemoveGlobalLabels([]string{"v2"})
	require.True(t, res.Success)
	assert.Equal(t, []string{"baseline"}, m.GlobalLabels())
	assert.Empty(t, m.ActiveExperimentMetadata().Labels)
}

func TestDeleteActiveExperimentClearsState(t *testing.T) {
	m := newTestManager(t)
	require.True(t, m.CreateExperiment("exp_001", nil).Success)

	res := m.DeleteExperiment("exp_001")
	require.True(t, res.Success)

	assert.Empty(t, m.ActiveExperiment())
	assert.Empty(t, m.Experiments())
	assert.Empty(t, m.ActiveExperimentDir())
	assert.Empty(t, m.ActiveExperimentConfigFile())
	assert.Nil(t, m.ActiveExperimentMetadata())
}

func TestActiveOperationsFailFastWithoutActive(t *testing.T) {
	m := newTestManager(t)

	assert.False(t, m.RenameActiveExperiment("x").Success)
	assert.False(t, m.UpdateActiveExperimentConfig(m.Context().DefaultConfig()).Success)
	assert.False(t, m.GetActiveExperimentConfig().Success)
	assert.False(t, m.AddLabelsToActiveExperiment([]string{"x"}).Success)
	assert.False(t, m.UpdateActiveExperimentLabels([]string{"x"}).Success)
	assert.False(t, m.GetActiveExperimentLabelMap().Success)

	res := m.RenameActiveExperiment("x")
	assert.Equal(t, "No active experiment set.", res.Message)
}

func TestCopyAndSwitch(t *testing.T) {
	m := newTestManager(t)
	require.True(t, m.CreateExperiment("src", nil).Success)
	require.True(t, m.AddLabelsToActiveExperiment([]string{"baseline"}).Success)

	res := m.CopyExperiment("src", "dst")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "dst", m.ActiveExperiment())
	assert.Equal(t, []string{"baseline"}, m.ActiveExperimentMetadata().Labels)

	require.True(t, m.SetActiveExperiment("src").Success)
	assert.Equal(t, "src", m.ActiveExperiment())
}

func TestRefreshPicksUpExternalChanges(t *testing.T) {
	m := newTestManager(t)
	require.True(t, m.CreateExperiment("exp_001", nil).Success)

	// A second manager on the same root simulates an external writer.
	other := New(m.Context())
	require.True(t, other.CreateExperiment("exp_002", nil).Success)

	assert.Equal(t, []string{"exp_001"}, m.Experiments())
	m.Refresh()
	assert.Equal(t, []string{"exp_001", "exp_002"}, m.Experiments())
}
