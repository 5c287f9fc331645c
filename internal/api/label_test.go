package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddGlobalLabelIsIdempotent(t *testing.T) {
	ctx := newTestContext(t)

	res := AddGlobalLabel(AddGlobalLabelRequest{LabelName: "baseline"}, ctx)
	require.True(t, res.Success)
	assert.Equal(t, "Label 'baseline' has been added to the global label set.", res.Message)
	assert.Equal(t, []string{"baseline"}, res.Index.GlobalLabels)

	res = AddGlobalLabel(AddGlobalLabelRequest{LabelName: "baseline"}, ctx)
	require.True(t, res.Success)
	assert.Equal(t, "Label 'baseline' already exists in the global label set.", res.Message)
	assert.Equal(t, []string{"baseline"}, res.Index.GlobalLabels)
}

func TestAddLabelsToExperiment(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "exp_001")

	res := AddLabelsToExperiment(AddLabelsToExperimentRequest{
		ExperimentName: "exp_001", Labels: []string{"baseline", "v2", "baseline"},
	}, ctx)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Added labels to experiment 'exp_001': baseline, v2.", res.Message)

	// Labels self-register in the global vocabulary.
	assert.Equal(t, []string{"baseline", "v2"}, res.Index.GlobalLabels)
	assert.Equal(t, []string{"baseline", "v2"}, res.Index.Experiments["exp_001"].Labels)
}

func TestAddLabelsToExperimentEdgeCases(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "exp_001")

	t.Run("empty label list is a no-op success", func(t *testing.T) {
		res := AddLabelsToExperiment(AddLabelsToExperimentRequest{ExperimentName: "exp_001"}, ctx)
		require.True(t, res.Success)
		assert.Equal(t, "No labels to add.", res.Message)
	})

	t.Run("missing experiment fails", func(t *testing.T) {
		res := AddLabelsToExperiment(AddLabelsToExperimentRequest{
			ExperimentName: "ghost", Labels: []string{"x"},
		}, ctx)
		assert.False(t, res.Success)
		assert.Equal(t, "Experiment 'ghost' not found.", res.Message)
	})
}

func TestUpdateExperimentLabels(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "exp_001")
	require.True(t, AddLabelsToExperiment(AddLabelsToExperimentRequest{
		ExperimentName: "exp_001", Labels: []string{"baseline", "v2", "extra"},
	}, ctx).Success)

	t.Run("replaces the label set", func(t *testing.T) {
		res := UpdateExperimentLabels(UpdateExperimentLabelsRequest{
			ExperimentName: "exp_001", Labels: []string{"v2"},
		}, ctx)
		require.True(t, res.Success, res.Message)
		assert.Equal(t, "Labels for 'exp_001' updated successfully.", res.Message)
		assert.Equal(t, []string{"v2"}, res.Index.Experiments["exp_001"].Labels)
		// The vocabulary keeps the unassigned labels.
		assert.Equal(t, []string{"baseline", "v2", "extra"}, res.Index.GlobalLabels)
	})

	t.Run("rejects labels outside the vocabulary", func(t *testing.T) {
		res := UpdateExperimentLabels(UpdateExperimentLabelsRequest{
			ExperimentName: "exp_001", Labels: []string{"v2", "rogue", "alien"},
		}, ctx)
		assert.False(t, res.Success)
		assert.Equal(t, "Labels must be a subset of global labels. Invalid: alien, rogue.", res.Message)
	})

	t.Run("empty set clears the labels", func(t *testing.T) {
		res := UpdateExperimentLabels(UpdateExperimentLabelsRequest{ExperimentName: "exp_001"}, ctx)
		require.True(t, res.Success)
		assert.Empty(t, res.Index.Experiments["exp_001"].Labels)
	})

	t.Run("missing experiment fails", func(t *testing.T) {
		res := UpdateExperimentLabels(UpdateExperimentLabelsRequest{ExperimentName: "ghost"}, ctx)
		assert.False(t, res.Success)
		assert.Equal(t, "Experiment 'ghost' not found.", res.Message)
	})
}

func TestRemoveGlobalLabels(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "exp_001")
	mustCreate(t, ctx, "exp_002")
	require.True(t, AddLabelsToExperiment(AddLabelsToExperimentRequest{
		ExperimentName: "exp_001", Labels: []string{"baseline", "v2"},
	}, ctx).Success)
	require.True(t, AddLabelsToExperiment(AddLabelsToExperimentRequest{
		ExperimentName: "exp_002", Labels: []string{"baseline"},
	}, ctx).Success)

	t.Run("removal cascades to every experiment", func(t *testing.T) {
		res := RemoveGlobalLabels(RemoveGlobalLabelsRequest{Labels: []string{"baseline"}}, ctx)
		require.True(t, res.Success, res.Message)
		assert.Equal(t, "Removed labels globally and from all experiments: baseline.", res.Message)
		assert.Equal(t, []string{"v2"}, res.Index.GlobalLabels)
		assert.Equal(t, []string{"v2"}, res.Index.Experiments["exp_001"].Labels)
		assert.Empty(t, res.Index.Experiments["exp_002"].Labels)
	})

	t.Run("partial removal reports the missing labels", func(t *testing.T) {
		res := RemoveGlobalLabels(RemoveGlobalLabelsRequest{Labels: []string{"v2", "ghost"}}, ctx)
		require.True(t, res.Success)
		assert.Equal(t, "Removed labels globally and from all experiments: v2. Not found: ghost.", res.Message)
	})

	t.Run("all labels missing fails", func(t *testing.T) {
		res := RemoveGlobalLabels(RemoveGlobalLabelsRequest{Labels: []string{"ghost", "alien"}}, ctx)
		assert.False(t, res.Success)
		assert.Equal(t, "None of the labels exist in the global label set: alien, ghost.", res.Message)
	})
}

func TestGetLabelUsage(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "exp_b")
	mustCreate(t, ctx, "exp_a")
	require.True(t, AddGlobalLabel(AddGlobalLabelRequest{LabelName: "unused"}, ctx).Success)
	require.True(t, AddLabelsToExperiment(AddLabelsToExperimentRequest{
		ExperimentName: "exp_a", Labels: []string{"baseline"},
	}, ctx).Success)
	require.True(t, AddLabelsToExperiment(AddLabelsToExperimentRequest{
		ExperimentName: "exp_b", Labels: []string{"baseline"},
	}, ctx).Success)

	res := GetLabelUsage(GetLabelUsageRequest{}, ctx)
	require.True(t, res.Success)
	assert.Equal(t, map[string][]string{
		"baseline": {"exp_a", "exp_b"},
		"unused":   {},
	}, res.Usage)
}

func TestGetExperimentLabelMap(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "exp_001")
	require.True(t, AddGlobalLabel(AddGlobalLabelRequest{LabelName: "unassigned"}, ctx).Success)
	require.True(t, AddLabelsToExperiment(AddLabelsToExperimentRequest{
		ExperimentName: "exp_001", Labels: []string{"assigned"},
	}, ctx).Success)

	res := GetExperimentLabelMap(GetExperimentLabelMapRequest{ExperimentName: "exp_001"}, ctx)
	require.True(t, res.Success)
	assert.Equal(t, map[string]bool{"unassigned": false, "assigned": true}, res.LabelMap)

	missing := GetExperimentLabelMap(GetExperimentLabelMapRequest{ExperimentName: "ghost"}, ctx)
	assert.False(t, missing.Success)
	assert.Equal(t, "Experiment 'ghost' not found.", missing.Message)
}
