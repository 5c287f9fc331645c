package api

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expman/internal/schema"
	"expman/internal/storage"
)

// newTestContext builds a context rooted in a fresh temp directory with a
// schema-typed default configuration.
func newTestContext(t *testing.T) *schema.ExperimentContext {
	t.Helper()
	s, err := schema.NewSchema("training",
		schema.FieldSpec{Name: "lr", Description: "Learning rate.", Default: 1e-4},
		schema.FieldSpec{Name: "batch_size", Description: "Mini-batch size.", Default: 32},
		schema.FieldSpec{Name: "notes", Default: ""},
	)
	require.NoError(t, err)
	ctx, err := schema.NewContext(s.DefaultDocument(), schema.WithBaseDir(t.TempDir()))
	require.NoError(t, err)
	return ctx
}

func mustCreate(t *testing.T, ctx *schema.ExperimentContext, name string) Result {
	t.Helper()
	res := CreateExperiment(CreateExperimentRequest{ExperimentName: name}, ctx)
	require.True(t, res.Success, res.Message)
	return res
}

func TestCreateExperiment(t *testing.T) {
	ctx := newTestContext(t)

	res := mustCreate(t, ctx, "exp_001")
	assert.Equal(t, "Experiment 'exp_001' created.", res.Message)
	require.NotNil(t, res.Index)
	assert.Equal(t, "exp_001", res.Index.ActiveExperiment)
	assert.True(t, res.Index.Has("exp_001"))
	assert.Equal(t, "exp_001/config.yaml", res.Index.Experiments["exp_001"].ConfigPath)
	assert.False(t, res.Index.Experiments["exp_001"].CreatedAt.IsZero())

	assert.True(t, storage.Exists(ctx.ConfigFile("exp_001")))
	assert.True(t, storage.Exists(ctx.IndexFile()))
}

func TestCreateExperimentDuplicateFails(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "exp_001")

	res := CreateExperiment(CreateExperimentRequest{ExperimentName: "exp_001"}, ctx)
	assert.False(t, res.Success)
	assert.Equal(t, "Experiment name already exists: exp_001", res.Message)
	assert.Nil(t, res.Index)
}

func TestCreateExperimentInvalidName(t *testing.T) {
	ctx := newTestContext(t)

	res := CreateExperiment(CreateExperimentRequest{ExperimentName: "bad name"}, ctx)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "invalid characters")
}

func TestCreateExperimentSchemaMismatch(t *testing.T) {
	ctx := newTestContext(t)

	res := CreateExperiment(CreateExperimentRequest{
		ExperimentName: "exp_001",
		Config:         schema.NewDynamicDocument(map[string]any{"foo": 1}),
	}, ctx)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "schema mismatch")
	assert.False(t, storage.Exists(ctx.ExperimentDir("exp_001")))
}

func TestSetActiveExperiment(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "exp_001")
	mustCreate(t, ctx, "exp_002")

	res := SetActiveExperiment(SetActiveExperimentRequest{ExperimentName: "exp_001"}, ctx)
	require.True(t, res.Success)
	assert.Equal(t, "Experiment 'exp_001' is now active.", res.Message)
	assert.Equal(t, "exp_001", res.Index.ActiveExperiment)

	res = SetActiveExperiment(SetActiveExperimentRequest{ExperimentName: "ghost"}, ctx)
	assert.False(t, res.Success)
	assert.Equal(t, "Experiment 'ghost' does not exist.", res.Message)
}

func TestDeleteExperiment(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "exp_001")
	mustCreate(t, ctx, "exp_002")

	t.Run("deleting the active experiment clears the marker", func(t *testing.T) {
		res := DeleteExperiment(DeleteExperimentRequest{ExperimentName: "exp_002"}, ctx)
		require.True(t, res.Success)
		assert.Equal(t, "Experiment 'exp_002' deleted.", res.Message)
		assert.Empty(t, res.Index.ActiveExperiment)
		assert.False(t, res.Index.Has("exp_002"))
		assert.False(t, storage.Exists(ctx.ExperimentDir("exp_002")))
	})

	t.Run("deleting an inactive experiment keeps the marker", func(t *testing.T) {
		mustCreate(t, ctx, "exp_003")
		res := SetActiveExperiment(SetActiveExperimentRequest{ExperimentName: "exp_001"}, ctx)
		require.True(t, res.Success)

		res = DeleteExperiment(DeleteExperimentRequest{ExperimentName: "exp_003"}, ctx)
		require.True(t, res.Success)
		assert.Equal(t, "exp_001", res.Index.ActiveExperiment)
	})

	t.Run("deleting a missing experiment fails", func(t *testing.T) {
		res := DeleteExperiment(DeleteExperimentRequest{ExperimentName: "ghost"}, ctx)
		assert.False(t, res.Success)
		assert.Equal(t, "Experiment 'ghost' does not exist.", res.Message)
	})
}

func TestRenameExperiment(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "old_name")
	labelRes := AddLabelsToExperiment(AddLabelsToExperimentRequest{
		ExperimentName: "old_name", Labels: []string{"baseline"},
	}, ctx)
	require.True(t, labelRes.Success)

	res := RenameExperiment(RenameExperimentRequest{
		OldExperimentName: "old_name", NewExperimentName: "new_name",
	}, ctx)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Experiment 'old_name' renamed to 'new_name'.", res.Message)

	idx := res.Index
	assert.False(t, idx.Has("old_name"))
	require.True(t, idx.Has("new_name"))
	assert.Equal(t, "new_name", idx.ActiveExperiment)
	assert.Equal(t, []string{"baseline"}, idx.Experiments["new_name"].Labels)
	assert.Equal(t, "new_name/config.yaml", idx.Experiments["new_name"].ConfigPath)
	assert.False(t, storage.Exists(ctx.ExperimentDir("old_name")))
	assert.True(t, storage.Exists(ctx.ConfigFile("new_name")))
}

func TestRenameExperimentFailures(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "exp_001")
	mustCreate(t, ctx, "exp_002")

	res := RenameExperiment(RenameExperimentRequest{OldExperimentName: "ghost", NewExperimentName: "x"}, ctx)
	assert.False(t, res.Success)
	assert.Equal(t, "Experiment 'ghost' not found.", res.Message)

	res = RenameExperiment(RenameExperimentRequest{OldExperimentName: "exp_001", NewExperimentName: "exp_002"}, ctx)
	assert.False(t, res.Success)
	assert.Equal(t, "Experiment 'exp_002' already exists.", res.Message)

	res = RenameExperiment(RenameExperimentRequest{OldExperimentName: "exp_001", NewExperimentName: "bad name"}, ctx)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "invalid characters")
}

func TestUpdateAndGetExperimentConfig(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "exp_001")

	typed := ctx.DefaultConfig().(*schema.SchemaDocument)
	updated, err := typed.Schema().NewDocument(map[string]any{"lr": 0.01, "notes": "tuned"})
	require.NoError(t, err)

	res := UpdateExperimentConfig(UpdateExperimentConfigRequest{
		ExperimentName: "exp_001", Config: updated,
	}, ctx)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Configuration for 'exp_001' updated successfully.", res.Message)

	got := GetExperimentConfig(GetExperimentConfigRequest{ExperimentName: "exp_001"}, ctx)
	require.True(t, got.Success, got.Message)
	assert.Equal(t, "Configuration for experiment 'exp_001' successfully retrieved.", got.Message)
	if diff := cmp.Diff(updated.PlainMap(), got.Config.PlainMap()); diff != "" {
		t.Errorf("config round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestUpdateExperimentConfigFailures(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "exp_001")

	res := UpdateExperimentConfig(UpdateExperimentConfigRequest{
		ExperimentName: "exp_001",
		Config:         schema.NewDynamicDocument(map[string]any{"foo": 1}),
	}, ctx)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "schema mismatch")

	res = UpdateExperimentConfig(UpdateExperimentConfigRequest{
		ExperimentName: "ghost", Config: ctx.DefaultConfig(),
	}, ctx)
	assert.False(t, res.Success)
	assert.Equal(t, "Experiment 'ghost' not found.", res.Message)
}

func TestGetExperimentConfigMissing(t *testing.T) {
	ctx := newTestContext(t)

	res := GetExperimentConfig(GetExperimentConfigRequest{ExperimentName: "ghost"}, ctx)
	assert.False(t, res.Success)
	assert.Equal(t, "Experiment 'ghost' not found.", res.Message)
	assert.Nil(t, res.Config)
}

func TestCopyExperiment(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "src")
	require.True(t, AddLabelsToExperiment(AddLabelsToExperimentRequest{
		ExperimentName: "src", Labels: []string{"baseline", "v2"},
	}, ctx).Success)

	typed := ctx.DefaultConfig().(*schema.SchemaDocument)
	custom, err := typed.Schema().NewDocument(map[string]any{"lr": 0.5})
	require.NoError(t, err)
	require.True(t, UpdateExperimentConfig(UpdateExperimentConfigRequest{
		ExperimentName: "src", Config: custom,
	}, ctx).Success)

	res := CopyExperiment(CopyExperimentRequest{
		SrcExperimentName: "src", DstExperimentName: "dst",
	}, ctx)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Copied from 'src' to 'dst'.", res.Message)

	idx := res.Index
	require.True(t, idx.Has("dst"))
	assert.Equal(t, "dst", idx.ActiveExperiment)
	assert.Equal(t, []string{"baseline", "v2"}, idx.Experiments["dst"].Labels)

	got := GetExperimentConfig(GetExperimentConfigRequest{ExperimentName: "dst"}, ctx)
	require.True(t, got.Success)
	if diff := cmp.Diff(custom.PlainMap(), got.Config.PlainMap()); diff != "" {
		t.Errorf("copied config mismatch (-src +dst):\n%s", diff)
	}
}

func TestCopyExperimentFailures(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "src")

	res := CopyExperiment(CopyExperimentRequest{SrcExperimentName: "ghost", DstExperimentName: "dst"}, ctx)
	assert.False(t, res.Success)
	assert.Equal(t, "Experiment 'ghost' does not exist.", res.Message)

	res = CopyExperiment(CopyExperimentRequest{SrcExperimentName: "src", DstExperimentName: "src"}, ctx)
	assert.False(t, res.Success)
	assert.Equal(t, "Experiment name already exists: src", res.Message)
}

func TestGetIndex(t *testing.T) {
	ctx := newTestContext(t)
	mustCreate(t, ctx, "exp_001")

	res := GetIndex(GetIndexRequest{}, ctx)
	require.True(t, res.Success)
	assert.Equal(t, "Successfully obtained the experiment index.", res.Message)
	require.NotNil(t, res.Index)
	assert.True(t, res.Index.Has("exp_001"))
}
