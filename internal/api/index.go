package api

import (
	"expman/internal/schema"
	"expman/internal/storage"
)

// GetIndex loads the current experiment index. Read-only.
func GetIndex(req GetIndexRequest, ctx *schema.ExperimentContext) Result {
	io := storage.NewIO(ctx)

	idx, err := io.LoadIndex()
	if err != nil {
		return failErr(err)
	}
	return success(idx, "Successfully obtained the experiment index.")
}
