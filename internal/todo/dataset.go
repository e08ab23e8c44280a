package todo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// datasetItem is one entry of a seed file. Title is a pointer so a missing
// key is distinguishable from an empty title.
type datasetItem struct {
	Title    *string `json:"title"`
	Complete bool    `json:"complete"`
}

// ImportDataset creates one task per entry of the JSON array at path and
// returns how many were created. It stops at the first invalid entry.
func ImportDataset(ctx context.Context, store Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read dataset: %w", err)
	}
	var items []datasetItem
	if err := json.Unmarshal(data, &items); err != nil {
		return 0, fmt.Errorf("parse dataset %s: %w", path, err)
	}

	created := 0
	for i, item := range items {
		if item.Title == nil {
			return created, fmt.Errorf("dataset %s: entry %d has no title", path, i)
		}
		t := Task{Title: *item.Title, Complete: item.Complete}
		if err := store.Create(ctx, &t); err != nil {
			return created, fmt.Errorf("dataset %s: entry %d: %w", path, i, err)
		}
		created++
	}
	return created, nil
}
