package catalog

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/supptracker/compound-registry/pkg/compound"
	"github.com/supptracker/compound-registry/pkg/interaction"
)

// SaveSnapshot serializes a parsed catalog to a gob file. Snapshots skip
// CSV parsing and tokenization on the next load, which matters for large
// datasets on cold start.
func SaveSnapshot(path string, data *Data) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(data); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot deserializes a catalog snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	var data Data
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if data.Compounds == nil {
		data.Compounds = compound.Catalog{}
	}
	if data.Sources == nil {
		data.Sources = map[string]interaction.Source{}
	}
	return &data, nil
}
