// Package importer downloads upstream supplement and interaction
// datasets into a data directory and tracks source URLs and their
// availability in a small SQLite table.
package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Adapter defines one upstream dataset: where it lives by default, what
// file(s) it produces in the data directory, and how to fetch and
// validate it.
type Adapter interface {
	// ID returns the unique identifier of this adapter (e.g. "compounds-csv").
	ID() string
	// Dataset returns the data-directory file this adapter maintains
	// (e.g. "compounds.csv"), or "bundle" for multi-file archives.
	Dataset() string
	// Description returns a human-readable description.
	Description() string
	// DefaultURL returns the default source URL used for seeding the database.
	DefaultURL() string
	// License returns the license identifier for this source (e.g. "CC0", "ODbL").
	License() string
	// Import downloads the source from sourceURL, validates it, and
	// installs it into dataDir.
	Import(ctx context.Context, sourceURL, dataDir string) error
}

var (
	adaptersMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Register adds an adapter to the global registry. Adapters register
// themselves from init.
func Register(a Adapter) {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	adapters[a.ID()] = a
}

// Get looks up an adapter by ID.
func Get(id string) (Adapter, error) {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()
	if a, ok := adapters[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("unknown import source: %q", id)
}

// All returns every registered adapter, sorted by ID.
func All() []Adapter {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()
	out := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
