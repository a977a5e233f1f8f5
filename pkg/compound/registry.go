package compound

import (
	"strings"
	"sync"
)

// Registry owns a catalog snapshot and the derived lookup structures.
// Readers (Resolve, Search) run concurrently; a rebuild constructs the new
// index aside and swaps the reference under the write lock, so readers
// never observe a half-built index.
type Registry struct {
	mu      sync.RWMutex
	catalog Catalog
	built   *builtIndex
	fp      fingerprint
}

// NewRegistry creates a registry over catalog and builds its index
// eagerly. A nil catalog is valid and resolves nothing.
func NewRegistry(catalog Catalog) *Registry {
	r := &Registry{}
	r.SetCatalog(catalog)
	return r
}

// SetCatalog replaces the catalog snapshot and rebuilds the index.
func (r *Registry) SetCatalog(catalog Catalog) {
	built := buildIndex(catalog)
	fp := fingerprintOf(catalog)

	r.mu.Lock()
	r.catalog = catalog
	r.built = built
	r.fp = fp
	r.mu.Unlock()
}

// Rebuild forces a full index rebuild from the current catalog. Needed
// only when the catalog map was mutated in place, which the fingerprint
// heuristic cannot detect.
func (r *Registry) Rebuild() {
	r.mu.RLock()
	catalog := r.catalog
	r.mu.RUnlock()

	built := buildIndex(catalog)
	fp := fingerprintOf(catalog)

	r.mu.Lock()
	// Only install if the catalog has not been swapped meanwhile.
	if fingerprintOf(r.catalog) == fp {
		r.built = built
		r.fp = fp
	}
	r.mu.Unlock()
}

// snapshot returns the current catalog and a fresh index, rebuilding
// lazily when the fingerprint no longer matches.
func (r *Registry) snapshot() (Catalog, *builtIndex) {
	r.mu.RLock()
	catalog, built, fp := r.catalog, r.built, r.fp
	r.mu.RUnlock()

	if fingerprintOf(catalog) == fp && built != nil {
		return catalog, built
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if fingerprintOf(r.catalog) != r.fp || r.built == nil {
		r.built = buildIndex(r.catalog)
		r.fp = fingerprintOf(r.catalog)
	}
	return r.catalog, r.built
}

// Get returns the record for an exact compound id.
func (r *Registry) Get(id string) (*Compound, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.catalog[id]
	return c, ok
}

// Count returns the number of compounds in the current catalog.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.catalog)
}

// Resolve maps one free-text identifier to a canonical compound id.
// Match order: exact id, case-insensitive id, indexed token (lower-cased
// and normalized forms, best priority wins, id breaks ties), then a
// case-insensitive scan of external-id values. Unresolvable input —
// including empty or whitespace-only strings — returns ("", false);
// Resolve never fails for malformed input.
func (r *Registry) Resolve(identifier string) (string, bool) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", false
	}

	catalog, built := r.snapshot()

	if _, ok := catalog[identifier]; ok {
		return identifier, true
	}
	if id, ok := built.lower[strings.ToLower(identifier)]; ok {
		return id, true
	}

	if candidates := built.lookup(identifier); len(candidates) > 0 {
		return candidates[0].id, true
	}

	// Last resort: external ids, either bare ("2519") or
	// namespace-qualified ("pubchem:2519").
	lower := strings.ToLower(identifier)
	wantNS, wantVal, qualified := strings.Cut(lower, ":")
	for _, id := range built.ids {
		for ns, v := range catalog[id].ExternalIDs {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == lower {
				return id, true
			}
			if qualified && strings.ToLower(ns) == strings.TrimSpace(wantNS) && v == strings.TrimSpace(wantVal) {
				return id, true
			}
		}
	}

	return "", false
}
