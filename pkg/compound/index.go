package compound

import (
	"reflect"
	"sort"
	"strings"
)

// Priority bands order how authoritative a token's source field is when
// several compounds share a lookup key. Lower wins. Synonyms and aliases
// share one band: both are free-text identity claims below the primary
// name. External ids resolve exactly but rank below human-readable aliases
// on key collisions.
const (
	priorityID       = 0
	priorityName     = 1
	priorityAlias    = 2
	priorityExternal = 3
)

// token source labels, carried into the search cache for diagnostics.
const (
	sourceID       = "id"
	sourceName     = "name"
	sourceSynonym  = "synonym"
	sourceAlias    = "alias"
	sourceExternal = "external_id"
)

// indexEntry is one (priority, compound id) pair registered under a
// lookup key.
type indexEntry struct {
	priority int
	id       string
}

// tokenIndex maps a lower-cased or normalized key to its candidates.
type tokenIndex map[string][]indexEntry

// tokenMeta is the per-token record held by the search cache.
type tokenMeta struct {
	value    string
	lower    string
	normal   string
	priority int
	source   string
}

// cacheEntry is the per-compound derived record consulted by Search.
type cacheEntry struct {
	id         string
	idLower    string
	idNormal   string
	nameLower  string
	nameNormal string
	tokens     []tokenMeta
	sortKey    string
}

// builtIndex bundles everything derived from one catalog snapshot.
// It is immutable once built; the registry swaps the whole value.
type builtIndex struct {
	tokens tokenIndex
	cache  []cacheEntry
	ids    []string          // sorted, for deterministic scans
	lower  map[string]string // lower-cased id -> id
}

// fingerprint is the cheap staleness check for a catalog snapshot:
// map identity plus element count. Content mutation behind the same map
// is not detected; callers that edit in place must call Rebuild.
type fingerprint struct {
	ref  uintptr
	size int
}

func fingerprintOf(catalog Catalog) fingerprint {
	if catalog == nil {
		return fingerprint{}
	}
	return fingerprint{ref: reflect.ValueOf(catalog).Pointer(), size: len(catalog)}
}

// buildIndex derives the token index and search cache from a catalog.
// The build is a total replacement: nothing from a previous build is
// reused or patched.
func buildIndex(catalog Catalog) *builtIndex {
	b := &builtIndex{
		tokens: make(tokenIndex),
		cache:  make([]cacheEntry, 0, len(catalog)),
		ids:    make([]string, 0, len(catalog)),
		lower:  make(map[string]string, len(catalog)),
	}

	for id := range catalog {
		b.ids = append(b.ids, id)
	}
	sort.Strings(b.ids)

	for _, id := range b.ids {
		c := catalog[id]
		b.lower[strings.ToLower(id)] = id

		entry := cacheEntry{
			id:       id,
			idLower:  strings.ToLower(id),
			idNormal: Normalize(id),
		}

		add := func(value string, priority int, source string) {
			value = strings.TrimSpace(value)
			if value == "" {
				return
			}
			meta := tokenMeta{
				value:    value,
				lower:    strings.ToLower(value),
				normal:   Normalize(value),
				priority: priority,
				source:   source,
			}
			entry.tokens = append(entry.tokens, meta)
			b.register(meta.lower, priority, id)
			if meta.normal != meta.lower {
				b.register(meta.normal, priority, id)
			}
		}

		add(id, priorityID, sourceID)
		if c.Name != "" {
			add(c.Name, priorityName, sourceName)
			entry.nameLower = strings.ToLower(c.Name)
			entry.nameNormal = Normalize(c.Name)
		}
		for _, s := range c.Synonyms {
			add(s, priorityAlias, sourceSynonym)
		}
		for _, a := range c.Aliases {
			add(a, priorityAlias, sourceAlias)
		}
		for _, ns := range sortedKeys(c.ExternalIDs) {
			add(c.ExternalIDs[ns], priorityExternal, sourceExternal)
		}

		entry.sortKey = entry.nameLower
		if entry.sortKey == "" {
			entry.sortKey = entry.idLower
		}
		b.cache = append(b.cache, entry)
	}

	return b
}

// register inserts a (priority, id) pair under key, skipping exact
// duplicates. Lists stay small (shared tokens across a few compounds), so
// the linear dedupe scan is fine.
func (b *builtIndex) register(key string, priority int, id string) {
	if key == "" {
		return
	}
	for _, e := range b.tokens[key] {
		if e.priority == priority && e.id == id {
			return
		}
	}
	b.tokens[key] = append(b.tokens[key], indexEntry{priority: priority, id: id})
}

// lookup merges the candidates registered under the lower-cased and
// normalized forms of term, sorted by (priority, id).
func (b *builtIndex) lookup(term string) []indexEntry {
	lower := strings.ToLower(term)
	normal := Normalize(term)

	merged := append([]indexEntry(nil), b.tokens[lower]...)
	if normal != lower {
		for _, e := range b.tokens[normal] {
			dup := false
			for _, m := range merged {
				if m == e {
					dup = true
					break
				}
			}
			if !dup {
				merged = append(merged, e)
			}
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].priority != merged[j].priority {
			return merged[i].priority < merged[j].priority
		}
		return merged[i].id < merged[j].id
	})
	return merged
}
