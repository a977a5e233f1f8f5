package compound

import (
	"sort"
	"strings"
)

// Search limit bounds. Requests outside the range are clamped rather than
// rejected; zero or negative means "use the default".
const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
)

// Match categories, lower is better. 0–8 compare the lower-cased query
// against lower-cased fields: three tiers (exact, prefix, substring), each
// split by source field (id, name, token). 9–14 repeat the three tiers
// against the normalized forms, with id and name sharing a slot per tier.
// A literal hit always outranks its normalized twin, so the fallback only
// surfaces accent/punctuation-insensitive matches the literal tiers missed
// (e.g. query "st johns" against the token "St. John's Wort").
const (
	catExactID = iota
	catExactName
	catExactToken
	catPrefixID
	catPrefixName
	catPrefixToken
	catSubstrID
	catSubstrName
	catSubstrToken
	catNormExactIDName
	catNormExactToken
	catNormPrefixIDName
	catNormPrefixToken
	catNormSubstrIDName
	catNormSubstrToken
	catNoMatch
)

// rank is the sortable key of one search hit. Shorter, earlier,
// more-authoritative, alphabetically-earlier matches win, in that order.
type rank struct {
	category int
	position int
	length   int
	priority int
	sortKey  string
	id       string
}

func (a rank) less(b rank) bool {
	if a.category != b.category {
		return a.category < b.category
	}
	if a.position != b.position {
		return a.position < b.position
	}
	if a.length != b.length {
		return a.length < b.length
	}
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	if a.sortKey != b.sortKey {
		return a.sortKey < b.sortKey
	}
	return a.id < b.id
}

// Search returns up to limit compounds ranked by relevance to query, best
// first. An empty or whitespace-only query yields an empty result. Search
// never fails; it returns catalog records for external consumption, not
// the internal cache entries.
func (r *Registry) Search(query string, limit int) []*Compound {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*Compound{}
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	catalog, built := r.snapshot()

	lower := strings.ToLower(query)
	normal := Normalize(query)
	useNormal := normal != ""

	var hits []rank
	for i := range built.cache {
		entry := &built.cache[i]
		best := bestRank(entry, lower, normal, useNormal)
		if best.category == catNoMatch {
			continue
		}
		best.sortKey = entry.sortKey
		best.id = entry.id
		hits = append(hits, best)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].less(hits[j]) })

	if len(hits) > limit {
		hits = hits[:limit]
	}
	results := make([]*Compound, 0, len(hits))
	for _, h := range hits {
		if c, ok := catalog[h.id]; ok {
			results = append(results, c)
		}
	}
	return results
}

// bestRank computes the single best rank across every field of one cache
// entry, or a catNoMatch rank when nothing matches.
func bestRank(entry *cacheEntry, lower, normal string, useNormal bool) rank {
	best := rank{category: catNoMatch}

	consider := func(r rank) {
		if r.less(best) {
			best = r
		}
	}

	// Literal tiers against the lower-cased query.
	consider(fieldRank(entry.idLower, lower, catExactID, catPrefixID, catSubstrID, priorityID))
	if entry.nameLower != "" {
		consider(fieldRank(entry.nameLower, lower, catExactName, catPrefixName, catSubstrName, priorityName))
	}
	for _, t := range entry.tokens {
		if t.source == sourceID || t.source == sourceName {
			continue // already covered by the dedicated fields
		}
		r := fieldRank(t.lower, lower, catExactToken, catPrefixToken, catSubstrToken, t.priority)
		consider(r)
	}

	// Normalized fallback tiers.
	if useNormal {
		consider(fieldRank(entry.idNormal, normal, catNormExactIDName, catNormPrefixIDName, catNormSubstrIDName, priorityID))
		if entry.nameNormal != "" {
			consider(fieldRank(entry.nameNormal, normal, catNormExactIDName, catNormPrefixIDName, catNormSubstrIDName, priorityName))
		}
		for _, t := range entry.tokens {
			if t.source == sourceID || t.source == sourceName {
				continue
			}
			consider(fieldRank(t.normal, normal, catNormExactToken, catNormPrefixToken, catNormSubstrToken, t.priority))
		}
	}

	return best
}

// fieldRank matches one query form against one field, trying exact, then
// prefix, then substring. The substring tier records the leftmost match
// position; earlier positions rank better.
func fieldRank(field, query string, exactCat, prefixCat, substrCat, priority int) rank {
	if field == "" || query == "" {
		return rank{category: catNoMatch}
	}
	switch {
	case field == query:
		return rank{category: exactCat, length: len(field), priority: priority}
	case strings.HasPrefix(field, query):
		return rank{category: prefixCat, length: len(field), priority: priority}
	default:
		if pos := strings.Index(field, query); pos >= 0 {
			return rank{category: substrCat, position: pos, length: len(field), priority: priority}
		}
	}
	return rank{category: catNoMatch}
}
