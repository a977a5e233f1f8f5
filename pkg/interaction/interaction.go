// Package interaction indexes compound interaction records and scores
// their risk against a rules file. It consumes canonical compound ids
// already resolved by pkg/compound; it never performs identity matching
// itself.
package interaction

import (
	"strings"
)

// Interaction is one record from the interactions dataset. A and B are
// canonical compound ids.
type Interaction struct {
	ID            string   `json:"id"`
	A             string   `json:"a"`
	B             string   `json:"b"`
	Bidirectional bool     `json:"bidirectional"`
	Mechanisms    []string `json:"mechanism,omitempty"`
	Severity      string   `json:"severity"`
	Evidence      string   `json:"evidence"`
	Effect        string   `json:"effect,omitempty"`
	Action        string   `json:"action,omitempty"`
	SourceIDs     []string `json:"sources,omitempty"`
}

// Source is one literature reference from the sources dataset.
type Source struct {
	ID    string `json:"id"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
	Year  string `json:"year,omitempty"`
}

// Set holds all interactions indexed by unordered compound pair.
type Set struct {
	all   []*Interaction
	pairs map[[2]string][]*Interaction
}

// NewSet indexes the given interactions. The pair key is order-free so a
// single lookup covers both directions; direction is re-checked in Find.
func NewSet(interactions []*Interaction) *Set {
	s := &Set{
		all:   interactions,
		pairs: make(map[[2]string][]*Interaction, len(interactions)),
	}
	for _, in := range interactions {
		key := pairKey(in.A, in.B)
		s.pairs[key] = append(s.pairs[key], in)
	}
	return s
}

// Len returns the number of indexed interactions.
func (s *Set) Len() int { return len(s.all) }

// All returns the indexed interactions in input order.
func (s *Set) All() []*Interaction { return s.all }

// Find returns the interaction between compounds a and b, if any.
// A forward match (a, b) always applies; the reverse direction matches
// only when the record is bidirectional.
func (s *Set) Find(a, b string) (*Interaction, bool) {
	an, bn := normalizeID(a), normalizeID(b)
	for _, in := range s.pairs[pairKey(a, b)] {
		ia, ib := normalizeID(in.A), normalizeID(in.B)
		if ia == an && ib == bn {
			return in, true
		}
		if in.Bidirectional && ia == bn && ib == an {
			return in, true
		}
	}
	return nil, false
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func pairKey(a, b string) [2]string {
	an, bn := normalizeID(a), normalizeID(b)
	if an > bn {
		an, bn = bn, an
	}
	return [2]string{an, bn}
}
