// Package compound implements identity resolution and fuzzy search over a
// catalog of supplement/drug compounds. The catalog itself is produced by an
// external loader (see pkg/catalog); this package never mutates it.
package compound

// Compound is one catalog entry. Synonyms and Aliases are already tokenized
// by ParseSynonyms at load time; ExternalIDs maps a namespace (e.g.
// "pubchem") to an identifier in that namespace.
type Compound struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Synonyms    []string          `json:"synonyms,omitempty"`
	Aliases     []string          `json:"aliases,omitempty"`
	ExternalIDs map[string]string `json:"external_ids,omitempty"`
	Class       string            `json:"class,omitempty"`
	Route       string            `json:"route,omitempty"`
	CommonDose  string            `json:"common_dose,omitempty"`
	Notes       string            `json:"notes,omitempty"`
}

// Catalog maps compound id to its record. IDs are unique within one
// snapshot; replacing a catalog means handing the registry a new map.
type Catalog map[string]*Compound
