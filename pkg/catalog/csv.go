package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/supptracker/compound-registry/pkg/compound"
	"github.com/supptracker/compound-registry/pkg/interaction"
)

// LoadCompounds reads compounds.csv. Required columns: id, name. The
// synonyms and aliases columns run through the tokenizer; external_ids
// holds `ns:value` pairs separated by `;` or `|`.
func LoadCompounds(path string, opts Options) (compound.Catalog, error) {
	catalog := make(compound.Catalog)
	err := readCSV(path, opts, func(row record) error {
		id := row.get("id")
		if id == "" {
			return nil // skip blank rows rather than failing the load
		}
		if _, dup := catalog[id]; dup {
			return fmt.Errorf("duplicate compound id %q", id)
		}
		catalog[id] = &compound.Compound{
			ID:          id,
			Name:        row.get("name"),
			Synonyms:    compound.ParseSynonyms(row.get("synonyms")),
			Aliases:     compound.ParseSynonyms(row.get("aliases")),
			ExternalIDs: parseExternalIDs(row.get("external_ids")),
			Class:       row.get("class"),
			Route:       row.get("route"),
			CommonDose:  row.get("common_dose"),
			Notes:       row.get("notes"),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// LoadInteractions reads interactions.csv. Mechanism and sources columns
// are `|`-separated lists; bidirectional accepts true/1/yes/y.
func LoadInteractions(path string, opts Options) ([]*interaction.Interaction, error) {
	var out []*interaction.Interaction
	err := readCSV(path, opts, func(row record) error {
		a, b := row.get("a"), row.get("b")
		if a == "" || b == "" {
			return nil
		}
		out = append(out, &interaction.Interaction{
			ID:            row.get("id"),
			A:             a,
			B:             b,
			Bidirectional: parseBool(row.get("bidirectional")),
			Mechanisms:    splitList(row.get("mechanism")),
			Severity:      row.get("severity"),
			Evidence:      row.get("evidence"),
			Effect:        row.get("effect"),
			Action:        row.get("action"),
			SourceIDs:     splitList(row.get("sources")),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadSources reads sources.csv into an id-keyed map.
func LoadSources(path string, opts Options) (map[string]interaction.Source, error) {
	sources := make(map[string]interaction.Source)
	err := readCSV(path, opts, func(row record) error {
		id := row.get("id")
		if id == "" {
			return nil
		}
		sources[id] = interaction.Source{
			ID:    id,
			Type:  row.get("type"),
			Title: row.get("title"),
			URL:   row.get("url"),
			Year:  row.get("year"),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}

// record is one CSV row addressed by header name.
type record struct {
	header map[string]int
	fields []string
}

func (r record) get(col string) string {
	idx, ok := r.header[col]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

// readCSV streams a headered CSV file through fn, transcoding from the
// declared charset when one is set.
func readCSV(path string, opts Options, fn func(record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	if enc := opts.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(f, e.NewDecoder())
	}

	r := csv.NewReader(reader)
	if opts.Delimiter != "" {
		r.Comma = []rune(opts.Delimiter)[0]
	}
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	headerRow, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", path, err)
	}
	header := make(map[string]int, len(headerRow))
	for i, h := range headerRow {
		header[strings.TrimSpace(h)] = i
	}

	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read row of %s: %w", path, err)
		}
		if err := fn(record{header: header, fields: fields}); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// parseExternalIDs parses "pubchem:2519;drugbank:DB00201" style fields.
// Malformed pairs are skipped.
func parseExternalIDs(raw string) map[string]string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	out := make(map[string]string)
	for _, pair := range strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == '|' }) {
		ns, val, ok := strings.Cut(pair, ":")
		ns, val = strings.TrimSpace(ns), strings.TrimSpace(val)
		if !ok || ns == "" || val == "" {
			continue
		}
		out[ns] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
