// Package catalog loads the compound, interaction, and source datasets
// from a data directory and hands them to the in-memory registry. It owns
// every file format concern (CSV layout, charset transcoding, the YAML
// risk rules, the gob snapshot); the lookup core only ever sees parsed
// records.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/supptracker/compound-registry/pkg/compound"
	"github.com/supptracker/compound-registry/pkg/interaction"
)

// Well-known file names inside a data directory.
const (
	CompoundsFile    = "compounds.csv"
	InteractionsFile = "interactions.csv"
	SourcesFile      = "sources.csv"
	RulesFile        = "risk_rules.yaml"
	SnapshotFile     = "catalog.gob"
)

// Data is one immutable catalog snapshot: everything the service needs,
// loaded and parsed.
type Data struct {
	Compounds    compound.Catalog
	Interactions []*interaction.Interaction
	Sources      map[string]interaction.Source
	Rules        interaction.Rules
}

// Options tweak how the CSV files are read. Zero values mean UTF-8 with
// comma delimiters.
type Options struct {
	Encoding  string // IANA charset name, e.g. "windows-1252"
	Delimiter string // single-rune field delimiter
}

// LoadDir reads a full catalog from dir. compounds.csv is required;
// interactions.csv, sources.csv, and risk_rules.yaml are optional and
// default to empty data / built-in rules. A catalog.gob snapshot, when
// present, takes priority over the CSV files.
func LoadDir(dir string, opts Options) (*Data, error) {
	if snap := filepath.Join(dir, SnapshotFile); fileExists(snap) {
		return LoadSnapshot(snap)
	}

	compounds, err := LoadCompounds(filepath.Join(dir, CompoundsFile), opts)
	if err != nil {
		return nil, fmt.Errorf("load compounds: %w", err)
	}

	data := &Data{
		Compounds: compounds,
		Sources:   map[string]interaction.Source{},
		Rules:     interaction.DefaultRules(),
	}

	if p := filepath.Join(dir, InteractionsFile); fileExists(p) {
		data.Interactions, err = LoadInteractions(p, opts)
		if err != nil {
			return nil, fmt.Errorf("load interactions: %w", err)
		}
	}
	if p := filepath.Join(dir, SourcesFile); fileExists(p) {
		data.Sources, err = LoadSources(p, opts)
		if err != nil {
			return nil, fmt.Errorf("load sources: %w", err)
		}
	}
	if p := filepath.Join(dir, RulesFile); fileExists(p) {
		data.Rules, err = LoadRules(p)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
	}

	return data, nil
}

// LoadRules parses a risk rules YAML file. Missing sections keep their
// defaults at scoring time.
func LoadRules(path string) (interaction.Rules, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return interaction.Rules{}, fmt.Errorf("read rules %s: %w", path, err)
	}
	var rules interaction.Rules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return interaction.Rules{}, fmt.Errorf("parse rules %s: %w", path, err)
	}
	return rules, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
