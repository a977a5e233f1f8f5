package compound

import (
	"reflect"
	"testing"
)

func TestParseSynonyms_Delimiters(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []string
	}{
		{
			name:  "mixed hard delimiters",
			input: "Coffee; tea | matcha / yerba mate",
			want:  []string{"Coffee", "tea", "matcha", "yerba mate"},
		},
		{
			name:  "comma separated",
			input: "St. John's Wort, Hypericum",
			want:  []string{"St. John's Wort", "Hypericum"},
		},
		{
			name:  "parenthetical alternatives",
			input: "Vitamin K2 (MK-7, menaquinone-7)",
			want:  []string{"Vitamin K2", "MK-7", "menaquinone-7"},
		},
		{
			name:  "numeric commas preserved, outer quotes stripped",
			input: `"1,3,7-trimethylxanthine"`,
			want:  []string{"1,3,7-trimethylxanthine"},
		},
		{
			name:  "or and split at word boundaries only",
			input: "ginger or galangal and turmeric",
			want:  []string{"ginger", "galangal", "turmeric"},
		},
		{
			name:  "or inside a word stays intact",
			input: "orange; sandalwood",
			want:  []string{"orange", "sandalwood"},
		},
		{
			name:  "plus and ampersand split",
			input: "EPA + DHA & ALA",
			want:  []string{"EPA", "DHA", "ALA"},
		},
		{
			name:  "backslash splits",
			input: `tea\chai`,
			want:  []string{"tea", "chai"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSynonyms(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSynonyms(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSynonyms_Flattening(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []string
	}{
		{
			name:  "nested slices and map values with dedupe",
			input: []any{"Coffee", []any{"Tea", "Tea"}, map[string]any{"alt": "matcha"}},
			want:  []string{"Coffee", "Tea", "matcha"},
		},
		{
			name:  "json array string",
			input: `["Coffee", "Tea", "Tea"]`,
			want:  []string{"Coffee", "Tea"},
		},
		{
			name:  "json object values",
			input: `{"a": "Coffee", "b": "Tea"}`,
			want:  []string{"Coffee", "Tea"},
		},
		{
			name:  "bracket prefix that is not json",
			input: "[6]-gingerol",
			want:  []string{"[6]-gingerol"},
		},
		{
			name:  "string slice",
			input: []string{"Coffee", "coffee", "COFFEE"},
			want:  []string{"Coffee"},
		},
		{
			name:  "bytes decoded as utf-8",
			input: []byte("Coffee; Tea"),
			want:  []string{"Coffee", "Tea"},
		},
		{
			name:  "stringified number",
			input: 2519,
			want:  []string{"2519"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSynonyms(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSynonyms(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSynonyms_Degenerate(t *testing.T) {
	if got := ParseSynonyms(nil); len(got) != 0 {
		t.Errorf("ParseSynonyms(nil) = %v, want empty", got)
	}
	if got := ParseSynonyms(""); len(got) != 0 {
		t.Errorf("ParseSynonyms(\"\") = %v, want empty", got)
	}
	if got := ParseSynonyms("   ​  "); len(got) != 0 {
		t.Errorf("whitespace-only input = %v, want empty", got)
	}
	if got := ParseSynonyms("Ashwagandha"); !reflect.DeepEqual(got, []string{"Ashwagandha"}) {
		t.Errorf("bare string = %v, want single element", got)
	}
}

// Re-tokenizing the tokenizer's own output must return the same list.
func TestParseSynonyms_Idempotent(t *testing.T) {
	inputs := []any{
		"Coffee; tea | matcha / yerba mate",
		"Vitamin K2 (MK-7, menaquinone-7)",
		"St. John's Wort, Hypericum",
		`["Ashwagandha", "Withania somnifera"]`,
	}
	for _, input := range inputs {
		first := ParseSynonyms(input)
		second := ParseSynonyms(first)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("not idempotent for %v: first %v, second %v", input, first, second)
		}
	}
}

func TestParseSynonyms_WhitespaceCollapse(t *testing.T) {
	got := ParseSynonyms("green ​ tea;  oolong\t tea")
	want := []string{"green tea", "oolong tea"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseSynonyms_CaseInsensitiveDedupe(t *testing.T) {
	got := ParseSynonyms("Matcha; matcha; MATCHA; sencha")
	want := []string{"Matcha", "sencha"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v (first-seen casing must win)", got, want)
	}
}
