package compound

import "testing"

func resultIDs(results []*Compound) []string {
	ids := make([]string, len(results))
	for i, c := range results {
		ids[i] = c.ID
	}
	return ids
}

func TestSearch_EmptyQuery(t *testing.T) {
	reg := NewRegistry(testCatalog())

	for _, q := range []string{"", "   ", "\t"} {
		if got := reg.Search(q, 10); len(got) != 0 {
			t.Errorf("Search(%q) = %v, want empty", q, resultIDs(got))
		}
	}
}

func TestSearch_ExactBeatsEverything(t *testing.T) {
	catalog := Catalog{
		"caffeine":       {ID: "caffeine", Name: "Caffeine"},
		"caffeine_anhyd": {ID: "caffeine_anhyd", Name: "Caffeine Anhydrous"},
		"decaf":          {ID: "decaf", Name: "Decaf blend", Synonyms: []string{"low caffeine coffee"}},
	}
	reg := NewRegistry(catalog)

	got := reg.Search("caffeine", 10)
	if len(got) == 0 || got[0].ID != "caffeine" {
		t.Fatalf("Search(\"caffeine\") = %v, want caffeine first", resultIDs(got))
	}

	got = reg.Search("Caffeine Anhydrous", 10)
	if len(got) == 0 || got[0].ID != "caffeine_anhyd" {
		t.Fatalf("exact name query = %v, want caffeine_anhyd first", resultIDs(got))
	}
}

func TestSearch_PrefixBeatsSubstring(t *testing.T) {
	catalog := Catalog{
		"green_tea": {ID: "green_tea", Name: "Green Tea"},
		"matcha":    {ID: "matcha", Name: "Matcha", Synonyms: []string{"stone-ground green tea"}},
	}
	reg := NewRegistry(catalog)

	got := reg.Search("green", 10)
	if len(got) != 2 {
		t.Fatalf("Search(\"green\") = %v, want both compounds", resultIDs(got))
	}
	if got[0].ID != "green_tea" {
		t.Errorf("prefix match must rank first, got %v", resultIDs(got))
	}
}

func TestSearch_SubstringPositionOrders(t *testing.T) {
	catalog := Catalog{
		"a_root": {ID: "a_root", Name: "ginger root"},
		"b_wild": {ID: "b_wild", Name: "wild ginger"},
	}
	reg := NewRegistry(catalog)

	got := reg.Search("ginger", 10)
	if len(got) != 2 {
		t.Fatalf("Search(\"ginger\") = %v, want 2 results", resultIDs(got))
	}
	// "ginger root" matches at position 0 (prefix tier); "wild ginger" is a
	// substring match at position 5.
	if got[0].ID != "a_root" || got[1].ID != "b_wild" {
		t.Errorf("order = %v, want [a_root b_wild]", resultIDs(got))
	}
}

func TestSearch_NormalizedFallback(t *testing.T) {
	reg := NewRegistry(testCatalog())

	got := reg.Search("st johns", 10)
	found := false
	for _, c := range got {
		if c.ID == "st_johns_wort" {
			found = true
		}
	}
	if !found {
		t.Errorf("Search(\"st johns\") = %v, want st_johns_wort included", resultIDs(got))
	}

	// Accented query against accented name.
	got = reg.Search("theanine", 10)
	if len(got) == 0 || got[0].ID != "theanine" {
		t.Errorf("Search(\"theanine\") = %v, want theanine first", resultIDs(got))
	}
}

func TestSearch_LiteralOutranksNormalized(t *testing.T) {
	catalog := Catalog{
		"plain": {ID: "plain", Name: "st johns blend"},
		"wort":  {ID: "wort", Name: "St. John's Wort"},
	}
	reg := NewRegistry(catalog)

	got := reg.Search("st johns", 10)
	if len(got) != 2 {
		t.Fatalf("Search = %v, want both", resultIDs(got))
	}
	// The literal prefix match on "st johns blend" beats the normalized
	// prefix match on "st johns wort".
	if got[0].ID != "plain" {
		t.Errorf("order = %v, want literal match first", resultIDs(got))
	}
}

func TestSearch_ShorterFieldWinsTies(t *testing.T) {
	catalog := Catalog{
		"long":  {ID: "long", Name: "Magnesium Glycinate Complex"},
		"short": {ID: "short", Name: "Magnesium"},
	}
	reg := NewRegistry(catalog)

	got := reg.Search("magnesium", 10)
	if len(got) != 2 {
		t.Fatalf("Search = %v, want 2 results", resultIDs(got))
	}
	// "Magnesium" is an exact name match (category 1); the complex is only
	// a prefix match (category 4).
	if got[0].ID != "short" {
		t.Errorf("order = %v, want short first", resultIDs(got))
	}

	got = reg.Search("magnesium g", 10)
	if len(got) != 1 || got[0].ID != "long" {
		t.Errorf("Search(\"magnesium g\") = %v, want only long", resultIDs(got))
	}
}

func TestSearch_LimitClamp(t *testing.T) {
	catalog := make(Catalog)
	for _, id := range []string{"mag_a", "mag_b", "mag_c", "mag_d", "mag_e"} {
		catalog[id] = &Compound{ID: id, Name: "Magnesium " + id}
	}
	reg := NewRegistry(catalog)

	if got := reg.Search("magnesium", 2); len(got) != 2 {
		t.Errorf("limit 2 returned %d results", len(got))
	}
	// Zero and negative fall back to the default.
	if got := reg.Search("magnesium", 0); len(got) != 5 {
		t.Errorf("limit 0 returned %d results, want all 5 (default limit)", len(got))
	}
	if got := reg.Search("magnesium", 1000); len(got) != 5 {
		t.Errorf("oversized limit returned %d results", len(got))
	}
}

func TestSearch_DisplaySortBreaksTies(t *testing.T) {
	catalog := Catalog{
		"z_id": {ID: "z_id", Name: "Berberine ZZZ"},
		"a_id": {ID: "a_id", Name: "Berberine AAA"},
	}
	reg := NewRegistry(catalog)

	got := reg.Search("berberine", 10)
	if len(got) != 2 {
		t.Fatalf("Search = %v, want 2", resultIDs(got))
	}
	// Same category, position, field length, and priority; the display
	// sort key ("berberine aaa" < "berberine zzz") settles the order.
	if got[0].ID != "a_id" {
		t.Errorf("order = %v, want a_id first (display sort)", resultIDs(got))
	}
}

func TestSearch_NoMatchExcluded(t *testing.T) {
	reg := NewRegistry(testCatalog())
	if got := reg.Search("xylophone", 10); len(got) != 0 {
		t.Errorf("Search(\"xylophone\") = %v, want empty", resultIDs(got))
	}
}
