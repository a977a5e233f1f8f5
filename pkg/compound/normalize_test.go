package compound

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", ""},
		{"Caffeine", "caffeine"},
		{"Élodie", "elodie"},
		{"café", "cafe"},
		{"naïve", "naive"},
		{"St. John's Wort", "st johns wort"},
		{"1,3,7-trimethylxanthine", "1 3 7 trimethylxanthine"},
		{"omega_3__fatty-acids", "omega 3 fatty acids"},
		{"  Vitamin   D3  ", "vitamin d3"},
		{"MK-7 (menaquinone)", "mk 7 menaquinone"},
		{"!!!", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// Normalize feeds index keys; running it twice must be a no-op.
func TestNormalize_Stable(t *testing.T) {
	inputs := []string{"St. John's Wort", "café au lait", "L-théanine", "5-HTP"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)): %q != %q", in, twice, once)
		}
	}
}
