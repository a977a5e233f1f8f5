package interaction

// StackCell is one scored pairwise interaction inside a stack check.
type StackCell struct {
	A         string   `json:"a"`
	B         string   `json:"b"`
	Severity  string   `json:"severity"`
	Evidence  string   `json:"evidence"`
	Effect    string   `json:"effect,omitempty"`
	Action    string   `json:"action,omitempty"`
	Bucket    string   `json:"bucket"`
	Score     float64  `json:"score"`
	SourceIDs []string `json:"sources,omitempty"`
}

// StackReport is the result of checking every pair in a compound stack.
// Matrix is an n×n symmetric score grid (nil where no interaction is
// known); Cells lists only the pairs with a known interaction.
type StackReport struct {
	IDs    []string     `json:"items"`
	Matrix [][]*float64 `json:"matrix"`
	Cells  []StackCell  `json:"interactions"`
}

// CheckStack scores every unordered pair of the given canonical ids.
// Pairs with no known interaction leave their matrix cells nil.
func (s *Set) CheckStack(ids []string, rules Rules) StackReport {
	n := len(ids)
	report := StackReport{
		IDs:    ids,
		Matrix: make([][]*float64, n),
		Cells:  []StackCell{},
	}
	for i := range report.Matrix {
		report.Matrix[i] = make([]*float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			in, ok := s.Find(ids[i], ids[j])
			if !ok {
				continue
			}
			assessed := rules.Score(in)
			score := assessed.Score
			report.Matrix[i][j] = &score
			report.Matrix[j][i] = &score
			report.Cells = append(report.Cells, StackCell{
				A:         ids[i],
				B:         ids[j],
				Severity:  in.Severity,
				Evidence:  in.Evidence,
				Effect:    in.Effect,
				Action:    assessed.Action,
				Bucket:    assessed.Bucket,
				Score:     score,
				SourceIDs: in.SourceIDs,
			})
		}
	}
	return report
}
