package interaction

import "math"

// Rules is the risk model loaded from risk_rules.yaml. Zero values fall
// back to the defaults below, so a partial rules file is valid.
type Rules struct {
	SeverityMap     map[string]int     `yaml:"severity_map"`
	EvidenceMap     map[string]int     `yaml:"evidence_map"`
	MechanismDeltas map[string]float64 `yaml:"mechanism_deltas"`
	Weights         Weights            `yaml:"weights"`
	Buckets         Buckets            `yaml:"buckets"`
}

// Weights are the term coefficients of the scoring formula.
type Weights struct {
	Severity  float64 `yaml:"severity"`
	Evidence  float64 `yaml:"evidence"`
	Mechanism float64 `yaml:"mechanism"`
}

// Bucket labels a score range and the recommended action for it.
type Bucket struct {
	Min    *float64 `yaml:"min,omitempty"`
	Max    *float64 `yaml:"max,omitempty"`
	Label  string   `yaml:"label"`
	Action string   `yaml:"action"`
}

// Buckets splits the score line into low / caution / high ranges.
type Buckets struct {
	Low     Bucket `yaml:"low"`
	Caution Bucket `yaml:"caution"`
	High    Bucket `yaml:"high"`
}

// DefaultRules returns the built-in risk model used when no rules file is
// present.
func DefaultRules() Rules {
	lowMax := 0.7
	highMin := 1.51
	return Rules{
		SeverityMap: map[string]int{"None": 0, "Mild": 1, "Moderate": 2, "Severe": 3},
		EvidenceMap: map[string]int{"A": 1, "B": 2, "C": 3, "D": 4},
		MechanismDeltas: map[string]float64{
			"CYP3A4_inhibition": 0.6,
			"CYP3A4_induction":  0.6,
			"QT_prolong":        1.0,
			"serotonergic":      1.2,
		},
		Weights: Weights{Severity: 1.0, Evidence: 0.6, Mechanism: 0.4},
		Buckets: Buckets{
			Low:     Bucket{Max: &lowMax, Label: "No meaningful interaction", Action: "No action needed"},
			Caution: Bucket{Label: "Caution", Action: "Monitor"},
			High:    Bucket{Min: &highMin, Label: "High", Action: "Avoid"},
		},
	}
}

// merged returns r with every unset field replaced by its default, so
// partial rules files only override what they mention.
func (r Rules) merged() Rules {
	def := DefaultRules()
	if r.SeverityMap == nil {
		r.SeverityMap = def.SeverityMap
	}
	if r.EvidenceMap == nil {
		r.EvidenceMap = def.EvidenceMap
	}
	if r.MechanismDeltas == nil {
		r.MechanismDeltas = def.MechanismDeltas
	}
	if r.Weights == (Weights{}) {
		r.Weights = def.Weights
	}
	if r.Buckets.Low.Max == nil && r.Buckets.High.Min == nil {
		r.Buckets = def.Buckets
	}
	return r
}

// Assessment is the scored view of one interaction.
type Assessment struct {
	Score  float64 `json:"score"`
	Bucket string  `json:"bucket"`
	Action string  `json:"action"`
}

// Score computes the weighted risk score for an interaction and places it
// in a bucket. Unknown severities score 0 and unknown evidence grades
// score as the weakest grade, so dirty rows degrade instead of failing.
func (r Rules) Score(in *Interaction) Assessment {
	rules := r.merged()

	sev := rules.SeverityMap[in.Severity]
	evd, ok := rules.EvidenceMap[in.Evidence]
	if !ok || evd <= 0 {
		evd = weakestEvidence(rules.EvidenceMap)
	}

	var mechSum float64
	for _, m := range in.Mechanisms {
		mechSum += rules.MechanismDeltas[m]
	}

	score := float64(sev)*rules.Weights.Severity +
		(1.0/float64(evd))*rules.Weights.Evidence +
		mechSum*rules.Weights.Mechanism
	score = math.Round(score*1000) / 1000

	label, action := rules.bucketFor(score)
	if in.Action != "" && label == rules.Buckets.Caution.Label {
		// The dataset's own action wins inside the caution band.
		action = in.Action
	}
	return Assessment{Score: score, Bucket: label, Action: action}
}

func (r Rules) bucketFor(score float64) (label, action string) {
	if r.Buckets.Low.Max != nil && score <= *r.Buckets.Low.Max {
		return r.Buckets.Low.Label, r.Buckets.Low.Action
	}
	if r.Buckets.High.Min != nil && score >= *r.Buckets.High.Min {
		return r.Buckets.High.Label, r.Buckets.High.Action
	}
	return r.Buckets.Caution.Label, r.Buckets.Caution.Action
}

func weakestEvidence(m map[string]int) int {
	weakest := 1
	for _, v := range m {
		if v > weakest {
			weakest = v
		}
	}
	return weakest
}
