package model

// Constitution is the TCM body-pattern label assigned to a tongue image.
type Constitution string

const (
	QiDeficiency   Constitution = "Qi Deficiency"
	YangDeficiency Constitution = "Yang Deficiency"
	YinDeficiency  Constitution = "Yin Deficiency"
	PhlegmDampness Constitution = "Phlegm Dampness"
	DampHeat       Constitution = "Damp Heat"
	BloodStasis    Constitution = "Blood Stasis"
	QiStagnation   Constitution = "Qi Stagnation"
	Balanced       Constitution = "Balanced"
)

// Constitutions is the closed label set, in a fixed order. The set is a
// versioned contract shared with the inference prompt; do not extend it
// without updating the prompt text.
var Constitutions = []Constitution{
	QiDeficiency,
	YangDeficiency,
	YinDeficiency,
	PhlegmDampness,
	DampHeat,
	BloodStasis,
	QiStagnation,
	Balanced,
}

// Valid reports whether c is a member of the closed label set.
func (c Constitution) Valid() bool {
	for _, known := range Constitutions {
		if c == known {
			return true
		}
	}
	return false
}

// FeatureKeys is the exact key set of AssessmentResult.TongueFeatures.
var FeatureKeys = []string{"teeth_marks", "pale_white", "red", "cracked", "peeling"}

// SymptomKeys is the exact key set of AssessmentResult.Symptoms. The order is
// also the dimension order of the symptom vector stored in history.
var SymptomKeys = []string{
	"obesity",
	"high_sugar",
	"indigestion",
	"fatigue",
	"insomnia",
	"acid_reflux",
	"dry_mouth",
	"constipation",
	"irritability",
}

// ProductIDs is the closed set of recommendable product identifiers.
var ProductIDs = map[string]bool{
	"drink-1": true,
	"drink-2": true,
	"drink-3": true,
}

// Scores outside this range fail validation; synthetic results draw from a
// narrower [55,95] sub-range.
const (
	ScoreMin = 50
	ScoreMax = 100
)

// Recommendation is the product suggestion attached to an assessment.
type Recommendation struct {
	Name      string `json:"name"`
	ProductID string `json:"productId"`
	Desc      string `json:"desc"`
}

// AssessmentResult is the canonical output of one analysis run. It is built
// fresh per request by either the validated-inference path or the synthetic
// fallback path and never mutated afterwards.
type AssessmentResult struct {
	Constitution   Constitution       `json:"constitution"`
	Score          int                `json:"score"`
	TongueFeatures map[string]bool    `json:"tongue_features"`
	Symptoms       map[string]float64 `json:"symptoms"`
	Issues         []string           `json:"issues"`
	Recommendation Recommendation     `json:"recommendation"`
}
