package service

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"tongue-analyzer/internal/model"
)

// symptomRanges gives the per-key sub-range each synthetic probability is
// drawn from. Keys and ranges are fixed, not configurable at call time.
var symptomRanges = map[string][2]float64{
	"obesity":      {0.1, 0.9},
	"high_sugar":   {0.1, 0.7},
	"indigestion":  {0.2, 0.8},
	"fatigue":      {0.2, 0.9},
	"insomnia":     {0.1, 0.8},
	"acid_reflux":  {0.1, 0.6},
	"dry_mouth":    {0.2, 0.8},
	"constipation": {0.1, 0.7},
	"irritability": {0.2, 0.9},
}

// constitutionOverrides forces the diagnostic signature of conditioned
// constitutions after the independent random draw, so e.g. a Damp Heat
// result always shows a red tongue regardless of the draw.
var constitutionOverrides = map[model.Constitution]struct {
	features map[string]bool
	symptoms map[string]float64
}{
	model.DampHeat: {
		features: map[string]bool{"red": true, "peeling": true},
		symptoms: map[string]float64{"irritability": 0.85},
	},
	model.YangDeficiency: {
		features: map[string]bool{"pale_white": true, "teeth_marks": true},
		symptoms: map[string]float64{"fatigue": 0.9, "obesity": 0.75},
	},
}

// issueRules derives the issue list from tongue features, in priority order.
var issueRules = []struct {
	feature string
	issue   string
}{
	{"teeth_marks", "Teeth marks indicate Qi deficiency"},
	{"pale_white", "Pale color suggests blood deficiency"},
	{"red", "Red color indicates excess heat"},
	{"cracked", "Cracks suggest Yin deficiency"},
}

const defaultIssue = "Generally healthy tongue appearance"

// Generator produces schema-valid synthetic assessments when inference is
// unavailable or its output fails validation.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator. A nil source seeds from the clock; tests
// pass a fixed source for deterministic output.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Generator{rng: rand.New(src)}
}

// Generate produces a synthetic assessment for a uniformly drawn
// constitution. It never fails.
func (g *Generator) Generate() *model.AssessmentResult {
	g.mu.Lock()
	c := model.Constitutions[g.rng.Intn(len(model.Constitutions))]
	g.mu.Unlock()
	return g.GenerateFor(c)
}

// GenerateFor produces a synthetic assessment for a specific constitution:
// uniform draws, then the constitution's override pass, then derived issues
// and the recommendation.
func (g *Generator) GenerateFor(c model.Constitution) *model.AssessmentResult {
	g.mu.Lock()

	score := 55 + g.rng.Intn(41) // [55,95]

	features := make(map[string]bool, len(model.FeatureKeys))
	for _, key := range model.FeatureKeys {
		features[key] = g.rng.Intn(2) == 1
	}

	symptoms := make(map[string]float64, len(model.SymptomKeys))
	for _, key := range model.SymptomKeys {
		r := symptomRanges[key]
		symptoms[key] = round2(r[0] + g.rng.Float64()*(r[1]-r[0]))
	}

	g.mu.Unlock()

	if ov, ok := constitutionOverrides[c]; ok {
		for key, v := range ov.features {
			features[key] = v
		}
		for key, v := range ov.symptoms {
			symptoms[key] = v
		}
	}

	return &model.AssessmentResult{
		Constitution:   c,
		Score:          score,
		TongueFeatures: features,
		Symptoms:       symptoms,
		Issues:         deriveIssues(features),
		Recommendation: Recommend(c),
	}
}

// deriveIssues maps triggered features to issue strings, capped at 3.
func deriveIssues(features map[string]bool) []string {
	var issues []string
	for _, rule := range issueRules {
		if features[rule.feature] {
			issues = append(issues, rule.issue)
		}
	}
	if len(issues) == 0 {
		return []string{defaultIssue}
	}
	if len(issues) > 3 {
		issues = issues[:3]
	}
	return issues
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
