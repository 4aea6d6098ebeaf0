package service

import (
	"testing"

	"tongue-analyzer/internal/model"
)

// checkSchema asserts every invariant of the assessment schema.
func checkSchema(t *testing.T, res *model.AssessmentResult) {
	t.Helper()

	if res == nil {
		t.Fatal("result is nil")
	}
	if !res.Constitution.Valid() {
		t.Errorf("unknown constitution %q", res.Constitution)
	}
	if res.Score < model.ScoreMin || res.Score > model.ScoreMax {
		t.Errorf("score %d outside [%d,%d]", res.Score, model.ScoreMin, model.ScoreMax)
	}
	if len(res.TongueFeatures) != len(model.FeatureKeys) {
		t.Errorf("expected %d tongue features, got %d", len(model.FeatureKeys), len(res.TongueFeatures))
	}
	for _, key := range model.FeatureKeys {
		if _, ok := res.TongueFeatures[key]; !ok {
			t.Errorf("missing tongue feature %q", key)
		}
	}
	if len(res.Symptoms) != len(model.SymptomKeys) {
		t.Errorf("expected %d symptoms, got %d", len(model.SymptomKeys), len(res.Symptoms))
	}
	for _, key := range model.SymptomKeys {
		v, ok := res.Symptoms[key]
		if !ok {
			t.Errorf("missing symptom %q", key)
			continue
		}
		if v < 0 || v > 1 {
			t.Errorf("symptom %s=%v outside [0,1]", key, v)
		}
	}
	if len(res.Issues) < 1 || len(res.Issues) > 3 {
		t.Errorf("expected 1-3 issues, got %d", len(res.Issues))
	}
	if !model.ProductIDs[res.Recommendation.ProductID] {
		t.Errorf("unknown product id %q", res.Recommendation.ProductID)
	}
}

// validAssessment returns a well-formed fixture.
func validAssessment() *model.AssessmentResult {
	return &model.AssessmentResult{
		Constitution: model.DampHeat,
		Score:        65,
		TongueFeatures: map[string]bool{
			"teeth_marks": false,
			"pale_white":  false,
			"red":         true,
			"cracked":     false,
			"peeling":     true,
		},
		Symptoms: map[string]float64{
			"obesity":      0.3,
			"high_sugar":   0.2,
			"indigestion":  0.5,
			"fatigue":      0.6,
			"insomnia":     0.4,
			"acid_reflux":  0.2,
			"dry_mouth":    0.7,
			"constipation": 0.3,
			"irritability": 0.85,
		},
		Issues: []string{"Thick yellow coating", "Red body"},
		Recommendation: model.Recommendation{
			Name:      "Cooling Mint Infusion",
			ProductID: "drink-2",
			Desc:      "Specially formulated for Damp Heat constitution",
		},
	}
}
