package service

import (
	"fmt"
	"math"

	"tongue-analyzer/internal/model"
	"tongue-analyzer/internal/utils"
)

// ValidationKind classifies why a model response was rejected.
type ValidationKind string

const (
	KindMalformedSyntax  ValidationKind = "malformed-syntax"
	KindMissingField     ValidationKind = "missing-field"
	KindUnknownEnumValue ValidationKind = "unknown-enum-value"
	KindOutOfRange       ValidationKind = "out-of-range"
)

// ValidationError reports a rejected model response. The orchestrator treats
// any kind the same way (fall back to a synthetic result); the kind exists
// for logs and tests.
type ValidationError struct {
	Kind  ValidationKind
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid model response (%s): %s %s", e.Kind, e.Field, e.Msg)
}

// rawAssessment mirrors the expected model output with everything optional,
// so missing keys can be told apart from zero values.
type rawAssessment struct {
	Constitution   *string               `json:"constitution"`
	Score          *float64              `json:"score"`
	TongueFeatures map[string]bool       `json:"tongue_features"`
	Symptoms       map[string]float64    `json:"symptoms"`
	Issues         []string              `json:"issues"`
	Recommendation *model.Recommendation `json:"recommendation"`
}

// ParseAssessment parses and strictly validates raw model text into an
// AssessmentResult. Out-of-range values are rejected, never clamped:
// recommendation correctness downstream depends on a trustworthy
// constitution/score pair, so a bad response must not be silently laundered.
//
// A missing recommendation is not an error; the orchestrator attaches one
// from the table.
func ParseAssessment(raw string) (*model.AssessmentResult, error) {
	var parsed rawAssessment
	if err := utils.ParseModelJSON(raw, &parsed); err != nil {
		return nil, &ValidationError{Kind: KindMalformedSyntax, Field: "body", Msg: err.Error()}
	}

	if parsed.Constitution == nil {
		return nil, &ValidationError{Kind: KindMissingField, Field: "constitution", Msg: "is required"}
	}
	if parsed.Score == nil {
		return nil, &ValidationError{Kind: KindMissingField, Field: "score", Msg: "is required"}
	}
	if parsed.TongueFeatures == nil {
		return nil, &ValidationError{Kind: KindMissingField, Field: "tongue_features", Msg: "is required"}
	}
	if parsed.Symptoms == nil {
		return nil, &ValidationError{Kind: KindMissingField, Field: "symptoms", Msg: "is required"}
	}
	if parsed.Issues == nil {
		return nil, &ValidationError{Kind: KindMissingField, Field: "issues", Msg: "is required"}
	}

	constitution := model.Constitution(*parsed.Constitution)
	if !constitution.Valid() {
		return nil, &ValidationError{Kind: KindUnknownEnumValue, Field: "constitution", Msg: fmt.Sprintf("unknown label %q", *parsed.Constitution)}
	}

	if math.Trunc(*parsed.Score) != *parsed.Score {
		return nil, &ValidationError{Kind: KindOutOfRange, Field: "score", Msg: "must be an integer"}
	}
	score := int(*parsed.Score)
	if score < model.ScoreMin || score > model.ScoreMax {
		return nil, &ValidationError{Kind: KindOutOfRange, Field: "score", Msg: fmt.Sprintf("%d outside [%d,%d]", score, model.ScoreMin, model.ScoreMax)}
	}

	features, err := checkFeatures(parsed.TongueFeatures)
	if err != nil {
		return nil, err
	}

	symptoms, err := checkSymptoms(parsed.Symptoms)
	if err != nil {
		return nil, err
	}

	if len(parsed.Issues) == 0 {
		return nil, &ValidationError{Kind: KindMissingField, Field: "issues", Msg: "must not be empty"}
	}
	issues := parsed.Issues
	// Truncation is a non-destructive normalization, unlike the checks above.
	if len(issues) > 3 {
		issues = issues[:3]
	}

	result := &model.AssessmentResult{
		Constitution:   constitution,
		Score:          score,
		TongueFeatures: features,
		Symptoms:       symptoms,
		Issues:         issues,
	}
	if parsed.Recommendation != nil && model.ProductIDs[parsed.Recommendation.ProductID] {
		result.Recommendation = *parsed.Recommendation
	}
	return result, nil
}

// checkFeatures requires exactly the five fixed boolean keys.
func checkFeatures(in map[string]bool) (map[string]bool, error) {
	if len(in) != len(model.FeatureKeys) {
		return nil, &ValidationError{Kind: KindMissingField, Field: "tongue_features", Msg: fmt.Sprintf("expected exactly %d keys, got %d", len(model.FeatureKeys), len(in))}
	}
	out := make(map[string]bool, len(model.FeatureKeys))
	for _, key := range model.FeatureKeys {
		v, ok := in[key]
		if !ok {
			return nil, &ValidationError{Kind: KindMissingField, Field: "tongue_features", Msg: fmt.Sprintf("missing key %q", key)}
		}
		out[key] = v
	}
	return out, nil
}

// checkSymptoms requires exactly the nine fixed keys, each in [0,1].
func checkSymptoms(in map[string]float64) (map[string]float64, error) {
	if len(in) != len(model.SymptomKeys) {
		return nil, &ValidationError{Kind: KindMissingField, Field: "symptoms", Msg: fmt.Sprintf("expected exactly %d keys, got %d", len(model.SymptomKeys), len(in))}
	}
	out := make(map[string]float64, len(model.SymptomKeys))
	for _, key := range model.SymptomKeys {
		v, ok := in[key]
		if !ok {
			return nil, &ValidationError{Kind: KindMissingField, Field: "symptoms", Msg: fmt.Sprintf("missing key %q", key)}
		}
		if v < 0 || v > 1 {
			return nil, &ValidationError{Kind: KindOutOfRange, Field: "symptoms", Msg: fmt.Sprintf("%s=%v outside [0,1]", key, v)}
		}
		out[key] = v
	}
	return out, nil
}
