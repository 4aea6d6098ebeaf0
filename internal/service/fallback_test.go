package service

import (
	"math/rand"
	"reflect"
	"testing"

	"tongue-analyzer/internal/model"
)

func TestGenerator_AlwaysSchemaValid(t *testing.T) {
	gen := NewGenerator(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		res := gen.Generate()
		checkSchema(t, res)
		if res.Score < 55 || res.Score > 95 {
			t.Fatalf("synthetic score %d outside [55,95]", res.Score)
		}
		if t.Failed() {
			t.Fatalf("schema violation on trial %d: %+v", i, res)
		}
	}
}

func TestGenerator_ConstitutionOverrides(t *testing.T) {
	gen := NewGenerator(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		res := gen.GenerateFor(model.DampHeat)
		if !res.TongueFeatures["red"] {
			t.Fatal("Damp Heat must always have red = true")
		}
		if !res.TongueFeatures["peeling"] {
			t.Fatal("Damp Heat must always have peeling = true")
		}
		if res.Symptoms["irritability"] != 0.85 {
			t.Fatalf("Damp Heat irritability = %v, want 0.85", res.Symptoms["irritability"])
		}
	}

	for i := 0; i < 100; i++ {
		res := gen.GenerateFor(model.YangDeficiency)
		if !res.TongueFeatures["pale_white"] {
			t.Fatal("Yang Deficiency must always have pale_white = true")
		}
		if !res.TongueFeatures["teeth_marks"] {
			t.Fatal("Yang Deficiency must always have teeth_marks = true")
		}
		if res.Symptoms["fatigue"] != 0.9 {
			t.Fatalf("Yang Deficiency fatigue = %v, want 0.9", res.Symptoms["fatigue"])
		}
	}
}

func TestGenerator_DeterministicWithSeed(t *testing.T) {
	a := NewGenerator(rand.NewSource(42)).Generate()
	b := NewGenerator(rand.NewSource(42)).Generate()

	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed produced different results:\n%+v\n%+v", a, b)
	}
}

func TestGenerator_DerivedIssues(t *testing.T) {
	tests := []struct {
		name     string
		features map[string]bool
		want     []string
	}{
		{
			name:     "no triggered features",
			features: map[string]bool{"teeth_marks": false, "pale_white": false, "red": false, "cracked": false, "peeling": false},
			want:     []string{"Generally healthy tongue appearance"},
		},
		{
			name:     "peeling alone triggers nothing",
			features: map[string]bool{"teeth_marks": false, "pale_white": false, "red": false, "cracked": false, "peeling": true},
			want:     []string{"Generally healthy tongue appearance"},
		},
		{
			name:     "single feature",
			features: map[string]bool{"teeth_marks": false, "pale_white": false, "red": true, "cracked": false, "peeling": false},
			want:     []string{"Red color indicates excess heat"},
		},
		{
			name:     "all features capped at three",
			features: map[string]bool{"teeth_marks": true, "pale_white": true, "red": true, "cracked": true, "peeling": true},
			want: []string{
				"Teeth marks indicate Qi deficiency",
				"Pale color suggests blood deficiency",
				"Red color indicates excess heat",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveIssues(tt.features)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("deriveIssues() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerator_SymptomRangesRespected(t *testing.T) {
	gen := NewGenerator(rand.NewSource(3))

	// Balanced has no override pass, so every draw must stay inside its
	// per-key range.
	for i := 0; i < 500; i++ {
		res := gen.GenerateFor(model.Balanced)
		for key, v := range res.Symptoms {
			r := symptomRanges[key]
			if v < r[0] || v > r[1] {
				t.Fatalf("symptom %s=%v outside [%v,%v]", key, v, r[0], r[1])
			}
		}
	}
}
