package service

import (
	"context"
	"log"

	"tongue-analyzer/internal/model"
)

// Source labels recorded with each assessment.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

// Inferrer is the vision inference dependency of the analyzer. Satisfied by
// *VisionClient; tests substitute a fake.
type Inferrer interface {
	// Infer sends the fixed prompt plus a JPEG image and returns raw model
	// text, ErrUnavailable when unconfigured, or a transport error.
	Infer(ctx context.Context, imageJPEG []byte) (string, error)

	// Enabled reports whether the client is configured at all.
	Enabled() bool
}

var _ Inferrer = (*VisionClient)(nil)

// Analyzer runs the analysis pipeline: fetch image, infer, validate, fall
// back to a synthetic result when inference cannot produce a valid one.
type Analyzer struct {
	fetcher   *ImageFetcher
	vision    Inferrer
	generator *Generator
}

// NewAnalyzer creates the pipeline entry point.
func NewAnalyzer(fetcher *ImageFetcher, vision Inferrer, generator *Generator) *Analyzer {
	return &Analyzer{
		fetcher:   fetcher,
		vision:    vision,
		generator: generator,
	}
}

// Analyze runs the full pipeline for one image URL and reports the result
// together with its source (SourceModel or SourceFallback).
//
// A fetch failure terminates the request with an error: the pipeline's
// purpose requires some image to have been examined. Every other failure
// class (inference unavailable, inference failed, validation failed)
// degrades to a synthetic result. The fallback path never re-fetches the
// image or retries inference.
func (a *Analyzer) Analyze(ctx context.Context, imageURL string) (*model.AssessmentResult, string, error) {
	img, err := a.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return nil, "", err
	}

	jpegBytes, err := EncodeJPEG(img)
	if err != nil {
		return nil, "", &FetchError{URL: imageURL, Err: err}
	}

	result, err := a.inferAssessment(ctx, jpegBytes)
	if err != nil {
		log.Printf("inference unusable, serving synthetic result: %v", err)
		return a.generator.Generate(), SourceFallback, nil
	}

	if result.Recommendation.ProductID == "" {
		result.Recommendation = Recommend(result.Constitution)
	}
	return result, SourceModel, nil
}

// inferAssessment covers the inference-and-validation leg. Any error here
// means "no valid inference", which the caller collapses to the fallback.
func (a *Analyzer) inferAssessment(ctx context.Context, jpegBytes []byte) (*model.AssessmentResult, error) {
	raw, err := a.vision.Infer(ctx, jpegBytes)
	if err != nil {
		return nil, err
	}
	return ParseAssessment(raw)
}
