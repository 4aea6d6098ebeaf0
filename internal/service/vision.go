package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tongue-analyzer/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// AnalysisPrompt is the fixed instruction sent with every image. Its wording
// is a compatibility surface shared with the response validator: the field
// names, label set and ranges here must match the assessment schema exactly.
const AnalysisPrompt = `You are a Traditional Chinese Medicine tongue-diagnosis assistant. Examine the tongue photograph and respond with a single JSON object and nothing else: no markdown, no code fences, no commentary.

The object must contain exactly these fields:
- "constitution": one of "Qi Deficiency", "Yang Deficiency", "Yin Deficiency", "Phlegm Dampness", "Damp Heat", "Blood Stasis", "Qi Stagnation", "Balanced"
- "score": an integer health score from 50 to 100
- "tongue_features": an object with exactly the boolean keys "teeth_marks", "pale_white", "red", "cracked", "peeling"
- "symptoms": an object with exactly the keys "obesity", "high_sugar", "indigestion", "fatigue", "insomnia", "acid_reflux", "dry_mouth", "constipation", "irritability", each a probability from 0.0 to 1.0
- "issues": an array of 1 to 3 short observations about the tongue`

// ErrUnavailable means the inference service is not configured for this
// process. It is permanent for the client's lifetime and is distinct from a
// transport failure on an individual call.
var ErrUnavailable = errors.New("vision inference is not configured")

// VisionClient holds the lazily initialized Gemini handle. Initialization
// happens at most once per process; if the API key is absent, the
// unavailability is cached and no call ever attempts network I/O.
type VisionClient struct {
	cfg config.GeminiConfig

	initOnce sync.Once
	client   *genai.Client
	initErr  error
}

// NewVisionClient creates a client without touching the network; the Gemini
// handle is built on first use.
func NewVisionClient(cfg config.GeminiConfig) *VisionClient {
	return &VisionClient{cfg: cfg}
}

// Enabled reports whether an API key is configured. It does not prove the
// key is valid; that surfaces as an inference failure on the first call.
func (c *VisionClient) Enabled() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

func (c *VisionClient) init() {
	c.initOnce.Do(func() {
		if !c.Enabled() {
			c.initErr = ErrUnavailable
			return
		}
		// The client outlives any single request, so construction is not
		// bound to a request context.
		client, err := genai.NewClient(context.Background(), option.WithAPIKey(c.cfg.APIKey))
		if err != nil {
			c.initErr = fmt.Errorf("gemini client init: %w", err)
			return
		}
		c.client = client
	})
}

// Infer sends the fixed analysis prompt together with the JPEG-encoded image
// and returns the model's raw text output verbatim. No parsing happens here.
func (c *VisionClient) Infer(ctx context.Context, imageJPEG []byte) (string, error) {
	c.init()
	if c.initErr != nil {
		return "", c.initErr
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.Timeout)*time.Second)
		defer cancel()
	}

	m := c.client.GenerativeModel(strings.TrimSpace(c.cfg.Model))
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}

	resp, err := m.GenerateContent(ctx,
		genai.Text(AnalysisPrompt),
		&genai.Blob{MIMEType: "image/jpeg", Data: imageJPEG},
	)
	if err != nil {
		return "", fmt.Errorf("gemini inference: %w", err)
	}

	txt := firstText(resp)
	if txt == "" {
		return "", fmt.Errorf("gemini inference: empty response")
	}
	return txt, nil
}

// Close releases the Gemini handle if one was ever built.
func (c *VisionClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
