package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tongue-analyzer/internal/model"
	"tongue-analyzer/internal/service"

	"github.com/gin-gonic/gin"
)

const testToken = "test-token"

// unavailableInferrer mimics a process with no inference credentials and
// counts calls so tests can assert no inference was attempted.
type unavailableInferrer struct {
	calls int32
}

func (u *unavailableInferrer) Infer(ctx context.Context, imageJPEG []byte) (string, error) {
	atomic.AddInt32(&u.calls, 1)
	return "", service.ErrUnavailable
}

func (u *unavailableInferrer) Enabled() bool { return false }

// imageServer serves a small PNG and counts fetches.
func imageServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		for x := 0; x < 4; x++ {
			for y := 0; y < 4; y++ {
				img.Set(x, y, color.RGBA{R: 200, G: 80, B: 80, A: 255})
			}
		}
		_ = png.Encode(w, img)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// newTestRouter wires an analyze route against a counting image server and
// returns the router, the image URL, and the fetch counter.
func newTestRouter(t *testing.T, vision service.Inferrer, apiToken string) (*gin.Engine, string, *int32) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv, hits := imageServer(t)
	fetcher := service.NewImageFetcher(5*time.Second, 1<<20)
	generator := service.NewGenerator(rand.NewSource(9))
	analyzer := service.NewAnalyzer(fetcher, vision, generator)
	h := NewAnalyzeHandler(analyzer, nil, apiToken)

	router := gin.New()
	router.POST("/analyze", h.Analyze)
	return router, srv.URL + "/tongue.png", hits
}

func postAnalyze(t *testing.T, router *gin.Engine, body string, authHeader string) (*httptest.ResponseRecorder, model.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp model.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not an APIResponse envelope: %v\nbody: %s", err, w.Body.String())
	}
	return w, resp
}

func TestAnalyze_SyntheticResultWhenInferenceUnconfigured(t *testing.T) {
	router, imageURL, hits := newTestRouter(t, &unavailableInferrer{}, testToken)

	w, resp := postAnalyze(t, router, `{"image_url": "`+imageURL+`"}`, "Bearer "+testToken)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !resp.Success {
		t.Fatalf("success = false, error = %q", resp.Error)
	}
	if resp.Data == nil {
		t.Fatal("data missing from successful response")
	}
	if !resp.Data.Constitution.Valid() {
		t.Errorf("unknown constitution %q", resp.Data.Constitution)
	}
	if resp.Data.Score < model.ScoreMin || resp.Data.Score > model.ScoreMax {
		t.Errorf("score %d out of range", resp.Data.Score)
	}
	if len(resp.Data.TongueFeatures) != len(model.FeatureKeys) {
		t.Errorf("expected %d tongue features, got %d", len(model.FeatureKeys), len(resp.Data.TongueFeatures))
	}
	if len(resp.Data.Symptoms) != len(model.SymptomKeys) {
		t.Errorf("expected %d symptoms, got %d", len(model.SymptomKeys), len(resp.Data.Symptoms))
	}
	if !model.ProductIDs[resp.Data.Recommendation.ProductID] {
		t.Errorf("unknown product id %q", resp.Data.Recommendation.ProductID)
	}
	if atomic.LoadInt32(hits) != 1 {
		t.Errorf("image fetched %d times, want 1", atomic.LoadInt32(hits))
	}
}

func TestAnalyze_MissingAuthorization(t *testing.T) {
	router, imageURL, hits := newTestRouter(t, &unavailableInferrer{}, testToken)

	w, resp := postAnalyze(t, router, `{"image_url": "`+imageURL+`"}`, "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if resp.Success {
		t.Error("success must be false without a token")
	}
	if resp.Error != ErrUnauthorized {
		t.Errorf("error = %q, want %q", resp.Error, ErrUnauthorized)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Error("rejected request must not fetch the image")
	}
}

func TestAnalyze_WrongToken(t *testing.T) {
	router, imageURL, hits := newTestRouter(t, &unavailableInferrer{}, testToken)

	_, resp := postAnalyze(t, router, `{"image_url": "`+imageURL+`"}`, "Bearer wrong")

	if resp.Success || resp.Error != ErrUnauthorized {
		t.Errorf("got success=%v error=%q, want auth failure", resp.Success, resp.Error)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Error("rejected request must not fetch the image")
	}
}

func TestAnalyze_BareTokenAccepted(t *testing.T) {
	router, imageURL, _ := newTestRouter(t, &unavailableInferrer{}, testToken)

	// Authorization header without the "Bearer " prefix.
	_, resp := postAnalyze(t, router, `{"image_url": "`+imageURL+`"}`, testToken)

	if !resp.Success {
		t.Errorf("bare token rejected: %q", resp.Error)
	}
}

func TestAnalyze_MissingServerToken(t *testing.T) {
	router, imageURL, hits := newTestRouter(t, &unavailableInferrer{}, "")

	w, resp := postAnalyze(t, router, `{"image_url": "`+imageURL+`"}`, "Bearer anything")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if resp.Error != ErrTokenNotSet {
		t.Errorf("error = %q, want %q", resp.Error, ErrTokenNotSet)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Error("misconfigured server must not fetch the image")
	}
}

func TestAnalyze_MissingImageURL(t *testing.T) {
	vision := &unavailableInferrer{}
	router, _, hits := newTestRouter(t, vision, testToken)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"empty object", `{}`},
		{"blank url", `{"image_url": "   "}`},
		{"not json", `image_url=x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := postAnalyze(t, router, tt.body, "Bearer "+testToken)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if resp.Error != ErrMissingImageURL {
				t.Errorf("error = %q, want %q", resp.Error, ErrMissingImageURL)
			}
		})
	}

	if atomic.LoadInt32(hits) != 0 {
		t.Error("invalid requests must not fetch the image")
	}
	if atomic.LoadInt32(&vision.calls) != 0 {
		t.Error("invalid requests must not attempt inference")
	}
}

func TestAnalyze_FetchFailureReturnsError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	fetcher := service.NewImageFetcher(5*time.Second, 1<<20)
	analyzer := service.NewAnalyzer(fetcher, &unavailableInferrer{}, service.NewGenerator(rand.NewSource(6)))
	h := NewAnalyzeHandler(analyzer, nil, testToken)
	router := gin.New()
	router.POST("/analyze", h.Analyze)

	w, resp := postAnalyze(t, router, `{"image_url": "`+srv.URL+`/gone.png"}`, "Bearer "+testToken)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if resp.Success {
		t.Error("fetch failure must not claim success")
	}
	if resp.Data != nil {
		t.Error("fetch failure must not carry data")
	}
}
