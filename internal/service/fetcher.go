package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	_ "golang.org/x/image/webp"
)

// FetchError means the image could not be retrieved or decoded. It is a
// terminal request failure: without an examined image there is nothing the
// pipeline can honestly report, synthetic or otherwise.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch image from %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ImageFetcher retrieves an image by URL and normalizes it to three 8-bit
// channels. It never retries; retry policy belongs to the caller.
type ImageFetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

// NewImageFetcher creates a fetcher with a bounded request timeout and a cap
// on the response body size.
func NewImageFetcher(timeout time.Duration, maxBytes int64) *ImageFetcher {
	return &ImageFetcher{
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   maxBytes,
	}
}

// Fetch downloads and decodes the image at url. Any source format registered
// with image.Decode (jpeg, png, gif, webp) is accepted; the result is always
// an RGB-normalized *image.RGBA.
func (f *ImageFetcher) Fetch(ctx context.Context, url string) (*image.RGBA, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes)
	}

	src, _, err := image.Decode(body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("undecodable image: %w", err)}
	}

	return normalizeRGB(src), nil
}

// normalizeRGB redraws the image into RGBA so every source format reaches
// the rest of the pipeline in one canonical color model. Alpha is discarded
// at JPEG encoding time.
func normalizeRGB(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}

// EncodeJPEG renders the normalized image into the three-channel JPEG bytes
// sent to the inference service.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
