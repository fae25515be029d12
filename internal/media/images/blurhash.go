// Package images computes blur hash placeholders for uploaded images.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/bbrks/go-blurhash"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// blurHashSize bounds the thumbnail the hash is computed from.
	blurHashSize = 64

	// 4x3 components keep hashes around 28 characters.
	xComponents = 4
	yComponents = 3

	// maxImageBytes caps the download; uploads are limited to 50MB.
	maxImageBytes = 50 << 20

	// maxImagePixels caps the decoded size. A small compressed file can
	// declare dimensions that take gigabytes to decode.
	maxImagePixels = 40_000_000

	defaultTimeout = 10 * time.Second
)

// ErrFetch is returned when the image could not be downloaded.
var ErrFetch = errors.New("images: fetch failed")

// ErrTooLarge is returned when an image declares more than maxImagePixels.
var ErrTooLarge = errors.New("images: image dimensions too large")

// Analyzer produces blur hashes for images addressed by URL.
type Analyzer struct {
	http   *http.Client
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer whose downloads time out after timeout.
func NewAnalyzer(timeout time.Duration, logger *slog.Logger) *Analyzer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Analyzer{
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// BlurHash downloads the image at url and returns its blur hash.
func (a *Analyzer) BlurHash(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Gatherly/1.0")

	resp, err := a.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	start := time.Now()
	hash, err := Encode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", err
	}

	a.logger.Debug("computed blurhash",
		"url", url,
		"hash", hash,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return hash, nil
}

// Encode decodes an image and returns its blur hash. The header is checked
// before any pixel data is decoded.
func Encode(r io.Reader) (string, error) {
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &header))
	if err != nil {
		return "", fmt.Errorf("decode image config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return "", fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(io.MultiReader(&header, r))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	thumbnail := img
	bounds := img.Bounds()
	if bounds.Dx() > blurHashSize || bounds.Dy() > blurHashSize {
		thumbnail = imaging.Fit(img, blurHashSize, blurHashSize, imaging.Box)
	}

	hash, err := blurhash.Encode(xComponents, yComponents, thumbnail)
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

var (
	placeholderOnce sync.Once
	placeholderHash string
)

// Placeholder returns the hash of a flat neutral gray image. It stands in
// when an uploaded image cannot be analyzed.
func Placeholder() string {
	placeholderOnce.Do(func() {
		img := imaging.New(8, 8, color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff})
		hash, err := blurhash.Encode(xComponents, yComponents, img)
		if err != nil {
			panic(fmt.Sprintf("images: placeholder blurhash: %v", err))
		}
		placeholderHash = hash
	})
	return placeholderHash
}
