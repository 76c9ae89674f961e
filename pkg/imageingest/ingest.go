// Package imageingest validates base64 image payloads (bare or data URI) and
// bounds their size before they are stored as text columns.
package imageingest

import (
	"bytes"
	"context"
	"encoding/base64"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/semaphore"

	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
)

const (
	// TargetBytes is the decoded size a resized image aims for.
	TargetBytes = 5 << 20
	// MaxEncodedLen is ceil(TargetBytes * 4/3), the largest accepted base64 text.
	MaxEncodedLen = (TargetBytes*4 + 2) / 3
	// ResizeThreshold is the decoded size above which images are downscaled.
	ResizeThreshold = 128 << 20
	// JPEGQuality is used when a resized image is re-encoded.
	JPEGQuality = 85
)

var (
	ErrTooLarge        = apperr.New(apperr.TooLarge, "image_too_large", "image exceeds the maximum upload size")
	ErrInvalidEncoding = apperr.New(apperr.InvalidImage, "invalid_encoding", "image is not valid base64")
	ErrInvalidImage    = apperr.New(apperr.InvalidImage, "invalid_image", "image could not be decoded")
)

// Config holds the size limits. Zero fields take the package defaults.
type Config struct {
	MaxEncodedLen   int
	ResizeThreshold int
	TargetBytes     int
	Quality         int
}

func (c Config) withDefaults() Config {
	if c.MaxEncodedLen <= 0 {
		c.MaxEncodedLen = MaxEncodedLen
	}
	if c.ResizeThreshold <= 0 {
		c.ResizeThreshold = ResizeThreshold
	}
	if c.TargetBytes <= 0 {
		c.TargetBytes = TargetBytes
	}
	if c.Quality <= 0 || c.Quality > 100 {
		c.Quality = JPEGQuality
	}
	return c
}

// Ingestor runs the decode and resize steps with at most `workers` in flight.
type Ingestor struct {
	cfg    Config
	decode func(string) ([]byte, error)
	sem    *semaphore.Weighted
}

func New(cfg Config, workers int) *Ingestor {
	if workers <= 0 {
		workers = 4
	}
	return &Ingestor{
		cfg:    cfg.withDefaults(),
		decode: decodeBase64,
		sem:    semaphore.NewWeighted(int64(workers)),
	}
}

// Config returns the effective limits.
func (in *Ingestor) Config() Config { return in.cfg }

// Ingest checks raw and returns the string to store. Payloads under the
// resize threshold come back unchanged; larger ones are downscaled and
// re-encoded as JPEG behind the original prefix.
func (in *Ingestor) Ingest(ctx context.Context, raw string) (string, error) {
	prefix, payload, hasPrefix := splitDataURI(raw)
	if payload == "" {
		return "", ErrInvalidEncoding.WithMessage("image payload is empty")
	}
	if len(payload) > in.cfg.MaxEncodedLen {
		return "", ErrTooLarge
	}

	if err := in.sem.Acquire(ctx, 1); err != nil {
		return "", apperr.WrapInternal("image ingest cancelled", err)
	}
	defer in.sem.Release(1)

	data, err := in.decode(payload)
	if err != nil {
		return "", ErrInvalidEncoding.Wrap(err)
	}
	if len(data) <= in.cfg.ResizeThreshold {
		return raw, nil
	}

	out, err := in.resize(data)
	if err != nil {
		return "", err
	}
	encoded := base64.StdEncoding.EncodeToString(out)
	if hasPrefix {
		return prefix + "," + encoded, nil
	}
	return encoded, nil
}

func (in *Ingestor) resize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImage.Wrap(err)
	}
	scale := math.Sqrt(float64(in.cfg.TargetBytes) / float64(len(data)))
	b := img.Bounds()
	w := int(float64(b.Dx()) * scale)
	h := int(float64(b.Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	resized := imaging.Resize(img, w, h, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(in.cfg.Quality)); err != nil {
		return nil, apperr.WrapInternal("re-encode image", err)
	}
	return buf.Bytes(), nil
}

// splitDataURI splits on the first comma. Without one the whole input is the
// payload.
func splitDataURI(raw string) (prefix, payload string, ok bool) {
	i := strings.IndexByte(raw, ',')
	if i < 0 {
		return "", strings.TrimSpace(raw), false
	}
	return raw[:i], strings.TrimSpace(raw[i+1:]), true
}

func decodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	if raw, rerr := base64.RawStdEncoding.DecodeString(s); rerr == nil {
		return raw, nil
	}
	return nil, err
}
