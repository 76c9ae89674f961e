package imageingest

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"math/rand"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
)

func noisePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestDefaultLimits(t *testing.T) {
	assert.Equal(t, 6990507, MaxEncodedLen)
	assert.Equal(t, 128*1024*1024, ResizeThreshold)
	cfg := New(Config{}, 0).Config()
	assert.Equal(t, MaxEncodedLen, cfg.MaxEncodedLen)
	assert.Equal(t, JPEGQuality, cfg.Quality)
}

func TestIngestSmallImageUnchanged(t *testing.T) {
	data := noisePNG(t, 16, 16)
	raw := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	out, err := New(Config{}, 1).Ingest(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, raw, out)

	_, payload, ok := splitDataURI(out)
	require.True(t, ok)
	decoded, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestIngestRejectsOversizedBeforeDecode(t *testing.T) {
	in := New(Config{}, 1)
	calls := 0
	in.decode = func(s string) ([]byte, error) {
		calls++
		return decodeBase64(s)
	}

	raw := "data:image/jpeg;base64," + strings.Repeat("A", MaxEncodedLen+1)
	_, err := in.Ingest(context.Background(), raw)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, apperr.TooLarge, apperr.KindOf(err))
	assert.Zero(t, calls)
}

func TestIngestAcceptsExactEncodedBound(t *testing.T) {
	raw := strings.Repeat("A", MaxEncodedLen)
	out, err := New(Config{}, 1).Ingest(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, len(raw), len(out))
}

func TestIngestInvalidEncoding(t *testing.T) {
	in := New(Config{}, 1)
	for _, raw := range []string{"data:image/png;base64,@@@@", "", "data:image/png;base64,"} {
		_, err := in.Ingest(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidEncoding, raw)
		assert.Equal(t, apperr.InvalidImage, apperr.KindOf(err))
	}
}

func TestIngestResizesAboveThreshold(t *testing.T) {
	data := noisePNG(t, 128, 96)
	in := New(Config{ResizeThreshold: 1024, TargetBytes: 512}, 1)
	raw := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	out, err := in.Ingest(context.Background(), raw)
	require.NoError(t, err)

	prefix, payload, ok := splitDataURI(out)
	require.True(t, ok)
	assert.Equal(t, "data:image/png;base64", prefix)

	decoded, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(decoded))
	require.NoError(t, err)
	assert.Less(t, img.Bounds().Dx(), 128)
	assert.Less(t, img.Bounds().Dy(), 96)
	assert.Less(t, len(decoded), len(data))
}

func TestIngestResizeBarePayload(t *testing.T) {
	data := noisePNG(t, 64, 64)
	in := New(Config{ResizeThreshold: 100, TargetBytes: 50}, 1)

	out, err := in.Ingest(context.Background(), base64.StdEncoding.EncodeToString(data))
	require.NoError(t, err)
	assert.NotContains(t, out, ",")
	decoded, err := base64.StdEncoding.DecodeString(out)
	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(decoded))
	require.NoError(t, err)
	// dimensions are truncated but never below one pixel
	assert.GreaterOrEqual(t, img.Bounds().Dx(), 1)
}

func TestIngestResizeRejectsNonImage(t *testing.T) {
	in := New(Config{ResizeThreshold: 4}, 1)
	raw := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("definitely not an image"))

	_, err := in.Ingest(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestIngestHonoursContext(t *testing.T) {
	in := New(Config{}, 1)
	require.NoError(t, in.sem.Acquire(context.Background(), 1))
	defer in.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := in.Ingest(ctx, base64.StdEncoding.EncodeToString([]byte("abc")))
	require.Error(t, err)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
}
