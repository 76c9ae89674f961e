package proofocr

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	minHeight   = 900
	scaleHeight = 1300
	threshold   = 210
)

// preprocess turns a screenshot into a high-contrast black and white PNG,
// upscaled when short, which Tesseract reads far more reliably.
func preprocess(img image.Image) ([]byte, error) {
	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 15)
	gray = imaging.Sharpen(gray, 0.7)
	if gray.Bounds().Dy() < minHeight {
		gray = imaging.Resize(gray, 0, scaleHeight, imaging.Lanczos)
	}
	bw := binarize(gray, threshold)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, bw, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// binarize applies a global threshold to a grayscale image.
func binarize(img *image.NRGBA, limit uint8) *image.NRGBA {
	b := img.Bounds()
	out := imaging.New(b.Dx(), b.Dy(), color.White)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			if c.R <= limit {
				out.SetNRGBA(x, y, color.NRGBA{A: 255})
			}
		}
	}
	return out
}
