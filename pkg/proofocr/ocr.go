// Package proofocr reads the transfer amount printed on a topup proof image.
// It is used by the review tooling to compare the detected amount with the
// topup price before an administrator approves it.
package proofocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
	"github.com/TurnIfCode/backend-gogo/pkg/money"
)

var (
	ErrNoAmount     = apperr.New(apperr.NotFound, "amount_not_detected", "no amount detected")
	ErrInvalidProof = apperr.New(apperr.InvalidImage, "invalid_proof", "proof is not a decodable image")
)

const (
	currencyWhitelist = "0123456789RpIDRidrTOTALtotal.,:()/- "
	digitWhitelist    = "0123456789., "
)

// RecognizeFunc runs OCR over an encoded image restricted to whitelist.
type RecognizeFunc func(img []byte, whitelist string) (string, error)

// Result is the outcome of reading one proof.
type Result struct {
	Amount money.Amount
	Raw    string
	Text   string
}

type Reader struct {
	recognize RecognizeFunc
}

// NewReader returns a Reader backed by Tesseract.
func NewReader() *Reader { return &Reader{recognize: tesseract} }

// Read decodes a base64 proof (with or without a data URI prefix), runs the
// OCR passes and picks the most plausible amount.
func (r *Reader) Read(ctx context.Context, encoded string) (Result, error) {
	data, err := decodePayload(encoded)
	if err != nil {
		return Result{}, ErrInvalidProof.Wrap(err)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, ErrInvalidProof.Wrap(err)
	}
	prepared, err := preprocess(img)
	if err != nil {
		return Result{}, apperr.WrapInternal("preprocess proof", err)
	}

	var texts []string
	for _, wl := range []string{currencyWhitelist, digitWhitelist} {
		if err := ctx.Err(); err != nil {
			return Result{}, apperr.WrapInternal("ocr cancelled", err)
		}
		text, err := r.recognize(prepared, wl)
		if err != nil {
			return Result{}, apperr.WrapInternal("ocr pass", err)
		}
		texts = append(texts, normalizeText(text))
	}

	aggregate := strings.Join(texts, " | ")
	amount, raw, ok := BestAmount(Candidates(aggregate))
	if !ok {
		return Result{Text: aggregate}, ErrNoAmount
	}
	return Result{Amount: amount, Raw: raw, Text: aggregate}, nil
}

func decodePayload(s string) ([]byte, error) {
	if i := strings.IndexByte(s, ','); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return base64.RawStdEncoding.DecodeString(s)
	}
	return data, nil
}

// Matches reports whether detected equals price at two decimals. Transfer
// slips show whole units, so a price with cents never matches.
func Matches(detected, price money.Amount) bool {
	return detected.Round2().Equal(price.Round2())
}

func normalizeText(t string) string {
	t = strings.NewReplacer("\n", " ", "\t", " ").Replace(t)
	return strings.Join(strings.Fields(t), " ")
}
