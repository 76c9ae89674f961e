package proofocr

import (
	"errors"
	"regexp"
	"strings"

	"github.com/TurnIfCode/backend-gogo/pkg/money"
)

var (
	centsRE = regexp.MustCompile(`[.,]\d{2}$`)
	// Rp/IDR marked amounts, optionally preceded by a TOTAL label.
	currencyRE = regexp.MustCompile(`(?i)((?:total\s*:?\s*)?(?:rp|idr)\.?\s*\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{2})?|(?:total\s*:?\s*)?(?:rp|idr)\.?\s*\d{4,9})`)
	// bare grouped numbers like 1.250.000 or 50,000.00
	groupedRE = regexp.MustCompile(`\b\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{2})?\b`)
)

// Candidates extracts every amount-looking substring from OCR text.
// OCR confusions inside currency amounts (O for 0) are repaired first.
func Candidates(text string) []string {
	repaired := repairDigits(text)
	seen := map[string]struct{}{}
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if _, ok := seen[s]; ok || s == "" {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, m := range currencyRE.FindAllString(repaired, -1) {
		add(m)
	}
	for _, m := range groupedRE.FindAllString(repaired, -1) {
		add(m)
	}
	return out
}

// repairDigits maps o/O to 0 when it follows a digit or separator and is not
// the start of a word.
func repairDigits(s string) string {
	b := []byte(s)
	isNum := func(c byte) bool { return (c >= '0' && c <= '9') || c == '.' || c == ',' }
	isLetter := func(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
	for i := range b {
		if b[i] != 'o' && b[i] != 'O' {
			continue
		}
		if i == 0 || !isNum(b[i-1]) {
			continue
		}
		if i+1 == len(b) || !isLetter(b[i+1]) || b[i+1] == 'o' || b[i+1] == 'O' {
			b[i] = '0'
		}
	}
	return string(b)
}

// ParseAmount normalizes a match into whole currency units. A trailing
// two-digit decimal part is dropped: 10.000,00 and 10,000.00 are both 10000.
func ParseAmount(found string) (money.Amount, error) {
	s := strings.TrimSpace(found)
	if s == "" {
		return money.Amount{}, errors.New("empty match")
	}
	if centsRE.MatchString(s) {
		cut := strings.LastIndexAny(s, ".,")
		s = s[:cut]
	}
	digits := onlyDigits(s)
	if digits == "" {
		return money.Amount{}, errors.New("no digits in " + found)
	}
	return money.Parse(digits)
}

// BestAmount picks the candidate with the highest score. Ties go to the
// larger amount, then the longer match.
func BestAmount(matches []string) (money.Amount, string, bool) {
	var (
		best      money.Amount
		bestRaw   string
		bestScore = -1
	)
	for _, m := range matches {
		amt, err := ParseAmount(m)
		if err != nil {
			continue
		}
		sc := score(m)
		better := sc > bestScore ||
			sc == bestScore && amt.Cmp(best) > 0 ||
			sc == bestScore && amt.Cmp(best) == 0 && len(m) > len(bestRaw)
		if better {
			best, bestRaw, bestScore = amt, m, sc
		}
	}
	return best, bestRaw, bestScore >= 0
}

func score(raw string) int {
	low := strings.ToLower(raw)
	s := 0
	if strings.Contains(low, "rp") || strings.Contains(low, "idr") {
		s += 10
	}
	if strings.Contains(low, "total") {
		s += 8
	}
	if strings.ContainsAny(raw, ".,") {
		s += 5
	}
	if strings.HasSuffix(raw, ",00") || strings.HasSuffix(raw, ".00") {
		s += 3
	}
	if len(onlyDigits(raw)) >= 4 {
		s++
	}
	return s
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
