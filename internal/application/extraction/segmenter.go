// Package extraction turns heterogeneous analysis payloads into normalized
// candidate observations (weaknesses, strengths, behavioral patterns) ready
// for matching and merging into the student profile.
package extraction

import (
	"regexp"
	"strings"
)

// Segmentation bounds: concepts shorter than minConceptLen runes are noise,
// longer than maxConceptLen are whole sentences, and one text block never
// contributes more than maxConcepts candidates.
const (
	minConceptLen = 2
	maxConceptLen = 50
	maxConcepts   = 5
)

var (
	// parentheticalRe strips ASCII and full-width parenthetical asides.
	parentheticalRe = regexp.MustCompile(`\([^)]*\)|（[^）]*）`)

	// separatorRe splits on commas, semicolons (ASCII and full-width)
	// and "N." style enumerators.
	separatorRe = regexp.MustCompile(`[,;、，；]|\d+\s*\.`)
)

// SegmentConcepts splits a block of descriptive free text into short candidate
// concept phrases, e.g. "계산 실수가 잦음, 도형 개념 부족" into two concepts.
//
// Pure and total: never fails, empty or whitespace input yields an empty list.
// Order of the input is preserved.
func SegmentConcepts(text string) []string {
	text = parentheticalRe.ReplaceAllString(text, "")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var concepts []string
	for _, part := range separatorRe.Split(text, -1) {
		part = strings.TrimSpace(part)
		n := len([]rune(part))
		if n < minConceptLen || n > maxConceptLen {
			continue
		}
		concepts = append(concepts, part)
		if len(concepts) == maxConcepts {
			break
		}
	}
	return concepts
}
