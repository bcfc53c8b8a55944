package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"naviai-server/internal/models"
)

var (
	// Segments are separated by runs of 3+ dots/newlines or any newline run.
	querySeparator = regexp.MustCompile(`[\n.]{3,}|[\n]+`)
	// Leading "1. " / "2) " style enumeration markers.
	enumPrefix = regexp.MustCompile(`^\d+[.)]\s*`)
)

const minQueryRunes = 4

// SplitQueries breaks a pasted block of text into individual query candidates.
// Each segment is trimmed and stripped of its enumeration prefix; segments
// shorter than four runes or starting with '#' are dropped. Returns
// ErrEmptyInput when nothing survives.
func SplitQueries(rawText string) ([]string, error) {
	segments := querySeparator.Split(rawText, -1)

	candidates := make([]string, 0, len(segments))
	for _, segment := range segments {
		candidate := strings.TrimSpace(segment)
		candidate = enumPrefix.ReplaceAllString(candidate, "")
		if utf8.RuneCountInString(candidate) < minQueryRunes || strings.HasPrefix(candidate, "#") {
			continue
		}
		candidates = append(candidates, candidate)
	}

	if len(candidates) == 0 {
		return nil, models.ErrEmptyInput
	}
	return candidates, nil
}
