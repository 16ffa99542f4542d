package core

import (
	"regexp"
	"strconv"
	"strings"
)

// amountPattern matches the first dollar amount in free text, with optional
// thousands separators and cents, e.g. "$1,250,000.50" or "90000".
var amountPattern = regexp.MustCompile(`\$?(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)`)

// acceptancePhrases are scanned case-insensitively in voiced text to detect
// an explicit agreement that the scripted offer arithmetic may not capture.
var acceptancePhrases = []string{
	"we accept",
	"we agree to your",
	"you have a deal",
	"it's a deal",
	"agreement reached",
	"we gladly accept",
}

// ExtractAmount returns the first dollar amount found in text. The second
// return value reports whether a match was found.
func ExtractAmount(text string) (float64, bool) {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// DetectAcceptance reports whether the text contains an explicit acceptance
// phrase.
func DetectAcceptance(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range acceptancePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
