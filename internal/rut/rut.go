// Package rut implements normalization, formatting and check-digit validation
// for Chilean national identifiers (RUT).
package rut

import (
	"regexp"
	"strings"
)

var formatRegexp = regexp.MustCompile(`^\d{1,8}-[\dK]$`)

// Normalize strips thousands-separator periods and whitespace and uppercases
// the check character. "12.345.678-k" becomes "12345678-K". An empty input
// yields an empty string; Normalize never fails.
func Normalize(rut string) string {
	if rut == "" {
		return ""
	}
	cleaned := strings.ReplaceAll(rut, ".", "")
	cleaned = strings.Join(strings.Fields(cleaned), "")
	return strings.ToUpper(cleaned)
}

// IsValidFormat reports whether the RUT, after normalization, matches
// digits(1,8) '-' [digit|K].
func IsValidFormat(rut string) bool {
	if rut == "" {
		return false
	}
	return formatRegexp.MatchString(Normalize(rut))
}

// ComputeCheckDigit returns the check character for a digit sequence using
// the modulo-11 weighted sum, weights cycling 2..7 right to left. 11 maps to
// '0' and 10 maps to 'K'.
func ComputeCheckDigit(digits string) string {
	sum := 0
	multiplier := 2
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * multiplier
		if multiplier == 7 {
			multiplier = 2
		} else {
			multiplier++
		}
	}

	verifier := 11 - sum%11
	switch verifier {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return string(rune('0' + verifier))
	}
}

// IsValidCheckDigit reports whether the RUT is format-valid and its supplied
// check character matches the computed one.
func IsValidCheckDigit(rut string) bool {
	if !IsValidFormat(rut) {
		return false
	}
	normalized := Normalize(rut)
	digits, verifier, _ := strings.Cut(normalized, "-")
	return ComputeCheckDigit(digits) == verifier
}

// Format re-inserts thousands separators into the digit portion for display:
// "12345678-9" becomes "12.345.678-9". Inputs that are not format-valid are
// returned unchanged.
func Format(rut string) string {
	normalized := Normalize(rut)
	if !formatRegexp.MatchString(normalized) {
		return rut
	}

	digits, verifier, _ := strings.Cut(normalized, "-")

	var b strings.Builder
	for i, d := range digits {
		remaining := len(digits) - i
		if i > 0 && remaining%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return b.String() + "-" + verifier
}
