package catalog

// similarity.go provides the string normalization and scoring primitives the
// match finders are built on. Name similarity is a sequence-matcher ratio
// over normalized text; serial numbers get their own normalization because
// submitters write the same serial with and without dashes or leading zeros.

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// NormalizeName lower-cases a name and collapses runs of whitespace, so
// "Gibson  Guitar Corporation" and "gibson guitar corporation" compare equal.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NameSimilarity returns a similarity ratio in [0,1] between two names after
// normalization. 1.0 means the normalized forms are identical.
func NameSimilarity(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == nb {
		return 1.0
	}
	return difflib.NewMatcher(splitRunes(na), splitRunes(nb)).Ratio()
}

// splitRunes explodes a string into single-rune elements for the matcher,
// which operates on sequences rather than raw strings.
func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// NormalizeSerial reduces a serial number to its match key: case-folded,
// dashes stripped, and leading zeros removed from the dash-stripped form.
// "9-0824", "90824", and "090824" all normalize to "90824".
func NormalizeSerial(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "")
	return strings.TrimLeft(s, "0")
}

// equalFoldPtr reports case-insensitive equality of two optional strings.
// Two nils are not considered equal; absence never matches anything.
func equalFoldPtr(a, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	return strings.EqualFold(*a, *b)
}

// equalPtr reports exact equality of two optional strings.
func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
