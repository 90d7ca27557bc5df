// Package normalize provides field normalization for record equivalence testing.
//
// Records are deduplicated by comparing key fields, and the same level of
// theory or publication arrives spelled differently depending on the
// submitting tool ("wB97X-D" vs "wb97x-d", a DOI with a trailing space).
// Without normalization these appear as different records and the database
// accumulates duplicates.
//
// This package provides pure utility functions that operate on primitives
// (strings) rather than domain types, so the same rules apply wherever a
// key field is compared or stored.
//
// Key functions:
//   - Fold: case-insensitive canonical form for technical identifiers
//   - TrimPtr/FoldPtr: nil-safe variants where empty collapses to nil
//   - Fingerprint: deterministic SHA256 digest of a composite key
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// keySeparator joins fingerprint parts. The unit separator control character
// cannot appear in submitted field values, so distinct part lists can never
// collide by concatenation.
const keySeparator = "\x1f"

// Fold returns the canonical comparison form of a technical identifier:
// surrounding whitespace removed and letters lowercased.
//
// Use for fields whose spelling is case-insensitive by convention
// (computational methods, basis sets, DOIs). Do not use for display
// fields like names and titles, which keep their case.
//
// Examples:
//   - Fold("  wB97X-D ") → "wb97x-d"
//   - Fold("CCSD(T)") → "ccsd(t)"
//   - Fold("") → ""
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Trim returns the value with surrounding whitespace removed, preserving case.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// FoldPtr is the nil-safe variant of Fold for optional fields.
// A nil pointer or a value that is empty after folding returns nil, so
// "absent" and "submitted as blank" compare equal.
func FoldPtr(s *string) *string {
	if s == nil {
		return nil
	}

	folded := Fold(*s)
	if folded == "" {
		return nil
	}

	return &folded
}

// TrimPtr is the nil-safe variant of Trim for optional fields.
// A nil pointer or a value that is empty after trimming returns nil.
func TrimPtr(s *string) *string {
	if s == nil {
		return nil
	}

	trimmed := Trim(*s)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}

// Deref returns the value behind an optional field, or "" when absent.
// Used when composing fingerprint parts from nullable key fields.
func Deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// Fingerprint generates a deterministic digest of a composite key.
//
// Formula: SHA256(part1 + US + part2 + US + ...) where US is the unit
// separator, so ("ab", "c") and ("a", "bc") produce different digests.
//
// Used as the stable identity of a dedup key in logs and audit events:
// the digest is safe to index and publish where the raw field values
// (which may be long or contain user text) are not.
//
// Returns: 64-character lowercase hex string (SHA256 output).
func Fingerprint(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, keySeparator)))

	return hex.EncodeToString(hash[:])
}
