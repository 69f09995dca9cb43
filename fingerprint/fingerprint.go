package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// HexLength is the length of a full digest rendered as lowercase hex.
const HexLength = sha256.Size * 2

// DefaultPrefixLength is the truncation used for short, shareable references.
// Truncation is a display concern only and never a uniqueness key.
const DefaultPrefixLength = 8

// Compute returns the sha256 digest of body as lowercase hex. An empty body
// has no fingerprint: the second return is false and callers must treat the
// record as unhashable, not deduplicable.
func Compute(body string) (string, bool) {
	if body == "" {
		return "", false
	}

	digest := sha256.Sum256([]byte(body))

	return hex.EncodeToString(digest[:]), true
}

// Truncate shortens a full digest to prefixLength characters for display.
// Non-positive lengths fall back to DefaultPrefixLength.
func Truncate(digest string, prefixLength int) string {
	if prefixLength <= 0 {
		prefixLength = DefaultPrefixLength
	}

	if len(digest) <= prefixLength {
		return digest
	}

	return digest[:prefixLength]
}

// IsFull reports whether the input is the length of a complete digest.
// Shorter inputs are treated as prefixes by lookup paths.
func IsFull(digest string) bool {
	return len(digest) == HexLength
}
