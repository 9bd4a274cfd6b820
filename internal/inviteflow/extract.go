// Package inviteflow drives the invitation landing flow: normalize the token
// from the URL, verify it against the backend, record the invitee's decision,
// and provision an account on acceptance.
package inviteflow

import (
	"net/url"
	"regexp"
)

// Tokens survive mail clients and redirect chains with extra layers of
// percent-encoding. Five passes is enough for anything seen in practice and
// keeps hostile input from looping forever.
const maxDecodePasses = 5

var (
	tokenMarkerRegexp = regexp.MustCompile(`^(?i)[?&]?token=`)
	tokenShapeRegexp  = regexp.MustCompile(`[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)
)

// ExtractToken normalizes a raw token value taken from a path segment or
// query parameter into the canonical bearer token. It percent-decodes up to
// five times (stopping at a fixed point, and keeping the last good value if a
// pass hits a malformed escape), strips a leading token= marker, and prefers
// a three-segment dot-delimited substring when one is present. It is pure:
// the same input always yields the same output.
func ExtractToken(input string) string {
	if input == "" {
		return ""
	}

	decoded := input
	for i := 0; i < maxDecodePasses; i++ {
		// PathUnescape, not QueryUnescape: decoding must only undo percent
		// escapes, never turn a literal + into a space.
		next, err := url.PathUnescape(decoded)
		if err != nil {
			break
		}
		if next == decoded {
			break
		}
		decoded = next
	}

	decoded = tokenMarkerRegexp.ReplaceAllString(decoded, "")

	if match := tokenShapeRegexp.FindString(decoded); match != "" {
		return match
	}
	return decoded
}
