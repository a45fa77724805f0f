// Package security strips markup from user supplied text before it is stored.
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer removes every HTML element from plain-text fields such as
// product descriptions. Safe for concurrent use.
type TextSanitizer struct {
	policy *bluemonday.Policy
}

func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize returns s with all tags removed. Text content is kept; characters
// significant to HTML come back entity-encoded.
func (s *TextSanitizer) Sanitize(text string) string {
	return strings.TrimSpace(s.policy.Sanitize(text))
}
