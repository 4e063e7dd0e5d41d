// Package normalize canonicalizes user-supplied strings before they are
// validated or stored.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email trims surrounding space and lowercases the address. Stored emails
// are always in this form, so lookups by email compare normalized values.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding space and collapses internal runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Status trims surrounding space from a task status. Status is free-form,
// so case and inner text are kept as sent.
func Status(s string) string {
	return strings.TrimSpace(s)
}

// Title trims surrounding space from a task title. Everything else,
// including characters such as '<', is kept as sent.
func Title(s string) string {
	return strings.TrimSpace(s)
}

// SortKey returns the case/diacritic-folded form of a display name, used for
// the *_ci fields that back case-insensitive ordering.
func SortKey(s string) string {
	return text.Fold(Name(s))
}
