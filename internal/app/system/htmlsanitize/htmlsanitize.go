// Package htmlsanitize strips markup from request metadata, such as the
// user agent, before it is written to the audit trail.
//
// It is not applied to titles, names or statuses. Those are stored as sent.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func strict() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// PlainText removes all tags from s and returns the unescaped text content,
// trimmed of surrounding space.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	// bluemonday escapes text nodes; undo that so "&" stays "&" in storage.
	return strings.TrimSpace(html.UnescapeString(strict().Sanitize(s)))
}
