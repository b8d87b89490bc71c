package output

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Model text is untrusted: it may carry HTML copied from search results.
var strictPolicy = bluemonday.StrictPolicy()

// sanitizeMarkdown strips markup and leaves entities escaped so the result is
// inert when a Markdown renderer passes HTML through.
func sanitizeMarkdown(value string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(value))
}

// sanitizeText strips markup for terminal output, where entities would only
// be noise.
func sanitizeText(value string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(value)))
}
