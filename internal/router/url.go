package router

import (
	"regexp"
	"strings"
)

// urlPattern matches the first URL in a message. The final character class
// excludes trailing punctuation so "see https://x.test/a." captures without
// the period.
var urlPattern = regexp.MustCompile(`(https?|ftp|file)://[-A-Za-z0-9+&@#/%?=~_|!:,.;]+[-A-Za-z0-9+&@#/%=~_|]`)

// rewriteAnchor replaces an HTML anchor wrapping a URL with the bare URL
// text. Rich-text clients paste links as <a href="...">...</a>, which the
// proxy cannot use as an image reference. Text without both anchor markers
// is returned unchanged.
func rewriteAnchor(text string) string {
	url := urlPattern.FindString(text)
	if url == "" {
		return text
	}
	start := strings.Index(text, "<a")
	end := strings.Index(text, "</a>")
	if start < 0 || end < start {
		return text
	}
	return strings.Replace(text, text[start:end+len("</a>")], url, 1)
}
