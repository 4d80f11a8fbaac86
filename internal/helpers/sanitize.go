package helpers

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy

	articlePolicyOnce sync.Once
	articlePolicy     *bluemonday.Policy
)

// StrictHTMLPolicy returns a shared policy that strips every element and attribute.
func StrictHTMLPolicy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// ArticleHTMLPolicy keeps the structural subset of HTML that survives a
// Markdown conversion (headings, paragraphs, lists, emphasis, code, tables,
// links, images) and drops scripts, event handlers and javascript: URLs.
func ArticleHTMLPolicy() *bluemonday.Policy {
	articlePolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowElements("figure", "figcaption")
		policy.AllowAttrs("class").OnElements("code", "pre")
		policy.AllowURLSchemes("http", "https", "mailto")
		policy.AllowRelativeURLs(true)
		policy.RequireParseableURLs(true)
		articlePolicy = policy
	})
	return articlePolicy
}

// SanitizeHTMLStrict removes every HTML tag from s and returns plain,
// unescaped text.
func SanitizeHTMLStrict(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(StrictHTMLPolicy().Sanitize(s)))
}

// SanitizeArticleHTML cleans readability output before it is converted to Markdown.
func SanitizeArticleHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(ArticleHTMLPolicy().Sanitize(s))
}
