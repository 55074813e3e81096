package console

import (
	"regexp"
	"strings"
)

var (
	brPattern      = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrPattern      = regexp.MustCompile(`(?i)<hr\s*/?>`)
	blockPattern   = regexp.MustCompile(`(?i)</?(?:p|div)(?:\s[^>]*)?>`)
	hOpenPattern   = regexp.MustCompile(`(?i)<h[1-6](?:\s[^>]*)?>`)
	hClosePattern  = regexp.MustCompile(`(?i)</h[1-6]>`)
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	newlinePattern = regexp.MustCompile(`\n{3,}`)
	spacePattern   = regexp.MustCompile(`[ \t]+`)
)

// entityReplacer decodes the handful of entities that matter for console
// output. strings.Replacer is single-pass, so "&amp;lt;" stays "&lt;".
var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
	"&amp;", "&",
)

// CleanHTML reduces an HTML body to console-friendly plain text: line-break
// and block tags become newlines, headings become "=== title ===" markers,
// every other tag is stripped, and whitespace is collapsed. It is used for
// display only; the persisted message keeps its original markup.
func CleanHTML(html string) string {
	text := brPattern.ReplaceAllString(html, "\n")
	text = hrPattern.ReplaceAllString(text, "\n"+strings.Repeat("-", 40)+"\n")
	text = blockPattern.ReplaceAllString(text, "\n")
	text = hOpenPattern.ReplaceAllString(text, "\n=== ")
	text = hClosePattern.ReplaceAllString(text, " ===\n")
	text = tagPattern.ReplaceAllString(text, "")

	text = entityReplacer.Replace(text)

	text = newlinePattern.ReplaceAllString(text, "\n\n")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
