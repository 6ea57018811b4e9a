// Package htmltext converts HTML email and comment bodies into plain text
// suitable for terminal display.
package htmltext

import (
	"regexp"
	"strings"
)

var (
	styleBlockRe = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	lineBreakRe  = regexp.MustCompile(`(?i)<br\b[^>]*/?>`)
	paraBreakRe  = regexp.MustCompile(`(?i)</p>\s*<p\b[^>]*>`)
	blockTagRe   = regexp.MustCompile(`(?i)</?(?:p|div|tr|li|ul|ol|blockquote|h[1-6])\b[^>]*>`)
	anyTagRe     = regexp.MustCompile(`<[^>]+>`)
	numericRefRe = regexp.MustCompile(`&#\d+;`)
	blankLineRe  = regexp.MustCompile(`(?m)^[ \t]+$`)
	multiBreakRe = regexp.MustCompile(`\n{3,}`)
)

// entityReplacer decodes the named entities the remote API is known to emit.
// &amp; is decoded last so it cannot manufacture new entity spellings for
// the earlier replacements in the same pass.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&ldquo;", "“",
	"&rdquo;", "”",
	"&lsquo;", "‘",
	"&rsquo;", "’",
	"&mdash;", "—",
	"&ndash;", "–",
	"&amp;", "&",
)

// invisibleReplacer maps zero-width and non-breaking characters to a plain
// space: BOM, zero-width space/non-joiner/joiner, soft hyphen, NBSP.
var invisibleReplacer = strings.NewReplacer(
	"\uFEFF", " ",
	"\u200B", " ",
	"\u200C", " ",
	"\u200D", " ",
	"\u00AD", " ",
	"\u00A0", " ",
)

// Normalize renders a raw HTML fragment as plain text. The rules run in a
// fixed order; each operates on the output of the previous one: line
// endings, style blocks, <br>, paragraph joins, block tags, remaining tags,
// named entities, numeric references, invisible characters, whitespace-only
// lines, blank-line runs, final trim.
func Normalize(html string) string {
	s := html

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = styleBlockRe.ReplaceAllString(s, "")
	s = lineBreakRe.ReplaceAllString(s, "\n")
	s = paraBreakRe.ReplaceAllString(s, "\n")
	s = blockTagRe.ReplaceAllString(s, "\n")
	s = anyTagRe.ReplaceAllString(s, "")

	s = entityReplacer.Replace(s)

	// Numeric character references are dropped, not decoded. The remote
	// editor emits them for decorative symbols that render badly in a
	// terminal.
	s = numericRefRe.ReplaceAllString(s, "")

	s = invisibleReplacer.Replace(s)

	s = blankLineRe.ReplaceAllString(s, "")
	s = multiBreakRe.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
