package render

import "strings"

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
		"\r", "&#13;",
		"\x00", "",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
		"\x00", "\uFFFD",
	)
)

// escapeHTML escapes text for safe inclusion in HTML content. A carriage
// return is written as a reference so parsing keeps it; NUL is dropped, as
// the parser would drop it.
func escapeHTML(s string) string {
	return textEscaper.Replace(s)
}

// escapeAttr escapes text for inclusion in a double-quoted attribute value.
// NUL becomes U+FFFD, which is what the parser would produce.
func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// escapeRawText keeps content embedded in <style> and <script> from closing
// its element early.
func escapeRawText(s string) string {
	return strings.ReplaceAll(s, "</", `<\/`)
}
