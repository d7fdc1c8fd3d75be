package utils

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reScript = regexp.MustCompile(`(?i)<script[^>]*>[\s\S]*?</script>`)
	reStyle  = regexp.MustCompile(`(?i)<style[^>]*>[\s\S]*?</style>`)

	stripPolicy = bluemonday.StripTagsPolicy()
)

// SanitizeHTML strips HTML tags, script/style content, and decodes entities,
// returning whitespace-collapsed plain text.
func SanitizeHTML(s string) string {
	// Decode entities first (e.g. &lt; -> <) so tags are recognized
	s = html.UnescapeString(s)

	s = reScript.ReplaceAllString(s, "")
	s = reStyle.ReplaceAllString(s, "")

	s = stripPolicy.Sanitize(s)

	// bluemonday re-escapes entities; decode again to get plain text
	s = html.UnescapeString(s)

	return strings.Join(strings.Fields(s), " ")
}

// accent folding: decompose, drop combining marks, recompose
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldAccents removes diacritics so suggestion matching treats accented and
// unaccented spellings alike.
func FoldAccents(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return out
}

// ToValidUTF8 cleans strings to ensure they are valid UTF-8
func ToValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "")
}
