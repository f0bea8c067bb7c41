package explain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// bulletPattern matches lines opening with a dash, bullet glyph, asterisk,
// or a numeral followed by a dot or parenthesis.
var bulletPattern = regexp.MustCompile(`^\s*(?:[-•*]|\d+[.)])\s+`)

// extractBullets pulls bulleted lines out of free-form model output,
// stripping the markers. Best-effort and lossy: it preserves order but
// makes no structural promises about what the model emitted.
func extractBullets(text string) []string {
	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		if m := bulletPattern.FindString(line); m != "" {
			item := strings.TrimSpace(strings.TrimPrefix(line, m))
			if item != "" {
				bullets = append(bullets, item)
			}
		}
	}
	return bullets
}

const excerptPreviewLen = 150

// truncateExcerpt caps an excerpt for the citation list, appending an
// ellipsis when the text was cut.
func truncateExcerpt(text string) string {
	return truncateRunes(text, excerptPreviewLen)
}

// truncateRunes cuts on a rune boundary so multi-byte characters are
// never split.
func truncateRunes(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}
