package atom

import (
	"regexp"
	"strings"
)

// Preview derivation rules:
//   - preview_image: path of the first markdown image in the content.
//   - preview_text: images removed, links collapsed to their label,
//     markdown symbols stripped, whitespace normalized, first 100 runes.
const previewTextLimit = 100

var (
	markdownImageRE  = regexp.MustCompile(`!\[[^\]]*]\(([^)]+)\)`)
	markdownLinkRE   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	markdownSymbolRE = regexp.MustCompile("[*_`#>~\\-\\[\\]()!]+")
	whitespaceRE     = regexp.MustCompile(`\s+`)
)

// DerivePreview computes the derived preview fields for markdown content.
// Either result is nil when nothing meaningful survives derivation.
func DerivePreview(content string) (previewText, previewImage *string) {
	if m := markdownImageRE.FindStringSubmatch(content); m != nil {
		path := strings.TrimSpace(m[1])
		if path != "" {
			previewImage = &path
		}
	}

	text := markdownImageRE.ReplaceAllString(content, " ")
	text = markdownLinkRE.ReplaceAllString(text, "$1")
	text = markdownSymbolRE.ReplaceAllString(text, " ")
	text = whitespaceRE.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if text == "" {
		return previewText, previewImage
	}

	runes := []rune(text)
	if len(runes) > previewTextLimit {
		text = string(runes[:previewTextLimit])
	}
	previewText = &text
	return previewText, previewImage
}
