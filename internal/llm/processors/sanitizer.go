package processors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MarkupSanitizer strips non-form clutter from page HTML before it is handed
// to the LLM. Element attributes are kept intact because the derived selectors
// must still resolve against the live page.
type MarkupSanitizer struct {
	// Tags to remove completely
	removeTags []string
	// Character cap applied after extraction
	maxLength int
}

// NewMarkupSanitizer creates a new sanitizer with the given character cap.
// A cap of zero or less disables truncation.
func NewMarkupSanitizer(maxLength int) *MarkupSanitizer {
	return &MarkupSanitizer{
		removeTags: []string{
			"script", "style", "svg", "noscript", "iframe",
			"header", "footer", "nav", "aside",
		},
		maxLength: maxLength,
	}
}

// ExtractFormMarkup reduces a full page to the markup most likely to hold the
// application form: the first form element, falling back to the main content
// area, falling back to the whole body.
func (ms *MarkupSanitizer) ExtractFormMarkup(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	for _, tag := range ms.removeTags {
		doc.Find(tag).Remove()
	}

	markup := ms.selectRegion(doc)
	markup = ms.collapseWhitespace(markup)

	if ms.maxLength > 0 && len(markup) > ms.maxLength {
		markup = markup[:ms.maxLength]
	}

	return markup, nil
}

func (ms *MarkupSanitizer) selectRegion(doc *goquery.Document) string {
	for _, selector := range []string{"form", "main", "[role='main']"} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			if markup, err := goquery.OuterHtml(sel); err == nil && strings.TrimSpace(markup) != "" {
				return markup
			}
		}
	}

	if markup, err := goquery.OuterHtml(doc.Find("body").First()); err == nil {
		return markup
	}

	return ""
}

func (ms *MarkupSanitizer) collapseWhitespace(markup string) string {
	// Strip comments first so their content doesn't survive the collapse
	markup = commentPattern.ReplaceAllString(markup, "")
	markup = whitespacePattern.ReplaceAllString(markup, " ")
	return strings.TrimSpace(markup)
}

var (
	commentPattern    = regexp.MustCompile(`<!--[\s\S]*?-->`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)
