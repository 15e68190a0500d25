package processors

import (
	"strings"
	"testing"
)

func TestExtractFormMarkupPrefersForm(t *testing.T) {
	html := `<html><body>
		<nav>Site navigation</nav>
		<div>Unrelated content</div>
		<form id="apply"><input name="email" type="email" required></form>
		<footer>Legal</footer>
	</body></html>`

	ms := NewMarkupSanitizer(0)
	markup, err := ms.ExtractFormMarkup(html)
	if err != nil {
		t.Fatalf("ExtractFormMarkup() error = %v", err)
	}

	if !strings.Contains(markup, `name="email"`) {
		t.Errorf("form input missing from markup: %s", markup)
	}
	if strings.Contains(markup, "Unrelated content") {
		t.Errorf("content outside the form survived: %s", markup)
	}
}

func TestExtractFormMarkupFallsBackToMain(t *testing.T) {
	html := `<html><body>
		<nav>Navigation</nav>
		<main><div class="application"><input name="name"></div></main>
	</body></html>`

	ms := NewMarkupSanitizer(0)
	markup, err := ms.ExtractFormMarkup(html)
	if err != nil {
		t.Fatalf("ExtractFormMarkup() error = %v", err)
	}

	if !strings.Contains(markup, `name="name"`) {
		t.Errorf("main content missing from markup: %s", markup)
	}
	if strings.Contains(markup, "Navigation") {
		t.Errorf("nav content survived: %s", markup)
	}
}

func TestExtractFormMarkupFallsBackToBody(t *testing.T) {
	html := `<html><body><div><input name="phone"></div></body></html>`

	ms := NewMarkupSanitizer(0)
	markup, err := ms.ExtractFormMarkup(html)
	if err != nil {
		t.Fatalf("ExtractFormMarkup() error = %v", err)
	}
	if !strings.Contains(markup, `name="phone"`) {
		t.Errorf("body content missing from markup: %s", markup)
	}
}

func TestExtractFormMarkupStripsClutterTags(t *testing.T) {
	html := `<html><body><form>
		<script>var tracking = true;</script>
		<style>.hidden { display: none; }</style>
		<svg><path d="M0 0"></path></svg>
		<input name="email">
	</form></body></html>`

	ms := NewMarkupSanitizer(0)
	markup, err := ms.ExtractFormMarkup(html)
	if err != nil {
		t.Fatalf("ExtractFormMarkup() error = %v", err)
	}

	for _, banned := range []string{"tracking", "display: none", "<svg"} {
		if strings.Contains(markup, banned) {
			t.Errorf("clutter %q survived: %s", banned, markup)
		}
	}
	if !strings.Contains(markup, `name="email"`) {
		t.Errorf("input missing from markup: %s", markup)
	}
}

func TestExtractFormMarkupKeepsSelectorAttributes(t *testing.T) {
	html := `<html><body><form>
		<input id="first-name" name="applicant[first]" class="field" data-qa="first" aria-required="true">
	</form></body></html>`

	ms := NewMarkupSanitizer(0)
	markup, err := ms.ExtractFormMarkup(html)
	if err != nil {
		t.Fatalf("ExtractFormMarkup() error = %v", err)
	}

	for _, attr := range []string{`id="first-name"`, `name="applicant[first]"`, `aria-required="true"`} {
		if !strings.Contains(markup, attr) {
			t.Errorf("attribute %s missing from markup: %s", attr, markup)
		}
	}
}

func TestExtractFormMarkupCollapsesWhitespaceAndComments(t *testing.T) {
	html := "<html><body><form>\n\n\t<!-- internal note -->\n\t<input name=\"a\">\n\n</form></body></html>"

	ms := NewMarkupSanitizer(0)
	markup, err := ms.ExtractFormMarkup(html)
	if err != nil {
		t.Fatalf("ExtractFormMarkup() error = %v", err)
	}

	if strings.Contains(markup, "internal note") {
		t.Errorf("comment survived: %s", markup)
	}
	if strings.Contains(markup, "\n") || strings.Contains(markup, "  ") {
		t.Errorf("whitespace not collapsed: %q", markup)
	}
}

func TestExtractFormMarkupTruncates(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body><form>")
	for i := 0; i < 1000; i++ {
		b.WriteString(`<input name="field">`)
	}
	b.WriteString("</form></body></html>")

	ms := NewMarkupSanitizer(500)
	markup, err := ms.ExtractFormMarkup(b.String())
	if err != nil {
		t.Fatalf("ExtractFormMarkup() error = %v", err)
	}
	if len(markup) > 500 {
		t.Errorf("markup length = %d, want <= 500", len(markup))
	}
}
