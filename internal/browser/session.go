package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"

	"applyflow/internal/logging/types"
	"applyflow/pkg/utils"
)

// Session wraps a single page and exposes the selector-level operations the
// fill engine needs. Element lookups wait up to elementTimeout for presence,
// not visibility, because many sites keep file inputs hidden.
type Session struct {
	page           *rod.Page
	elementTimeout time.Duration
	logger         types.Logger
}

// Navigate loads the URL and waits for the load event
func (s *Session) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := rod.Try(func() {
		s.page.Context(navCtx).MustNavigate(url).MustWaitLoad()
	})
	if err != nil {
		return utils.NewResourceError(fmt.Sprintf("failed to navigate to %s: %v", url, err))
	}

	s.logger.Debug("Successfully navigated to URL", map[string]interface{}{
		"url": url,
	})
	return nil
}

// HTML returns the full HTML content of the current page
func (s *Session) HTML() (string, error) {
	html, err := s.page.HTML()
	if err != nil {
		return "", utils.NewResourceError(fmt.Sprintf("failed to get page HTML: %v", err))
	}
	return html, nil
}

// CurrentURL returns the page's current location
func (s *Session) CurrentURL() string {
	var url string
	_ = rod.Try(func() {
		url = s.page.MustInfo().URL
	})
	return url
}

// element waits for the first element matching the selector to be present
func (s *Session) element(selector string) (*rod.Element, error) {
	var el *rod.Element
	err := rod.Try(func() {
		el = s.page.Timeout(s.elementTimeout).MustElement(selector)
	})
	if err != nil {
		return nil, fmt.Errorf("element not found for selector %q: %w", selector, err)
	}
	return el, nil
}

// SetValue clears the matched input and types the value into it
func (s *Session) SetValue(selector, value string) error {
	el, err := s.element(selector)
	if err != nil {
		return err
	}

	err = rod.Try(func() {
		el.MustSelectAllText().MustInput(value)
	})
	if err != nil {
		return fmt.Errorf("failed to set value for selector %q: %w", selector, err)
	}
	return nil
}

// SetFiles attaches local file paths to the matched file input
func (s *Session) SetFiles(selector string, paths []string) error {
	el, err := s.element(selector)
	if err != nil {
		return err
	}

	if err := el.SetFiles(paths); err != nil {
		return fmt.Errorf("failed to set files for selector %q: %w", selector, err)
	}
	return nil
}

// SelectByValue picks the option whose value attribute matches. It reports
// whether an option matched; a non-match is not an error so the caller can
// fall back to matching by visible text.
func (s *Session) SelectByValue(selector, value string) (bool, error) {
	return s.selectOption(selector, value, "value")
}

// SelectByText picks the option whose visible text matches
func (s *Session) SelectByText(selector, text string) (bool, error) {
	return s.selectOption(selector, text, "text")
}

func (s *Session) selectOption(selector, target, mode string) (bool, error) {
	el, err := s.element(selector)
	if err != nil {
		return false, err
	}

	// rod's own Select matches by text only, so option matching is done in
	// page JS with a change event dispatched for framework listeners
	result, err := el.Eval(`(target, mode) => {
		const options = Array.from(this.options || []);
		const match = options.find(o => mode === "value" ? o.value === target : o.text.trim() === target);
		if (!match) {
			return false;
		}
		this.value = match.value;
		this.dispatchEvent(new Event('input', { bubbles: true }));
		this.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	}`, target, mode)
	if err != nil {
		return false, fmt.Errorf("failed to select option for selector %q: %w", selector, err)
	}

	return result.Value.Bool(), nil
}

// ScriptClick clicks the matched element via page JS, which is more reliable
// than synthetic mouse events for styled controls
func (s *Session) ScriptClick(selector string) error {
	el, err := s.element(selector)
	if err != nil {
		return err
	}

	if _, err := el.Eval(`() => this.click()`); err != nil {
		return fmt.Errorf("failed to click element for selector %q: %w", selector, err)
	}
	return nil
}

// Close closes the underlying page
func (s *Session) Close() error {
	return rod.Try(func() {
		s.page.MustClose()
	})
}
