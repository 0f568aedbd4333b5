package session

import (
	"context"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultUserAgent is the Chrome UA presented by both the browser session
// and the media download client, so the two look like one client.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// webdriverJS masks automation before any page script runs. Zoom's player
// refuses to hand out media URLs when navigator.webdriver is set.
const webdriverJS = `Object.defineProperty(navigator, 'webdriver', {
	get: () => false
});`

// clickSubmitJS clicks the passcode submit button, matching by type first
// and by label (English and Japanese share pages) as fallback.
const clickSubmitJS = `(() => {
	const byType = document.querySelector('button[type="submit"]');
	if (byType) { byType.click(); return true; }
	for (const btn of document.querySelectorAll('button')) {
		const text = btn.textContent || '';
		if (text.includes('View Recording') || text.includes('録画を視聴')) {
			btn.click();
			return true;
		}
	}
	return false;
})()`

// hideWebdriver registers the stealth script on every new document.
func hideWebdriver() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(webdriverJS).Do(ctx)
		return err
	})
}
