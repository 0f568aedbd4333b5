package session

import (
	"net/url"
	"strings"

	"github.com/chromedp/cdproto/network"
	"golang.org/x/net/publicsuffix"
)

// cookieHeader serializes browser cookies into a Cookie header value for
// the media download. Only cookies on the share link's registrable domain
// are included — the media host (ssrweb.zoom.us) sits under the same
// eTLD+1, and leaking unrelated cookies to it would be wrong.
func cookieHeader(cookies []*network.Cookie, shareURL string) string {
	site := registrableDomain(hostOf(shareURL))

	var parts []string
	for _, c := range cookies {
		if site != "" && registrableDomain(c.Domain) != site {
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// registrableDomain returns the eTLD+1 for a cookie or URL domain, with
// the leading dot of domain-cookies stripped. Empty on failure.
func registrableDomain(domain string) string {
	domain = strings.TrimPrefix(domain, ".")
	if domain == "" {
		return ""
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return ""
	}
	return site
}
