// Package fetch downloads media with a Chrome TLS fingerprint.
//
// Zoom's media host rejects plain Go HTTP clients by JA3 fingerprint, so
// downloads go through tls-client impersonating Chrome. The browser session
// hands over the request headers and cookies it captured; this package
// replays them against the media URLs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/cenkalti/backoff/v5"
)

// Client wraps tls-client with a Chrome profile.
type Client struct {
	hc tls_client.HttpClient
}

// NewClient creates a client that impersonates Chrome 131 and follows
// redirects, with the given total request timeout.
func NewClient(timeout time.Duration) (*Client, error) {
	opts := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(int(timeout.Seconds())),
		tls_client.WithClientProfile(profiles.Chrome_131),
		tls_client.WithCookieJar(tls_client.NewCookieJar()),
	}
	hc, err := tls_client.NewHttpClient(nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("tls-client init: %w", err)
	}
	return &Client{hc: hc}, nil
}

// headerOrder is the Chrome-like ordering applied to outgoing requests.
// Order matters for HTTP/2 fingerprinting.
var headerOrder = []string{
	"accept",
	"accept-language",
	"accept-encoding",
	"referer",
	"cookie",
	"user-agent",
}

// Download streams rawURL into dest. The file is written to dest+".part"
// and renamed only after the size floor is met, so dest either holds a
// complete download or does not exist. Transient statuses are retried with
// exponential backoff; returns the byte count written.
func (c *Client) Download(ctx context.Context, rawURL string, headers map[string]string, dest string, minBytes int64) (int64, error) {
	part := dest + ".part"

	operation := func() (int64, error) {
		n, err := c.fetchToFile(ctx, rawURL, headers, part)
		if err == nil {
			return n, nil
		}
		if IsRetryable(err) {
			return 0, err
		}
		return 0, backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second

	n, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(3))
	if err != nil {
		os.Remove(part)
		return 0, err
	}

	if n < minBytes {
		os.Remove(part)
		return n, fmt.Errorf("file too small: %d bytes (floor %d)", n, minBytes)
	}
	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		return 0, fmt.Errorf("finalize %s: %w", dest, err)
	}
	return n, nil
}

// fetchToFile performs one GET attempt, truncating path each time.
func (c *Client) fetchToFile(ctx context.Context, rawURL string, headers map[string]string, path string) (int64, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header[fhttp.HeaderOrderKey] = headerOrder

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("tls request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fhttp.StatusOK {
		return 0, &StatusError{StatusCode: resp.StatusCode}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("write %s: %w", path, err)
	}
	return n, nil
}
