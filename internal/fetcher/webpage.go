package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gocolly/colly/v2"
)

type Webpage struct {
	opts options
}

// creates a static HTML fetcher
func NewWebpage(opts ...Option) *Webpage {
	return &Webpage{opts: buildOptions(opts)}
}

// downloads the page at rawURL and returns its HTML
func (w *Webpage) Fetch(ctx context.Context, rawURL string) (string, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return "", err
	}

	body, err := get(ctx, w.opts, target)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("%w: empty page", ErrFetch)
	}

	return body, nil
}

// accepts only absolute http(s) URLs
func ValidateURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: invalid url: %v", ErrFetch, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrFetch, u.Scheme)
	}

	if u.Host == "" {
		return "", fmt.Errorf("%w: url has no host", ErrFetch)
	}

	return u.String(), nil
}

// canonical form used for cache keys: lowercase host, no fragment, no
// tracking parameters
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for key := range q {
		if strings.HasPrefix(key, "utm_") || key == "fbclid" || key == "gclid" {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// fetches a single URL with colly and returns the response body
func get(ctx context.Context, o options, target string) (string, error) {
	c := colly.NewCollector(
		colly.UserAgent(o.userAgent),
		colly.AllowURLRevisit(),
	)
	c.Context = ctx
	c.SetRequestTimeout(o.timeout)

	var body string
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})

	if err := c.Visit(target); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetch, target, err)
	}

	return body, nil
}
