// Package radiopaedia talks to the encyclopedia site: issuing article-scoped
// searches, fetching article pages, and parsing both into structured form.
package radiopaedia

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	logx "github.com/radchat-core-poc/server/pkg/logger"

	"github.com/radchat-core-poc/server/internal/assistant/model"
)

// Config holds the site endpoint and fixed search scope parameters.
type Config struct {
	BaseURL        string `envconfig:"RADIOPAEDIA_BASE_URL" default:"https://radiopaedia.org"`
	Scope          string `envconfig:"RADIOPAEDIA_SCOPE" default:"articles"`
	Lang           string `envconfig:"RADIOPAEDIA_LANG" default:"us"`
	TimeoutSeconds int    `envconfig:"RADIOPAEDIA_TIMEOUT" default:"20"`
}

// Client fetches raw pages from the site. Parsing lives in parse.go; the
// thin method wrappers here let callers depend on one value for both.
type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

// The site rejects obviously non-browser requests, so send a plausible
// browser profile.
func browserHeaders(req *http.Request) {
	req.Header.Set("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("accept-language", "en-US,en;q=0.7")
	req.Header.Set("upgrade-insecure-requests", "1")
	req.Header.Set("user-agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36")
}

func (c *Client) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	browserHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: http %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// SearchPage runs an article-scoped search for the term and returns the raw
// response body.
func (c *Client) SearchPage(ctx context.Context, term string) (string, error) {
	params := url.Values{}
	params.Set("lang", c.cfg.Lang)
	params.Set("q", term)
	params.Set("scope", c.cfg.Scope)

	searchURL := fmt.Sprintf("%s/search?%s", strings.TrimRight(c.cfg.BaseURL, "/"), params.Encode())
	logx.Debug().Str("term", term).Str("url", searchURL).Msg("searching radiopaedia")
	return c.get(ctx, searchURL)
}

// ArticlePage fetches the raw page at the absolute article URL.
func (c *Client) ArticlePage(ctx context.Context, absURL string) (string, error) {
	logx.Debug().Str("url", absURL).Msg("fetching article")
	return c.get(ctx, absURL)
}

// AbsoluteURL resolves a search result href against the site origin.
// Hrefs that are already absolute pass through unchanged.
func (c *Client) AbsoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	if !strings.HasPrefix(href, "/") {
		return base + "/" + href
	}
	return base + href
}

// ParseSearchResults parses a raw search response body.
func (c *Client) ParseSearchResults(raw string) ([]model.SearchResultEntry, error) {
	return ParseSearchResults(raw)
}

// ExtractArticleBody extracts the main content text from a raw article page.
func (c *Client) ExtractArticleBody(raw string) (string, error) {
	return ExtractArticleBody(raw)
}
