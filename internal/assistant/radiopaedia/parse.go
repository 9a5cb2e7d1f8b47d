package radiopaedia

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/radchat-core-poc/server/internal/assistant/model"
)

// ErrNoArticleBody means the article page had no recognisable content region.
var ErrNoArticleBody = errors.New("article page has no content body")

// ParseSearchResults turns a raw search response into ordered entries,
// preserving the site's ranking as the 0-based ID. Zero entries is a valid
// outcome, not a parse error.
func ParseSearchResults(raw string) ([]model.SearchResultEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}

	var entries []model.SearchResultEntry
	doc.Find(".search-result").Each(func(i int, s *goquery.Selection) {
		entries = append(entries, model.SearchResultEntry{
			ID:      i,
			Title:   strings.TrimSpace(s.Find(".search-result-title").First().Text()),
			Snippet: strings.TrimSpace(s.Find(".search-result-body").First().Text()),
			Href:    s.AttrOr("href", ""),
		})
	})
	return entries, nil
}

// ExtractArticleBody pulls the user-generated content region out of an
// article page and returns its trimmed text.
func ExtractArticleBody(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", err
	}

	body := doc.Find("#content div.body.user-generated-content").First()
	if body.Length() == 0 {
		return "", ErrNoArticleBody
	}

	text := strings.TrimSpace(body.Text())
	if text == "" {
		return "", ErrNoArticleBody
	}
	return text, nil
}
