package pipeline

import (
	"context"
	"fmt"
	"strings"

	logx "github.com/radchat-core-poc/server/pkg/logger"

	"github.com/radchat-core-poc/server/internal/assistant/model"
)

// ArticleSource is the external site as the resolver sees it: raw page
// fetches plus the parsing that turns them into structured form.
// *radiopaedia.Client satisfies it.
type ArticleSource interface {
	SearchPage(ctx context.Context, term string) (string, error)
	ArticlePage(ctx context.Context, absURL string) (string, error)
	AbsoluteURL(href string) string
	ParseSearchResults(raw string) ([]model.SearchResultEntry, error)
	ExtractArticleBody(raw string) (string, error)
}

// Resolution is one concept's retrieval outcome: the article text that goes
// into the context buffer and the citation(s) backing it.
type Resolution struct {
	Text    string
	Sources []model.Source
}

// Resolver resolves one concept to cached or freshly fetched article text.
// All reads and writes go through the document cache; a cache fault aborts
// the resolution rather than degrading to a network retry, so systemic
// storage problems stay visible.
type Resolver struct {
	cache  model.DocumentCache
	site   ArticleSource
	policy string
}

func NewResolver(cache model.DocumentCache, site ArticleSource, policy string) *Resolver {
	if policy == "" {
		policy = model.SelectFirst
	}
	return &Resolver{cache: cache, site: site, policy: policy}
}

// Resolve maps a concept to article text and sources. ErrNoResults (wrapped
// with the concept) reports an empty result set; any other error carries
// the concept and the underlying cause.
func (r *Resolver) Resolve(ctx context.Context, concept string) (*Resolution, error) {
	entries, err := r.searchEntries(ctx, concept)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("concept %q: %w", concept, ErrNoResults)
	}

	picked := entries[:1]
	if r.policy == model.SelectTopTwo && len(entries) >= 2 {
		picked = entries[:2]
	}

	res := &Resolution{}
	var texts []string
	for _, entry := range picked {
		url := r.site.AbsoluteURL(entry.Href)
		text, err := r.articleText(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("concept %q: article %s: %w", concept, url, err)
		}
		texts = append(texts, text)
		res.Sources = append(res.Sources, model.Source{Title: entry.Title, URL: url})
	}
	res.Text = strings.Join(texts, "\n\n")

	logx.Debug().Str("concept", concept).Int("sources", len(res.Sources)).Msg("concept resolved")
	return res, nil
}

// searchEntries returns the parsed result list for the concept, from cache
// when possible. The raw response is cached only when parsing produced at
// least one entry, so an upstream outage or empty index never poisons the
// cache and a later retry can still succeed.
func (r *Resolver) searchEntries(ctx context.Context, concept string) ([]model.SearchResultEntry, error) {
	raw, ok, err := r.cache.Get(ctx, model.NamespaceSearchResults, concept)
	if err != nil {
		return nil, fmt.Errorf("concept %q: search cache: %w", concept, err)
	}

	if ok {
		entries, err := r.site.ParseSearchResults(raw)
		if err != nil {
			return nil, fmt.Errorf("concept %q: parse cached search: %w", concept, err)
		}
		return entries, nil
	}

	raw, err = r.site.SearchPage(ctx, concept)
	if err != nil {
		return nil, fmt.Errorf("concept %q: search: %w", concept, err)
	}
	entries, err := r.site.ParseSearchResults(raw)
	if err != nil {
		return nil, fmt.Errorf("concept %q: parse search: %w", concept, err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	if err := r.cache.Put(ctx, model.NamespaceSearchResults, concept, raw); err != nil {
		return nil, fmt.Errorf("concept %q: cache search: %w", concept, err)
	}
	return entries, nil
}

// articleText returns the extracted body for the URL, from cache when
// possible. Only fully extracted content is ever cached.
func (r *Resolver) articleText(ctx context.Context, url string) (string, error) {
	text, ok, err := r.cache.Get(ctx, model.NamespaceArticles, url)
	if err != nil {
		return "", fmt.Errorf("article cache: %w", err)
	}
	if ok {
		return text, nil
	}

	raw, err := r.site.ArticlePage(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	text, err = r.site.ExtractArticleBody(raw)
	if err != nil {
		return "", fmt.Errorf("extract body: %w", err)
	}

	if err := r.cache.Put(ctx, model.NamespaceArticles, url, text); err != nil {
		return "", fmt.Errorf("cache article: %w", err)
	}
	return text, nil
}
