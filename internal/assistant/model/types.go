package model

import "context"

// Namespace identifies one of the two independent document cache tables.
type Namespace string

const (
	// NamespaceSearchResults caches raw search response bodies keyed by the
	// concept query string.
	NamespaceSearchResults Namespace = "search_results"
	// NamespaceArticles caches extracted article bodies keyed by absolute URL.
	NamespaceArticles Namespace = "articles"
)

// SearchResultEntry is one parsed entry of a search response. ID is the
// 0-based rank within that search, preserving the site's native ordering.
type SearchResultEntry struct {
	ID      int
	Title   string
	Snippet string
	Href    string
}

// Source is the citation surfaced to the end user, derived 1:1 from the
// search result entry chosen for a concept.
type Source struct {
	Title string
	URL   string
}

// DocumentCache is a two-namespace memoizer for fetched documents.
// Implementations must be safe for concurrent use by multiple resolver
// goroutines racing on the same or different keys. A Put for an existing
// key is a no-op: the first stored value wins, so concurrent fetchers can
// never observe a key changing content. Storage faults are returned, never
// folded into a miss.
type DocumentCache interface {
	Get(ctx context.Context, ns Namespace, key string) (value string, ok bool, err error)
	Put(ctx context.Context, ns Namespace, key, value string) error
}
