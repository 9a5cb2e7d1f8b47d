package radiopaedia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchFixture = `
<html><body>
<div id="search-results">
  <a class="search-result" href="/articles/pneumonitis">
    <h4 class="search-result-title"> Pneumonitis </h4>
    <div class="search-result-body"> Inflammation of lung tissue. </div>
  </a>
  <a class="search-result" href="/articles/radiation-pneumonitis">
    <h4 class="search-result-title">Radiation pneumonitis</h4>
    <div class="search-result-body">Lung injury after radiotherapy.</div>
  </a>
</div>
</body></html>`

const articleFixture = `
<html><body>
<div id="content">
  <h1>Pneumonitis</h1>
  <div class="body user-generated-content">
    Pneumonitis is a general term for inflammation of lung tissue.
  </div>
</div>
</body></html>`

func TestParseSearchResults_OrderAndFields(t *testing.T) {
	entries, err := ParseSearchResults(searchFixture)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 0, entries[0].ID)
	assert.Equal(t, "Pneumonitis", entries[0].Title)
	assert.Equal(t, "Inflammation of lung tissue.", entries[0].Snippet)
	assert.Equal(t, "/articles/pneumonitis", entries[0].Href)

	assert.Equal(t, 1, entries[1].ID)
	assert.Equal(t, "Radiation pneumonitis", entries[1].Title)
}

func TestParseSearchResults_ZeroResults(t *testing.T) {
	entries, err := ParseSearchResults(`<html><body><div id="search-results"></div></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtractArticleBody(t *testing.T) {
	text, err := ExtractArticleBody(articleFixture)
	require.NoError(t, err)
	assert.Equal(t, "Pneumonitis is a general term for inflammation of lung tissue.", text)
}

func TestExtractArticleBody_MissingRegion(t *testing.T) {
	_, err := ExtractArticleBody(`<html><body><div id="content"><h1>Empty</h1></div></body></html>`)
	assert.ErrorIs(t, err, ErrNoArticleBody)
}

func TestAbsoluteURL(t *testing.T) {
	c := New(Config{BaseURL: "https://radiopaedia.org"})

	assert.Equal(t, "https://radiopaedia.org/articles/pneumonitis", c.AbsoluteURL("/articles/pneumonitis"))
	assert.Equal(t, "https://radiopaedia.org/articles/x", c.AbsoluteURL("articles/x"))
	assert.Equal(t, "https://elsewhere.org/a", c.AbsoluteURL("https://elsewhere.org/a"))
}
