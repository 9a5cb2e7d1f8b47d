package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchTerms_SingleTerm(t *testing.T) {
	content := "<analysis>some reasoning</analysis>\n<search_terms>acute pancreatitis</search_terms>"
	assert.Equal(t, []string{"acute pancreatitis"}, SearchTerms(content))
}

func TestSearchTerms_MultipleLines(t *testing.T) {
	content := "<search_terms>CNS lymphoma\nglioblastoma</search_terms>"
	assert.Equal(t, []string{"CNS lymphoma", "glioblastoma"}, SearchTerms(content))
}

func TestSearchTerms_TrimsAndDropsBlanks(t *testing.T) {
	content := "<search_terms>\n  pneumonitis  \n\n   \n MTA score \n</search_terms>"
	assert.Equal(t, []string{"pneumonitis", "MTA score"}, SearchTerms(content))
}

func TestSearchTerms_MissingBlock(t *testing.T) {
	assert.Nil(t, SearchTerms("no delimited block here"))
}

func TestSearchTerms_EmptyBlock(t *testing.T) {
	assert.Nil(t, SearchTerms("<search_terms>\n\n</search_terms>"))
}

func TestSearchTerms_FirstBlockWins(t *testing.T) {
	content := "<search_terms>first</search_terms> then <search_terms>second</search_terms>"
	assert.Equal(t, []string{"first"}, SearchTerms(content))
}

func TestSearchTerms_TagsAreCaseSensitive(t *testing.T) {
	assert.Nil(t, SearchTerms("<SEARCH_TERMS>shouted</SEARCH_TERMS>"))
}

func TestSearchTerms_SpansLines(t *testing.T) {
	content := "<search_terms>\nchemical shift imaging\n</search_terms>"
	assert.Equal(t, []string{"chemical shift imaging"}, SearchTerms(content))
}
