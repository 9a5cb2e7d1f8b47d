// Package parsers extracts structured data out of free-form model output.
package parsers

import (
	"regexp"
	"strings"

	logx "github.com/radchat-core-poc/server/pkg/logger"
)

// basic safety limit to avoid pathological inputs
const maxContentLen = 128 * 1024 // 128KB

var searchTermsRe = regexp.MustCompile(`(?s)<search_terms>(.*?)</search_terms>`)

// SearchTerms extracts the concepts from a model response. It locates the
// first well-formed <search_terms> block (tag names are case-sensitive),
// splits its content on line breaks, trims each line, and drops blanks.
// A missing or empty block yields an empty list, never an error: malformed
// output degrades to "no concepts" rather than failing the run.
func SearchTerms(content string) []string {
	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "terms_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}

	m := searchTermsRe.FindStringSubmatch(content)
	if m == nil {
		return nil
	}

	var terms []string
	for _, line := range strings.Split(m[1], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		terms = append(terms, line)
	}
	return terms
}
