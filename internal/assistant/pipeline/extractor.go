package pipeline

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"

	logx "github.com/radchat-core-poc/server/pkg/logger"

	"github.com/radchat-core-poc/server/internal/assistant/pipeline/parsers"
	"github.com/radchat-core-poc/server/internal/assistant/prompts"
)

// Extractor turns a natural-language query into an ordered list of concise
// search concepts with one chat-model call. The prompt encodes the policy
// (one concept in general, two when the query contrasts two named
// conditions); nothing is enforced in code.
type Extractor struct {
	cm einomodel.BaseChatModel
}

func NewExtractor(cm einomodel.BaseChatModel) *Extractor {
	return &Extractor{cm: cm}
}

// Extract returns the concepts in the order the model listed them. A
// response without a parseable block yields an empty list; only the model
// call itself can fail.
func (e *Extractor) Extract(ctx context.Context, query string) ([]string, error) {
	msgs, err := prompts.ExtractionMessages(ctx, query)
	if err != nil {
		return nil, err
	}

	out, err := e.cm.Generate(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("extract concepts: %w", err)
	}

	terms := parsers.SearchTerms(out.Content)
	logx.Info().Str("query", query).Strs("concepts", terms).Msg("extracted search concepts")
	return terms, nil
}
