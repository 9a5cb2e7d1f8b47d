// Package prompts holds the embedded prompt templates and their renderers.
package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/persona.txt
var personaPrompt string

//go:embed template/extractor_examples.txt
var extractorExamples string

//go:embed template/extractor_instruction.txt
var extractorInstruction string

// Persona returns the fixed system message seeded at session creation.
func Persona() string {
	return strings.TrimSpace(personaPrompt)
}

// ExtractionMessages renders the concept-extraction prompt for a query:
// few-shot examples, the instruction with the query inlined, and an
// assistant prefill that nudges the model to open with its analysis block.
func ExtractionMessages(ctx context.Context, query string) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.UserMessage(extractorExamples+"\n\n"+extractorInstruction),
	)
	msgs, err := tpl.Format(ctx, map[string]any{"Query": query})
	if err != nil {
		return nil, fmt.Errorf("extraction prompt render: %w", err)
	}
	msgs = append(msgs, schema.AssistantMessage("<analysis>", nil))
	return msgs, nil
}

// GroundedQuery wraps the accumulated article texts and the user query into
// the grounded user turn the answer model receives.
func GroundedQuery(contextDocs, query string) string {
	return fmt.Sprintf("<context>%s</context>\n\n<query>%s</query>", contextDocs, query)
}
