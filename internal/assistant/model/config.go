package model

// ================ Config ================

// ExtractorModelConfig tunes the chat model that turns a user query into
// search concepts. Low temperature keeps downstream retrieval stable.
type ExtractorModelConfig struct {
	Model       string  `envconfig:"EXTRACTOR_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"EXTRACTOR_MAX_TOKENS" default:"2048"`
	Temperature float32 `envconfig:"EXTRACTOR_TEMPERATURE" default:"0.2"`
}

// AnswerModelConfig tunes the chat model that generates the grounded answer.
type AnswerModelConfig struct {
	Model       string  `envconfig:"ANSWER_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"ANSWER_MAX_TOKENS" default:"4096"`
	Temperature float32 `envconfig:"ANSWER_TEMPERATURE" default:"0"`
}

// Empty-concept policies: what a run does when extraction yields no concepts.
const (
	// EmptyConceptsAnswer proceeds with an empty context block.
	EmptyConceptsAnswer = "answer"
	// EmptyConceptsAbort stops the run without calling the answer model.
	EmptyConceptsAbort = "abort"
)

// Result selection policies for one concept's search results.
const (
	// SelectFirst picks the top-ranked entry. The first full-text match
	// empirically beats a secondary relevance re-ranking step here.
	SelectFirst = "first"
	// SelectTopTwo merges the texts of the top two entries and yields two
	// citations for the concept.
	SelectTopTwo = "top2"
)

// PipelineConfig holds the orchestration policy knobs.
type PipelineConfig struct {
	EmptyConcepts string `envconfig:"PIPELINE_EMPTY_CONCEPTS" default:"answer"`
	Selection     string `envconfig:"PIPELINE_SELECTION" default:"first"`
}

// CacheConfig selects and locates the document cache backend.
type CacheConfig struct {
	Backend string `envconfig:"CACHE_BACKEND" default:"sqlite"` // sqlite | redis | memory
	Path    string `envconfig:"CACHE_PATH" default:"./data/documents.db"`
}

// ConversationConfig selects the conversation store.
type ConversationConfig struct {
	Backend string `envconfig:"CONVERSATION_BACKEND" default:"memory"` // memory | redis
	TTL     string `envconfig:"CONVERSATION_TTL" default:"12h"`
}
