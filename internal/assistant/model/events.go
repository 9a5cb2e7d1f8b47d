package model

// LogicEvent is the closed set of progress and result events a pipeline run
// emits to its consumer. Exactly one Stopped terminates every run, as the
// last event before the channel closes; a consumer may ignore any prior
// event kind it does not recognise.
type LogicEvent interface {
	logicEvent()
}

// SearchStarted reports the concepts extracted from the query, in the order
// retrieval and context assembly will follow. The list may be empty.
type SearchStarted struct {
	Concepts []string
}

// ConceptResolved reports that one concept was resolved to an article.
type ConceptResolved struct {
	Concept string
}

// ConceptFailed reports that resolving a concept failed. The run aborts:
// no further concept events and no answer events follow.
type ConceptFailed struct {
	Concept string
	Err     error
}

// AnswerChunk carries the full answer-so-far, not a delta, so a consumer
// can always render by replacing prior state even if it dropped an
// intermediate event.
type AnswerChunk struct {
	Answer string
}

// AnswerComplete carries the final answer text together with the citations
// backing it, in concept order. Emitted only when retrieval produced sources.
type AnswerComplete struct {
	Answer  string
	Sources []Source
}

// GenerationFailed reports a fault in the answer model call or the
// surrounding bookkeeping. Partial answer text already emitted stands.
type GenerationFailed struct {
	Err error
}

// Stopped is the unambiguous end-of-stream signal.
type Stopped struct{}

func (SearchStarted) logicEvent()    {}
func (ConceptResolved) logicEvent()  {}
func (ConceptFailed) logicEvent()    {}
func (AnswerChunk) logicEvent()      {}
func (AnswerComplete) logicEvent()   {}
func (GenerationFailed) logicEvent() {}
func (Stopped) logicEvent()          {}
