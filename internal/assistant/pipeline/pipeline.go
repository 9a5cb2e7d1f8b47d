// Package pipeline drives a query end to end: concept extraction, concurrent
// article resolution, grounded prompt assembly, and answer streaming, emitted
// to the caller as an ordered sequence of typed events.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	einomodel "github.com/cloudwego/eino/components/model"

	logx "github.com/radchat-core-poc/server/pkg/logger"

	"github.com/radchat-core-poc/server/internal/assistant/conversations"
	"github.com/radchat-core-poc/server/internal/assistant/model"
	"github.com/radchat-core-poc/server/internal/assistant/prompts"
)

// Config wires the pipeline's collaborators. Everything arrives through the
// constructor; the pipeline owns no global state beyond what these hold.
type Config struct {
	Cache         model.DocumentCache
	Site          ArticleSource
	Extractor     einomodel.BaseChatModel
	Answer        einomodel.BaseChatModel
	Conversations *conversations.Manager
	Pipeline      model.PipelineConfig
}

// Pipeline orchestrates one query at a time per call; runs are stateless and
// independently re-entrant, sharing only the cache and the session history.
type Pipeline struct {
	extractor *Extractor
	resolver  *Resolver
	answer    einomodel.BaseChatModel
	convo     *conversations.Manager
	cfg       model.PipelineConfig
}

// RunInput identifies one turn of a session.
type RunInput struct {
	ConversationID string
	Query          string
	// Search false skips extraction and retrieval entirely; the model
	// answers from the raw query and prior turns.
	Search bool
}

// New validates the wiring and returns a ready pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("document cache is nil")
	}
	if cfg.Site == nil {
		return nil, fmt.Errorf("article source is nil")
	}
	if cfg.Extractor == nil || cfg.Answer == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if cfg.Conversations == nil {
		return nil, fmt.Errorf("conversations manager is nil")
	}

	return &Pipeline{
		extractor: NewExtractor(cfg.Extractor),
		resolver:  NewResolver(cfg.Cache, cfg.Site, cfg.Pipeline.Selection),
		answer:    cfg.Answer,
		convo:     cfg.Conversations,
		cfg:       cfg.Pipeline,
	}, nil
}

// Run executes one turn and returns the event stream. The channel is closed
// after the terminal Stopped event. Cancelling ctx stops event emission and
// releases the model stream; events already emitted stand.
func (p *Pipeline) Run(ctx context.Context, in RunInput) <-chan model.LogicEvent {
	events := make(chan model.LogicEvent, 1)
	go func() {
		defer close(events)
		em := &emitter{ctx: ctx, ch: events}
		p.run(ctx, in, em)
		em.send(model.Stopped{})
	}()
	return events
}

// emitter delivers events unless the consumer has gone away.
type emitter struct {
	ctx context.Context
	ch  chan<- model.LogicEvent
}

func (e *emitter) send(ev model.LogicEvent) bool {
	select {
	case e.ch <- ev:
		return true
	case <-e.ctx.Done():
		return false
	}
}

func (p *Pipeline) run(ctx context.Context, in RunInput, em *emitter) {
	if strings.TrimSpace(in.Query) == "" {
		em.send(model.GenerationFailed{Err: ErrEmptyQuery})
		return
	}

	if err := p.convo.StartSession(ctx, in.ConversationID); err != nil {
		em.send(model.GenerationFailed{Err: err})
		return
	}

	if !in.Search {
		p.answerTurn(ctx, in.ConversationID, in.Query, nil, em)
		return
	}

	concepts, err := p.extractor.Extract(ctx, in.Query)
	if err != nil {
		em.send(model.GenerationFailed{Err: err})
		return
	}

	if !em.send(model.SearchStarted{Concepts: concepts}) {
		return
	}

	if len(concepts) == 0 && p.cfg.EmptyConcepts == model.EmptyConceptsAbort {
		em.send(model.ConceptFailed{Err: ErrNoConcepts})
		return
	}

	outcomes := p.resolveAll(ctx, concepts)

	// Events and context assembly follow the original concept order, not
	// completion order. The first failure aborts the run: an answer grounded
	// on a partial document set is worse than no answer.
	var contextBuf strings.Builder
	var sources []model.Source
	for i, concept := range concepts {
		if outcomes[i].err != nil {
			logx.Warn().Str("concept", concept).Err(outcomes[i].err).Msg("concept resolution failed")
			em.send(model.ConceptFailed{Concept: concept, Err: outcomes[i].err})
			return
		}
		if !em.send(model.ConceptResolved{Concept: concept}) {
			return
		}
		contextBuf.WriteString(outcomes[i].res.Text)
		contextBuf.WriteString("\n\n")
		sources = append(sources, outcomes[i].res.Sources...)
	}

	prompt := prompts.GroundedQuery(contextBuf.String(), in.Query)
	p.answerTurn(ctx, in.ConversationID, prompt, sources, em)
}

type outcome struct {
	res *Resolution
	err error
}

// resolveAll fans one resolution task out per concept and waits for all of
// them. A failing task does not cancel its siblings; in-flight fetches run
// to completion and populate the cache even when an earlier-ordered failure
// later discards their results.
func (p *Pipeline) resolveAll(ctx context.Context, concepts []string) []outcome {
	outcomes := make([]outcome, len(concepts))
	var wg sync.WaitGroup
	for i, concept := range concepts {
		wg.Add(1)
		go func(i int, concept string) {
			defer wg.Done()
			res, err := p.resolver.Resolve(ctx, concept)
			outcomes[i] = outcome{res: res, err: err}
		}(i, concept)
	}
	wg.Wait()
	return outcomes
}

// answerTurn appends the user turn, streams the answer with cumulative
// chunks, records the assistant turn, and closes with AnswerComplete when
// retrieval produced sources.
func (p *Pipeline) answerTurn(ctx context.Context, conversationID, userContent string, sources []model.Source, em *emitter) {
	if err := p.convo.AppendUser(ctx, conversationID, userContent); err != nil {
		em.send(model.GenerationFailed{Err: err})
		return
	}

	answer, ok := p.streamAnswer(ctx, conversationID, em)
	if !ok {
		return
	}

	if err := p.convo.AppendAssistant(ctx, conversationID, answer); err != nil {
		em.send(model.GenerationFailed{Err: err})
		return
	}

	if len(sources) > 0 {
		em.send(model.AnswerComplete{Answer: answer, Sources: sources})
	}
}

// streamAnswer drives the model stream. Each chunk event carries the full
// answer-so-far. Stream faults surface as GenerationFailed; partial text
// already emitted stands for the consumer.
func (p *Pipeline) streamAnswer(ctx context.Context, conversationID string, em *emitter) (string, bool) {
	msgs, err := p.convo.Snapshot(ctx, conversationID)
	if err != nil {
		em.send(model.GenerationFailed{Err: err})
		return "", false
	}

	sr, err := p.answer.Stream(ctx, msgs)
	if err != nil {
		em.send(model.GenerationFailed{Err: fmt.Errorf("answer stream: %w", err)})
		return "", false
	}
	defer sr.Close()

	var b strings.Builder
	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			em.send(model.GenerationFailed{Err: fmt.Errorf("answer stream: %w", err)})
			return b.String(), false
		}
		if msg == nil || msg.Content == "" {
			continue
		}
		b.WriteString(msg.Content)
		if !em.send(model.AnswerChunk{Answer: b.String()}) {
			return b.String(), false
		}
	}

	return b.String(), true
}
