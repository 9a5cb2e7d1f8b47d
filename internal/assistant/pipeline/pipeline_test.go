package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radchat-core-poc/server/internal/assistant/cache"
	"github.com/radchat-core-poc/server/internal/assistant/conversations"
	"github.com/radchat-core-poc/server/internal/assistant/model"
)

// fakeChatModel serves canned output for Generate and a scripted chunk
// sequence for Stream, optionally ending the stream with an error.
type fakeChatModel struct {
	mu            sync.Mutex
	generateOut   string
	generateErr   error
	streamChunks  []string
	streamErr     error
	generateCalls int
	streamCalls   int
	lastStreamIn  []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generateCalls++
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return schema.AssistantMessage(f.generateOut, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	f.mu.Lock()
	f.streamCalls++
	f.lastStreamIn = input
	chunks := f.streamChunks
	streamErr := f.streamErr
	f.mu.Unlock()

	sr, sw := schema.Pipe[*schema.Message](len(chunks) + 1)
	go func() {
		defer sw.Close()
		for _, c := range chunks {
			sw.Send(schema.AssistantMessage(c, nil), nil)
		}
		if streamErr != nil {
			sw.Send(nil, streamErr)
		}
	}()
	return sr, nil
}

func (f *fakeChatModel) calls() (generate, stream int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generateCalls, f.streamCalls
}

type testRig struct {
	pipe      *Pipeline
	site      *fakeSite
	extractor *fakeChatModel
	answer    *fakeChatModel
	manager   *conversations.Manager
	cache     *cache.MemoryCache
}

func newTestRig(t *testing.T, cfg model.PipelineConfig) *testRig {
	t.Helper()
	rig := &testRig{
		site:      newFakeSite(),
		extractor: &fakeChatModel{},
		answer:    &fakeChatModel{streamChunks: []string{"answer"}},
		manager:   conversations.NewManager(conversations.NewMemoryRepository(), "persona"),
		cache:     cache.NewMemory(),
	}
	pipe, err := New(Config{
		Cache:         rig.cache,
		Site:          rig.site,
		Extractor:     rig.extractor,
		Answer:        rig.answer,
		Conversations: rig.manager,
		Pipeline:      cfg,
	})
	require.NoError(t, err)
	rig.pipe = pipe
	return rig
}

func conceptsBlock(concepts ...string) string {
	out := "<analysis>reasoning</analysis>\n<search_terms>"
	for i, c := range concepts {
		if i > 0 {
			out += "\n"
		}
		out += c
	}
	return out + "</search_terms>"
}

func collect(events <-chan model.LogicEvent) []model.LogicEvent {
	var out []model.LogicEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestRun_EndToEnd(t *testing.T) {
	rig := newTestRig(t, model.PipelineConfig{EmptyConcepts: model.EmptyConceptsAnswer, Selection: model.SelectFirst})
	rig.extractor.generateOut = conceptsBlock("pneumonitis")
	rig.site.addArticle("pneumonitis", "Pneumonitis", "/articles/pneumonitis", "lung tissue inflammation")
	rig.answer.streamChunks = []string{"Pneumonitis is ", "lung inflammation."}

	events := collect(rig.pipe.Run(context.Background(), RunInput{ConversationID: "s1", Query: "pneumonitis", Search: true}))

	require.Len(t, events, 6)
	assert.Equal(t, model.SearchStarted{Concepts: []string{"pneumonitis"}}, events[0])
	assert.Equal(t, model.ConceptResolved{Concept: "pneumonitis"}, events[1])
	assert.Equal(t, model.AnswerChunk{Answer: "Pneumonitis is "}, events[2])
	assert.Equal(t, model.AnswerChunk{Answer: "Pneumonitis is lung inflammation."}, events[3])

	complete, ok := events[4].(model.AnswerComplete)
	require.True(t, ok)
	assert.Equal(t, "Pneumonitis is lung inflammation.", complete.Answer)
	assert.Equal(t, []model.Source{{Title: "Pneumonitis", URL: "https://site/articles/pneumonitis"}}, complete.Sources)

	assert.Equal(t, model.Stopped{}, events[5])

	// history: persona, grounded user turn, assistant turn
	msgs, err := rig.manager.Snapshot(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[1].Content, "<context>")
	assert.Contains(t, msgs[1].Content, "lung tissue inflammation")
	assert.Contains(t, msgs[1].Content, "<query>pneumonitis</query>")
	assert.Equal(t, "Pneumonitis is lung inflammation.", msgs[2].Content)
}

func TestRun_EventsFollowConceptOrderNotCompletionOrder(t *testing.T) {
	rig := newTestRig(t, model.PipelineConfig{})
	rig.extractor.generateOut = conceptsBlock("A", "B", "C")
	rig.site.addArticle("A", "A", "/articles/a", "a body")
	rig.site.addArticle("B", "B", "/articles/b", "b body")
	rig.site.addArticle("C", "C", "/articles/c", "c body")
	rig.site.searchDelay["B"] = 60 * time.Millisecond

	events := collect(rig.pipe.Run(context.Background(), RunInput{ConversationID: "s1", Query: "compare", Search: true}))

	var resolved []string
	for _, ev := range events {
		if r, ok := ev.(model.ConceptResolved); ok {
			resolved = append(resolved, r.Concept)
		}
	}
	assert.Equal(t, []string{"A", "B", "C"}, resolved)
}

func TestRun_FailFastOnConceptFailure(t *testing.T) {
	rig := newTestRig(t, model.PipelineConfig{})
	rig.extractor.generateOut = conceptsBlock("A", "B", "C")
	rig.site.addArticle("A", "A", "/articles/a", "a body")
	rig.site.addArticle("C", "C", "/articles/c", "c body")
	rig.site.searchErr["B"] = errors.New("upstream down")

	events := collect(rig.pipe.Run(context.Background(), RunInput{ConversationID: "s1", Query: "q", Search: true}))

	require.Len(t, events, 4)
	assert.Equal(t, model.SearchStarted{Concepts: []string{"A", "B", "C"}}, events[0])
	assert.Equal(t, model.ConceptResolved{Concept: "A"}, events[1])
	failed, ok := events[2].(model.ConceptFailed)
	require.True(t, ok)
	assert.Equal(t, "B", failed.Concept)
	assert.ErrorContains(t, failed.Err, "upstream down")
	assert.Equal(t, model.Stopped{}, events[3])

	// the answer model is never consulted on an aborted run
	_, streams := rig.answer.calls()
	assert.Zero(t, streams)
}

func TestRun_NoResultsIsFailFast(t *testing.T) {
	rig := newTestRig(t, model.PipelineConfig{})
	rig.extractor.generateOut = conceptsBlock("obscure entity")
	rig.site.results["obscure entity"] = nil

	events := collect(rig.pipe.Run(context.Background(), RunInput{ConversationID: "s1", Query: "q", Search: true}))

	require.Len(t, events, 3)
	failed, ok := events[1].(model.ConceptFailed)
	require.True(t, ok)
	assert.ErrorIs(t, failed.Err, ErrNoResults)
	assert.Equal(t, model.Stopped{}, events[2])
}

func TestRun_NoSearchTurn(t *testing.T) {
	rig := newTestRig(t, model.PipelineConfig{})
	rig.answer.streamChunks = []string{"from ", "history"}

	events := collect(rig.pipe.Run(context.Background(), RunInput{ConversationID: "s1", Query: "and the causes?", Search: false}))

	require.Len(t, events, 3)
	assert.Equal(t, model.AnswerChunk{Answer: "from "}, events[0])
	assert.Equal(t, model.AnswerChunk{Answer: "from history"}, events[1])
	assert.Equal(t, model.Stopped{}, events[2])

	generates, _ := rig.extractor.calls()
	assert.Zero(t, generates)

	// the raw query is the user turn, no context wrapping
	msgs, err := rig.manager.Snapshot(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "and the causes?", msgs[1].Content)
}

func TestRun_EmptyQuery(t *testing.T) {
	rig := newTestRig(t, model.PipelineConfig{})

	events := collect(rig.pipe.Run(context.Background(), RunInput{ConversationID: "s1", Query: "   ", Search: true}))

	require.Len(t, events, 2)
	failed, ok := events[0].(model.GenerationFailed)
	require.True(t, ok)
	assert.ErrorIs(t, failed.Err, ErrEmptyQuery)
	assert.Equal(t, model.Stopped{}, events[1])
}

func TestRun_ZeroConceptsAnswerPolicy(t *testing.T) {
	rig := newTestRig(t, model.PipelineConfig{EmptyConcepts: model.EmptyConceptsAnswer})
	rig.extractor.generateOut = "no parseable block"
	rig.answer.streamChunks = []string{"best effort"}

	events := collect(rig.pipe.Run(context.Background(), RunInput{ConversationID: "s1", Query: "vague question", Search: true}))

	require.Len(t, events, 3)
	assert.Equal(t, model.SearchStarted{Concepts: nil}, events[0])
	assert.Equal(t, model.AnswerChunk{Answer: "best effort"}, events[1])
	assert.Equal(t, model.Stopped{}, events[2])

	// no retrieval, so the prompt carries an empty context block
	msgs, err := rig.manager.Snapshot(context.Background(), "s1")
	require.NoError(t, err)
	assert.Contains(t, msgs[1].Content, "<context></context>")
}

func TestRun_ZeroConceptsAbortPolicy(t *testing.T) {
	rig := newTestRig(t, model.PipelineConfig{EmptyConcepts: model.EmptyConceptsAbort})
	rig.extractor.generateOut = "no parseable block"

	events := collect(rig.pipe.Run(context.Background(), RunInput{ConversationID: "s1", Query: "vague question", Search: true}))

	require.Len(t, events, 3)
	assert.Equal(t, model.SearchStarted{Concepts: nil}, events[0])
	failed, ok := events[1].(model.ConceptFailed)
	require.True(t, ok)
	assert.ErrorIs(t, failed.Err, ErrNoConcepts)
	assert.Equal(t, model.Stopped{}, events[2])

	_, streams := rig.answer.calls()
	assert.Zero(t, streams)
}

func TestRun_ExtractionFault(t *testing.T) {
	rig := newTestRig(t, model.PipelineConfig{})
	rig.extractor.generateErr = errors.New("model unavailable")

	events := collect(rig.pipe.Run(context.Background(), RunInput{ConversationID: "s1", Query: "q", Search: true}))

	require.Len(t, events, 2)
	failed, ok := events[0].(model.GenerationFailed)
	require.True(t, ok)
	assert.ErrorContains(t, failed.Err, "model unavailable")
	assert.Equal(t, model.Stopped{}, events[1])
}

func TestRun_GenerationInterrupted(t *testing.T) {
	rig := newTestRig(t, model.PipelineConfig{})
	rig.extractor.generateOut = conceptsBlock("pneumonitis")
	rig.site.addArticle("pneumonitis", "Pneumonitis", "/articles/pneumonitis", "body")
	rig.answer.streamChunks = []string{"partial answer"}
	rig.answer.streamErr = errors.New("stream reset")

	events := collect(rig.pipe.Run(context.Background(), RunInput{ConversationID: "s1", Query: "q", Search: true}))

	require.Len(t, events, 5)
	assert.Equal(t, model.AnswerChunk{Answer: "partial answer"}, events[2])
	failed, ok := events[3].(model.GenerationFailed)
	require.True(t, ok)
	assert.ErrorContains(t, failed.Err, "stream reset")
	assert.Equal(t, model.Stopped{}, events[4])

	// the interrupted answer is not recorded as an assistant turn
	msgs, err := rig.manager.Snapshot(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, schema.User, msgs[len(msgs)-1].Role)
}

func TestRun_ChunksAreCumulative(t *testing.T) {
	rig := newTestRig(t, model.PipelineConfig{})
	rig.answer.streamChunks = []string{"a", "b", "c"}

	events := collect(rig.pipe.Run(context.Background(), RunInput{ConversationID: "s1", Query: "q", Search: false}))

	var answers []string
	for _, ev := range events {
		if c, ok := ev.(model.AnswerChunk); ok {
			answers = append(answers, c.Answer)
		}
	}
	assert.Equal(t, []string{"a", "ab", "abc"}, answers)
}

func TestRun_SecondRunServedFromCache(t *testing.T) {
	rig := newTestRig(t, model.PipelineConfig{})
	rig.extractor.generateOut = conceptsBlock("pneumonitis")
	rig.site.addArticle("pneumonitis", "Pneumonitis", "/articles/pneumonitis", "body")

	for i := 0; i < 2; i++ {
		events := collect(rig.pipe.Run(context.Background(), RunInput{ConversationID: fmt.Sprintf("s%d", i), Query: "pneumonitis", Search: true}))
		require.NotEmpty(t, events)
		assert.Equal(t, model.Stopped{}, events[len(events)-1])
	}

	assert.Equal(t, 1, rig.site.calls(rig.site.searchCalls, "pneumonitis"))
	assert.Equal(t, 1, rig.site.calls(rig.site.articleCalls, "https://site/articles/pneumonitis"))
}

func TestRun_ConsumerCancellation(t *testing.T) {
	rig := newTestRig(t, model.PipelineConfig{})
	rig.answer.streamChunks = []string{"a", "b", "c", "d"}

	ctx, cancel := context.WithCancel(context.Background())
	events := rig.pipe.Run(ctx, RunInput{ConversationID: "s1", Query: "q", Search: false})

	// take one event, then walk away
	<-events
	cancel()

	// the producer must close the channel rather than block forever
	for range events {
	}
}

func TestRun_StoppedIsAlwaysLast(t *testing.T) {
	cases := map[string]func(*testRig){
		"happy path": func(r *testRig) {
			r.extractor.generateOut = conceptsBlock("pneumonitis")
			r.site.addArticle("pneumonitis", "Pneumonitis", "/articles/pneumonitis", "body")
		},
		"extraction fault": func(r *testRig) { r.extractor.generateErr = errors.New("down") },
		"concept fault": func(r *testRig) {
			r.extractor.generateOut = conceptsBlock("x")
			r.site.searchErr["x"] = errors.New("down")
		},
		"generation fault": func(r *testRig) {
			r.extractor.generateOut = conceptsBlock("pneumonitis")
			r.site.addArticle("pneumonitis", "Pneumonitis", "/articles/pneumonitis", "body")
			r.answer.streamChunks = nil
			r.answer.streamErr = errors.New("reset")
		},
	}

	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			rig := newTestRig(t, model.PipelineConfig{})
			setup(rig)
			events := collect(rig.pipe.Run(context.Background(), RunInput{ConversationID: "s1", Query: "q", Search: true}))
			require.NotEmpty(t, events)
			assert.Equal(t, model.Stopped{}, events[len(events)-1])
		})
	}
}
