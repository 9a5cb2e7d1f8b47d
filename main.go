package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/radchat-core-poc/server/internal/assistant/cache"
	"github.com/radchat-core-poc/server/internal/assistant/conversations"
	"github.com/radchat-core-poc/server/internal/assistant/llm"
	"github.com/radchat-core-poc/server/internal/assistant/model"
	"github.com/radchat-core-poc/server/internal/assistant/pipeline"
	"github.com/radchat-core-poc/server/internal/assistant/prompts"
	"github.com/radchat-core-poc/server/internal/assistant/radiopaedia"
	"github.com/radchat-core-poc/server/internal/core"
	pkgredis "github.com/radchat-core-poc/server/pkg/redis"

	logx "github.com/radchat-core-poc/server/pkg/logger"
)

// AppConfig defines all configurable parameters for the assistant, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Components
	Extractor    model.ExtractorModelConfig
	Answer       model.AnswerModelConfig
	Pipeline     model.PipelineConfig
	Cache        model.CacheConfig
	Conversation model.ConversationConfig
	Radiopaedia  radiopaedia.Config
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	docCache, closeCache, err := buildCache(cfg)
	if err != nil {
		log.Fatalf("Failed to initialise document cache: %v", err)
	}
	defer closeCache()

	repo, err := buildConversationRepo(cfg)
	if err != nil {
		log.Fatalf("Failed to initialise conversation store: %v", err)
	}
	manager := conversations.NewManager(repo, prompts.Persona())

	models, err := llm.NewChatModels(ctx, llm.Config{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Extractor: cfg.Extractor,
		Answer:    cfg.Answer,
	})
	if err != nil {
		log.Fatalf("Failed to create chat models: %v", err)
	}

	pipe, err := pipeline.New(pipeline.Config{
		Cache:         docCache,
		Site:          radiopaedia.New(cfg.Radiopaedia),
		Extractor:     models.Extractor,
		Answer:        models.Answer,
		Conversations: manager,
		Pipeline:      cfg.Pipeline,
	})
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	chatLoop(ctx, pipe, manager)
}

func buildCache(cfg AppConfig) (model.DocumentCache, func(), error) {
	switch cfg.Cache.Backend {
	case "redis":
		rdb, err := cfg.Redis.New()
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedis(rdb), func() { rdb.Close() }, nil
	case "memory":
		return cache.NewMemory(), func() {}, nil
	default:
		c, err := cache.NewSQLite(cfg.Cache.Path)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { c.Close() }, nil
	}
}

func buildConversationRepo(cfg AppConfig) (model.ConversationRepository, error) {
	if cfg.Conversation.Backend != "redis" {
		return conversations.NewMemoryRepository(), nil
	}
	rdb, err := cfg.Redis.New()
	if err != nil {
		return nil, err
	}
	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid CONVERSATION_TTL %q: %w", cfg.Conversation.TTL, err)
	}
	return conversations.NewRedisRepository(rdb, ttl), nil
}

// chatLoop reads questions from stdin and renders the event stream. A line
// starting with "/chat " is a follow-up answered from history alone;
// "/clear" resets the session; "/quit" exits.
func chatLoop(ctx context.Context, pipe *pipeline.Pipeline, manager *conversations.Manager) {
	conversationID := fmt.Sprintf("console-%d", time.Now().Unix())

	fmt.Println("Radiology assistant. Ask a question, /chat <follow-up>, /clear, /quit.")
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/quit":
			return
		case line == "/clear":
			if err := manager.ClearSession(ctx, conversationID); err != nil {
				fmt.Printf("clear failed: %v\n", err)
			} else {
				fmt.Println("Session cleared.")
			}
		default:
			in := pipeline.RunInput{ConversationID: conversationID, Query: line, Search: true}
			if rest, ok := strings.CutPrefix(line, "/chat "); ok {
				in.Query = strings.TrimSpace(rest)
				in.Search = false
			}
			renderRun(pipe.Run(ctx, in))
		}
		fmt.Print("> ")
	}
}

// renderRun prints the events of one run. Chunks are cumulative, so only
// the suffix beyond what was already printed goes to the terminal.
func renderRun(events <-chan model.LogicEvent) {
	printed := 0
	for ev := range events {
		switch ev := ev.(type) {
		case model.SearchStarted:
			if len(ev.Concepts) == 0 {
				fmt.Println("No search concepts found; answering without retrieval.")
			} else {
				fmt.Printf("Searching: %s\n", strings.Join(ev.Concepts, ", "))
			}
		case model.ConceptResolved:
			fmt.Printf("Found article for %q\n", ev.Concept)
		case model.ConceptFailed:
			fmt.Printf("Could not resolve %q: %v\n", ev.Concept, ev.Err)
		case model.AnswerChunk:
			fmt.Print(ev.Answer[printed:])
			printed = len(ev.Answer)
		case model.AnswerComplete:
			fmt.Println("\n\nSources:")
			for _, s := range ev.Sources {
				fmt.Printf("  - %s (%s)\n", s.Title, s.URL)
			}
		case model.GenerationFailed:
			fmt.Printf("\nAnswer generation failed: %v\n", ev.Err)
		case model.Stopped:
			fmt.Println()
		}
	}
}
