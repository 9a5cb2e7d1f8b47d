// Package llm constructs the Gemini-backed chat models the pipeline uses.
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	logx "github.com/radchat-core-poc/server/pkg/logger"

	"github.com/radchat-core-poc/server/internal/assistant/model"
)

// Config holds the configuration for chat model creation.
type Config struct {
	APIKey    string
	BaseURL   string
	Extractor model.ExtractorModelConfig
	Answer    model.AnswerModelConfig
}

// ChatModels holds the concept-extraction and answer-generation models.
type ChatModels struct {
	Extractor          *gemini.ChatModel
	Answer             *gemini.ChatModel
	ExtractorModelName string
	AnswerModelName    string
}

// NewChatModels creates both models over one shared Gemini client.
func NewChatModels(ctx context.Context, cfg Config) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	extractor, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Extractor.Model,
		Temperature: &cfg.Extractor.Temperature,
		MaxTokens:   &cfg.Extractor.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating extractor model")
		return nil, fmt.Errorf("error creating extractor model: %w", err)
	}

	answer, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Answer.Model,
		Temperature: &cfg.Answer.Temperature,
		MaxTokens:   &cfg.Answer.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating answer model")
		return nil, fmt.Errorf("error creating answer model: %w", err)
	}

	return &ChatModels{
		Extractor:          extractor,
		Answer:             answer,
		ExtractorModelName: cfg.Extractor.Model,
		AnswerModelName:    cfg.Answer.Model,
	}, nil
}
