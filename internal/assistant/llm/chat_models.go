// Package llm constructs the Gemini chat models the workflow agents call.
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/savvythreads/server/internal/assistant/model"
	logx "github.com/savvythreads/server/pkg/logger"
)

// ChatModelConfig holds everything needed to create the chat models.
type ChatModelConfig struct {
	APIKey     string
	BaseURL    string
	Structured *model.StructuredModelConfig
	Response   *model.ResponseModelConfig
}

// ChatModels holds the structured-decision model and the response model.
type ChatModels struct {
	Structured          *gemini.ChatModel
	Response            *gemini.ChatModel
	StructuredModelName string
	ResponseModelName   string
}

// NewChatModels creates both chat models over a shared Gemini client.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	structured, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Structured.Model,
		Temperature: &config.Structured.Temperature,
		MaxTokens:   &config.Structured.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating structured model")
		return nil, fmt.Errorf("error creating structured model: %w", err)
	}

	response, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Response.Model,
		Temperature: &config.Response.Temperature,
		MaxTokens:   &config.Response.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating response model")
		return nil, fmt.Errorf("error creating response model: %w", err)
	}

	return &ChatModels{
		Structured:          structured,
		Response:            response,
		StructuredModelName: config.Structured.Model,
		ResponseModelName:   config.Response.Model,
	}, nil
}
