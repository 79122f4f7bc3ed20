package breakdown

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultDeepSeekURL   = "https://api.deepseek.com/v1"
	defaultDeepSeekModel = "deepseek-chat"
)

// deepSeek talks to the OpenAI-compatible DeepSeek chat API.
type deepSeek struct {
	client *openai.Client
	model  string
}

func NewDeepSeek(apiKey, baseURL, model string) TextGenerator {
	if baseURL == "" {
		baseURL = defaultDeepSeekURL
	}
	if model == "" {
		model = defaultDeepSeekModel
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &deepSeek{client: openai.NewClientWithConfig(cfg), model: model}
}

func (d *deepSeek) Name() string { return "deepseek" }

func (d *deepSeek) Generate(ctx context.Context, p Prompt) (string, error) {
	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("deepseek completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("deepseek completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
