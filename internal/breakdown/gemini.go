package breakdown

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

type gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini generator. The client lives for the process.
func NewGemini(ctx context.Context, apiKey, model string) (TextGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &gemini{client: client, model: model}, nil
}

func (g *gemini) Name() string { return "gemini" }

func (g *gemini) Generate(ctx context.Context, p Prompt) (string, error) {
	// GenerativeModel carries per-call settings, so build one per prompt.
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(p.Temperature)
	m.SetMaxOutputTokens(int32(p.MaxTokens))
	m.ResponseMIMEType = "application/json"
	if p.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(p.System)}}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(p.User))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no content generated")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("generated content is not text")
	}
	return b.String(), nil
}

func (g *gemini) Close() error {
	return g.client.Close()
}
