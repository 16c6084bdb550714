package roadmap

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"lectern/diagram"
)

const systemPrompt = `You are a research-reading assistant. Given the text of a paper
or book chapter, produce a reading roadmap as JSON with this shape:
{"title": string,
 "nodes": [{"id": int, "label": string, "description": string,
            "papers": [{"title": string, "link": string}]}],
 "edges": [{"from": int, "to": int}]}
Edges point from prerequisite to dependent topic. Respond with JSON only.`

// OpenAIGenerator implements Generator using the Chat Completions API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator bound to one model.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Generate asks the model for a roadmap of the given document text.
func (g *OpenAIGenerator) Generate(ctx context.Context, title, text string) (*diagram.Diagram, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Document: %s\n\n%s", title, text)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	var d diagram.Diagram
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &d); err != nil {
		return nil, fmt.Errorf("decoding roadmap JSON: %w", err)
	}
	return &d, nil
}
