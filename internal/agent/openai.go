// Package agent adapts the downstream language-model collaborator behind the
// ports.Agent interface.
package agent

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"voxbot/internal/ports"
)

const systemPrompt = "You are a voice assistant in a live meeting. " +
	"Reply in one or two short spoken sentences, no markdown."

// OpenAI invokes a chat completion for hand-off turns.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}
}

func (a *OpenAI) Invoke(ctx context.Context, req ports.AgentRequest) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	if req.Instruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.Instruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Transcript,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("agent completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("agent returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Noop is used when no API key is configured; hand-off turns fall back to
// the handler's own response text.
type Noop struct{}

func (Noop) Invoke(context.Context, ports.AgentRequest) (string, error) {
	return "", nil
}
