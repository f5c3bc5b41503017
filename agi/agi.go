// Package agi wraps the chat-completion oracle. Every helper degrades to a
// neutral zero value when the oracle is unreachable or answers with
// something unparsable, so callers never block a chat turn on it.
package agi

import (
	"context"
	"log"
	"os"
	"strings"

	"tripchat/apperr"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Completer is the oracle contract; tests substitute canned responders.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Client struct {
	api   openai.Client
	model string
}

func NewClient() *Client {
	return &Client{
		api:   openai.NewClient(option.WithAPIKey(os.Getenv("OPENAI_API_KEY"))),
		model: openai.ChatModelGPT4oMini,
	}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", apperr.Oraclef("chat completion: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.Oraclef("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// complete swallows oracle errors and returns "", logging the failure.
// The parse helpers below treat "" as "no answer".
func complete(ctx context.Context, c Completer, prompt string) string {
	out, err := c.Complete(ctx, prompt)
	if err != nil {
		log.Printf("oracle call failed: %v", err)
		return ""
	}
	return out
}
