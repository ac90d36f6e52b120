package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/kevinmichaelchen/folio/internal/config"
	"github.com/kevinmichaelchen/folio/internal/shared"
	openai "github.com/sashabaranov/go-openai"
)

// Temperature is the sampling temperature used for every completion.
const Temperature = 0.7

// Completer turns a prompt into text. maxTokens bounds the reply length.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// New builds the backend selected by cfg.LLMProvider. apiKey overrides
// cfg.LLMAPIKey when non-empty.
func New(ctx context.Context, cfg *config.Config, apiKey string) (Completer, error) {
	if apiKey == "" {
		apiKey = cfg.LLMAPIKey
	}
	switch cfg.LLMProvider {
	case config.ProviderOpenAI, "":
		return NewOpenAI(cfg.LLMBaseURL, apiKey, cfg.LLMModel), nil
	case config.ProviderGemini:
		return NewGemini(ctx, cfg.LLMBaseURL, apiKey, cfg.LLMModel)
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedProvider, cfg.LLMProvider)
	}
}

type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(baseURL, apiKey, model string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *OpenAI) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", shared.ErrNoChoices
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// StripCodeFences removes markdown code fences that some models wrap around JSON.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		// Remove opening fence (```json or ```)
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		// Remove closing fence
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
