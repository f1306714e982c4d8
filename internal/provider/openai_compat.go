package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"edge-gateway/internal/retrieval"
)

// OpenAICompat calls any chat-completions endpoint that speaks the OpenAI
// wire shape. The oss, grok and openai identities all use this caller with
// their own base URL, model and key.
type OpenAICompat struct {
	name       string
	desc       Descriptor
	keys       *keyResolver
	httpClient *http.Client
}

// CompatOption customizes an OpenAICompat caller.
type CompatOption func(*OpenAICompat)

// WithCompatHTTPClient overrides the HTTP client used for completion calls.
func WithCompatHTTPClient(httpClient *http.Client) CompatOption {
	return func(c *OpenAICompat) {
		c.httpClient = httpClient
	}
}

// NewOpenAICompat creates a caller for one provider identity. keys may come
// from the descriptor's static APIKey or lazily from getter under
// keyParamName.
func NewOpenAICompat(desc Descriptor, getter SecretGetter, keyParamName string, opts ...CompatOption) *OpenAICompat {
	c := &OpenAICompat{
		name:       desc.Name,
		desc:       desc,
		keys:       newKeyResolver(desc.APIKey, getter, keyParamName),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *OpenAICompat) Name() string { return c.name }

// Configured reports whether the descriptor is complete enough to attempt a
// call. A provider missing any part is skipped by the chain, not errored.
func (c *OpenAICompat) Configured() bool {
	return c.desc.BaseURL != "" && c.desc.ModelID != "" && c.keys.configured()
}

func (c *OpenAICompat) Call(ctx context.Context, req Request) (Result, error) {
	key, err := c.keys.resolve(ctx)
	if err != nil {
		return Result{}, err
	}

	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = strings.TrimRight(c.desc.BaseURL, "/")
	cfg.HTTPClient = c.httpClient
	client := openai.NewClientWithConfig(cfg)

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.desc.ModelID,
		Messages:    msgs,
		Temperature: 0.2,
	})
	if err != nil {
		return Result{}, fmt.Errorf("provider %s: chat completion: %w", c.name, err)
	}

	text := ""
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}

	used := resp.Usage.TotalTokens
	if used <= 0 {
		// No usage field from this upstream; fall back to the heuristic so
		// header values stay deterministic.
		raw, _ := json.Marshal(req.Messages)
		used = retrieval.ApproxTokens(string(raw), text)
	}
	return Result{Text: text, Used: used}, nil
}
