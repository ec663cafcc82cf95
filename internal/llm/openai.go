package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ErrDisallowedURL means the narrative mentioned a URL outside the listings
var ErrDisallowedURL = errors.New("narrative cited a URL not present in the listings")

var urlPattern = regexp.MustCompile(`https?://[^\s\)]+`)

// OpenAIProvider writes narratives with the Chat Completions API. BaseURL
// may point at any OpenAI-compatible server.
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates an OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Narrate asks the model for a summary grounded in the computed figures
func (p *OpenAIProvider) Narrate(ctx context.Context, req NarrativeRequest) (*NarrativeResponse, error) {
	if req.Result == nil && req.Prompt == "" {
		return nil, fmt.Errorf("narrative request has no result")
	}

	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Result)
	}

	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 600
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write short, factual market summaries from supplied figures only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	for _, u := range extractURLs(text) {
		if !slices.Contains(req.AllowedURLs, u) {
			return nil, fmt.Errorf("%w: %s", ErrDisallowedURL, u)
		}
	}

	summary, recs := ParseNarrative(text)
	if summary == "" {
		return nil, fmt.Errorf("empty narrative from OpenAI")
	}

	return &NarrativeResponse{
		Summary:         summary,
		Recommendations: recs,
		Model:           model,
		TokensUsed:      resp.Usage.TotalTokens,
	}, nil
}

// extractURLs returns the distinct URLs in text
func extractURLs(text string) []string {
	seen := make(map[string]bool)
	var unique []string
	for _, u := range urlPattern.FindAllString(text, -1) {
		u = strings.TrimRight(u, ".,;:!?")
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
		}
	}
	return unique
}
