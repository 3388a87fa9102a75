// Package ceo asks a language model to design a team plan for a business
// brief and turns the reply into a plan.Plan.
package ceo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"openfounder/internal/plan"
)

// DefaultMaxTokens leaves room for three Markdown documents per agent.
const DefaultMaxTokens = 16384

// Generator produces plans with a single model request per brief.
type Generator struct {
	Model     llms.Model
	MaxTokens int
}

// NewGenerator returns a Generator for model.
func NewGenerator(model llms.Model, maxTokens int) *Generator {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Generator{Model: model, MaxTokens: maxTokens}
}

// Generate sends the brief to the model and parses the reply. The returned
// plan has passed the shape check but has not been validated.
func (g *Generator) Generate(ctx context.Context, brief string) (plan.Plan, error) {
	if g == nil || g.Model == nil {
		return plan.Plan{}, errors.New("planner model is required")
	}
	if strings.TrimSpace(brief) == "" {
		return plan.Plan{}, errors.New("business brief is required")
	}

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, BuildPrompt(brief)),
		llms.TextParts(schema.ChatMessageTypeHuman, "Design an autonomous AI team for this startup idea:\n\n"+brief),
	}

	resp, err := g.Model.GenerateContent(ctx, messages, llms.WithMaxTokens(g.MaxTokens))
	if err != nil {
		return plan.Plan{}, fmt.Errorf("planner request: %w", err)
	}

	var parts []string
	for _, choice := range resp.Choices {
		if choice == nil || choice.Content == "" {
			continue
		}
		parts = append(parts, choice.Content)
	}
	if len(parts) == 0 {
		return plan.Plan{}, &ShapeError{Reason: "planner response contained no text"}
	}
	return ParseResponse(strings.Join(parts, "\n"))
}

// ProviderOptions selects and configures the model backend.
type ProviderOptions struct {
	Name    string
	Model   string
	APIKey  string
	BaseURL string
}

// OpenRouter speaks the OpenAI API at its own endpoint.
const (
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterKeyEnv  = "OPENROUTER_API_KEY"
)

// NewModel builds the langchaingo model for the configured provider. An
// empty APIKey falls back to the provider's own environment variable.
func NewModel(opts ProviderOptions) (llms.Model, error) {
	opts, err := resolveProvider(opts)
	if err != nil {
		return nil, err
	}
	switch opts.Name {
	case "", "anthropic":
		var aopts []anthropic.Option
		if opts.Model != "" {
			aopts = append(aopts, anthropic.WithModel(opts.Model))
		}
		if opts.APIKey != "" {
			aopts = append(aopts, anthropic.WithToken(opts.APIKey))
		}
		if opts.BaseURL != "" {
			aopts = append(aopts, anthropic.WithBaseURL(opts.BaseURL))
		}
		return anthropic.New(aopts...)
	case "openai", "openrouter":
		var oopts []openai.Option
		if opts.Model != "" {
			oopts = append(oopts, openai.WithModel(opts.Model))
		}
		if opts.APIKey != "" {
			oopts = append(oopts, openai.WithToken(opts.APIKey))
		}
		if opts.BaseURL != "" {
			oopts = append(oopts, openai.WithBaseURL(opts.BaseURL))
		}
		return openai.New(oopts...)
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Name)
	}
}

// resolveProvider fills in OpenRouter's endpoint, key and vendor-prefixed
// model id. Other providers pass through unchanged.
func resolveProvider(opts ProviderOptions) (ProviderOptions, error) {
	if opts.Name != "openrouter" {
		return opts, nil
	}
	if opts.BaseURL == "" {
		opts.BaseURL = OpenRouterBaseURL
	}
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv(openRouterKeyEnv)
	}
	if opts.APIKey == "" {
		return opts, fmt.Errorf("openrouter needs provider.api_key or %s", openRouterKeyEnv)
	}
	if strings.HasPrefix(opts.Model, "claude-") {
		opts.Model = "anthropic/" + opts.Model
	}
	return opts, nil
}
