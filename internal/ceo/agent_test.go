package ceo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"openfounder/internal/plan"
)

const validReply = "Here is the plan.\n\n```json\n" + `{
  "ventureId": "price-watch",
  "workflowName": "Price Watch",
  "description": "Monitors competitor pricing.",
  "agents": [{
    "id": "planner", "name": "Planner", "role": "analysis", "description": "Plans",
    "files": {"AGENTS.md": "a", "IDENTITY.md": "b", "SOUL.md": "c"}
  }],
  "steps": [{"id": "plan", "agent": "planner", "input": "{{task}}", "expects": "STATUS: done"}],
  "firstTask": "Scrape competitor X"
}` + "\n```\n\nGood luck."

type stubModel struct {
	reply    []string
	err      error
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (m *stubModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.opts)
	}
	if m.err != nil {
		return nil, m.err
	}
	resp := &llms.ContentResponse{}
	for _, text := range m.reply {
		resp.Choices = append(resp.Choices, &llms.ContentChoice{Content: text})
	}
	return resp, nil
}

func (m *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestGenerateParsesFencedReply(t *testing.T) {
	model := &stubModel{reply: []string{validReply}}
	gen := NewGenerator(model, 0)

	p, err := gen.Generate(context.Background(), "Track competitor prices for small shops")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if p.VentureID != "price-watch" || p.FirstTask != "Scrape competitor X" {
		t.Fatalf("unexpected plan %+v", p)
	}
	if err := plan.Validate(p); err != nil {
		t.Fatalf("expected valid plan, got %v", err)
	}

	if model.opts.MaxTokens != DefaultMaxTokens {
		t.Fatalf("expected max tokens %d, got %d", DefaultMaxTokens, model.opts.MaxTokens)
	}
	if len(model.messages) != 2 {
		t.Fatalf("expected system and human messages, got %d", len(model.messages))
	}
	if model.messages[0].Role != schema.ChatMessageTypeSystem || model.messages[1].Role != schema.ChatMessageTypeHuman {
		t.Fatalf("unexpected roles %v, %v", model.messages[0].Role, model.messages[1].Role)
	}
	human := model.messages[1].Parts[0].(llms.TextContent).Text
	if !strings.HasPrefix(human, "Design an autonomous AI team for this startup idea:\n\n") ||
		!strings.HasSuffix(human, "Track competitor prices for small shops") {
		t.Fatalf("unexpected human message %q", human)
	}
}

func TestGenerateJoinsChoices(t *testing.T) {
	parts := strings.SplitN(validReply, "\"steps\"", 2)
	model := &stubModel{reply: []string{parts[0], "", "\"steps\"" + parts[1]}}
	if _, err := NewGenerator(model, 100).Generate(context.Background(), "brief"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if model.opts.MaxTokens != 100 {
		t.Fatalf("expected max tokens override, got %d", model.opts.MaxTokens)
	}
}

func TestGenerateModelError(t *testing.T) {
	model := &stubModel{err: errors.New("rate limited")}
	_, err := NewGenerator(model, 0).Generate(context.Background(), "brief")
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected wrapped model error, got %v", err)
	}
}

func TestGenerateEmptyReply(t *testing.T) {
	_, err := NewGenerator(&stubModel{}, 0).Generate(context.Background(), "brief")
	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected ShapeError, got %v", err)
	}
}

func TestGenerateRequiresBrief(t *testing.T) {
	if _, err := NewGenerator(&stubModel{}, 0).Generate(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty brief")
	}
}

func TestBuildPromptListsRolesAndModels(t *testing.T) {
	prompt := BuildPrompt("  A marketplace for used bikes  ")
	if !strings.Contains(prompt, "## BUSINESS BRIEF\n\nA marketplace for used bikes\n") {
		t.Fatalf("expected trimmed brief in prompt")
	}
	for _, role := range plan.Roles() {
		if !strings.Contains(prompt, "  "+string(role)+": ") {
			t.Fatalf("expected model registry entry for %s", role)
		}
	}
	if !strings.Contains(prompt, plan.TaskPlaceholder) {
		t.Fatalf("expected task placeholder in prompt")
	}
}

func TestNewModelUnknownProvider(t *testing.T) {
	if _, err := NewModel(ProviderOptions{Name: "carrier-pigeon"}); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}

func TestNewModelOpenRouterDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "or-test-key")

	opts := ProviderOptions{Name: "openrouter", Model: "claude-sonnet-4-6"}
	resolved, err := resolveProvider(opts)
	if err != nil {
		t.Fatalf("resolve provider: %v", err)
	}
	if resolved.BaseURL != OpenRouterBaseURL {
		t.Errorf("expected base url %s, got %s", OpenRouterBaseURL, resolved.BaseURL)
	}
	if resolved.APIKey != "or-test-key" {
		t.Errorf("expected key from OPENROUTER_API_KEY, got %q", resolved.APIKey)
	}
	if resolved.Model != "anthropic/claude-sonnet-4-6" {
		t.Errorf("expected vendor-prefixed model, got %q", resolved.Model)
	}
	if _, err := NewModel(opts); err != nil {
		t.Fatalf("new openrouter model: %v", err)
	}

	custom, err := resolveProvider(ProviderOptions{Name: "openrouter", Model: "openai/gpt-4o", APIKey: "k", BaseURL: "http://localhost:8080/v1"})
	if err != nil {
		t.Fatalf("resolve provider: %v", err)
	}
	if custom.BaseURL != "http://localhost:8080/v1" || custom.Model != "openai/gpt-4o" || custom.APIKey != "k" {
		t.Errorf("expected explicit settings to win, got %+v", custom)
	}
}

func TestNewModelOpenRouterRequiresKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	_, err := NewModel(ProviderOptions{Name: "openrouter"})
	if err == nil || !strings.Contains(err.Error(), "OPENROUTER_API_KEY") {
		t.Fatalf("expected missing OpenRouter key error, got %v", err)
	}
}
