package catalog

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/generative-ai-go/genai"
	openaisdk "github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	googleoption "google.golang.org/api/option"

	"github.com/dshills/fluxgraph/command"
	"github.com/dshills/fluxgraph/store"
)

// These three commands each take a "prompt" input/static field and an
// "api_key" static field, call the named third-party completion SDK, and
// return a "text" output — the "command body wraps an external service"
// role the original's blockchain/IPFS commands played, generalised to a
// domain this core makes no assumptions about. Each SDK call is made
// through a small per-provider client interface so tests can supply a
// fake instead of hitting a live API.

// anthropicClient is the seam between anthropicCommand and the real SDK,
// mirroring the teacher's anthropicClient/defaultClient split in
// graph/model/anthropic.
type anthropicClient interface {
	complete(ctx context.Context, apiKey, model, prompt string) (string, error)
}

type defaultAnthropicClient struct{}

func (defaultAnthropicClient) complete(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client := anthropicsdk.NewClient(anthropicoption.WithAPIKey(apiKey))
	resp, err := client.Messages.New(ctx, anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(model),
		MaxTokens: 1024,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("catalog: anthropic completion: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropicsdk.TextBlock); ok {
			text += tb.Text
		}
	}
	return text, nil
}

type anthropicCommand struct {
	desc   command.Descriptor
	model  string
	client anthropicClient
}

func newAnthropicCommand(desc command.Descriptor) (command.Command, error) {
	model := "claude-sonnet-4-5-20250929"
	if m, ok := desc.Static["model"]; ok && m.Str != "" {
		model = m.Str
	}
	return anthropicCommand{desc: desc, model: model, client: defaultAnthropicClient{}}, nil
}

func (c anthropicCommand) Run(ctx context.Context, _ *command.Context, inputs map[string]store.Value) (map[string]store.Value, error) {
	prompt, apiKey, err := resolvePromptAndKey(c.desc, inputs)
	if err != nil {
		return nil, err
	}

	text, err := c.client.complete(ctx, apiKey, c.model, prompt)
	if err != nil {
		return nil, err
	}
	return map[string]store.Value{"text": store.VString(text)}, nil
}

// openAIClient is the seam between openAICommand and the real SDK,
// mirroring the teacher's pattern in graph/model/openai.
type openAIClient interface {
	complete(ctx context.Context, apiKey, model, prompt string) (string, error)
}

type defaultOpenAIClient struct{}

func (defaultOpenAIClient) complete(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client := openaisdk.NewClient(openaioption.WithAPIKey(apiKey))
	resp, err := client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("catalog: openai completion: %w", err)
	}

	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, nil
	}
	return "", nil
}

type openAICommand struct {
	desc   command.Descriptor
	model  string
	client openAIClient
}

func newOpenAICommand(desc command.Descriptor) (command.Command, error) {
	model := "gpt-4o-mini"
	if m, ok := desc.Static["model"]; ok && m.Str != "" {
		model = m.Str
	}
	return openAICommand{desc: desc, model: model, client: defaultOpenAIClient{}}, nil
}

func (c openAICommand) Run(ctx context.Context, _ *command.Context, inputs map[string]store.Value) (map[string]store.Value, error) {
	prompt, apiKey, err := resolvePromptAndKey(c.desc, inputs)
	if err != nil {
		return nil, err
	}

	text, err := c.client.complete(ctx, apiKey, c.model, prompt)
	if err != nil {
		return nil, err
	}
	return map[string]store.Value{"text": store.VString(text)}, nil
}

// geminiClient is the seam between geminiCommand and the real SDK,
// mirroring the teacher's pattern in graph/model/google.
type geminiClient interface {
	complete(ctx context.Context, apiKey, model, prompt string) (string, error)
}

type defaultGeminiClient struct{}

func (defaultGeminiClient) complete(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, googleoption.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("catalog: gemini client: %w", err)
	}
	defer client.Close()

	genModel := client.GenerativeModel(model)
	resp, err := genModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("catalog: gemini completion: %w", err)
	}

	var text string
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text += string(t)
			}
		}
	}
	return text, nil
}

type geminiCommand struct {
	desc   command.Descriptor
	model  string
	client geminiClient
}

func newGeminiCommand(desc command.Descriptor) (command.Command, error) {
	model := "gemini-1.5-flash"
	if m, ok := desc.Static["model"]; ok && m.Str != "" {
		model = m.Str
	}
	return geminiCommand{desc: desc, model: model, client: defaultGeminiClient{}}, nil
}

func (c geminiCommand) Run(ctx context.Context, _ *command.Context, inputs map[string]store.Value) (map[string]store.Value, error) {
	prompt, apiKey, err := resolvePromptAndKey(c.desc, inputs)
	if err != nil {
		return nil, err
	}

	text, err := c.client.complete(ctx, apiKey, c.model, prompt)
	if err != nil {
		return nil, err
	}
	return map[string]store.Value{"text": store.VString(text)}, nil
}

func resolvePromptAndKey(desc command.Descriptor, inputs map[string]store.Value) (prompt, apiKey string, err error) {
	p, err := desc.Resolve("prompt", inputs)
	if err != nil {
		return "", "", err
	}
	k, err := desc.Resolve("api_key", inputs)
	if err != nil {
		return "", "", err
	}
	return p.Str, k.Str, nil
}
