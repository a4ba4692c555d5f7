package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"charm.land/fantasy/providers/openai"
	"charm.land/fantasy/providers/openrouter"
	"charm.land/fantasy/schema"
)

// SupportedProviderKinds lists the backends explain can talk to.
var SupportedProviderKinds = []string{"anthropic", "openai", "openrouter"}

var backends = map[string]func(ProviderConfig) (fantasy.Provider, error){
	"openai": func(pc ProviderConfig) (fantasy.Provider, error) {
		opts := []openai.Option{openai.WithAPIKey(pc.APIKey)}
		if pc.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pc.BaseURL))
		}
		return openai.New(opts...)
	},
	"anthropic": func(pc ProviderConfig) (fantasy.Provider, error) {
		opts := []anthropic.Option{anthropic.WithAPIKey(pc.APIKey)}
		if pc.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(pc.BaseURL))
		}
		return anthropic.New(opts...)
	},
	"openrouter": func(pc ProviderConfig) (fantasy.Provider, error) {
		return openrouter.New(openrouter.WithAPIKey(pc.APIKey))
	},
}

var _ Provider = (*FantasyProvider)(nil)

// FantasyProvider drives one language model for trip explanations.
type FantasyProvider struct {
	model fantasy.LanguageModel
	name  string
}

// NewFantasyProvider connects to the provider registered under name. The
// backend is pc.Kind, or name itself when Kind is empty.
func NewFantasyProvider(ctx context.Context, name string, pc ProviderConfig) (*FantasyProvider, error) {
	kind := pc.Kind
	if kind == "" {
		kind = name
	}

	build, ok := backends[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported provider kind %q", kind)
	}
	backend, err := build(pc)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", name, err)
	}

	model, err := backend.LanguageModel(ctx, pc.Model)
	if err != nil {
		return nil, fmt.Errorf("provider %s: model %q: %w", name, pc.Model, err)
	}
	return &FantasyProvider{model: model, name: name}, nil
}

func (p *FantasyProvider) Name() string { return p.name }

func (p *FantasyProvider) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := fantasy.NewAgent(p.model).Generate(ctx, fantasy.AgentCall{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("%s: generate: %w", p.name, err)
	}
	return result.Response.Content.Text(), nil
}

// GenerateObject asks the model for a reply shaped like *target and decodes it there.
func (p *FantasyProvider) GenerateObject(ctx context.Context, prompt string, target any) error {
	dst := reflect.ValueOf(target)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		return fmt.Errorf("%s: target must be a non-nil pointer, got %T", p.name, target)
	}

	resp, err := p.model.GenerateObject(ctx, fantasy.ObjectCall{
		Prompt: fantasy.Prompt{fantasy.NewUserMessage(prompt)},
		Schema: schema.Generate(dst.Type().Elem()),
	})
	if err != nil {
		return fmt.Errorf("%s: generate object: %w", p.name, err)
	}
	if resp.Object == nil {
		return fmt.Errorf("%s: model returned no object", p.name)
	}

	if got := reflect.ValueOf(resp.Object); got.Type().AssignableTo(dst.Elem().Type()) {
		dst.Elem().Set(got)
		return nil
	}

	// decoded objects usually arrive as generic maps
	raw, err := json.Marshal(resp.Object)
	if err != nil {
		return fmt.Errorf("%s: re-encode object: %w", p.name, err)
	}
	return json.Unmarshal(raw, target)
}

// Stream emits text deltas until the model finishes or ctx is cancelled.
// A failure mid-stream is appended as a final bracketed note.
func (p *FantasyProvider) Stream(ctx context.Context, prompt string) (<-chan string, error) {
	out := make(chan string, 32)

	send := func(s string) error {
		select {
		case out <- s:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	go func() {
		defer close(out)
		_, err := fantasy.NewAgent(p.model).Stream(ctx, fantasy.AgentStreamCall{
			Prompt: prompt,
			OnTextDelta: func(_, delta string) error {
				if delta == "" {
					return nil
				}
				return send(delta)
			},
		})
		if err != nil && ctx.Err() == nil {
			_ = send(fmt.Sprintf("\n[%s stopped: %v]", p.name, err))
		}
	}()
	return out, nil
}
