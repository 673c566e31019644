// Package pipeline composes the linear parse flow: empty-input gate, prompt
// builder, model caller, response extractor, schema repairer, with the
// regex-only fallback catching transport and extraction failures. The
// contract is "always return a result": model-path failures degrade, they
// never surface.
package pipeline

import (
	"context"
	"errors"
	"strings"

	"incidentparse/internal/config"
	"incidentparse/internal/extract"
	"incidentparse/internal/fallback"
	"incidentparse/internal/incident"
	"incidentparse/internal/llm"
	"incidentparse/internal/logging"
	"incidentparse/internal/validate"
)

// Pipeline holds the model client. One instance serves any number of
// sequential Parse calls; it keeps no per-request state.
type Pipeline struct {
	client llm.Client
}

// New creates a pipeline around an existing client.
func New(client llm.Client) *Pipeline {
	return &Pipeline{client: client}
}

// NewFromConfig builds the pipeline with a Groq client from configuration.
// A missing credential is not an error here; it surfaces on the first call.
func NewFromConfig(cfg *config.Config) *Pipeline {
	return New(llm.NewGroqClientWithConfig(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Timeout:     cfg.LLM.TimeoutDuration(),
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}))
}

// Parse converts a free-text incident report into a structured result.
// Empty input and a missing credential come back as explicit errors; every
// other failure degrades to the heuristic extractor.
func (p *Pipeline) Parse(ctx context.Context, text string) incident.Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return incident.Result{Err: &incident.ErrorResult{
			Kind:    incident.ErrorEmptyInput,
			Message: "input text is empty",
		}}
	}

	raw, err := p.client.CompleteWithSystem(ctx, systemPrompt, BuildPrompt(trimmed))
	if err != nil {
		if errors.Is(err, llm.ErrNoAPIKey) {
			return incident.Result{Err: &incident.ErrorResult{
				Kind:    incident.ErrorConfig,
				Message: "GROQ_API_KEY is not configured: " + err.Error(),
			}}
		}
		logging.FallbackWarn("model call failed, taking degraded path: %v", err)
		return p.degrade(trimmed)
	}

	obj, err := extract.Object(raw)
	if err != nil {
		logging.FallbackWarn("no JSON in model response, taking degraded path")
		result := p.degrade(trimmed)
		result.Raw = raw
		return result
	}

	rec := validate.Repair(obj, trimmed)
	return incident.Result{
		Record: &rec,
		Source: incident.SourceModel,
		Raw:    raw,
	}
}

func (p *Pipeline) degrade(text string) incident.Result {
	rec := fallback.Extract(text)
	return incident.Result{
		Record: &rec,
		Source: incident.SourceHeuristic,
	}
}
