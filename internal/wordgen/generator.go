// Package wordgen asks a language model for new vocabulary pairs.
package wordgen

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/llm"
	"github.com/abhisek/oulpan/internal/logging"
)

// Config tunes batching and pacing.
type Config struct {
	// BatchSize is the most pairs requested per call.
	BatchSize int

	// MaxCalls bounds the calls one Generate may make, so a model that
	// keeps returning duplicates cannot loop forever.
	MaxCalls int

	// Interval is the minimum spacing between calls.
	Interval time.Duration

	MaxTokens   int
	Temperature float64

	// MaxKnown caps the known-word list sent with each call.
	MaxKnown int
}

func DefaultConfig() Config {
	return Config{
		BatchSize:   25,
		MaxCalls:    6,
		Interval:    time.Second,
		MaxTokens:   2048,
		Temperature: 0.7,
		MaxKnown:    200,
	}
}

// Input describes the list to generate.
type Input struct {
	Topic      string
	Level      string
	SourceLang string
	TargetLang string
	Count      int

	// Known prompts are excluded from the result.
	Known []string

	Tags item.Tags
}

// Result is the generated items plus the total token usage.
type Result struct {
	Items []item.Item
	Usage llm.Usage
	Calls int
}

// Generator produces word items through an llm.Provider.
type Generator struct {
	provider llm.Provider
	config   Config
	limiter  *rate.Limiter
}

func New(provider llm.Provider, cfg Config) *Generator {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.MaxCalls < 1 {
		cfg.MaxCalls = 1
	}
	limit := rate.Inf
	if cfg.Interval > 0 {
		limit = rate.Every(cfg.Interval)
	}
	return &Generator{provider: provider, config: cfg, limiter: rate.NewLimiter(limit, 1)}
}

// Generate requests batches until Count new pairs are collected or
// MaxCalls is reached. Pairs whose prompt is known or already collected
// are dropped, as are pairs with empty fields. A short result is not an
// error; a failed call is, but items gathered before it are returned.
func (g *Generator) Generate(ctx context.Context, in Input) (Result, error) {
	if in.Count < 1 {
		return Result{}, fmt.Errorf("count must be positive")
	}
	if in.Topic == "" {
		return Result{}, fmt.Errorf("topic is required")
	}
	ctx = llm.WithPurpose(ctx, "wordgen")

	seen := make(map[string]bool, len(in.Known)+in.Count)
	for _, k := range in.Known {
		seen[item.PromptKey(k)] = true
	}
	known := append([]string(nil), in.Known...)
	tags := item.NewTags(append([]string{in.Topic}, in.Tags...)...)

	var res Result
	for res.Calls < g.config.MaxCalls && len(res.Items) < in.Count {
		if err := g.limiter.Wait(ctx); err != nil {
			return res, fmt.Errorf("rate limiter: %w", err)
		}

		want := min(in.Count-len(res.Items), g.config.BatchSize)
		req := llm.UserPrompt(systemPrompt, buildUserMessage(withKnown(in, known), want, g.config.MaxKnown), PairSchema)
		req.MaxTokens = g.config.MaxTokens
		req.Temperature = g.config.Temperature

		res.Calls++
		resp, err := g.provider.Generate(ctx, req)
		if err != nil {
			return res, fmt.Errorf("LLM generation failed: %w", err)
		}
		res.Usage.InputTokens += resp.Usage.InputTokens
		res.Usage.OutputTokens += resp.Usage.OutputTokens
		res.Usage.TotalTokens += resp.Usage.TotalTokens

		var out pairOutput
		if err := resp.Decode(&out); err != nil {
			return res, err
		}

		added := 0
		for _, p := range out.Pairs {
			it := item.Item{Kind: item.KindWord, Prompt: p.Prompt, Answer: p.Answer, Tags: tags}
			it.Normalize()
			if it.Validate() != nil || seen[item.PromptKey(it.Prompt)] {
				continue
			}
			seen[item.PromptKey(it.Prompt)] = true
			known = append(known, it.Prompt)
			res.Items = append(res.Items, it)
			added++
			if len(res.Items) == in.Count {
				break
			}
		}
		logging.Debug("wordgen batch", "requested", want, "returned", len(out.Pairs), "kept", added)
	}
	return res, nil
}

func withKnown(in Input, known []string) Input {
	in.Known = known
	return in
}
