package llm

import (
	"context"
	"time"

	"github.com/abhisek/oulpan/internal/logging"
	"github.com/abhisek/oulpan/internal/store"
)

// EventSink stores one row per provider call.
type EventSink interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

type purposeKey struct{}

// WithPurpose labels requests made with ctx, e.g. "wordgen".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok {
		return v
	}
	return "unknown"
}

// Recorder writes an event for every call to the wrapped provider.
// Sits below the retry layer so each attempt is recorded.
type Recorder struct {
	inner    Provider
	provider string
	sink     EventSink
}

func WithRecorder(p Provider, providerName string, sink EventSink) Provider {
	return &Recorder{inner: p, provider: providerName, sink: sink}
}

func (r *Recorder) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := r.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:  r.provider,
		Model:     r.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.Model = resp.Model
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	if logErr := r.sink.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
		logging.Warn("failed to record llm request", "err", logErr)
	}
	logging.Debug("llm request", "model", data.Model, "purpose", data.Purpose,
		"latency_ms", data.LatencyMs, "ok", data.Success)
	return resp, err
}

func (r *Recorder) ModelID() string {
	return r.inner.ModelID()
}
