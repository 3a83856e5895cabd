package wordgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/llm"
)

type pair struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

func batch(pairs ...pair) llm.MockResponse {
	return llm.MockJSON(map[string]any{"pairs": pairs})
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Interval = 0
	return cfg
}

func baseInput(count int) Input {
	return Input{Topic: "food", SourceLang: "Hebrew", TargetLang: "French", Count: count}
}

func TestGenerate_SingleBatch(t *testing.T) {
	mock := llm.NewMockProvider(batch(
		pair{"לחם", "pain"},
		pair{"מים", "eau"},
	))
	g := New(mock, testConfig())

	res, err := g.Generate(context.Background(), baseInput(2))
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, 1, res.Calls)

	it := res.Items[0]
	assert.Equal(t, item.KindWord, it.Kind)
	assert.Equal(t, "לחם", it.Prompt)
	assert.Equal(t, item.Tags{"food"}, it.Tags)
	assert.Positive(t, res.Usage.TotalTokens)

	req := mock.Calls()[0]
	assert.Equal(t, PairSchema, req.Schema)
	assert.Contains(t, req.Messages[0].Content, "Number of pairs: 2")
	assert.Contains(t, req.Messages[0].Content, "Already known:\nNone")
}

func TestGenerate_DropsKnownAndDuplicates(t *testing.T) {
	mock := llm.NewMockProvider(
		batch(pair{"לחם", "pain"}, pair{"גבינה", "fromage"}, pair{"גבינה", "fromage"}, pair{"", "vide"}),
		batch(pair{"חלב", "lait"}, pair{"ביצה", "œuf"}),
	)
	g := New(mock, testConfig())

	in := baseInput(3)
	in.Known = []string{"לחם"}
	res, err := g.Generate(context.Background(), in)
	require.NoError(t, err)

	prompts := make([]string, len(res.Items))
	for i, it := range res.Items {
		prompts[i] = it.Prompt
	}
	assert.Equal(t, []string{"גבינה", "חלב", "ביצה"}, prompts)
	assert.Equal(t, 2, res.Calls)

	// The second call asks only for what is missing and lists what was kept.
	second := mock.Calls()[1].Messages[0].Content
	assert.Contains(t, second, "Number of pairs: 2")
	assert.Contains(t, second, "לחם, גבינה")
}

func TestGenerate_StopsAtMaxCalls(t *testing.T) {
	mock := llm.NewMockProvider()
	for range 10 {
		mock.AddResponse(batch(pair{"לחם", "pain"}))
	}
	cfg := testConfig()
	cfg.MaxCalls = 3
	g := New(mock, cfg)

	res, err := g.Generate(context.Background(), baseInput(5))
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 3, mock.CallCount())
}

func TestGenerate_BatchSize(t *testing.T) {
	mock := llm.NewMockProvider(batch(pair{"א", "a"}), batch(pair{"ב", "b"}))
	cfg := testConfig()
	cfg.BatchSize = 1
	g := New(mock, cfg)

	res, err := g.Generate(context.Background(), baseInput(2))
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	for _, c := range mock.Calls() {
		assert.Contains(t, c.Messages[0].Content, "Number of pairs: 1")
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(
		batch(pair{"לחם", "pain"}),
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
	)
	cfg := testConfig()
	cfg.BatchSize = 1
	g := New(mock, cfg)

	res, err := g.Generate(context.Background(), baseInput(2))
	var unavail *llm.ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
	assert.Len(t, res.Items, 1, "items gathered before the failure are kept")
}

func TestGenerate_SchemaViolation(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockJSON(map[string]any{"words": []string{"x"}}))
	g := New(mock, testConfig())

	_, err := g.Generate(context.Background(), baseInput(1))
	var invalid *llm.ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
}

func TestGenerate_InvalidInput(t *testing.T) {
	g := New(llm.NewMockProvider(), testConfig())
	_, err := g.Generate(context.Background(), Input{Topic: "x"})
	assert.Error(t, err)
	_, err = g.Generate(context.Background(), Input{Count: 1})
	assert.Error(t, err)
}

func TestGenerate_RateLimiterHonoursContext(t *testing.T) {
	mock := llm.NewMockProvider(batch(pair{"א", "a"}), batch(pair{"ב", "b"}))
	cfg := testConfig()
	cfg.BatchSize = 1
	cfg.Interval = 1 << 40
	g := New(mock, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Generate(ctx, baseInput(2))
	assert.Error(t, err)
	assert.Zero(t, mock.CallCount())
}

func TestBuildKnown(t *testing.T) {
	assert.Equal(t, "None", buildKnown(nil, 5))
	assert.Equal(t, "c, d", buildKnown([]string{"a", "b", "c", "d"}, 2))

	msg := buildUserMessage(Input{Topic: "t", SourceLang: "he", TargetLang: "fr", Level: "A1"}, 3, 10)
	assert.True(t, strings.Contains(msg, "Level: A1"))
}
