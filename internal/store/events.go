package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Session actions.
const (
	SessionStart = "start"
	SessionEnd   = "end"
)

// AnswerEventData captures one answer submitted during a session.
type AnswerEventData struct {
	SessionID    string
	ItemID       int64
	Mode         string
	Prompt       string
	Expected     string
	Chosen       string
	Correct      bool
	MasteryAfter int
}

// SessionEventData captures a session start or end.
type SessionEventData struct {
	SessionID      string
	Action         string
	Mode           string
	ItemsAnswered  int
	CorrectAnswers int
	DurationSecs   int
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// SessionRecord is a stored session event.
type SessionRecord struct {
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// AnswerStats aggregates the answer log.
type AnswerStats struct {
	Attempts int
	Correct  int
}

// Accuracy returns Correct/Attempts, or 0 with no attempts.
func (s AnswerStats) Accuracy() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Attempts)
}

// EventRepo provides append and query access to the event log.
type EventRepo interface {
	// AppendAnswerEvent records an answer.
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error

	// AppendSessionEvent records a session start or end.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// AnswerStats returns overall attempt and correct counts.
	AnswerStats(ctx context.Context) (AnswerStats, error)

	// QuerySessions returns the most recent session end events, newest first.
	QuerySessions(ctx context.Context, limit int) ([]SessionRecord, error)
}

// eventRepo implements EventRepo backed by the ent SQL driver and the
// global sequence counter.
type eventRepo struct {
	drv     *entsql.Driver
	dialect string
	seq     *sequenceCounter
}

func (r *eventRepo) append(ctx context.Context, table string, cols []string, vals ...any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	query, args := entsql.Dialect(r.dialect).Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, cols...)...).
		Values(append([]any{seqNum, time.Now().UTC()}, vals...)...).
		Query()
	return r.drv.Exec(ctx, query, args, nil)
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	err := r.append(ctx, AnswerEventsTable.Name,
		[]string{"session_id", "item_id", "mode", "prompt", "expected", "chosen", "correct", "mastery_after"},
		data.SessionID, data.ItemID, data.Mode, data.Prompt, data.Expected, data.Chosen, data.Correct, data.MasteryAfter,
	)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	err := r.append(ctx, SessionEventsTable.Name,
		[]string{"session_id", "action", "mode", "items_answered", "correct_answers", "duration_secs"},
		data.SessionID, data.Action, data.Mode, data.ItemsAnswered, data.CorrectAnswers, data.DurationSecs,
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	err := r.append(ctx, LlmRequestEventsTable.Name,
		[]string{"provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms", "success", "error_message"},
		data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) AnswerStats(ctx context.Context) (AnswerStats, error) {
	b := entsql.Dialect(r.dialect)
	var stats AnswerStats

	count := func(p *entsql.Predicate) (int, error) {
		sel := b.Select(entsql.Count("*")).From(b.Table(AnswerEventsTable.Name))
		if p != nil {
			sel = sel.Where(p)
		}
		query, args := sel.Query()
		rows := &entsql.Rows{}
		if err := r.drv.Query(ctx, query, args, rows); err != nil {
			return 0, err
		}
		defer rows.Close()
		return entsql.ScanInt(rows)
	}

	var err error
	if stats.Attempts, err = count(nil); err != nil {
		return AnswerStats{}, fmt.Errorf("count answers: %w", err)
	}
	if stats.Correct, err = count(entsql.EQ("correct", true)); err != nil {
		return AnswerStats{}, fmt.Errorf("count correct answers: %w", err)
	}
	return stats, nil
}

func (r *eventRepo) QuerySessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	b := entsql.Dialect(r.dialect)
	sel := b.Select("sequence", "timestamp", "session_id", "action", "mode",
		"items_answered", "correct_answers", "duration_secs").
		From(b.Table(SessionEventsTable.Name)).
		Where(entsql.EQ("action", SessionEnd)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(&rec.Sequence, &rec.Timestamp, &rec.SessionID, &rec.Action, &rec.Mode,
			&rec.ItemsAnswered, &rec.CorrectAnswers, &rec.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
