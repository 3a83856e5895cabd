package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// textSize makes string columns map to unbounded text types on MySQL.
const textSize = 1 << 31

var (
	// ItemsColumns holds the columns for the "items" table.
	ItemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "kind", Type: field.TypeString, Size: 16, Default: "word"},
		{Name: "prompt", Type: field.TypeString, Size: textSize},
		{Name: "answer", Type: field.TypeString, Size: textSize},
		{Name: "choices", Type: field.TypeJSON, Nullable: true},
		{Name: "explanation", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "tags", Type: field.TypeJSON, Nullable: true},
		{Name: "mastery_count", Type: field.TypeInt, Default: 0},
		{Name: "needs_review", Type: field.TypeBool, Default: false},
		{Name: "error_count", Type: field.TypeInt, Default: 0},
		{Name: "answered", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ItemsTable holds the schema information for the "items" table.
	ItemsTable = &schema.Table{
		Name:       "items",
		Columns:    ItemsColumns,
		PrimaryKey: []*schema.Column{ItemsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "item_needs_review", Columns: []*schema.Column{ItemsColumns[8]}},
			{Name: "item_mastery_count", Columns: []*schema.Column{ItemsColumns[7]}},
		},
	}

	// AnswerEventsColumns holds the columns for the "answer_events" table.
	AnswerEventsColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString, Size: 64},
		&schema.Column{Name: "item_id", Type: field.TypeInt64},
		&schema.Column{Name: "mode", Type: field.TypeString, Size: 16},
		&schema.Column{Name: "prompt", Type: field.TypeString, Size: textSize},
		&schema.Column{Name: "expected", Type: field.TypeString, Size: textSize},
		&schema.Column{Name: "chosen", Type: field.TypeString, Size: textSize},
		&schema.Column{Name: "correct", Type: field.TypeBool},
		&schema.Column{Name: "mastery_after", Type: field.TypeInt, Default: 0},
	)
	// AnswerEventsTable holds the schema information for the "answer_events" table.
	AnswerEventsTable = eventTable("answer_events", AnswerEventsColumns, "answerevent")

	// SessionEventsColumns holds the columns for the "session_events" table.
	SessionEventsColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString, Size: 64},
		&schema.Column{Name: "action", Type: field.TypeString, Size: 16},
		&schema.Column{Name: "mode", Type: field.TypeString, Size: 16},
		&schema.Column{Name: "items_answered", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "correct_answers", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "duration_secs", Type: field.TypeInt, Default: 0},
	)
	// SessionEventsTable holds the schema information for the "session_events" table.
	SessionEventsTable = eventTable("session_events", SessionEventsColumns, "sessionevent")

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = eventColumns(
		&schema.Column{Name: "provider", Type: field.TypeString, Size: 32},
		&schema.Column{Name: "model", Type: field.TypeString, Size: 128},
		&schema.Column{Name: "purpose", Type: field.TypeString, Size: 64},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Size: textSize, Default: ""},
	)
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = eventTable("llm_request_events", LlmRequestEventsColumns, "llmrequestevent")

	// GlobalSequenceColumns holds the columns for the "global_sequence" table.
	GlobalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	// GlobalSequenceTable holds the single-row counter shared by all event tables.
	GlobalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    GlobalSequenceColumns,
		PrimaryKey: []*schema.Column{GlobalSequenceColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ItemsTable,
		AnswerEventsTable,
		SessionEventsTable,
		LlmRequestEventsTable,
		GlobalSequenceTable,
	}
)

// eventColumns prepends the fields every event table shares: id, a global
// sequence number and a timestamp.
func eventColumns(cols ...*schema.Column) []*schema.Column {
	base := []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}
	return append(base, cols...)
}

func eventTable(name string, cols []*schema.Column, prefix string) *schema.Table {
	return &schema.Table{
		Name:       name,
		Columns:    cols,
		PrimaryKey: []*schema.Column{cols[0]},
		Indexes: []*schema.Index{
			{Name: prefix + "_timestamp", Columns: []*schema.Column{cols[2]}},
		},
	}
}
