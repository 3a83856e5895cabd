package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestParseJSON_WordList(t *testing.T) {
	items, err := ParseJSON(strings.NewReader(`[
		{"he": " שלום ", "fr": "bonjour"},
		{"he": "תודה", "fr": "merci", "tags": "politesse"}
	]`))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "שלום", items[0].Prompt)
	assert.Equal(t, "bonjour", items[0].Answer)
	assert.Equal(t, item.KindWord, items[0].Kind)
	assert.Equal(t, item.Tags{"politesse"}, items[1].Tags)
}

func TestParseJSON_QuestionBank(t *testing.T) {
	items, err := ParseJSON(strings.NewReader(`[{
		"question": "Quel muscle fléchit le coude ?",
		"options": {"C": "triceps", "A": "biceps", "B": "deltoïde"},
		"reponse_correcte": "A",
		"explication": "Le biceps brachial.",
		"grande_categorie": "anatomie",
		"matiere": ["muscles", "membre supérieur"]
	}]`))
	require.NoError(t, err)
	require.Len(t, items, 1)

	q := items[0]
	assert.Equal(t, item.KindQuestion, q.Kind)
	assert.Equal(t, "A", q.Answer)
	assert.Equal(t, "biceps", q.AnswerText())
	assert.Equal(t, "Le biceps brachial.", q.Explanation)
	assert.Equal(t, []item.Choice{{Key: "A", Text: "biceps"}, {Key: "B", Text: "deltoïde"}, {Key: "C", Text: "triceps"}}, q.Choices)
	assert.Equal(t, item.Tags{"anatomie", "membre supérieur", "muscles"}, q.Tags)
	assert.NoError(t, q.Validate())
}

func TestParseJSON_Generic(t *testing.T) {
	items, err := ParseJSON(strings.NewReader(`[{"prompt":"chat","answer":"cat","tags":["animals"]}]`))
	require.NoError(t, err)
	assert.Equal(t, "chat", items[0].Prompt)
	assert.Equal(t, "cat", items[0].Answer)

	items, err = ParseJSON(strings.NewReader(``))
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = ParseJSON(strings.NewReader(`{"he": "x"}`))
	assert.Error(t, err)
}

func TestParseCSV(t *testing.T) {
	items, err := ParseCSV(strings.NewReader("Word,Translation,Topic\nchien,dog,animals;pets\n,,\nchat,cat,\n"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, item.Tags{"animals", "pets"}, items[0].Tags)
	assert.Empty(t, items[1].Tags)

	_, err = ParseCSV(strings.NewReader("foo,bar\n1,2\n"))
	assert.ErrorContains(t, err, "prompt column")
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"he", "fr"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"ספר", "livre"}))
	_, err := f.NewSheet("Verbs")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Verbs", "A1", &[]any{"prompt", "answer", "tags"}))
	require.NoError(t, f.SetSheetRow("Verbs", "A2", &[]any{"לכתוב", "écrire", "verbes"}))

	path := filepath.Join(t.TempDir(), "words.xlsx")
	require.NoError(t, f.SaveAs(path))

	open := func(sheet string) []item.Item {
		fh, err := os.Open(path)
		require.NoError(t, err)
		defer fh.Close()
		items, err := ParseXLSX(fh, sheet)
		require.NoError(t, err)
		return items
	}

	first := open("")
	require.Len(t, first, 1)
	assert.Equal(t, "livre", first[0].Answer)

	verbs := open("Verbs")
	require.Len(t, verbs, 1)
	assert.Equal(t, item.Tags{"verbes"}, verbs[0].Tags)
}

func TestImport_Dedup(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	_, err := s.Items().Create(ctx, item.Item{Prompt: "שלום", Answer: "bonjour"})
	require.NoError(t, err)

	im := New(s.Items())
	res, err := im.Import(ctx, []item.Item{
		{Prompt: "שלום", Answer: "salut"},
		{Prompt: "תודה", Answer: "merci"},
		{Prompt: " תודה ", Answer: "merci bien"},
		{Prompt: "", Answer: "orphan"},
	})
	require.NoError(t, err)
	require.Len(t, res.Added, 1)
	assert.Equal(t, "תודה", res.Added[0].Prompt)
	assert.NotZero(t, res.Added[0].ID)
	assert.Equal(t, 2, res.Duplicates)
	require.Len(t, res.Invalid, 1)
	assert.ErrorIs(t, res.Invalid[0], item.ErrInvalidItem)

	all, err := s.Items().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestImport_NormalizesUnicode(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	im := New(s.Items())

	// "é" precomposed and decomposed.
	res, err := im.Import(ctx, []item.Item{
		{Prompt: "caf\u00e9", Answer: "coffee"},
		{Prompt: "cafe\u0301", Answer: "coffee"},
	})
	require.NoError(t, err)
	assert.Len(t, res.Added, 1)
	assert.Equal(t, 1, res.Duplicates)
}

func TestImportFile_Truncate(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "words.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"he":"מים","fr":"eau"}]`), 0o644))

	im := New(s.Items())
	res, err := im.ImportFile(ctx, path, Options{Truncate: true})
	require.NoError(t, err)
	assert.Len(t, res.Added, 1)
	assert.True(t, res.Truncated)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	// Rerunning the emptied file is a no-op.
	res, err = im.ImportFile(ctx, path, Options{Truncate: true})
	require.NoError(t, err)
	assert.Empty(t, res.Added)
}

func TestImportFile_TruncateKeepsSourceWithInvalidEntries(t *testing.T) {
	s := openStore(t)
	path := filepath.Join(t.TempDir(), "words.json")
	src := `[{"he":"שלום","fr":"bonjour"},{"he":"תודה","fr":""}]`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	res, err := New(s.Items()).ImportFile(context.Background(), path, Options{Truncate: true})
	require.NoError(t, err)
	assert.Len(t, res.Added, 1)
	assert.Len(t, res.Invalid, 1)
	assert.False(t, res.Truncated)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, src, string(data))
}

func TestDetectFormat(t *testing.T) {
	for path, want := range map[string]Format{"a.json": FormatJSON, "b.CSV": FormatCSV, "c.xlsx": FormatXLSX} {
		got, err := DetectFormat(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := DetectFormat("d.txt")
	assert.Error(t, err)
}
