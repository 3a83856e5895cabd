// Package importer bulk-loads items from JSON, CSV and XLSX files.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/oulpan/internal/item"
)

// Format is a source file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// record is one JSON entry. Word lists use he/fr, question banks use
// question/options/reponse_correcte, and anything else uses the
// generic prompt/answer names.
type record struct {
	Prompt      string            `json:"prompt"`
	Answer      string            `json:"answer"`
	He          string            `json:"he"`
	Fr          string            `json:"fr"`
	Question    string            `json:"question"`
	Options     map[string]string `json:"options"`
	Correct     string            `json:"reponse_correcte"`
	Explanation string            `json:"explanation"`
	Explication string            `json:"explication"`
	Choices     []item.Choice     `json:"choices"`
	Tags        item.Tags         `json:"tags"`
	Category    item.Tags         `json:"grande_categorie"`
	Subject     item.Tags         `json:"matiere"`
}

func (r record) toItem() item.Item {
	it := item.Item{
		Prompt:      firstNonEmpty(r.Prompt, r.Question, r.He),
		Answer:      firstNonEmpty(r.Answer, r.Correct, r.Fr),
		Explanation: firstNonEmpty(r.Explanation, r.Explication),
		Choices:     r.Choices,
		Tags:        item.NewTags(slices.Concat(r.Tags, r.Category, r.Subject)...),
	}
	if len(it.Choices) == 0 && len(r.Options) > 0 {
		keys := make([]string, 0, len(r.Options))
		for k := range r.Options {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			it.Choices = append(it.Choices, item.Choice{Key: k, Text: r.Options[k]})
		}
	}
	it.Normalize()
	return it
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ParseJSON reads a JSON array of entries.
func ParseJSON(r io.Reader) ([]item.Item, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode json: %w", err)
	}
	items := make([]item.Item, len(records))
	for i, rec := range records {
		items[i] = rec.toItem()
	}
	return items, nil
}

// ParseCSV reads a CSV file whose first row names the columns.
func ParseCSV(r io.Reader) ([]item.Item, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return parseRows(rows)
}

// ParseXLSX reads one sheet of a workbook. An empty sheet name means the
// first sheet.
func ParseXLSX(r io.Reader, sheet string) ([]item.Item, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return parseRows(rows)
}

// column aliases, lower-cased
var columnAliases = map[string]string{
	"prompt":      "prompt",
	"word":        "prompt",
	"he":          "prompt",
	"question":    "prompt",
	"answer":      "answer",
	"translation": "answer",
	"fr":          "answer",
	"tags":        "tags",
	"topic":       "tags",
	"category":    "tags",
	"explanation": "explanation",
}

// parseRows maps a header row onto prompt/answer/tags/explanation. Tag
// cells may hold several tags separated by ';'.
func parseRows(rows [][]string) ([]item.Item, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, name := range rows[0] {
		if field, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
			if _, seen := cols[field]; !seen {
				cols[field] = i
			}
		}
	}
	if _, ok := cols["prompt"]; !ok {
		return nil, fmt.Errorf("header has no prompt column (got %v)", rows[0])
	}
	if _, ok := cols["answer"]; !ok {
		return nil, fmt.Errorf("header has no answer column (got %v)", rows[0])
	}

	cell := func(row []string, field string) string {
		i, ok := cols[field]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var items []item.Item
	for _, row := range rows[1:] {
		if len(strings.Join(row, "")) == 0 {
			continue
		}
		it := item.Item{
			Prompt:      cell(row, "prompt"),
			Answer:      cell(row, "answer"),
			Explanation: cell(row, "explanation"),
			Tags:        item.NewTags(strings.Split(cell(row, "tags"), ";")...),
		}
		it.Normalize()
		items = append(items, it)
	}
	return items, nil
}
