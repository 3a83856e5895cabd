package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/logging"
	"github.com/abhisek/oulpan/internal/store"
)

// Result counts what an import did.
type Result struct {
	Added      []item.Item
	Duplicates int
	Invalid    []error

	// Truncated reports that the JSON source was emptied.
	Truncated bool
}

// Options controls ImportFile.
type Options struct {
	// Sheet selects the workbook sheet for XLSX sources.
	Sheet string

	// Truncate rewrites a JSON source to an empty array after a
	// successful import so the same file can be refilled and rerun. A
	// source with invalid entries is left as is so they can be fixed.
	Truncate bool
}

// Importer inserts items, skipping prompts that already exist.
type Importer struct {
	repo store.ItemRepo
}

func New(repo store.ItemRepo) *Importer {
	return &Importer{repo: repo}
}

// Import validates and inserts items. Duplicates of stored prompts, and of
// earlier entries in the same batch, are counted and skipped. Invalid
// entries are reported without stopping the import.
func (im *Importer) Import(ctx context.Context, items []item.Item) (Result, error) {
	existing, err := im.repo.ListAll(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list existing items: %w", err)
	}
	seen := make(map[string]bool, len(existing)+len(items))
	for _, it := range existing {
		seen[item.PromptKey(it.Prompt)] = true
	}

	var res Result
	for i, it := range items {
		it.Normalize()
		if err := it.Validate(); err != nil {
			res.Invalid = append(res.Invalid, fmt.Errorf("entry %d: %w", i+1, err))
			continue
		}
		key := item.PromptKey(it.Prompt)
		if seen[key] {
			res.Duplicates++
			continue
		}
		created, err := im.repo.Create(ctx, it)
		if err != nil {
			return res, fmt.Errorf("insert %q: %w", it.Prompt, err)
		}
		seen[key] = true
		res.Added = append(res.Added, created)
	}

	logging.Info("import finished", "added", len(res.Added), "duplicates", res.Duplicates, "invalid", len(res.Invalid))
	return res, nil
}

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported file type %q (want .json, .csv or .xlsx)", filepath.Ext(path))
}

// ImportFile parses and imports one file.
func (im *Importer) ImportFile(ctx context.Context, path string, opts Options) (Result, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return Result{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	var items []item.Item
	switch format {
	case FormatJSON:
		items, err = ParseJSON(f)
	case FormatCSV:
		items, err = ParseCSV(f)
	case FormatXLSX:
		items, err = ParseXLSX(f, opts.Sheet)
	}
	f.Close()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}

	res, err := im.Import(ctx, items)
	if err != nil {
		return res, err
	}

	if opts.Truncate && format == FormatJSON {
		if len(res.Invalid) > 0 {
			logging.Warn("source kept: it has invalid entries", "path", path, "invalid", len(res.Invalid))
			return res, nil
		}
		if err := os.WriteFile(path, []byte("[]\n"), 0o644); err != nil {
			return res, fmt.Errorf("truncate %s: %w", path, err)
		}
		res.Truncated = true
	}
	return res, nil
}
