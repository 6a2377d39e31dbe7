// Package importer loads catalog entries in bulk from CSV rows of
// (title, author, category, status).
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

// Result summarizes one import run.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Importer creates books from CSV input. Rows missing title or author, and
// rows matching an existing (title, author) pair, are skipped rather than
// failing the run.
type Importer struct {
	books ports.BookRepository
	log   zerolog.Logger
}

func New(books ports.BookRepository, log zerolog.Logger) *Importer {
	return &Importer{books: books, log: log}
}

// ImportCSV reads rows from r and creates one single-copy book per usable
// row. A status of "issued" marks the copy as already out
// (available_copies = 0); anything else leaves it available.
func (i *Importer) ImportCSV(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := newColumnIndex(header)

	result := &Result{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		title := strings.TrimSpace(cols.get(row, "title"))
		author := strings.TrimSpace(cols.get(row, "author"))
		category := strings.TrimSpace(cols.get(row, "category"))
		status := strings.ToLower(strings.TrimSpace(cols.get(row, "status")))

		if title == "" || author == "" {
			result.Skipped++
			continue
		}

		if _, err := i.books.FindByTitleAuthor(ctx, title, author); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, domain.ErrBookNotFound) {
			return result, err
		}

		available := 1
		if status == "issued" {
			available = 0
		}

		book := &domain.Book{
			Title:           title,
			Author:          author,
			Category:        category,
			TotalCopies:     1,
			AvailableCopies: available,
			CreatedAt:       time.Now().UTC(),
		}
		if _, err := i.books.Create(ctx, book); err != nil {
			return result, fmt.Errorf("import %q: %w", title, err)
		}
		result.Imported++
	}

	i.log.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).Msg("bulk import finished")
	return result, nil
}

// columnIndex maps lowercased header names to positions so column order in
// the CSV does not matter.
type columnIndex map[string]int

func newColumnIndex(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func (ci columnIndex) get(row []string, name string) string {
	i, ok := ci[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
