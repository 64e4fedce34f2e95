package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mfenderov/newsrec/pkg/models"
)

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Column names accepted for each field, first match wins.
var (
	idColumns      = []string{"id"}
	titleColumns   = []string{"webTitle", "title"}
	bodyColumns    = []string{"bodyText", "body_text", "body"}
	sectionColumns = []string{"sectionName", "section"}
	dateColumns    = []string{"webPublicationDate", "published_at"}
	urlColumns     = []string{"webUrl", "url"}
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// LoadFile reads a CSV corpus from disk.
func LoadFile(path string) ([]models.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses articles from CSV with a header row. Records are returned
// as found; filtering happens in New.
func ReadCSV(r io.Reader) ([]models.Article, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	idIdx := lookup(cols, idColumns)
	if idIdx < 0 {
		return nil, fmt.Errorf("%w: id", ErrMissingColumn)
	}
	bodyIdx := lookup(cols, bodyColumns)
	if bodyIdx < 0 {
		return nil, fmt.Errorf("%w: bodyText", ErrMissingColumn)
	}
	titleIdx := lookup(cols, titleColumns)
	sectionIdx := lookup(cols, sectionColumns)
	dateIdx := lookup(cols, dateColumns)
	urlIdx := lookup(cols, urlColumns)

	var articles []models.Article
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read record at line %d: %w", line, err)
		}

		a := models.Article{
			ID:       field(record, idIdx),
			Title:    field(record, titleIdx),
			BodyText: field(record, bodyIdx),
			Section:  field(record, sectionIdx),
			URL:      field(record, urlIdx),
		}
		if raw := field(record, dateIdx); raw != "" {
			a.PublishedAt = parseDate(raw)
		}
		articles = append(articles, a)
	}

	slog.Debug("read corpus csv", "records", len(articles))
	return articles, nil
}

// WriteCSV writes articles using the Guardian column names.
func WriteCSV(w io.Writer, articles []models.Article) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "webTitle", "bodyText", "sectionName", "webPublicationDate", "webUrl"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, a := range articles {
		date := ""
		if !a.PublishedAt.IsZero() {
			date = a.PublishedAt.UTC().Format(time.RFC3339)
		}
		if err := writer.Write([]string{a.ID, a.Title, a.BodyText, a.Section, date, a.URL}); err != nil {
			return fmt.Errorf("failed to write article %s: %w", a.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func lookup(cols map[string]int, names []string) int {
	for _, n := range names {
		if i, ok := cols[n]; ok {
			return i
		}
	}
	return -1
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseDate(raw string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	slog.Debug("unparsable publication date", "value", raw)
	return time.Time{}
}
