package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mfenderov/newsrec/pkg/models"
)

const excerptLength = 300

func writeJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func writeArticle(w io.Writer, n int, a models.Article) {
	fmt.Fprintf(w, "─── %d ───\n", n)
	fmt.Fprintf(w, "Title:   %s\n", a.Title)
	if a.Section != "" {
		fmt.Fprintf(w, "Section: %s\n", a.Section)
	}
	if !a.PublishedAt.IsZero() {
		fmt.Fprintf(w, "Date:    %s\n", a.PublishedAt.Format("2006-01-02"))
	}
	if a.URL != "" {
		fmt.Fprintf(w, "URL:     %s\n", a.URL)
	}
	fmt.Fprintf(w, "ID:      %s\n", a.ID)
	fmt.Fprintf(w, "%s\n\n", a.Excerpt(excerptLength))
}

func checkFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q, want text or json", format)
	}
	return nil
}
