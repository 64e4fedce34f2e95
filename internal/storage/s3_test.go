package storage

import (
	"context"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/mfenderov/newsrec/pkg/models"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty endpoint",
			config:  Config{Endpoint: "", Bucket: "test"},
			wantErr: true,
		},
		{
			name:    "empty bucket",
			config:  Config{Endpoint: "localhost:9000", Bucket: ""},
			wantErr: true,
		},
		{
			name: "valid config",
			config: Config{
				Endpoint:        "localhost:9000",
				Bucket:          "test",
				AccessKeyID:     "minioadmin",
				SecretAccessKey: "minioadmin",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestIntegration_CorpusRoundTrip runs against a local MinIO and is skipped
// when none is reachable.
func TestIntegration_CorpusRoundTrip(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	client, err := New(Config{
		Endpoint:        endpoint,
		Bucket:          "newsrec-test",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.EnsureBucket(ctx); err != nil {
		t.Skipf("MinIO not available, skipping integration test: %v", err)
	}

	prefix := RootPrefix + "/news.example.com/2024-12-04T17-30-00-test1234"
	articles := []models.Article{
		{ID: "a1", Title: "Rates", BodyText: "The bank held rates.", Section: "Business", URL: "https://news.example.com/a1"},
		{ID: "a2", Title: "Match", BodyText: "The home side won.", Section: "Sport", URL: "https://news.example.com/a2"},
	}

	t.Run("PutCorpus", func(t *testing.T) {
		if err := client.PutCorpus(ctx, prefix, articles); err != nil {
			t.Fatalf("PutCorpus() error = %v", err)
		}
	})

	t.Run("GetCorpus", func(t *testing.T) {
		got, err := client.GetCorpus(ctx, prefix)
		if err != nil {
			t.Fatalf("GetCorpus() error = %v", err)
		}
		if len(got) != len(articles) {
			t.Fatalf("GetCorpus() returned %d articles, want %d", len(got), len(articles))
		}
		if got[1].BodyText != articles[1].BodyText {
			t.Errorf("GetCorpus()[1].BodyText = %q, want %q", got[1].BodyText, articles[1].BodyText)
		}
	})

	t.Run("Page", func(t *testing.T) {
		if err := client.PutPage(ctx, prefix, "a1", "# Rates\n\nThe bank held rates."); err != nil {
			t.Fatalf("PutPage() error = %v", err)
		}
		page, err := client.GetPage(ctx, prefix, "a1")
		if err != nil {
			t.Fatalf("GetPage() error = %v", err)
		}
		if page != "# Rates\n\nThe bank held rates." {
			t.Errorf("GetPage() = %q", page)
		}
	})

	t.Run("Metadata", func(t *testing.T) {
		meta := CorpusMetadata{
			SourceURL:    "https://news.example.com/",
			Timestamp:    "2024-12-04T17:30:00Z",
			ArticleCount: 2,
			Sections:     []string{"Business", "Sport"},
			ArticleIDs:   []string{"a1", "a2"},
		}
		if err := client.PutMetadata(ctx, prefix, meta); err != nil {
			t.Fatalf("PutMetadata() error = %v", err)
		}

		got, err := client.GetMetadata(ctx, prefix)
		if err != nil {
			t.Fatalf("GetMetadata() error = %v", err)
		}
		if got.ArticleCount != 2 || got.SourceURL != meta.SourceURL {
			t.Errorf("GetMetadata() = %+v", got)
		}
	})

	t.Run("ListCorpora", func(t *testing.T) {
		prefixes, err := client.ListCorpora(ctx)
		if err != nil {
			t.Fatalf("ListCorpora() error = %v", err)
		}
		if !slices.Contains(prefixes, prefix) {
			t.Errorf("ListCorpora() = %v, missing %q", prefixes, prefix)
		}
	})
}
