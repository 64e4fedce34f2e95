package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mfenderov/newsrec/internal/corpus"
	"github.com/mfenderov/newsrec/pkg/models"
)

const (
	corpusObject   = "articles.csv"
	metadataObject = "metadata.json"
	pagesDir       = "pages"

	// RootPrefix is where crawled corpora are stored.
	RootPrefix = "corpora"
)

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string // "localhost:9000" for MinIO
	Bucket          string // "newsrec"
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Client stores article corpora in an S3-compatible bucket.
type Client struct {
	minioClient *minio.Client
	bucket      string
}

// New creates a new S3/MinIO client.
func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		minioClient: minioClient,
		bucket:      config.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.minioClient.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	if err := c.minioClient.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// CorpusMetadata describes one stored corpus.
type CorpusMetadata struct {
	SourceURL    string   `json:"source_url"`
	Timestamp    string   `json:"timestamp"`
	ArticleCount int      `json:"article_count"`
	Sections     []string `json:"sections,omitempty"`
	ArticleIDs   []string `json:"article_ids"`
}

// PutCorpus writes articles as CSV under prefix.
func (c *Client) PutCorpus(ctx context.Context, prefix string, articles []models.Article) error {
	var buf bytes.Buffer
	if err := corpus.WriteCSV(&buf, articles); err != nil {
		return fmt.Errorf("failed to encode corpus: %w", err)
	}

	return c.put(ctx, path.Join(prefix, corpusObject), buf.Bytes(), "text/csv")
}

// GetCorpus reads the CSV corpus stored under prefix.
func (c *Client) GetCorpus(ctx context.Context, prefix string) ([]models.Article, error) {
	object, err := c.minioClient.GetObject(ctx, c.bucket, path.Join(prefix, corpusObject), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get corpus: %w", err)
	}
	defer object.Close()

	articles, err := corpus.ReadCSV(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	return articles, nil
}

// PutPage archives the markdown rendering of one article.
func (c *Client) PutPage(ctx context.Context, prefix, articleID, content string) error {
	objectName := path.Join(prefix, pagesDir, articleID+".md")
	return c.put(ctx, objectName, []byte(content), "text/markdown")
}

// GetPage reads an archived markdown page.
func (c *Client) GetPage(ctx context.Context, prefix, articleID string) (string, error) {
	data, err := c.get(ctx, path.Join(prefix, pagesDir, articleID+".md"))
	if err != nil {
		return "", fmt.Errorf("failed to get page: %w", err)
	}
	return string(data), nil
}

// PutMetadata writes the corpus metadata JSON.
func (c *Client) PutMetadata(ctx context.Context, prefix string, meta CorpusMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	return c.put(ctx, path.Join(prefix, metadataObject), data, "application/json")
}

// GetMetadata reads the corpus metadata.
func (c *Client) GetMetadata(ctx context.Context, prefix string) (*CorpusMetadata, error) {
	data, err := c.get(ctx, path.Join(prefix, metadataObject))
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	var meta CorpusMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &meta, nil
}

// ListCorpora returns the prefixes of every stored corpus, oldest first
// within each host.
func (c *Client) ListCorpora(ctx context.Context) ([]string, error) {
	var prefixes []string

	objectCh := c.minioClient.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    RootPrefix + "/",
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		if path.Base(object.Key) == metadataObject {
			prefixes = append(prefixes, strings.TrimSuffix(object.Key, "/"+metadataObject))
		}
	}

	sort.Strings(prefixes)
	return prefixes, nil
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

func (c *Client) put(ctx context.Context, objectName string, data []byte, contentType string) error {
	_, err := c.minioClient.PutObject(ctx, c.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", objectName, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, objectName string) ([]byte, error) {
	object, err := c.minioClient.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()

	return io.ReadAll(object)
}
