package events

import "time"

// CorpusStoredEvent is sent when a crawled corpus has been written to storage.
type CorpusStoredEvent struct {
	Bucket       string    // bucket name (e.g., "newsrec")
	Prefix       string    // corpus prefix (e.g., "corpora/news.example.com/2024-12-04T17-30-00-abc12345")
	SourceURL    string    // URL the crawl started from
	ArticleCount int       // articles in the stored corpus
	Timestamp    time.Time // when the corpus was stored
}

// IngestionCompleteEvent is sent when a stored corpus has been indexed.
type IngestionCompleteEvent struct {
	Prefix          string        // corpus prefix that was ingested
	ArticlesIndexed int           // articles written to the search index
	Duration        time.Duration // how long ingestion took
	Errors          []string      // non-fatal per-article errors
	Err             error         // set when the whole ingestion failed
}
