// Package vectorstore wraps the embedded chromem-go database behind the
// minimal collaborator surface the retrieval engine needs: similarity search
// and document ingestion. Query vectors are expected to be fitted to the
// index dimension before they reach this package.
package vectorstore

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
)

// Document is one ingestible record. Metadata keys "source" and "text" feed
// provenance extraction downstream.
type Document struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Embedding []float32         `json:"-"`
}

// Store encapsulates chromem-go database operations.
type Store struct {
	db *chromem.DB
}

// New opens (or creates) a persistent store at path. An empty path yields an
// in-memory store, used by tests.
func New(path string) (*Store, error) {
	if path == "" {
		return &Store{db: chromem.NewDB()}, nil
	}
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Search returns up to topK records from the collection ranked by cosine
// similarity against queryVector. The payload is the ranked-record list as
// an opaque value: each record carries id, text, score and a labels map,
// mirroring what deployed vector-search services return. Callers normalize
// the shape themselves.
func (s *Store) Search(ctx context.Context, collection string, queryVector []float32, topK int) (any, error) {
	c, err := s.db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: collection %s: %w", collection, err)
	}

	count := c.Count()
	if count == 0 {
		return []any{}, nil
	}
	if topK > count {
		topK = count
	}

	results, err := c.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryVector,
		NResults:       topK,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: query %s: %w", collection, err)
	}

	records := make([]any, 0, len(results))
	for _, res := range results {
		labels := map[string]any{"text": res.Content}
		for k, v := range res.Metadata {
			labels[k] = v
		}
		records = append(records, map[string]any{
			"id":     res.ID,
			"score":  float64(res.Similarity),
			"labels": labels,
		})
	}
	return records, nil
}

// AddDocuments ingests pre-embedded documents into the collection.
func (s *Store) AddDocuments(ctx context.Context, collection string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	c, err := s.db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		return fmt.Errorf("vectorstore: collection %s: %w", collection, err)
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i, d := range docs {
		chromemDocs[i] = chromem.Document{
			ID:        d.ID,
			Content:   d.Content,
			Metadata:  d.Metadata,
			Embedding: d.Embedding,
		}
	}
	if err := c.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("vectorstore: add to %s: %w", collection, err)
	}
	log.Debug().Str("collection", collection).Int("count", len(docs)).Msg("documents added to vector store")
	return nil
}
