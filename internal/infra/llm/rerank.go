// Package llm — rerank convenience over retrieval hits.
package llm

import (
	"context"
	"sort"
)

// RerankHits reranks pre-scored retrieval hits against the query and returns
// them sorted by relevance descending, truncated to topK. The rerank output
// is mapped back onto the original hit records, so the initial retrieval
// score survives alongside the new relevance score. This is the form the
// retrieval engine consumes.
func RerankHits(ctx context.Context, p Provider, query string, hits []Hit, topK int) ([]Hit, error) {
	if len(hits) == 0 {
		return hits, nil
	}

	docs := make([]string, len(hits))
	for i, h := range hits {
		docs[i] = h.Text
	}

	results, err := p.Rerank(ctx, RerankRequest{Query: query, Documents: docs, TopN: len(docs)})
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(results))
	out := make([]Hit, 0, len(results))
	for _, res := range results {
		if seen[res.Index] {
			continue
		}
		seen[res.Index] = true
		h := hits[res.Index]
		h.Relevance = res.RelevanceScore
		out = append(out, h)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Relevance > out[j].Relevance })

	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}
