// Package livedata fetches live signals for the assistant: time-series
// readings from the relational store and active alerts from the alert API.
// Both fetchers degrade to empty results on failure — "no data" is a valid
// conversational answer, an exception is not.
package livedata

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
)

const (
	// attributeNamespace prefixes metric names into attribute identifiers.
	attributeNamespace = "https://industry-fusion.com/types/v0.9/"

	// maxRows caps a single fetch; summaries never need more.
	maxRows = 100
)

// Measurement maps one row of the time-series table.
type Measurement struct {
	bun.BaseModel `bun:"table:measurements,alias:m"`

	EntityID    string    `bun:"entity_id"`
	AttributeID string    `bun:"attribute_id"`
	ObservedAt  time.Time `bun:"observed_at"`
	Value       float64   `bun:"value"`
}

// Point is one time-series sample, newest-first as returned by the store.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// TimeSeriesStore reads measurements through bun.
type TimeSeriesStore struct {
	db *bun.DB
}

// NewTimeSeriesStore creates a TimeSeriesStore over the given bun DB.
func NewTimeSeriesStore(db *bun.DB) *TimeSeriesStore {
	return &TimeSeriesStore{db: db}
}

// Fetch returns up to 100 points for the asset's metric within [from, to),
// ordered newest-first. Query failures are logged and yield an empty series.
func (s *TimeSeriesStore) Fetch(ctx context.Context, assetURN, metric string, from, to time.Time) []Point {
	var rows []Measurement
	err := s.db.NewSelect().
		Model(&rows).
		Where("entity_id = ?", assetURN).
		Where("attribute_id = ?", AttributeID(metric)).
		Where("observed_at >= ?", from).
		Where("observed_at < ?", to).
		OrderExpr("observed_at DESC").
		Limit(maxRows).
		Scan(ctx)
	if err != nil {
		log.Error().Err(err).Str("asset", assetURN).Str("metric", metric).Msg("time-series query failed, returning empty series")
		return []Point{}
	}

	points := make([]Point, len(rows))
	for i, r := range rows {
		points[i] = Point{Timestamp: r.ObservedAt, Value: r.Value}
	}
	return points
}

// AttributeID builds the namespaced attribute identifier for a metric name.
func AttributeID(metric string) string {
	return attributeNamespace + metric
}
