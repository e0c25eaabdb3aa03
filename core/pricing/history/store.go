// Package history keeps a log of pricing requests and their outcomes.
package history

import (
	"context"
	"time"

	"github.com/kilianp07/carprice/core/model"
)

// Outcomes of a pricing request.
const (
	OutcomeEstimated = "estimated"
	OutcomeRejected  = "rejected"
)

// Record captures one pricing request and its result.
type Record struct {
	ID        string               `json:"id"`
	Timestamp time.Time            `json:"timestamp"`
	Vehicle   model.Vehicle        `json:"vehicle"`
	Estimate  *model.PriceEstimate `json:"estimate,omitempty"`
	Outcome   string               `json:"outcome"`
	Reason    string               `json:"reason,omitempty"`
}

// Query defines filters for retrieving records. Limit keeps only the most
// recent matches; zero means no limit.
type Query struct {
	Start time.Time
	End   time.Time
	Brand string
	Limit int
}

// Store persists Records and supports querying. Results are returned in
// chronological order.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

func (q Query) matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Brand != "" && r.Vehicle.Brand != q.Brand {
		return false
	}
	return true
}

// tail keeps the last n records when n is positive.
func tail(recs []Record, n int) []Record {
	if n > 0 && len(recs) > n {
		return recs[len(recs)-n:]
	}
	return recs
}

// NopStore discards every record.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error          { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
