// Package eventstore keeps a durable history of indexing passes.
package eventstore

import (
	"context"
	"encoding/json"
	"time"
)

// Pass is the record of one completed indexing pass.
type Pass struct {
	ID        string        `json:"passId"`
	Source    string        `json:"source"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"-"`
	Documents int           `json:"documents"`
	Failures  int           `json:"failures"`
}

type passJSON struct {
	ID         string    `json:"passId"`
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMS int64     `json:"durationMs"`
	Documents  int       `json:"documents"`
	Failures   int       `json:"failures"`
}

// MarshalJSON encodes the duration in whole milliseconds.
func (p Pass) MarshalJSON() ([]byte, error) {
	return json.Marshal(passJSON{
		ID:         p.ID,
		Source:     p.Source,
		StartedAt:  p.StartedAt,
		DurationMS: p.Duration.Milliseconds(),
		Documents:  p.Documents,
		Failures:   p.Failures,
	})
}

func (p *Pass) UnmarshalJSON(data []byte) error {
	var aux passJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Pass{
		ID:        aux.ID,
		Source:    aux.Source,
		StartedAt: aux.StartedAt,
		Duration:  time.Duration(aux.DurationMS) * time.Millisecond,
		Documents: aux.Documents,
		Failures:  aux.Failures,
	}
	return nil
}

// Store defines the interface for persisting and retrieving pass records.
type Store interface {
	// Append records a completed pass.
	Append(ctx context.Context, p Pass) error

	// Recent returns up to n passes, newest first.
	Recent(ctx context.Context, n int) ([]Pass, error)

	// Close closes the store and releases resources.
	Close() error
}
