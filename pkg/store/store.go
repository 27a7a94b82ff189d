// Package store keeps a history of distilled results.
//
// Every saved [Analysis] gets a UUID and a timestamp. [MemoryStore] serves the
// CLI and tests; [MongoStore] persists the history for the HTTP server.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/depdistill/pkg/analyzer"
	"github.com/matzehuels/depdistill/pkg/errors"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// Analysis is one stored run.
type Analysis struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"createdAt"`
	Target    string           `json:"target"`
	Search    string           `json:"search,omitempty"`
	Libraries bool             `json:"libraries,omitempty"`
	Stats     analyzer.Stats   `json:"stats"`
	Result    *analyzer.Result `json:"result,omitempty"`
}

// Store persists analyses.
type Store interface {
	// Save assigns an ID and timestamp when missing and stores a.
	Save(ctx context.Context, a *Analysis) error

	// Get returns the analysis with id, or an ErrCodeAnalysisNotFound error.
	Get(ctx context.Context, id string) (*Analysis, error)

	// List returns up to limit analyses, newest first, without their results.
	List(ctx context.Context, limit int) ([]Analysis, error)

	// Close releases the backend.
	Close(ctx context.Context) error
}

// NewID returns a fresh analysis identifier.
func NewID() string {
	return uuid.NewString()
}

func prepare(a *Analysis) {
	if a.ID == "" {
		a.ID = NewID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Result != nil {
		a.Stats = a.Result.Stats
		if a.Target == "" {
			a.Target = a.Result.RootPath
		}
	}
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeAnalysisNotFound, "analysis %s not found", id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
