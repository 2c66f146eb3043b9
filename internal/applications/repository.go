// Package applications is the reference server for the applications
// collection: validation, persistence and the REST handlers.
package applications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"jobmate/tracker/internal/application"
)

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when no application has the given id.
var ErrNotFound = errors.New("application not found")

// ValidationError maps field names to a human-readable message. It is
// returned by DecodeCreate and rendered as {"errors": {...}}.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return fmt.Sprintf("invalid application: %s", strings.Join(parts, "; "))
}

// ─── Repository ──────────────────────────────────────────────────────────────

// Repository persists applications. List returns the most recently updated
// first. Delete returns ErrNotFound for an unknown or malformed id.
type Repository interface {
	List(ctx context.Context) ([]application.Record, error)
	Create(ctx context.Context, p application.Payload) (application.Record, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
