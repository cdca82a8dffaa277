package query

import (
	"context"
	"time"
)

// Status is the lifecycle state of a query result
type Status string

const (
	StatusIdle    Status = "idle"    // disabled, nothing requested
	StatusPending Status = "pending" // no data yet
	StatusSuccess Status = "success"
	StatusError   Status = "error" // last fetch failed; Data may still hold older data
)

// Result is what a consumer renders from
type Result[T any] struct {
	Data       T
	HasData    bool
	Err        error
	Status     Status
	UpdatedAt  time.Time
	IsStale    bool
	IsFetching bool
}

// IsLoading reports whether the consumer should show a loading placeholder
func (r Result[T]) IsLoading() bool {
	return r.Status == StatusPending
}

// IsFresh reports whether cached data can be shown without refetching
func (r Result[T]) IsFresh() bool {
	return r.HasData && !r.IsStale
}

// Options describes a query
type Options[T any] struct {
	Key Key
	Fn  func(ctx context.Context) (T, error)

	// Enabled gates the query; nil means always enabled. A disabled query
	// never issues a request and reports StatusIdle.
	Enabled func() bool

	// StaleTime overrides the client default when positive
	StaleTime time.Duration
}

func (o Options[T]) enabled() bool {
	return o.Enabled == nil || o.Enabled()
}

// Mutation describes a write and the cached queries it makes outdated
type Mutation[T any] struct {
	Name        string
	Fn          func(ctx context.Context) (T, error)
	Invalidates []Key
}
