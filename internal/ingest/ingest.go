// Package ingest imports books from Open Library into the catalog.
package ingest

import (
	"context"
	"errors"

	"medialib/internal/catalog"
	"medialib/internal/platform/openlibrary"
)

// ErrAlreadyRunning is returned by Run while another run is in progress.
var ErrAlreadyRunning = errors.New("ingest already running")

type Config struct {
	Subjects []string
	// Limit is the number of search results requested per subject.
	Limit int
}

// Result counts the outcome of one run.
type Result struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type OpenLibraryClient interface {
	SearchBooks(ctx context.Context, subject string, limit int) (*openlibrary.SearchResponse, error)
}

// Catalog is the part of the catalog service the importer writes through.
type Catalog interface {
	List(ctx context.Context, k catalog.Kind, f catalog.Filter) ([]catalog.Item, error)
	Create(ctx context.Context, k catalog.Kind, in catalog.Input) (catalog.Item, error)
}
