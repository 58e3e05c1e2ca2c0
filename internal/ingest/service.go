package ingest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"medialib/internal/catalog"
	"medialib/internal/platform/openlibrary"
)

type Service struct {
	olClient OpenLibraryClient
	catalog  Catalog
	cfg      Config
	log      *zap.Logger

	running sync.Mutex
}

func NewService(olClient OpenLibraryClient, cat Catalog, cfg Config, log *zap.Logger) *Service {
	return &Service{
		olClient: olClient,
		catalog:  cat,
		cfg:      cfg,
		log:      log,
	}
}

// Run searches every configured subject and adds the books not yet in the catalog.
// Books are created through the catalog, so each one is ranked last on arrival.
func (s *Service) Run(ctx context.Context) (Result, error) {
	if !s.running.TryLock() {
		return Result{}, ErrAlreadyRunning
	}
	defer s.running.Unlock()

	start := time.Now()
	var res Result
	seen := make(map[string]bool)

	for _, subject := range s.cfg.Subjects {
		searchRes, err := s.olClient.SearchBooks(ctx, subject, s.cfg.Limit)
		if err != nil {
			return res, fmt.Errorf("search failed for %s: %w", subject, err)
		}
		res.Fetched += len(searchRes.Docs)

		for _, doc := range searchRes.Docs {
			created, err := s.importDoc(ctx, doc, seen)
			if err != nil {
				return res, err
			}
			if created {
				res.Created++
			} else {
				res.Skipped++
			}
		}
	}

	s.log.Info("ingest completed",
		zap.Int("fetched", res.Fetched),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}

func (s *Service) importDoc(ctx context.Context, doc openlibrary.SearchDoc, seen map[string]bool) (bool, error) {
	title := strings.TrimSpace(doc.Title)
	author := strings.TrimSpace(doc.Author())
	if title == "" || author == "" || doc.FirstPublishYear == 0 {
		return false, nil
	}

	key := strings.ToLower(title) + "\x00" + strings.ToLower(author)
	if seen[key] {
		return false, nil
	}
	seen[key] = true

	exists, err := s.exists(ctx, title, author)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	in := catalog.Input{
		Fields: map[string]string{"title": title, "author": author},
		Year:   strconv.Itoa(doc.FirstPublishYear),
	}
	if _, err := s.catalog.Create(ctx, catalog.Books, in); err != nil {
		if errors.Is(err, catalog.ErrValidation) {
			s.log.Debug("skipping invalid book", zap.String("key", doc.Key), zap.Error(err))
			return false, nil
		}
		return false, fmt.Errorf("create %q: %w", title, err)
	}
	return true, nil
}

// exists reports whether a book with the same title and author is already stored,
// ignoring case.
func (s *Service) exists(ctx context.Context, title, author string) (bool, error) {
	items, err := s.catalog.List(ctx, catalog.Books, catalog.Filter{Title: title, Secondary: author})
	if err != nil {
		return false, err
	}
	for _, it := range items {
		if strings.EqualFold(it.Title(), title) && strings.EqualFold(it.Get("author"), author) {
			return true, nil
		}
	}
	return false, nil
}
