package catalog

import (
	"context"

	"go.uber.org/zap"
)

// Service provides catalog business logic on top of a Repository.
type Service struct {
	repo Repository
	log  *zap.Logger
}

// NewService creates a new catalog service.
func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create validates in and stores it as the last-ranked item of k.
func (s *Service) Create(ctx context.Context, k Kind, in Input) (Item, error) {
	it, err := Validate(k, in)
	if err != nil {
		return Item{}, err
	}
	if err := s.repo.Create(ctx, k, &it); err != nil {
		return Item{}, err
	}
	s.log.Info("item created",
		zap.String("kind", k.Name),
		zap.Int64("id", it.ID),
		zap.Int("rank", it.Rank),
	)
	return it, nil
}

// List returns the items of k matching f, in rank order.
func (s *Service) List(ctx context.Context, k Kind, f Filter) ([]Item, error) {
	return s.repo.List(ctx, k, f)
}

// Get returns a single item of k.
func (s *Service) Get(ctx context.Context, k Kind, id int64) (Item, error) {
	return s.repo.Get(ctx, k, id)
}

// Delete removes an item of k and compacts the remaining ranks.
func (s *Service) Delete(ctx context.Context, k Kind, id int64) error {
	if err := s.repo.Delete(ctx, k, id); err != nil {
		return err
	}
	s.log.Info("item deleted", zap.String("kind", k.Name), zap.Int64("id", id))
	return nil
}
