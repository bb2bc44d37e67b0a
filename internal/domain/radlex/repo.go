package radlex

import "context"

// Repository persists the lexicon. The lexicon is shared, not owner-scoped.
type Repository interface {
	LoadAll(ctx context.Context) ([]*Term, error)
	FindByRadlexID(ctx context.Context, rid string) (*Term, error)
	// Seed replaces the whole lexicon in one transaction; readers never see
	// a partially replaced table.
	Seed(ctx context.Context, terms []*Term) error
}
