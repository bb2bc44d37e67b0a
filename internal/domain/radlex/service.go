package radlex

import (
	"context"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/serenvale/radcore/internal/platform/errs"
	"github.com/serenvale/radcore/internal/platform/ident"
)

// MaxResults caps k for a single search.
const MaxResults = 50

// indexed holds one term with its unit-normalized vectors. Normalizing at
// load time reduces cosine similarity to a dot product per candidate.
type indexed struct {
	term   *Term
	unitEn []float64
	unitFr []float64
}

type snapshot struct {
	terms []indexed          // sorted by radlexId ascending
	byRID map[string]*Term
	dim   int
}

// Service serves lexicon lookups and similarity search from an immutable
// in-memory snapshot. Seed swaps the snapshot atomically, so readers never
// observe a partially replaced lexicon.
type Service struct {
	repo Repository
	log  zerolog.Logger
	dim  int
	snap atomic.Pointer[snapshot]
}

func NewService(repo Repository, log zerolog.Logger, dimension int) *Service {
	s := &Service{
		repo: repo,
		log:  log.With().Str("component", "radlex").Logger(),
		dim:  dimension,
	}
	s.snap.Store(&snapshot{byRID: map[string]*Term{}, dim: dimension})
	return s
}

// Load builds the search snapshot from storage. Call at startup and after
// out-of-process seeding.
func (s *Service) Load(ctx context.Context) error {
	terms, err := s.repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	s.snap.Store(buildSnapshot(terms, s.dim))
	s.log.Info().Int("terms", len(terms)).Msg("lexicon snapshot loaded")
	return nil
}

func buildSnapshot(terms []*Term, dim int) *snapshot {
	snap := &snapshot{
		terms: make([]indexed, 0, len(terms)),
		byRID: make(map[string]*Term, len(terms)),
		dim:   dim,
	}
	for _, t := range terms {
		snap.terms = append(snap.terms, indexed{
			term:   t,
			unitEn: normalize(t.EmbeddingEn),
			unitFr: normalize(t.EmbeddingFr),
		})
		snap.byRID[t.RadlexID] = t
	}
	sort.Slice(snap.terms, func(i, j int) bool {
		return snap.terms[i].term.RadlexID < snap.terms[j].term.RadlexID
	})
	return snap
}

func normalize(v []float64) []float64 {
	if len(v) == 0 {
		return nil
	}
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return nil
	}
	inv := 1 / math.Sqrt(sum)
	unit := make([]float64, len(v))
	for i, x := range v {
		unit[i] = x * inv
	}
	return unit
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func (s *Service) Count() int {
	return len(s.snap.Load().terms)
}

func (s *Service) FindByRadlexID(ctx context.Context, rid string) (*Term, error) {
	if rid == "" {
		return nil, errs.Validation("radlexId", "required")
	}
	if t, ok := s.snap.Load().byRID[rid]; ok {
		return t, nil
	}
	// snapshot may trail an external seed; fall through to storage
	return s.repo.FindByRadlexID(ctx, rid)
}

// Search scans the snapshot linearly, scoring by cosine similarity. Results
// come back in descending score order with ties broken by ascending
// radlexId. k is clamped to MaxResults; terms lacking an embedding for the
// requested language are skipped.
func (s *Service) Search(ctx context.Context, query []float64, language string, filter Filter, k int) ([]Match, error) {
	if language != LanguageEN && language != LanguageFR {
		return nil, errs.Validation("language", "must be en or fr")
	}
	if len(query) != s.dim {
		return nil, &errs.DimensionError{Want: s.dim, Got: len(query)}
	}
	if k <= 0 {
		k = 5
	}
	if k > MaxResults {
		k = MaxResults
	}

	unit := normalize(query)
	if unit == nil {
		return nil, errs.Validation("queryVector", "zero vector")
	}

	snap := s.snap.Load()
	matches := make([]Match, 0, len(snap.terms))
	for i := range snap.terms {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		cand := &snap.terms[i]
		if !filter.matches(cand.term) {
			continue
		}
		vec := cand.unitEn
		if language == LanguageFR {
			vec = cand.unitFr
		}
		if vec == nil {
			continue
		}
		matches = append(matches, Match{Term: cand.term, Score: dot(unit, vec)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Term.RadlexID < matches[j].Term.RadlexID
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Seed validates and persists a full replacement lexicon, then swaps the
// snapshot.
func (s *Service) Seed(ctx context.Context, terms []*Term) error {
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if err := t.Validate(s.dim); err != nil {
			return err
		}
		if _, dup := seen[t.RadlexID]; dup {
			return &errs.UniquenessError{Field: "radlexId", Value: t.RadlexID}
		}
		seen[t.RadlexID] = struct{}{}
		if t.ID == "" {
			t.ID = ident.New(ident.PrefixRadlex)
		}
	}
	if err := s.repo.Seed(ctx, terms); err != nil {
		return err
	}
	now := time.Now()
	for _, t := range terms {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		t.UpdatedAt = now
	}
	s.snap.Store(buildSnapshot(terms, s.dim))
	s.log.Info().Int("terms", len(terms)).Msg("lexicon reseeded")
	return nil
}
