package radlex

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/serenvale/radcore/internal/platform/errs"
)

type mockRepo struct {
	terms []*Term
}

func (m *mockRepo) LoadAll(_ context.Context) ([]*Term, error) { return m.terms, nil }

func (m *mockRepo) FindByRadlexID(_ context.Context, rid string) (*Term, error) {
	for _, t := range m.terms {
		if t.RadlexID == rid {
			return t, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) Seed(_ context.Context, terms []*Term) error {
	m.terms = terms
	return nil
}

const testDim = 3

func testLexicon() []*Term {
	return []*Term{
		{
			RadlexID: "RID100", Term: "brain", TermFr: "cerveau",
			Category: "anatomy", Modality: "irm",
			EmbeddingEn: []float64{1, 0, 0}, EmbeddingFr: []float64{0.9, 0.1, 0},
		},
		{
			RadlexID: "RID200", Term: "thorax", TermFr: "thorax",
			Category: "anatomy", Modality: "tdm",
			EmbeddingEn: []float64{0, 1, 0}, EmbeddingFr: []float64{0, 1, 0},
		},
		{
			RadlexID: "RID300", Term: "lesion", TermFr: "lésion",
			Category: "finding", Modality: "irm",
			EmbeddingEn: []float64{0.7, 0.7, 0}, EmbeddingFr: []float64{0.7, 0.7, 0},
		},
		{
			// english-only entry
			RadlexID: "RID400", Term: "edema",
			Category: "finding", Modality: "irm",
			EmbeddingEn: []float64{1, 0, 0},
		},
	}
}

func seededService(t *testing.T) (*Service, *mockRepo) {
	t.Helper()
	repo := &mockRepo{}
	svc := NewService(repo, zerolog.Nop(), testDim)
	if err := svc.Seed(context.Background(), testLexicon()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return svc, repo
}

func TestSeedAssignsIDsAndRejectsDuplicates(t *testing.T) {
	svc, repo := seededService(t)

	for _, term := range repo.terms {
		if term.ID == "" {
			t.Errorf("term %s missing id", term.RadlexID)
		}
	}
	if svc.Count() != 4 {
		t.Fatalf("snapshot has %d terms, want 4", svc.Count())
	}

	dup := []*Term{
		{RadlexID: "RID1", Term: "a", EmbeddingEn: []float64{1, 0, 0}},
		{RadlexID: "RID1", Term: "b", EmbeddingEn: []float64{0, 1, 0}},
	}
	if err := svc.Seed(context.Background(), dup); !errs.IsUniqueness(err) {
		t.Fatalf("expected uniqueness error, got %v", err)
	}
}

func TestSeedRejectsWrongDimension(t *testing.T) {
	svc := NewService(&mockRepo{}, zerolog.Nop(), testDim)
	bad := []*Term{{RadlexID: "RID1", Term: "a", EmbeddingEn: []float64{1, 0}}}
	err := svc.Seed(context.Background(), bad)
	var de *errs.DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("expected dimension error, got %v", err)
	}
	if de.Want != testDim || de.Got != 2 {
		t.Errorf("dimension error = %+v", de)
	}
}

func TestFindByRadlexID(t *testing.T) {
	svc, _ := seededService(t)

	term, err := svc.FindByRadlexID(context.Background(), "RID200")
	if err != nil {
		t.Fatal(err)
	}
	if term == nil || term.Term != "thorax" {
		t.Fatalf("unexpected term: %+v", term)
	}

	missing, err := svc.FindByRadlexID(context.Background(), "RID999")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown rid, got %+v", missing)
	}
}

func TestSearchOrdersByScore(t *testing.T) {
	svc, _ := seededService(t)

	matches, err := svc.Search(context.Background(), []float64{1, 0, 0}, LanguageEN, Filter{}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 4 {
		t.Fatalf("got %d matches, want 4", len(matches))
	}
	// RID100 and RID400 both align exactly with the query; tie breaks on rid
	if matches[0].Term.RadlexID != "RID100" || matches[1].Term.RadlexID != "RID400" {
		t.Errorf("tie-break order wrong: %s, %s", matches[0].Term.RadlexID, matches[1].Term.RadlexID)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("scores not descending at %d: %v > %v", i, matches[i].Score, matches[i-1].Score)
		}
	}
}

func TestSearchModalityFilter(t *testing.T) {
	svc, _ := seededService(t)

	matches, err := svc.Search(context.Background(), []float64{1, 0, 0}, LanguageEN, Filter{Modality: "irm"}, 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range matches {
		if m.Term.Modality != "irm" {
			t.Errorf("filter leaked modality %q", m.Term.Modality)
		}
	}
	if len(matches) != 3 {
		t.Errorf("got %d irm matches, want 3", len(matches))
	}
}

func TestSearchFrenchSkipsUntranslated(t *testing.T) {
	svc, _ := seededService(t)

	matches, err := svc.Search(context.Background(), []float64{1, 0, 0}, LanguageFR, Filter{}, 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range matches {
		if m.Term.RadlexID == "RID400" {
			t.Error("term without a french embedding surfaced in a french search")
		}
	}
	if len(matches) != 3 {
		t.Errorf("got %d matches, want 3", len(matches))
	}
}

func TestSearchCapsK(t *testing.T) {
	svc, _ := seededService(t)

	matches, err := svc.Search(context.Background(), []float64{1, 0, 0}, LanguageEN, Filter{}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
}

func TestSearchDimensionMismatch(t *testing.T) {
	svc, _ := seededService(t)

	_, err := svc.Search(context.Background(), []float64{1, 0}, LanguageEN, Filter{}, 5)
	var de *errs.DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("expected dimension error, got %v", err)
	}
}

func TestSearchRejectsUnknownLanguage(t *testing.T) {
	svc, _ := seededService(t)

	if _, err := svc.Search(context.Background(), []float64{1, 0, 0}, "de", Filter{}, 5); !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearchRespectsContext(t *testing.T) {
	svc, _ := seededService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Search(ctx, []float64{1, 0, 0}, LanguageEN, Filter{}, 5); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
