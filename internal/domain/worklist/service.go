package worklist

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/serenvale/radcore/internal/platform/errs"
	"github.com/serenvale/radcore/internal/platform/ident"
)

// Service owns the worklist cache semantics: merge upserts keyed by
// (study_instance_uid, owner_id) and age-based eviction.
type Service struct {
	repo   Repository
	log    zerolog.Logger
	now    func() time.Time
	maxAge time.Duration
}

func NewService(repo Repository, log zerolog.Logger, retentionDays int) *Service {
	return &Service{
		repo:   repo,
		log:    log.With().Str("component", "worklist").Logger(),
		now:    time.Now,
		maxAge: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (s *Service) Upsert(ctx context.Context, e *Entry, ownerID string) (*Entry, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	e.OwnerID = ownerID
	if e.ID == "" {
		e.ID = ident.New(ident.PrefixWorklist)
	}
	if err := s.repo.Upsert(ctx, e); err != nil {
		return nil, err
	}
	stored, err := s.repo.FindByStudyUID(ctx, e.StudyInstanceUID, ownerID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, errs.Storage(fmt.Errorf("worklist entry vanished after upsert: %s", e.StudyInstanceUID))
	}
	return stored, nil
}

// BatchUpsert stores the whole batch atomically. Any invalid entry rejects
// the batch before anything is written.
func (s *Service) BatchUpsert(ctx context.Context, entries []*Entry, ownerID string) (int, error) {
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return 0, errs.Validation("entries", fmt.Sprintf("entry %d: %v", i, err))
		}
		e.OwnerID = ownerID
		if e.ID == "" {
			e.ID = ident.New(ident.PrefixWorklist)
		}
	}
	if err := s.repo.BatchUpsert(ctx, entries); err != nil {
		return 0, err
	}
	s.log.Info().Int("count", len(entries)).Str("owner_id", ownerID).Msg("worklist batch stored")
	return len(entries), nil
}

func (s *Service) Get(ctx context.Context, id, ownerID string) (*Entry, error) {
	e, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errs.NotFound("worklist entry", id)
	}
	return e, nil
}

func (s *Service) FindByStudyUID(ctx context.Context, uid, ownerID string) (*Entry, error) {
	if uid == "" {
		return nil, errs.Validation("studyInstanceUid", "required")
	}
	return s.repo.FindByStudyUID(ctx, uid, ownerID)
}

func (s *Service) FindByPatient(ctx context.Context, patientID, ownerID string) ([]*Entry, error) {
	if patientID == "" {
		return nil, errs.Validation("patientId", "required")
	}
	return s.repo.FindByPatient(ctx, patientID, ownerID)
}

func (s *Service) FindByDate(ctx context.Context, studyDate, ownerID string) ([]*Entry, error) {
	if studyDate == "" {
		return nil, errs.Validation("studyDate", "required")
	}
	return s.repo.FindByDate(ctx, studyDate, ownerID)
}

func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]*Entry, int, error) {
	return s.repo.List(ctx, ownerID, limit, offset)
}

func (s *Service) Update(ctx context.Context, e *Entry, ownerID string) (*Entry, error) {
	if e.ID == "" {
		return nil, errs.Validation("id", "required")
	}
	e.OwnerID = ownerID
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return s.Get(ctx, e.ID, ownerID)
}

func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	return s.repo.Delete(ctx, id, ownerID)
}

func (s *Service) DeleteAll(ctx context.Context, ownerID string) error {
	return s.repo.DeleteAll(ctx, ownerID)
}

// EvictOlderThan removes entries first cached more than days ago. A zero
// days falls back to the configured retention window.
func (s *Service) EvictOlderThan(ctx context.Context, ownerID string, days int) (int64, error) {
	age := s.maxAge
	if days > 0 {
		age = time.Duration(days) * 24 * time.Hour
	}
	cutoff := s.now().Add(-age)
	n, err := s.repo.EvictOlderThan(ctx, ownerID, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int64("evicted", n).Str("owner_id", ownerID).Time("cutoff", cutoff).Msg("worklist eviction")
	}
	return n, nil
}
