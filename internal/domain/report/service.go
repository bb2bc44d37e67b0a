package report

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/serenvale/radcore/internal/platform/errs"
	"github.com/serenvale/radcore/internal/platform/ident"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "report").Logger(),
		now:  time.Now,
	}
}

// Create stores a new draft. A client-supplied status other than draft is
// rejected; reports enter the lifecycle at the bottom.
func (s *Service) Create(ctx context.Context, r *Report, ownerID string) (*Report, error) {
	if r.Status == "" {
		r.Status = StatusDraft
	}
	if r.Status != StatusDraft {
		return nil, errs.Validation("status", "new reports start as draft")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r.OwnerID = ownerID
	if r.ID == "" {
		r.ID = ident.New(ident.PrefixReport)
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	created, err := s.repo.Get(ctx, r.ID, ownerID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return r, nil
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id, ownerID string) (*Report, error) {
	r, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errs.NotFound("report", id)
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]*Report, int, error) {
	return s.repo.List(ctx, ownerID, limit, offset)
}

func (s *Service) FindByPatient(ctx context.Context, patientID, ownerID string) ([]*Report, error) {
	if patientID == "" {
		return nil, errs.Validation("patientId", "required")
	}
	return s.repo.FindByPatient(ctx, patientID, ownerID)
}

func (s *Service) FindByStatus(ctx context.Context, status, ownerID string) ([]*Report, error) {
	if !knownStatus(status) {
		return nil, errs.Validation("status", "unknown status "+status)
	}
	return s.repo.FindByStatus(ctx, status, ownerID)
}

func (s *Service) FindByAccession(ctx context.Context, accession, ownerID string) (*Report, error) {
	if accession == "" {
		return nil, errs.Validation("accessionNumber", "required")
	}
	return s.repo.FindByAccession(ctx, accession, ownerID)
}

func (s *Service) SearchByPatientName(ctx context.Context, name, ownerID string) ([]*Report, error) {
	if name == "" {
		return nil, errs.Validation("name", "required")
	}
	return s.repo.SearchByPatientName(ctx, name, ownerID)
}

func (s *Service) Update(ctx context.Context, r *Report, ownerID string) (*Report, error) {
	if r.ID == "" {
		return nil, errs.Validation("id", "required")
	}
	r.OwnerID = ownerID
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return s.Get(ctx, r.ID, ownerID)
}

// UpdateStatus drives the report lifecycle. Status preconditions and
// timestamp stamping live in ApplyStatus; the repository serializes
// concurrent calls on the same id.
func (s *Service) UpdateStatus(ctx context.Context, id, ownerID, status, by string) (*Report, error) {
	r, err := s.repo.UpdateStatus(ctx, id, ownerID, status, by, s.now())
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("report_id", id).Str("status", status).Str("owner_id", ownerID).Msg("report status changed")
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	return s.repo.Delete(ctx, id, ownerID)
}

func (s *Service) DeleteBatch(ctx context.Context, ids []string, ownerID string) (int64, error) {
	if len(ids) == 0 {
		return 0, errs.Validation("ids", "required")
	}
	return s.repo.DeleteBatch(ctx, ids, ownerID)
}

func (s *Service) DeleteAll(ctx context.Context, ownerID string) error {
	return s.repo.DeleteAll(ctx, ownerID)
}
