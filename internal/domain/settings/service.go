package settings

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/serenvale/radcore/internal/platform/errs"
	"github.com/serenvale/radcore/internal/platform/ident"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log.With().Str("component", "settings").Logger()}
}

func (s *Service) CreateTemplate(ctx context.Context, t *ReportTemplate, ownerID string) (*ReportTemplate, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.OwnerID = ownerID
	if t.ID == "" {
		t.ID = ident.New(ident.PrefixTemplate)
	}
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return s.GetTemplate(ctx, t.ID, ownerID)
}

func (s *Service) GetTemplate(ctx context.Context, id, ownerID string) (*ReportTemplate, error) {
	t, err := s.repo.GetTemplate(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errs.NotFound("report template", id)
	}
	return t, nil
}

func (s *Service) ListTemplates(ctx context.Context, modality, ownerID string) ([]*ReportTemplate, error) {
	if modality != "" {
		return s.repo.ListTemplatesByModality(ctx, modality, ownerID)
	}
	return s.repo.ListTemplates(ctx, ownerID)
}

func (s *Service) UpdateTemplate(ctx context.Context, t *ReportTemplate, ownerID string) (*ReportTemplate, error) {
	if t.ID == "" {
		return nil, errs.Validation("id", "required")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.OwnerID = ownerID
	if err := s.repo.UpdateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return s.GetTemplate(ctx, t.ID, ownerID)
}

func (s *Service) DeleteTemplate(ctx context.Context, id, ownerID string) error {
	return s.repo.DeleteTemplate(ctx, id, ownerID)
}

func (s *Service) GetClinic(ctx context.Context, ownerID string) (*ClinicSettings, error) {
	c, err := s.repo.GetClinic(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errs.NotFound("clinic settings", ownerID)
	}
	return c, nil
}

// PutClinic creates or replaces the owner's clinic settings.
func (s *Service) PutClinic(ctx context.Context, c *ClinicSettings, ownerID string) (*ClinicSettings, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.OwnerID = ownerID
	if c.ID == "" {
		c.ID = ident.New(ident.PrefixClinic)
	}
	if err := s.repo.PutClinic(ctx, c); err != nil {
		return nil, err
	}
	return s.GetClinic(ctx, ownerID)
}

func (s *Service) GetDoctor(ctx context.Context, ownerID string) (*DoctorSettings, error) {
	d, err := s.repo.GetDoctor(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errs.NotFound("doctor settings", ownerID)
	}
	return d, nil
}

func (s *Service) PutDoctor(ctx context.Context, d *DoctorSettings, ownerID string) (*DoctorSettings, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d.OwnerID = ownerID
	if d.ID == "" {
		d.ID = ident.New(ident.PrefixDoctor)
	}
	if err := s.repo.PutDoctor(ctx, d); err != nil {
		return nil, err
	}
	return s.GetDoctor(ctx, ownerID)
}
