package settings

import "context"

// Repository persists owner-scoped settings. Clinic and doctor settings are
// singletons per owner, written through upserts.
type Repository interface {
	CreateTemplate(ctx context.Context, t *ReportTemplate) error
	GetTemplate(ctx context.Context, id, ownerID string) (*ReportTemplate, error)
	ListTemplates(ctx context.Context, ownerID string) ([]*ReportTemplate, error)
	ListTemplatesByModality(ctx context.Context, modality, ownerID string) ([]*ReportTemplate, error)
	UpdateTemplate(ctx context.Context, t *ReportTemplate) error
	DeleteTemplate(ctx context.Context, id, ownerID string) error

	GetClinic(ctx context.Context, ownerID string) (*ClinicSettings, error)
	PutClinic(ctx context.Context, c *ClinicSettings) error

	GetDoctor(ctx context.Context, ownerID string) (*DoctorSettings, error)
	PutDoctor(ctx context.Context, d *DoctorSettings) error
}
