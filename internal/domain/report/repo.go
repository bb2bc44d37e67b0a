package report

import (
	"context"
	"time"
)

// Repository persists reports. Reads return (nil, nil) when nothing matches;
// update and delete by id return NotFoundError.
type Repository interface {
	Create(ctx context.Context, r *Report) error
	Get(ctx context.Context, id, ownerID string) (*Report, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]*Report, int, error)
	FindByPatient(ctx context.Context, patientID, ownerID string) ([]*Report, error)
	FindByStatus(ctx context.Context, status, ownerID string) ([]*Report, error)
	FindByAccession(ctx context.Context, accession, ownerID string) (*Report, error)
	SearchByPatientName(ctx context.Context, name, ownerID string) ([]*Report, error)
	// Update applies r's non-blank fields to the stored report, bumping
	// updated_at.
	Update(ctx context.Context, r *Report) error
	// UpdateStatus transitions the report under a row lock so concurrent
	// transitions on one id serialize.
	UpdateStatus(ctx context.Context, id, ownerID, status, by string, now time.Time) (*Report, error)
	Delete(ctx context.Context, id, ownerID string) error
	DeleteBatch(ctx context.Context, ids []string, ownerID string) (int64, error)
	DeleteAll(ctx context.Context, ownerID string) error
}
