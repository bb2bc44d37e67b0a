package worklist

import (
	"context"
	"time"
)

// Repository persists worklist cache entries. All operations are scoped to
// one owner; batches for different owners never block each other.
type Repository interface {
	// Upsert inserts e or merge-updates the entry sharing its
	// (study_instance_uid, owner_id) key, refreshing updated_at.
	Upsert(ctx context.Context, e *Entry) error
	// BatchUpsert applies Upsert to every entry in one transaction; readers
	// never observe a partially applied batch.
	BatchUpsert(ctx context.Context, entries []*Entry) error
	Get(ctx context.Context, id, ownerID string) (*Entry, error)
	FindByStudyUID(ctx context.Context, uid, ownerID string) (*Entry, error)
	FindByPatient(ctx context.Context, patientID, ownerID string) ([]*Entry, error)
	FindByDate(ctx context.Context, studyDate, ownerID string) ([]*Entry, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]*Entry, int, error)
	// Update applies e's non-blank fields to the entry with e.ID, bumping
	// updated_at. Unknown id returns NotFoundError.
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id, ownerID string) error
	DeleteAll(ctx context.Context, ownerID string) error
	// EvictOlderThan deletes entries created before cutoff and returns the
	// number deleted.
	EvictOlderThan(ctx context.Context, ownerID string, cutoff time.Time) (int64, error)
}
