package worklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serenvale/radcore/internal/platform/errs"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the PostgreSQL-backed worklist repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const entryColumns = `id, patient_id, patient_name, COALESCE(patient_age,''), COALESCE(patient_dob,''),
	COALESCE(patient_sex,''), study_instance_uid, COALESCE(accession_number,''), COALESCE(study_date,''),
	COALESCE(study_time,''), COALESCE(study_description,''), COALESCE(modality,''),
	COALESCE(scheduled_start_date,''), COALESCE(scheduled_start_time,''), COALESCE(scheduled_description,''),
	COALESCE(referring_physician,''), COALESCE(requesting_physician,''), COALESCE(admitting_diagnosis,''),
	raw_source_data, COALESCE(source_ae,''), owner_id, created_at, updated_at`

// upsertSQL merges on the (study_instance_uid, owner_id) key. NULLIF keeps
// blank incoming fields from nulling out previously enriched values.
const upsertSQL = `INSERT INTO pacs_worklist (
	id, patient_id, patient_name, patient_age, patient_dob, patient_sex,
	study_instance_uid, accession_number, study_date, study_time, study_description, modality,
	scheduled_start_date, scheduled_start_time, scheduled_description,
	referring_physician, requesting_physician, admitting_diagnosis,
	raw_source_data, source_ae, owner_id, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,NOW(),NOW())
ON CONFLICT (study_instance_uid, owner_id) DO UPDATE SET
	patient_id           = COALESCE(NULLIF(EXCLUDED.patient_id,''), pacs_worklist.patient_id),
	patient_name         = COALESCE(NULLIF(EXCLUDED.patient_name,''), pacs_worklist.patient_name),
	patient_age          = COALESCE(NULLIF(EXCLUDED.patient_age,''), pacs_worklist.patient_age),
	patient_dob          = COALESCE(NULLIF(EXCLUDED.patient_dob,''), pacs_worklist.patient_dob),
	patient_sex          = COALESCE(NULLIF(EXCLUDED.patient_sex,''), pacs_worklist.patient_sex),
	accession_number     = COALESCE(NULLIF(EXCLUDED.accession_number,''), pacs_worklist.accession_number),
	study_date           = COALESCE(NULLIF(EXCLUDED.study_date,''), pacs_worklist.study_date),
	study_time           = COALESCE(NULLIF(EXCLUDED.study_time,''), pacs_worklist.study_time),
	study_description    = COALESCE(NULLIF(EXCLUDED.study_description,''), pacs_worklist.study_description),
	modality             = COALESCE(NULLIF(EXCLUDED.modality,''), pacs_worklist.modality),
	scheduled_start_date = COALESCE(NULLIF(EXCLUDED.scheduled_start_date,''), pacs_worklist.scheduled_start_date),
	scheduled_start_time = COALESCE(NULLIF(EXCLUDED.scheduled_start_time,''), pacs_worklist.scheduled_start_time),
	scheduled_description = COALESCE(NULLIF(EXCLUDED.scheduled_description,''), pacs_worklist.scheduled_description),
	referring_physician  = COALESCE(NULLIF(EXCLUDED.referring_physician,''), pacs_worklist.referring_physician),
	requesting_physician = COALESCE(NULLIF(EXCLUDED.requesting_physician,''), pacs_worklist.requesting_physician),
	admitting_diagnosis  = COALESCE(NULLIF(EXCLUDED.admitting_diagnosis,''), pacs_worklist.admitting_diagnosis),
	raw_source_data      = COALESCE(EXCLUDED.raw_source_data, pacs_worklist.raw_source_data),
	source_ae            = COALESCE(NULLIF(EXCLUDED.source_ae,''), pacs_worklist.source_ae),
	updated_at           = NOW()`

func (r *repoPG) upsertArgs(e *Entry) ([]any, error) {
	var raw []byte
	if e.RawSourceData != nil {
		var err error
		raw, err = json.Marshal(e.RawSourceData)
		if err != nil {
			return nil, fmt.Errorf("encode raw source data: %w", err)
		}
	}
	return []any{
		e.ID, e.PatientID, e.PatientName, e.PatientAge, e.PatientDOB, e.PatientSex,
		e.StudyInstanceUID, e.AccessionNumber, e.StudyDate, e.StudyTime, e.StudyDescription, e.Modality,
		e.ScheduledStartDate, e.ScheduledStartTime, e.ScheduledDescription,
		e.ReferringPhysician, e.RequestingPhysician, e.AdmittingDiagnosis,
		raw, e.SourceAE, e.OwnerID,
	}, nil
}

func (r *repoPG) Upsert(ctx context.Context, e *Entry) error {
	args, err := r.upsertArgs(e)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, upsertSQL, args...); err != nil {
		return errs.Storage(fmt.Errorf("worklist upsert: %w", err))
	}
	return nil
}

func (r *repoPG) BatchUpsert(ctx context.Context, entries []*Entry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errs.Storage(fmt.Errorf("worklist batch begin: %w", err))
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		args, err := r.upsertArgs(e)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, upsertSQL, args...); err != nil {
			return errs.Storage(fmt.Errorf("worklist batch upsert %s: %w", e.StudyInstanceUID, err))
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return errs.Storage(fmt.Errorf("worklist batch commit: %w", err))
	}
	return nil
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	var raw []byte
	err := row.Scan(
		&e.ID, &e.PatientID, &e.PatientName, &e.PatientAge, &e.PatientDOB,
		&e.PatientSex, &e.StudyInstanceUID, &e.AccessionNumber, &e.StudyDate,
		&e.StudyTime, &e.StudyDescription, &e.Modality,
		&e.ScheduledStartDate, &e.ScheduledStartTime, &e.ScheduledDescription,
		&e.ReferringPhysician, &e.RequestingPhysician, &e.AdmittingDiagnosis,
		&raw, &e.SourceAE, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &e.RawSourceData); err != nil {
			return nil, fmt.Errorf("decode raw source data: %w", err)
		}
	}
	return &e, nil
}

func (r *repoPG) queryOne(ctx context.Context, sql string, args ...any) (*Entry, error) {
	e, err := scanEntry(r.pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Storage(fmt.Errorf("worklist query: %w", err))
	}
	return e, nil
}

func (r *repoPG) queryMany(ctx context.Context, sql string, args ...any) ([]*Entry, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errs.Storage(fmt.Errorf("worklist query: %w", err))
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errs.Storage(err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repoPG) Get(ctx context.Context, id, ownerID string) (*Entry, error) {
	return r.queryOne(ctx,
		`SELECT `+entryColumns+` FROM pacs_worklist WHERE id = $1 AND owner_id = $2`, id, ownerID)
}

func (r *repoPG) FindByStudyUID(ctx context.Context, uid, ownerID string) (*Entry, error) {
	return r.queryOne(ctx,
		`SELECT `+entryColumns+` FROM pacs_worklist WHERE study_instance_uid = $1 AND owner_id = $2`, uid, ownerID)
}

func (r *repoPG) FindByPatient(ctx context.Context, patientID, ownerID string) ([]*Entry, error) {
	return r.queryMany(ctx,
		`SELECT `+entryColumns+` FROM pacs_worklist
		 WHERE patient_id = $1 AND owner_id = $2 ORDER BY study_date DESC NULLS LAST, created_at DESC`,
		patientID, ownerID)
}

func (r *repoPG) FindByDate(ctx context.Context, studyDate, ownerID string) ([]*Entry, error) {
	return r.queryMany(ctx,
		`SELECT `+entryColumns+` FROM pacs_worklist
		 WHERE study_date = $1 AND owner_id = $2 ORDER BY study_time ASC NULLS LAST`,
		studyDate, ownerID)
}

func (r *repoPG) List(ctx context.Context, ownerID string, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM pacs_worklist WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, errs.Storage(fmt.Errorf("worklist count: %w", err))
	}
	entries, err := r.queryMany(ctx,
		`SELECT `+entryColumns+` FROM pacs_worklist
		 WHERE owner_id = $1 ORDER BY study_date DESC NULLS LAST, created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *repoPG) Update(ctx context.Context, e *Entry) error {
	var raw []byte
	if e.RawSourceData != nil {
		var err error
		raw, err = json.Marshal(e.RawSourceData)
		if err != nil {
			return fmt.Errorf("encode raw source data: %w", err)
		}
	}
	tag, err := r.pool.Exec(ctx, `UPDATE pacs_worklist SET
		patient_name         = COALESCE(NULLIF($3,''), patient_name),
		patient_age          = COALESCE(NULLIF($4,''), patient_age),
		patient_dob          = COALESCE(NULLIF($5,''), patient_dob),
		patient_sex          = COALESCE(NULLIF($6,''), patient_sex),
		accession_number     = COALESCE(NULLIF($7,''), accession_number),
		study_date           = COALESCE(NULLIF($8,''), study_date),
		study_time           = COALESCE(NULLIF($9,''), study_time),
		study_description    = COALESCE(NULLIF($10,''), study_description),
		modality             = COALESCE(NULLIF($11,''), modality),
		scheduled_start_date = COALESCE(NULLIF($12,''), scheduled_start_date),
		scheduled_start_time = COALESCE(NULLIF($13,''), scheduled_start_time),
		scheduled_description = COALESCE(NULLIF($14,''), scheduled_description),
		referring_physician  = COALESCE(NULLIF($15,''), referring_physician),
		requesting_physician = COALESCE(NULLIF($16,''), requesting_physician),
		admitting_diagnosis  = COALESCE(NULLIF($17,''), admitting_diagnosis),
		raw_source_data      = COALESCE($18, raw_source_data),
		source_ae            = COALESCE(NULLIF($19,''), source_ae),
		updated_at           = NOW()
	WHERE id = $1 AND owner_id = $2`,
		e.ID, e.OwnerID, e.PatientName, e.PatientAge, e.PatientDOB, e.PatientSex,
		e.AccessionNumber, e.StudyDate, e.StudyTime, e.StudyDescription, e.Modality,
		e.ScheduledStartDate, e.ScheduledStartTime, e.ScheduledDescription,
		e.ReferringPhysician, e.RequestingPhysician, e.AdmittingDiagnosis,
		raw, e.SourceAE)
	if err != nil {
		return errs.Storage(fmt.Errorf("worklist update: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("worklist entry", e.ID)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM pacs_worklist WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return errs.Storage(fmt.Errorf("worklist delete: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("worklist entry", id)
	}
	return nil
}

func (r *repoPG) DeleteAll(ctx context.Context, ownerID string) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM pacs_worklist WHERE owner_id = $1`, ownerID); err != nil {
		return errs.Storage(fmt.Errorf("worklist delete all: %w", err))
	}
	return nil
}

func (r *repoPG) EvictOlderThan(ctx context.Context, ownerID string, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM pacs_worklist WHERE owner_id = $1 AND created_at < $2`, ownerID, cutoff)
	if err != nil {
		return 0, errs.Storage(fmt.Errorf("worklist evict: %w", err))
	}
	return tag.RowsAffected(), nil
}
