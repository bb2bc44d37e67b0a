package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serenvale/radcore/internal/platform/errs"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the PostgreSQL-backed report repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const pgUniqueViolation = "23505"

const reportColumns = `id, patient_id, patient_name, COALESCE(patient_age,''), COALESCE(patient_dob,''),
	exam_type, exam_type_display, exam_date, COALESCE(accession_number,''), COALESCE(study_instance_uid,''),
	COALESCE(referring_doctor,''), COALESCE(clinical_indication,''),
	COALESCE(dictation_text,''), report_content, COALESCE(findings,''), COALESCE(conclusion,''),
	COALESCE(recommendations,''), status, completed_at, signed_at, COALESCE(signed_by,''),
	COALESCE(model_used,''), COALESCE(modality_agent,''), terminology_refs_used, metadata,
	owner_id, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, rep *Report) error {
	refs, meta, err := encodeJSONCols(rep)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO radiology_reports (
		id, patient_id, patient_name, patient_age, patient_dob,
		exam_type, exam_type_display, exam_date, accession_number, study_instance_uid,
		referring_doctor, clinical_indication,
		dictation_text, report_content, findings, conclusion, recommendations,
		status, completed_at, signed_at, signed_by,
		model_used, modality_agent, terminology_refs_used, metadata,
		owner_id, created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9,''),$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,NOW(),NOW())`,
		rep.ID, rep.PatientID, rep.PatientName, rep.PatientAge, rep.PatientDOB,
		rep.ExamType, rep.ExamTypeDisplay, rep.ExamDate, rep.AccessionNumber, rep.StudyInstanceUID,
		rep.ReferringDoctor, rep.ClinicalIndication,
		rep.DictationText, rep.ReportContent, rep.Findings, rep.Conclusion, rep.Recommendations,
		rep.Status, rep.CompletedAt, rep.SignedAt, rep.SignedBy,
		rep.ModelUsed, rep.ModalityAgent, refs, meta,
		rep.OwnerID)
	if err != nil {
		return r.mapWriteErr(ctx, err, rep)
	}
	return nil
}

// mapWriteErr turns the accession unique violation into a UniquenessError
// carrying the id of the conflicting report.
func (r *repoPG) mapWriteErr(ctx context.Context, err error, rep *Report) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		ue := &errs.UniquenessError{Field: "accessionNumber", Value: rep.AccessionNumber}
		if existing, lookupErr := r.FindByAccession(ctx, rep.AccessionNumber, rep.OwnerID); lookupErr == nil && existing != nil {
			ue.ConflictID = existing.ID
		}
		return ue
	}
	return errs.Storage(fmt.Errorf("report write: %w", err))
}

func encodeJSONCols(rep *Report) (refs, meta []byte, err error) {
	if rep.TerminologyRefsUsed != nil {
		if refs, err = json.Marshal(rep.TerminologyRefsUsed); err != nil {
			return nil, nil, fmt.Errorf("encode terminology refs: %w", err)
		}
	}
	if !rep.Metadata.IsZero() {
		if meta, err = metadataJSON(rep.Metadata); err != nil {
			return nil, nil, fmt.Errorf("encode metadata: %w", err)
		}
	}
	return refs, meta, nil
}

func scanReport(row pgx.Row) (*Report, error) {
	var rep Report
	var refs, meta []byte
	err := row.Scan(
		&rep.ID, &rep.PatientID, &rep.PatientName, &rep.PatientAge, &rep.PatientDOB,
		&rep.ExamType, &rep.ExamTypeDisplay, &rep.ExamDate, &rep.AccessionNumber, &rep.StudyInstanceUID,
		&rep.ReferringDoctor, &rep.ClinicalIndication,
		&rep.DictationText, &rep.ReportContent, &rep.Findings, &rep.Conclusion,
		&rep.Recommendations, &rep.Status, &rep.CompletedAt, &rep.SignedAt, &rep.SignedBy,
		&rep.ModelUsed, &rep.ModalityAgent, &refs, &meta,
		&rep.OwnerID, &rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(refs) > 0 {
		if err := json.Unmarshal(refs, &rep.TerminologyRefsUsed); err != nil {
			return nil, fmt.Errorf("decode terminology refs: %w", err)
		}
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &rep.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &rep, nil
}

func (r *repoPG) queryOne(ctx context.Context, sql string, args ...any) (*Report, error) {
	rep, err := scanReport(r.pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Storage(fmt.Errorf("report query: %w", err))
	}
	return rep, nil
}

func (r *repoPG) queryMany(ctx context.Context, sql string, args ...any) ([]*Report, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errs.Storage(fmt.Errorf("report query: %w", err))
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, errs.Storage(err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *repoPG) Get(ctx context.Context, id, ownerID string) (*Report, error) {
	return r.queryOne(ctx,
		`SELECT `+reportColumns+` FROM radiology_reports WHERE id = $1 AND owner_id = $2`, id, ownerID)
}

func (r *repoPG) List(ctx context.Context, ownerID string, limit, offset int) ([]*Report, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM radiology_reports WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, errs.Storage(fmt.Errorf("report count: %w", err))
	}
	reports, err := r.queryMany(ctx,
		`SELECT `+reportColumns+` FROM radiology_reports
		 WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *repoPG) FindByPatient(ctx context.Context, patientID, ownerID string) ([]*Report, error) {
	return r.queryMany(ctx,
		`SELECT `+reportColumns+` FROM radiology_reports
		 WHERE patient_id = $1 AND owner_id = $2 ORDER BY created_at DESC`,
		patientID, ownerID)
}

func (r *repoPG) FindByStatus(ctx context.Context, status, ownerID string) ([]*Report, error) {
	return r.queryMany(ctx,
		`SELECT `+reportColumns+` FROM radiology_reports
		 WHERE status = $1 AND owner_id = $2 ORDER BY created_at DESC`,
		status, ownerID)
}

func (r *repoPG) FindByAccession(ctx context.Context, accession, ownerID string) (*Report, error) {
	return r.queryOne(ctx,
		`SELECT `+reportColumns+` FROM radiology_reports
		 WHERE accession_number = $1 AND owner_id = $2`,
		accession, ownerID)
}

func (r *repoPG) SearchByPatientName(ctx context.Context, name, ownerID string) ([]*Report, error) {
	return r.queryMany(ctx,
		`SELECT `+reportColumns+` FROM radiology_reports
		 WHERE patient_name ILIKE '%' || $1 || '%' AND owner_id = $2 ORDER BY created_at DESC`,
		name, ownerID)
}

func (r *repoPG) Update(ctx context.Context, rep *Report) error {
	refs, meta, err := encodeJSONCols(rep)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE radiology_reports SET
		patient_name         = COALESCE(NULLIF($3,''), patient_name),
		patient_age          = COALESCE(NULLIF($4,''), patient_age),
		patient_dob          = COALESCE(NULLIF($5,''), patient_dob),
		exam_type            = COALESCE(NULLIF($6,''), exam_type),
		exam_type_display    = COALESCE(NULLIF($7,''), exam_type_display),
		exam_date            = COALESCE(NULLIF($8,''), exam_date),
		accession_number     = COALESCE(NULLIF($9,''), accession_number),
		study_instance_uid   = COALESCE(NULLIF($10,''), study_instance_uid),
		referring_doctor     = COALESCE(NULLIF($11,''), referring_doctor),
		clinical_indication  = COALESCE(NULLIF($12,''), clinical_indication),
		dictation_text       = COALESCE(NULLIF($13,''), dictation_text),
		report_content       = COALESCE(NULLIF($14,''), report_content),
		findings             = COALESCE(NULLIF($15,''), findings),
		conclusion           = COALESCE(NULLIF($16,''), conclusion),
		recommendations      = COALESCE(NULLIF($17,''), recommendations),
		model_used           = COALESCE(NULLIF($18,''), model_used),
		modality_agent       = COALESCE(NULLIF($19,''), modality_agent),
		terminology_refs_used = COALESCE($20, terminology_refs_used),
		metadata             = COALESCE($21, metadata),
		updated_at           = NOW()
	WHERE id = $1 AND owner_id = $2`,
		rep.ID, rep.OwnerID, rep.PatientName, rep.PatientAge, rep.PatientDOB,
		rep.ExamType, rep.ExamTypeDisplay, rep.ExamDate, rep.AccessionNumber, rep.StudyInstanceUID,
		rep.ReferringDoctor, rep.ClinicalIndication,
		rep.DictationText, rep.ReportContent, rep.Findings, rep.Conclusion, rep.Recommendations,
		rep.ModelUsed, rep.ModalityAgent, refs, meta)
	if err != nil {
		return r.mapWriteErr(ctx, err, rep)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("report", rep.ID)
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id, ownerID, status, by string, now time.Time) (*Report, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errs.Storage(fmt.Errorf("report status begin: %w", err))
	}
	defer tx.Rollback(ctx)

	rep, err := scanReport(tx.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM radiology_reports
		 WHERE id = $1 AND owner_id = $2 FOR UPDATE`, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("report", id)
	}
	if err != nil {
		return nil, errs.Storage(fmt.Errorf("report status lock: %w", err))
	}

	if err := ApplyStatus(rep, status, by, now); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE radiology_reports SET
		status = $3, completed_at = $4, signed_at = $5, signed_by = $6, updated_at = $7
	WHERE id = $1 AND owner_id = $2`,
		id, ownerID, rep.Status, rep.CompletedAt, rep.SignedAt, rep.SignedBy, rep.UpdatedAt); err != nil {
		return nil, errs.Storage(fmt.Errorf("report status update: %w", err))
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, errs.Storage(fmt.Errorf("report status commit: %w", err))
	}
	return rep, nil
}

func (r *repoPG) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM radiology_reports WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return errs.Storage(fmt.Errorf("report delete: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("report", id)
	}
	return nil
}

func (r *repoPG) DeleteBatch(ctx context.Context, ids []string, ownerID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM radiology_reports WHERE id = ANY($1) AND owner_id = $2`, ids, ownerID)
	if err != nil {
		return 0, errs.Storage(fmt.Errorf("report delete batch: %w", err))
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) DeleteAll(ctx context.Context, ownerID string) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM radiology_reports WHERE owner_id = $1`, ownerID); err != nil {
		return errs.Storage(fmt.Errorf("report delete all: %w", err))
	}
	return nil
}
