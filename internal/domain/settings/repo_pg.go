package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serenvale/radcore/internal/platform/errs"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const pgUniqueViolation = "23505"

// -- report templates --

const templateColumns = `id, name, modality, language, COALESCE(header,''), COALESCE(footer,''),
	sections, rag_filter, is_default, is_active, owner_id, created_at, updated_at`

func scanTemplate(row pgx.Row) (*ReportTemplate, error) {
	var t ReportTemplate
	var sections, filter []byte
	err := row.Scan(
		&t.ID, &t.Name, &t.Modality, &t.Language, &t.Header, &t.Footer,
		&sections, &filter, &t.IsDefault, &t.IsActive,
		&t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &t.Sections); err != nil {
			return nil, fmt.Errorf("decode sections: %w", err)
		}
	}
	if len(filter) > 0 {
		if err := json.Unmarshal(filter, &t.RAGFilter); err != nil {
			return nil, fmt.Errorf("decode rag filter: %w", err)
		}
	}
	return &t, nil
}

func templateArgs(t *ReportTemplate) ([]byte, []byte, error) {
	var sections, filter []byte
	var err error
	if t.Sections != nil {
		if sections, err = json.Marshal(t.Sections); err != nil {
			return nil, nil, fmt.Errorf("encode sections: %w", err)
		}
	}
	if filter, err = json.Marshal(t.RAGFilter); err != nil {
		return nil, nil, fmt.Errorf("encode rag filter: %w", err)
	}
	return sections, filter, nil
}

func (r *repoPG) CreateTemplate(ctx context.Context, t *ReportTemplate) error {
	sections, filter, err := templateArgs(t)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO report_templates (
		id, name, modality, language, header, footer, sections, rag_filter,
		is_default, is_active, owner_id, created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW(),NOW())`,
		t.ID, t.Name, t.Modality, t.Language, t.Header, t.Footer, sections, filter,
		t.IsDefault, t.IsActive, t.OwnerID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return &errs.UniquenessError{Field: "name", Value: t.Name}
		}
		return errs.Storage(fmt.Errorf("template create: %w", err))
	}
	return nil
}

func (r *repoPG) GetTemplate(ctx context.Context, id, ownerID string) (*ReportTemplate, error) {
	t, err := scanTemplate(r.pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM report_templates WHERE id = $1 AND owner_id = $2`, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Storage(fmt.Errorf("template get: %w", err))
	}
	return t, nil
}

func (r *repoPG) listTemplates(ctx context.Context, sql string, args ...any) ([]*ReportTemplate, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errs.Storage(fmt.Errorf("template list: %w", err))
	}
	defer rows.Close()

	var out []*ReportTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, errs.Storage(err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repoPG) ListTemplates(ctx context.Context, ownerID string) ([]*ReportTemplate, error) {
	return r.listTemplates(ctx,
		`SELECT `+templateColumns+` FROM report_templates WHERE owner_id = $1 ORDER BY name ASC`, ownerID)
}

func (r *repoPG) ListTemplatesByModality(ctx context.Context, modality, ownerID string) ([]*ReportTemplate, error) {
	return r.listTemplates(ctx,
		`SELECT `+templateColumns+` FROM report_templates
		 WHERE modality = $1 AND owner_id = $2 ORDER BY name ASC`, modality, ownerID)
}

func (r *repoPG) UpdateTemplate(ctx context.Context, t *ReportTemplate) error {
	sections, filter, err := templateArgs(t)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE report_templates SET
		name = $3, modality = $4, language = $5, header = $6, footer = $7,
		sections = $8, rag_filter = $9, is_default = $10, is_active = $11,
		updated_at = NOW()
	WHERE id = $1 AND owner_id = $2`,
		t.ID, t.OwnerID, t.Name, t.Modality, t.Language, t.Header, t.Footer,
		sections, filter, t.IsDefault, t.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return &errs.UniquenessError{Field: "name", Value: t.Name}
		}
		return errs.Storage(fmt.Errorf("template update: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("report template", t.ID)
	}
	return nil
}

func (r *repoPG) DeleteTemplate(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM report_templates WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return errs.Storage(fmt.Errorf("template delete: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("report template", id)
	}
	return nil
}

// -- clinic settings --

func (r *repoPG) GetClinic(ctx context.Context, ownerID string) (*ClinicSettings, error) {
	var c ClinicSettings
	var pacs, printer []byte
	err := r.pool.QueryRow(ctx, `SELECT
		id, name, COALESCE(address,''), COALESCE(phone,''), COALESCE(email,''),
		COALESCE(tax_id,''), COALESCE(logo,''), COALESCE(letterhead_html,''),
		COALESCE(footer_html,''), pacs_config, printer_config,
		owner_id, created_at, updated_at
	FROM clinic_settings WHERE owner_id = $1`, ownerID).Scan(
		&c.ID, &c.Name, &c.Address, &c.Phone, &c.Email,
		&c.TaxID, &c.Logo, &c.LetterheadHTML,
		&c.FooterHTML, &pacs, &printer,
		&c.OwnerID, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Storage(fmt.Errorf("clinic get: %w", err))
	}
	if len(pacs) > 0 {
		if err := json.Unmarshal(pacs, &c.PACS); err != nil {
			return nil, fmt.Errorf("decode pacs config: %w", err)
		}
	}
	if len(printer) > 0 {
		if err := json.Unmarshal(printer, &c.Printer); err != nil {
			return nil, fmt.Errorf("decode printer config: %w", err)
		}
	}
	return &c, nil
}

func (r *repoPG) PutClinic(ctx context.Context, c *ClinicSettings) error {
	pacs, err := json.Marshal(c.PACS)
	if err != nil {
		return fmt.Errorf("encode pacs config: %w", err)
	}
	printer, err := json.Marshal(c.Printer)
	if err != nil {
		return fmt.Errorf("encode printer config: %w", err)
	}
	if _, err := r.pool.Exec(ctx, `INSERT INTO clinic_settings (
		id, name, address, phone, email, tax_id, logo,
		letterhead_html, footer_html, pacs_config, printer_config,
		owner_id, created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW(),NOW())
	ON CONFLICT (owner_id) DO UPDATE SET
		name = EXCLUDED.name, address = EXCLUDED.address, phone = EXCLUDED.phone,
		email = EXCLUDED.email, tax_id = EXCLUDED.tax_id, logo = EXCLUDED.logo,
		letterhead_html = EXCLUDED.letterhead_html, footer_html = EXCLUDED.footer_html,
		pacs_config = EXCLUDED.pacs_config, printer_config = EXCLUDED.printer_config,
		updated_at = NOW()`,
		c.ID, c.Name, c.Address, c.Phone, c.Email, c.TaxID, c.Logo,
		c.LetterheadHTML, c.FooterHTML, pacs, printer, c.OwnerID); err != nil {
		return errs.Storage(fmt.Errorf("clinic put: %w", err))
	}
	return nil
}

// -- doctor settings --

func (r *repoPG) GetDoctor(ctx context.Context, ownerID string) (*DoctorSettings, error) {
	var d DoctorSettings
	err := r.pool.QueryRow(ctx, `SELECT
		id, name, COALESCE(specialty,''), COALESCE(license_number,''),
		COALESCE(signature,''), COALESCE(stamp,''), default_language,
		COALESCE(default_template,''), owner_id, created_at, updated_at
	FROM doctor_settings WHERE owner_id = $1`, ownerID).Scan(
		&d.ID, &d.Name, &d.Specialty, &d.LicenseNumber,
		&d.Signature, &d.Stamp, &d.DefaultLanguage,
		&d.DefaultTemplate, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Storage(fmt.Errorf("doctor get: %w", err))
	}
	return &d, nil
}

func (r *repoPG) PutDoctor(ctx context.Context, d *DoctorSettings) error {
	if _, err := r.pool.Exec(ctx, `INSERT INTO doctor_settings (
		id, name, specialty, license_number, signature, stamp,
		default_language, default_template, owner_id, created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
	ON CONFLICT (owner_id) DO UPDATE SET
		name = EXCLUDED.name, specialty = EXCLUDED.specialty,
		license_number = EXCLUDED.license_number, signature = EXCLUDED.signature,
		stamp = EXCLUDED.stamp, default_language = EXCLUDED.default_language,
		default_template = EXCLUDED.default_template, updated_at = NOW()`,
		d.ID, d.Name, d.Specialty, d.LicenseNumber, d.Signature, d.Stamp,
		d.DefaultLanguage, d.DefaultTemplate, d.OwnerID); err != nil {
		return errs.Storage(fmt.Errorf("doctor put: %w", err))
	}
	return nil
}
