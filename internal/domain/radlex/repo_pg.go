package radlex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serenvale/radcore/internal/platform/errs"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the PostgreSQL-backed lexicon repository. Embeddings are
// stored as double precision arrays; similarity runs in process against the
// in-memory snapshot.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const termColumns = `id, COALESCE(radlex_id,''), term, COALESCE(term_fr,''), COALESCE(definition,''),
	COALESCE(definition_fr,''), COALESCE(category,''), COALESCE(modality,''), COALESCE(body_part,''),
	embedding_en, embedding_fr, synonyms, related_terms, COALESCE(usage_frequency,''),
	created_at, updated_at`

func scanTerm(row pgx.Row) (*Term, error) {
	var t Term
	var synonyms, related []byte
	err := row.Scan(
		&t.ID, &t.RadlexID, &t.Term, &t.TermFr, &t.Definition,
		&t.DefinitionFr, &t.Category, &t.Modality, &t.BodyPart,
		&t.EmbeddingEn, &t.EmbeddingFr, &synonyms, &related, &t.UsageFrequency,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(synonyms) > 0 {
		if err := json.Unmarshal(synonyms, &t.Synonyms); err != nil {
			return nil, fmt.Errorf("decode synonyms: %w", err)
		}
	}
	if len(related) > 0 {
		if err := json.Unmarshal(related, &t.RelatedTerms); err != nil {
			return nil, fmt.Errorf("decode related terms: %w", err)
		}
	}
	return &t, nil
}

func (r *repoPG) LoadAll(ctx context.Context) ([]*Term, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+termColumns+` FROM radlex_terms ORDER BY radlex_id ASC`)
	if err != nil {
		return nil, errs.Storage(fmt.Errorf("radlex load: %w", err))
	}
	defer rows.Close()

	var terms []*Term
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, errs.Storage(err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

func (r *repoPG) FindByRadlexID(ctx context.Context, rid string) (*Term, error) {
	t, err := scanTerm(r.pool.QueryRow(ctx,
		`SELECT `+termColumns+` FROM radlex_terms WHERE radlex_id = $1`, rid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Storage(fmt.Errorf("radlex lookup: %w", err))
	}
	return t, nil
}

func (r *repoPG) Seed(ctx context.Context, terms []*Term) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errs.Storage(fmt.Errorf("radlex seed begin: %w", err))
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM radlex_terms`); err != nil {
		return errs.Storage(fmt.Errorf("radlex seed clear: %w", err))
	}
	for _, t := range terms {
		var synonyms, related []byte
		if t.Synonyms != nil {
			if synonyms, err = json.Marshal(t.Synonyms); err != nil {
				return fmt.Errorf("encode synonyms: %w", err)
			}
		}
		if t.RelatedTerms != nil {
			if related, err = json.Marshal(t.RelatedTerms); err != nil {
				return fmt.Errorf("encode related terms: %w", err)
			}
		}
		if _, err := tx.Exec(ctx, `INSERT INTO radlex_terms (
			id, radlex_id, term, term_fr, definition, definition_fr,
			category, modality, body_part, embedding_en, embedding_fr,
			synonyms, related_terms, usage_frequency, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,NOW(),NOW())`,
			t.ID, t.RadlexID, t.Term, t.TermFr, t.Definition, t.DefinitionFr,
			t.Category, t.Modality, t.BodyPart, t.EmbeddingEn, t.EmbeddingFr,
			synonyms, related, t.UsageFrequency); err != nil {
			return errs.Storage(fmt.Errorf("radlex seed insert %s: %w", t.RadlexID, err))
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return errs.Storage(fmt.Errorf("radlex seed commit: %w", err))
	}
	return nil
}
