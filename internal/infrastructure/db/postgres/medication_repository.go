package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/healthtrack/healthtrack/internal/core/domain"
)

const medicationColumns = `id, user_id, name, dosage, frequency, COALESCE(instructions, ''), created_at`

type MedicationRepository struct {
	db DBTX
}

func NewMedicationRepository(db DBTX) *MedicationRepository {
	return &MedicationRepository{db: db}
}

func (r *MedicationRepository) Create(ctx context.Context, m *domain.Medication) error {
	query := `INSERT INTO medications (id, user_id, name, dosage, frequency, instructions, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.Name, m.Dosage, m.Frequency, m.Instructions, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert medication: %w", err)
	}
	return nil
}

func (r *MedicationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Medication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+medicationColumns+` FROM medications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()

	meds := []*domain.Medication{}
	for rows.Next() {
		m := &domain.Medication{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Frequency, &m.Instructions, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan medication: %w", err)
		}
		meds = append(meds, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate medications: %w", err)
	}
	return meds, nil
}

func (r *MedicationRepository) FindByID(ctx context.Context, userID, id string) (*domain.Medication, error) {
	m := &domain.Medication{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+medicationColumns+` FROM medications WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Frequency, &m.Instructions, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMedicationNotFound
		}
		return nil, fmt.Errorf("find medication: %w", err)
	}
	return m, nil
}

func (r *MedicationRepository) Update(ctx context.Context, m *domain.Medication) error {
	query := `UPDATE medications
		SET name = $1, dosage = $2, frequency = $3, instructions = NULLIF($4, '')
		WHERE id = $5 AND user_id = $6`

	res, err := r.db.ExecContext(ctx, query, m.Name, m.Dosage, m.Frequency, m.Instructions, m.ID, m.UserID)
	if err != nil {
		return fmt.Errorf("update medication: %w", err)
	}
	return requireAffected(res, domain.ErrMedicationNotFound)
}

func (r *MedicationRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete medication: %w", err)
	}
	return requireAffected(res, domain.ErrMedicationNotFound)
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
