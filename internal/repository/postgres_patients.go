package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// PostgresPatientsRepo implements PatientsRepository on PostgreSQL.
type PostgresPatientsRepo struct {
	db *sql.DB
}

func NewPostgresPatientsRepo(db *sql.DB) *PostgresPatientsRepo {
	return &PostgresPatientsRepo{db: db}
}

const patientColumns = `patient_id, first_name, last_name, birth_date, notes, created_at, updated_at`

func scanPatient(row interface{ Scan(...any) error }) (*domain.Patient, error) {
	var p domain.Patient
	err := row.Scan(&p.PatientID, &p.FirstName, &p.LastName, &p.BirthDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresPatientsRepo) ListPatients(ctx context.Context) ([]*domain.Patient, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var out []*domain.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresPatientsRepo) GetPatient(ctx context.Context, patientID string) (*domain.Patient, error) {
	p, err := scanPatient(r.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE patient_id = $1`, patientID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, nil
}

func (r *PostgresPatientsRepo) CreatePatient(ctx context.Context, p *domain.Patient) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO patients (first_name, last_name, birth_date, notes)
		 VALUES ($1, $2, $3, $4) RETURNING patient_id`,
		p.FirstName, p.LastName, p.BirthDate, p.Notes,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create patient: %w", err)
	}
	return id, nil
}

func (r *PostgresPatientsRepo) UpdatePatient(ctx context.Context, patientID string, p *domain.Patient) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE patients
		 SET first_name = $1, last_name = $2, birth_date = $3, notes = $4, updated_at = now()
		 WHERE patient_id = $5`,
		p.FirstName, p.LastName, p.BirthDate, p.Notes, patientID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresPatientsRepo) DeletePatient(ctx context.Context, patientID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE patient_id = $1`, patientID)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// PostgresCategoriesRepo implements CategoriesRepository on PostgreSQL.
type PostgresCategoriesRepo struct {
	db *sql.DB
}

func NewPostgresCategoriesRepo(db *sql.DB) *PostgresCategoriesRepo {
	return &PostgresCategoriesRepo{db: db}
}

func (r *PostgresCategoriesRepo) ListCategories(ctx context.Context, kind string) ([]*domain.Category, error) {
	query := `SELECT category_id, name, kind, color, created_at FROM categories`
	var args []any
	if kind != "" {
		query += ` WHERE kind = $1`
		args = append(args, kind)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.CategoryID, &c.Name, &c.Kind, &c.Color, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *PostgresCategoriesRepo) CreateCategory(ctx context.Context, c *domain.Category) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, kind, color) VALUES ($1, $2, $3) RETURNING category_id`,
		c.Name, c.Kind, c.Color,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create category: %w", err)
	}
	return id, nil
}

func (r *PostgresCategoriesRepo) UpdateCategory(ctx context.Context, categoryID string, c *domain.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = $1, kind = $2, color = $3 WHERE category_id = $4`,
		c.Name, c.Kind, c.Color, categoryID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresCategoriesRepo) DeleteCategory(ctx context.Context, categoryID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE category_id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
