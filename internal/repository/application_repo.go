package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobtrackerhub/internal/domain"
)

// ApplicationRepository define el contrato de persistencia para postulaciones.
type ApplicationRepository interface {
	Create(ctx context.Context, app domain.JobApplication) error
	ListByUserID(ctx context.Context, userID string) ([]domain.JobApplication, error)
	GetByID(ctx context.Context, id, userID string) (domain.JobApplication, error)
	Update(ctx context.Context, app domain.JobApplication) error
	Delete(ctx context.Context, id, userID string) error
}

// PgApplicationRepository implementa ApplicationRepository usando pgxpool.
type PgApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewPgApplicationRepository(pool *pgxpool.Pool) *PgApplicationRepository {
	return &PgApplicationRepository{pool: pool}
}

const applicationColumns = `id, user_id, company, position, status, date_applied, location, salary, notes, contact_person, contact_email, next_follow_up, created_at`

func (r *PgApplicationRepository) Create(ctx context.Context, app domain.JobApplication) error {
	const query = `
		INSERT INTO job_applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		app.ID,
		app.UserID,
		app.Company,
		app.Position,
		app.Status,
		app.DateApplied,
		app.Location,
		app.Salary,
		app.Notes,
		app.ContactPerson,
		app.ContactEmail,
		app.NextFollowUp,
		app.CreatedAt,
	)
	return err
}

func (r *PgApplicationRepository) ListByUserID(ctx context.Context, userID string) ([]domain.JobApplication, error) {
	const query = `
		SELECT ` + applicationColumns + `
		FROM job_applications
		WHERE user_id = $1
		ORDER BY date_applied DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.JobApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *PgApplicationRepository) GetByID(ctx context.Context, id, userID string) (domain.JobApplication, error) {
	const query = `
		SELECT ` + applicationColumns + `
		FROM job_applications
		WHERE id = $1 AND user_id = $2
	`
	return scanApplication(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *PgApplicationRepository) Update(ctx context.Context, app domain.JobApplication) error {
	const query = `
		UPDATE job_applications
		SET company = $3, position = $4, status = $5, date_applied = $6,
			location = $7, salary = $8, notes = $9, contact_person = $10,
			contact_email = $11, next_follow_up = $12
		WHERE id = $1 AND user_id = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		app.ID,
		app.UserID,
		app.Company,
		app.Position,
		app.Status,
		app.DateApplied,
		app.Location,
		app.Salary,
		app.Notes,
		app.ContactPerson,
		app.ContactEmail,
		app.NextFollowUp,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgApplicationRepository) Delete(ctx context.Context, id, userID string) error {
	const query = `DELETE FROM job_applications WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanApplication(row pgx.Row) (domain.JobApplication, error) {
	var (
		app          domain.JobApplication
		salary       *string
		notes        *string
		contact      *string
		contactMail  *string
		nextFollowUp *time.Time
	)
	err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.Company,
		&app.Position,
		&app.Status,
		&app.DateApplied,
		&app.Location,
		&salary,
		&notes,
		&contact,
		&contactMail,
		&nextFollowUp,
		&app.CreatedAt,
	)
	if err != nil {
		return domain.JobApplication{}, err
	}
	if salary != nil {
		app.Salary = *salary
	}
	if notes != nil {
		app.Notes = *notes
	}
	if contact != nil {
		app.ContactPerson = *contact
	}
	if contactMail != nil {
		app.ContactEmail = *contactMail
	}
	app.NextFollowUp = nextFollowUp
	return app, nil
}
