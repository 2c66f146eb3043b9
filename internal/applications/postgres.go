package applications

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/tracker/internal/application"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS job_applications (
	id             BIGSERIAL    PRIMARY KEY,
	company        VARCHAR(200) NOT NULL,
	role           VARCHAR(200) NOT NULL,
	location       VARCHAR(200) NOT NULL DEFAULT '',
	status         VARCHAR(20)  NOT NULL DEFAULT 'APPLIED',
	applied_date   DATE,
	next_follow_up DATE,
	link           VARCHAR(200) NOT NULL DEFAULT '',
	notes          TEXT         NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS job_applications_updated_idx ON job_applications (updated_at DESC, id DESC);`

const postgresColumns = `id::text, company, role, location, status,
	to_char(applied_date, 'YYYY-MM-DD'), to_char(next_follow_up, 'YYYY-MM-DD'),
	link, notes`

// PostgresRepository stores applications in Postgres through a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a repository over pool. Call Migrate before use.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate creates the table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]application.Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+postgresColumns+` FROM job_applications ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listApplications query: %w", err)
	}
	defer rows.Close()

	apps := make([]application.Record, 0)
	for rows.Next() {
		a, err := scanPostgres(rows)
		if err != nil {
			return nil, fmt.Errorf("listApplications scan: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listApplications rows: %w", err)
	}
	return apps, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p application.Payload) (application.Record, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO job_applications
		   (company, role, location, status, applied_date, next_follow_up, link, notes)
		 VALUES ($1, $2, $3, $4, $5::text::date, $6::text::date, $7, $8)
		 RETURNING `+postgresColumns,
		p.Company, p.Role, p.Location, string(p.Status), p.AppliedDate, p.NextFollowUp, p.Link, p.Notes,
	)
	a, err := scanPostgres(row)
	if err != nil {
		return application.Record{}, fmt.Errorf("createApplication: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM job_applications WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("deleteApplication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanPostgres(row pgx.Row) (application.Record, error) {
	var (
		a      application.Record
		id     string
		status string
	)
	if err := row.Scan(&id, &a.Company, &a.Role, &a.Location, &status,
		&a.AppliedDate, &a.NextFollowUp, &a.Link, &a.Notes); err != nil {
		return application.Record{}, err
	}
	a.ID = application.ID(id)
	a.Status = application.Status(status)
	return a, nil
}
