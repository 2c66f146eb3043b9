package applications

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"jobmate/tracker/internal/application"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS job_applications (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	company        TEXT    NOT NULL,
	role           TEXT    NOT NULL,
	location       TEXT    NOT NULL DEFAULT '',
	status         TEXT    NOT NULL DEFAULT 'APPLIED',
	applied_date   TEXT,
	next_follow_up TEXT,
	link           TEXT    NOT NULL DEFAULT '',
	notes          TEXT    NOT NULL DEFAULT '',
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS job_applications_updated_idx ON job_applications (updated_at DESC, id DESC);`

const sqliteColumns = `id, company, role, location, status, applied_date, next_follow_up, link, notes`

// SQLiteRepository stores applications in a SQLite database opened with
// db.OpenSQLite. Timestamps are unix nanoseconds.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository returns a repository over db. Call Migrate before use.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// Migrate creates the table if it does not exist.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("sqlite migrate: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]application.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM job_applications ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listApplications query: %w", err)
	}
	defer rows.Close()

	apps := make([]application.Record, 0)
	for rows.Next() {
		a, err := scanSQLite(rows)
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

func (r *SQLiteRepository) Create(ctx context.Context, p application.Payload) (application.Record, error) {
	ts := r.now().UnixNano()
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO job_applications
		   (company, role, location, status, applied_date, next_follow_up, link, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+sqliteColumns,
		p.Company, p.Role, p.Location, string(p.Status), p.AppliedDate, p.NextFollowUp, p.Link, p.Notes, ts, ts,
	)
	a, err := scanSQLite(row)
	if err != nil {
		return application.Record{}, fmt.Errorf("createApplication: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM job_applications WHERE id = ?`, n)
	if err != nil {
		return fmt.Errorf("deleteApplication: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleteApplication: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (application.Record, error) {
	var (
		a      application.Record
		id     int64
		status string
	)
	if err := row.Scan(&id, &a.Company, &a.Role, &a.Location, &status,
		&a.AppliedDate, &a.NextFollowUp, &a.Link, &a.Notes); err != nil {
		return application.Record{}, err
	}
	a.ID = application.ID(strconv.FormatInt(id, 10))
	a.Status = application.Status(status)
	return a, nil
}
