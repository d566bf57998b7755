package database

import (
	"context"
	"database/sql"
	"fmt"

	"regiss_network_bot/internal/domain/job"

	"github.com/lib/pq"
)

type PostgresJobRepository struct {
	db *sql.DB
}

func NewPostgresJobRepository(db *sql.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

func (r *PostgresJobRepository) Create(ctx context.Context, j *job.Job) error {
	query := `INSERT INTO jobs (posted_by, title, institution, job_tags, is_open)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, j.PostedBy, j.Title, j.Institution, pq.Array(nonNil(j.JobTags)), j.IsOpen).Scan(&j.ID, &j.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating job: %w", err)
	}
	return nil
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id int64) (*job.Job, error) {
	query := `SELECT id, posted_by, title, institution, job_tags, is_open, created_at FROM jobs WHERE id = $1`
	j := &job.Job{}
	var tags pq.StringArray
	err := r.db.QueryRowContext(ctx, query, id).Scan(&j.ID, &j.PostedBy, &j.Title, &j.Institution, &tags, &j.IsOpen, &j.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("error getting job by ID: %w", err)
	}
	j.JobTags = []string(tags)
	return j, nil
}

func (r *PostgresJobRepository) ListOpen(ctx context.Context) ([]*job.Job, error) {
	query := `SELECT id, posted_by, title, institution, job_tags, is_open, created_at
               FROM jobs WHERE is_open = TRUE ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing open jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*job.Job, 0)
	for rows.Next() {
		j := &job.Job{}
		var tags pq.StringArray
		if err := rows.Scan(&j.ID, &j.PostedBy, &j.Title, &j.Institution, &tags, &j.IsOpen, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning open job: %w", err)
		}
		j.JobTags = []string(tags)
		jobs = append(jobs, j)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating open jobs: %w", err)
	}
	return jobs, nil
}

func (r *PostgresJobRepository) Close(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE jobs SET is_open = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error closing job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking closed job: %w", err)
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}
