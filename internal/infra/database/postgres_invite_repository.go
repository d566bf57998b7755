package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"regiss_network_bot/internal/domain/invite"
)

const inviteColumns = `id, job_id, profile_id, score, status, sent_at, responded_at, created_at, updated_at`

type PostgresInviteRepository struct {
	db *sql.DB
}

func NewPostgresInviteRepository(db *sql.DB) *PostgresInviteRepository {
	return &PostgresInviteRepository{db: db}
}

func scanInvite(row rowScanner) (*invite.Invite, error) {
	inv := &invite.Invite{}
	err := row.Scan(&inv.ID, &inv.JobID, &inv.ProfileID, &inv.Score, &inv.Status, &inv.SentAt, &inv.RespondedAt, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

func (r *PostgresInviteRepository) Create(ctx context.Context, inv *invite.Invite) error {
	query := `INSERT INTO job_invites (job_id, profile_id, score, status, sent_at)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, inv.JobID, inv.ProfileID, inv.Score, inv.Status, inv.SentAt).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "job_invites_job_profile_unique") {
			return ErrDuplicateInvite
		}
		return fmt.Errorf("error creating job invite: %w", err)
	}
	return nil
}

func (r *PostgresInviteRepository) GetByID(ctx context.Context, id int64) (*invite.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM job_invites WHERE id = $1`
	inv, err := scanInvite(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("error getting job invite by ID: %w", err)
	}
	return inv, nil
}

func (r *PostgresInviteRepository) GetByJobAndProfile(ctx context.Context, jobID, profileID int64) (*invite.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM job_invites WHERE job_id = $1 AND profile_id = $2`
	inv, err := scanInvite(r.db.QueryRowContext(ctx, query, jobID, profileID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("error getting job invite by job and profile: %w", err)
	}
	return inv, nil
}

// ClaimDelivery stamps sent_at only while the invite is pending and unsent,
// so two concurrent runs cannot both deliver it.
func (r *PostgresInviteRepository) ClaimDelivery(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE job_invites
               SET sent_at = $1, updated_at = NOW()
               WHERE id = $2 AND status = $3 AND sent_at IS NULL`
	return r.execConditional(ctx, "claiming job invite delivery", ErrInviteAlreadySent, query, at, id, invite.StatusPending)
}

func (r *PostgresInviteRepository) ReleaseDelivery(ctx context.Context, id int64) error {
	query := `UPDATE job_invites
               SET sent_at = NULL, updated_at = NOW()
               WHERE id = $1 AND status = $2`
	return r.execConditional(ctx, "releasing job invite delivery", ErrInviteNotPending, query, id, invite.StatusPending)
}

// Answer records the member's answer. Only a pending invite can be answered.
func (r *PostgresInviteRepository) Answer(ctx context.Context, id int64, status invite.Status, at time.Time) error {
	query := `UPDATE job_invites
               SET status = $1, responded_at = $2, updated_at = NOW()
               WHERE id = $3 AND status = $4`
	return r.execConditional(ctx, "answering job invite", ErrInviteNotPending, query, status, at, id, invite.StatusPending)
}

// execConditional runs an UPDATE guarded by its WHERE clause and returns
// noMatch when no row satisfied it.
func (r *PostgresInviteRepository) execConditional(ctx context.Context, action string, noMatch error, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error %s: %w", action, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error %s: %w", action, err)
	}
	if n == 0 {
		return noMatch
	}
	return nil
}

func (r *PostgresInviteRepository) ListByJob(ctx context.Context, jobID int64) ([]*invite.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM job_invites WHERE job_id = $1 ORDER BY score DESC, id`
	rows, err := r.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("error listing job invites: %w", err)
	}
	defer rows.Close()

	invites := make([]*invite.Invite, 0)
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning job invite: %w", err)
		}
		invites = append(invites, inv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job invites: %w", err)
	}
	return invites, nil
}
