package database

import (
	"context"
	"database/sql"
	"fmt"

	"regiss_network_bot/internal/domain/profile"

	"github.com/lib/pq"
)

const profileColumns = `id, telegram_id, full_name, entry_year, role, interests, is_active, created_at, updated_at`

type PostgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*profile.Profile, error) {
	p := &profile.Profile{}
	var interests pq.StringArray
	if err := row.Scan(&p.ID, &p.TelegramID, &p.FullName, &p.EntryYear, &p.Role, &interests, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Interests = []string(interests)
	return p, nil
}

func (r *PostgresProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	query := `INSERT INTO profiles (telegram_id, full_name, entry_year, role, interests, is_active)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, p.TelegramID, p.FullName, p.EntryYear, p.Role, pq.Array(nonNil(p.Interests)), p.IsActive).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "profiles_telegram_id_key") {
			return ErrDuplicateTelegramID
		}
		return fmt.Errorf("error creating profile: %w", err)
	}
	return nil
}

func (r *PostgresProfileRepository) GetByID(ctx context.Context, id int64) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("error getting profile by ID: %w", err)
	}
	return p, nil
}

func (r *PostgresProfileRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE telegram_id = $1`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, telegramID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("error getting profile by Telegram ID: %w", err)
	}
	return p, nil
}

func (r *PostgresProfileRepository) Update(ctx context.Context, p *profile.Profile) error {
	query := `UPDATE profiles
               SET full_name = $1, entry_year = $2, role = $3, interests = $4, is_active = $5, updated_at = NOW()
               WHERE id = $6
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, p.FullName, p.EntryYear, p.Role, pq.Array(nonNil(p.Interests)), p.IsActive, p.ID).Scan(&p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrProfileNotFound
		}
		return fmt.Errorf("error updating profile: %w", err)
	}
	return nil
}

func (r *PostgresProfileRepository) ListActive(ctx context.Context) ([]*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE is_active = TRUE ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing active profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*profile.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning active profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active profiles: %w", err)
	}
	return profiles, nil
}

// nonNil keeps NOT NULL array columns from receiving a NULL.
func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
