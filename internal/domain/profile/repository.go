package profile

import (
	"context"
)

// Repository defines the operations for persisting and retrieving Profile entities.
type Repository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id int64) (*Profile, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*Profile, error)
	Update(ctx context.Context, p *Profile) error // FullName, EntryYear, Role, Interests, IsActive
	ListActive(ctx context.Context) ([]*Profile, error)
}
