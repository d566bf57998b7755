// internal/domain/invite/repository.go
package invite

import (
	"context"
	"time"
)

// Repository defines operations for job invites.
// State changes are conditional so that concurrent handlers cannot both win.
type Repository interface {
	Create(ctx context.Context, inv *Invite) error
	GetByID(ctx context.Context, id int64) (*Invite, error)
	GetByJobAndProfile(ctx context.Context, jobID, profileID int64) (*Invite, error)
	ListByJob(ctx context.Context, jobID int64) ([]*Invite, error)

	// ClaimDelivery stamps sent_at on a pending invite that was not sent yet.
	ClaimDelivery(ctx context.Context, id int64, at time.Time) error
	// ReleaseDelivery clears sent_at of a pending invite after a failed send.
	ReleaseDelivery(ctx context.Context, id int64) error
	// Answer moves a pending invite to status.
	Answer(ctx context.Context, id int64, status Status, at time.Time) error
}
