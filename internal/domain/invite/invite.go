// internal/domain/invite/invite.go
package invite

import (
	"database/sql"
	"time"
)

// Status is the state of a push invite sent to a matched candidate.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
)

// Invite tracks a job invitation pushed to a profile.
// Corresponds to the 'job_invites' table; (job_id, profile_id) is unique.
type Invite struct {
	ID          int64
	JobID       int64
	ProfileID   int64
	Score       int // fit score at the time the invite was sent
	Status      Status
	SentAt      sql.NullTime // set after the message is delivered
	RespondedAt sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
