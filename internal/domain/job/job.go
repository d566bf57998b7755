// internal/domain/job/job.go
package job

import (
	"context"
	"time"
)

// Job is an opening posted to the network by a coordinator.
type Job struct {
	ID          int64
	PostedBy    int64 // profiles.id
	Title       string
	Institution string
	JobTags     []string // desired skills, matched against profile interests
	IsOpen      bool
	CreatedAt   time.Time
}

// Repository defines operations for job postings.
type Repository interface {
	Create(ctx context.Context, j *Job) error
	GetByID(ctx context.Context, id int64) (*Job, error)
	ListOpen(ctx context.Context) ([]*Job, error)
	Close(ctx context.Context, id int64) error
}
