package database

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Custom errors
var (
	ErrProfileNotFound     = fmt.Errorf("profile not found")
	ErrDuplicateTelegramID = fmt.Errorf("profile with this Telegram ID already exists")
	ErrJobNotFound         = fmt.Errorf("job not found")
	ErrInviteNotFound      = fmt.Errorf("job invite not found")
	ErrDuplicateInvite     = fmt.Errorf("duplicate job invite (job_id, profile_id)")
	ErrInviteNotPending    = fmt.Errorf("job invite is no longer pending")
	ErrInviteAlreadySent   = fmt.Errorf("job invite was already sent")
)

const uniqueViolation = pq.ErrorCode("23505")

// isUniqueViolation reports whether err is a unique constraint violation on
// the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && pqErr.Constraint == constraint
}
