package app

import (
	"context"
	"fmt"

	"regiss_network_bot/internal/domain/profile"
)

// ErrNotAuthorized is returned when the performing user lacks the staff role.
var ErrNotAuthorized = fmt.Errorf("performing user is not authorized for this action")

// staffGuard resolves the performing user and checks they may use
// coordinator tools: the configured admin, or a profile with a staff role.
type staffGuard struct {
	profileRepo     profile.Repository
	adminTelegramID int64
}

func (g staffGuard) authorize(ctx context.Context, performerTelegramID int64) (*profile.Profile, error) {
	performer, err := g.profileRepo.GetByTelegramID(ctx, performerTelegramID)
	if err != nil {
		return nil, err
	}
	if performerTelegramID == g.adminTelegramID {
		return performer, nil
	}
	if !performer.IsActive || !performer.CohortRole().IsStaff() {
		return nil, ErrNotAuthorized
	}
	return performer, nil
}
