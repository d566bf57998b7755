package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"regiss_network_bot/internal/domain/cohort"
	"regiss_network_bot/internal/domain/matching"
	"regiss_network_bot/internal/domain/profile"
	idb "regiss_network_bot/internal/infra/database"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Custom application-level errors for the directory
var (
	ErrInvalidEntryYear = fmt.Errorf("entry year is out of range")
	ErrInvalidInterests = fmt.Errorf("interest list is too long or has oversized tags")
	ErrProfileInactive  = fmt.Errorf("profile is inactive")
)

const (
	minEntryYear = 1583
	maxInterests = 20
	maxTagLength = 40
)

// ProfileStatus pairs a profile with its cohort classification.
type ProfileStatus struct {
	Profile *profile.Profile
	Status  cohort.Status
}

// DirectoryService manages member profiles and their cohort classification.
type DirectoryService struct {
	profileRepo profile.Repository
	guard       staffGuard
	validate    *validator.Validate
	now         func() time.Time
	logger      *logrus.Entry
}

func NewDirectoryService(pr profile.Repository, adminID int64, now func() time.Time, logger *logrus.Entry) *DirectoryService {
	return &DirectoryService{
		profileRepo: pr,
		guard:       staffGuard{profileRepo: pr, adminTelegramID: adminID},
		validate:    validator.New(),
		now:         now,
		logger:      logger,
	}
}

// Register creates a guest profile for a Telegram user. Registering an
// existing user returns the stored profile.
func (s *DirectoryService) Register(ctx context.Context, telegramID int64, fullName string) (*profile.Profile, bool, error) {
	existing, err := s.profileRepo.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, idb.ErrProfileNotFound) {
		return nil, false, fmt.Errorf("failed to check existing profile: %w", err)
	}

	p := &profile.Profile{
		TelegramID: telegramID,
		FullName:   strings.TrimSpace(fullName),
		IsActive:   true,
	}
	if telegramID == s.guard.adminTelegramID {
		p.Role = sql.NullString{String: string(cohort.RoleAdmin), Valid: true}
	}

	if err := s.profileRepo.Create(ctx, p); err != nil {
		if errors.Is(err, idb.ErrDuplicateTelegramID) {
			// Lost a race with a concurrent /start.
			stored, getErr := s.profileRepo.GetByTelegramID(ctx, telegramID)
			return stored, false, getErr
		}
		return nil, false, fmt.Errorf("failed to create profile in repository: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"profile_id": p.ID, "telegram_id": telegramID}).Info("Profile registered")
	return p, true, nil
}

// SetEntryYear completes onboarding by storing the cohort entry year.
// Cohorts up to next calendar year may be pre-registered.
func (s *DirectoryService) SetEntryYear(ctx context.Context, telegramID int64, year int) (*ProfileStatus, error) {
	rule := fmt.Sprintf("gte=%d,lte=%d", minEntryYear, s.now().Year()+1)
	if err := s.validate.Var(year, rule); err != nil {
		return nil, ErrInvalidEntryYear
	}

	p, err := s.activeProfile(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	p.EntryYear = sql.NullInt32{Int32: int32(year), Valid: true}
	if err := s.profileRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update entry year: %w", err)
	}
	return &ProfileStatus{Profile: p, Status: p.Status(s.now())}, nil
}

// SetInterests replaces the profile's interest tags with their normalized form.
func (s *DirectoryService) SetInterests(ctx context.Context, telegramID int64, tags []string) (*profile.Profile, error) {
	normalized := matching.Normalize(tags)
	if err := s.validate.Var(normalized, fmt.Sprintf("max=%d,dive,max=%d", maxInterests, maxTagLength)); err != nil {
		return nil, ErrInvalidInterests
	}

	p, err := s.activeProfile(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	p.Interests = normalized
	if err := s.profileRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update interests: %w", err)
	}
	return p, nil
}

// SetRole changes the role of another member. Only admins may do it.
func (s *DirectoryService) SetRole(ctx context.Context, performerTelegramID, targetTelegramID int64, role cohort.Role) (*ProfileStatus, error) {
	performer, err := s.guard.authorize(ctx, performerTelegramID)
	if err != nil {
		return nil, err
	}
	if performerTelegramID != s.guard.adminTelegramID && performer.CohortRole() != cohort.RoleAdmin {
		return nil, ErrNotAuthorized
	}

	target, err := s.profileRepo.GetByTelegramID(ctx, targetTelegramID)
	if err != nil {
		return nil, err
	}
	if role == cohort.RoleUser {
		target.Role = sql.NullString{}
	} else {
		target.Role = sql.NullString{String: string(role), Valid: true}
	}
	if err := s.profileRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"performer_telegram_id": performerTelegramID,
		"target_profile_id":     target.ID,
		"role":                  role,
	}).Info("Profile role changed")
	return &ProfileStatus{Profile: target, Status: target.Status(s.now())}, nil
}

// StatusOf returns the caller's profile and cohort status.
func (s *DirectoryService) StatusOf(ctx context.Context, telegramID int64) (*ProfileStatus, error) {
	p, err := s.profileRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	return &ProfileStatus{Profile: p, Status: p.Status(s.now())}, nil
}

// ListByLabel lists active profiles whose cohort label matches label
// (case-insensitive). "alumni" matches every alumni cohort and an empty label
// lists everybody. Staff only.
func (s *DirectoryService) ListByLabel(ctx context.Context, performerTelegramID int64, label string) ([]ProfileStatus, error) {
	if _, err := s.guard.authorize(ctx, performerTelegramID); err != nil {
		return nil, err
	}

	profiles, err := s.profileRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active profiles: %w", err)
	}

	now := s.now()
	out := make([]ProfileStatus, 0, len(profiles))
	for _, p := range profiles {
		st := p.Status(now)
		if !st.MatchesFilter(label) {
			continue
		}
		out = append(out, ProfileStatus{Profile: p, Status: st})
	}
	return out, nil
}

func (s *DirectoryService) activeProfile(ctx context.Context, telegramID int64) (*profile.Profile, error) {
	p, err := s.profileRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProfileInactive
	}
	return p, nil
}
