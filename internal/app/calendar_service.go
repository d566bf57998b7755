package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"regiss_network_bot/internal/domain/holiday"
	"regiss_network_bot/internal/domain/profile"
	domainTelegram "regiss_network_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// CalendarService publishes the holiday calendar and academic-year notices.
type CalendarService struct {
	profileRepo    profile.Repository
	telegramClient domainTelegram.Client
	location       *time.Location
	logger         *logrus.Entry
}

func NewCalendarService(pr profile.Repository, tc domainTelegram.Client, loc *time.Location, logger *logrus.Entry) *CalendarService {
	return &CalendarService{
		profileRepo:    pr,
		telegramClient: tc,
		location:       loc,
		logger:         logger,
	}
}

// Holidays returns the national holidays of the year.
func (s *CalendarService) Holidays(year int) []holiday.Holiday {
	return holiday.ForYear(year)
}

// Upcoming returns the holidays in the next days, today included.
func (s *CalendarService) Upcoming(now time.Time, days int) []holiday.Holiday {
	local := now.In(s.location)
	return holiday.Between(local, local.AddDate(0, 0, days))
}

// AnnounceTomorrow broadcasts tomorrow's holidays to every active member.
// It returns the number of members reached.
func (s *CalendarService) AnnounceTomorrow(ctx context.Context, now time.Time) (int, error) {
	tomorrow := now.In(s.location).AddDate(0, 0, 1)
	holidays := holiday.On(tomorrow)
	if len(holidays) == 0 {
		s.logger.WithField("date", tomorrow.Format("2006-01-02")).Debug("No holiday tomorrow")
		return 0, nil
	}

	names := make([]string, 0, len(holidays))
	for _, h := range holidays {
		names = append(names, h.Name)
	}
	msg := fmt.Sprintf("Lembrete: amanhã (%s) é feriado nacional: %s.", tomorrow.Format("02/01"), strings.Join(names, " / "))

	profiles, err := s.profileRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active profiles: %w", err)
	}
	return s.broadcast(profiles, func(*profile.Profile) string { return msg }), nil
}

// AnnounceAcademicYear tells every resident their status for the academic year
// that starts at now. It returns the number of residents reached.
func (s *CalendarService) AnnounceAcademicYear(ctx context.Context, now time.Time) (int, error) {
	profiles, err := s.profileRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active profiles: %w", err)
	}

	local := now.In(s.location)
	residents := make([]*profile.Profile, 0, len(profiles))
	for _, p := range profiles {
		if p.Status(local).IsResident {
			residents = append(residents, p)
		}
	}

	return s.broadcast(residents, func(p *profile.Profile) string {
		return fmt.Sprintf("Bom início de ano acadêmico, %s! A partir de hoje você é %s.", p.FullName, p.Status(local).Label)
	}), nil
}

func (s *CalendarService) broadcast(profiles []*profile.Profile, message func(*profile.Profile) string) int {
	delivered := 0
	for _, p := range profiles {
		if err := s.telegramClient.SendMessage(p.TelegramID, message(p), nil); err != nil {
			s.logger.WithError(err).WithField("profile_id", p.ID).Error("Failed to deliver announcement")
			continue
		}
		delivered++
	}
	s.logger.WithFields(logrus.Fields{"recipients": len(profiles), "delivered": delivered}).Info("Announcement broadcast")
	return delivered
}
