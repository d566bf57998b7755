package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Announcer is the part of the calendar service driven by the scheduler.
type Announcer interface {
	AnnounceTomorrow(ctx context.Context, now time.Time) (int, error)
	AnnounceAcademicYear(ctx context.Context, now time.Time) (int, error)
}

type AnnouncementScheduler struct {
	cronEngine           *cron.Cron
	announcer            Announcer
	logger               *logrus.Entry
	now                  func() time.Time
	cronSpecHolidayCheck string
	cronSpecAcademicYear string
}

func NewAnnouncementScheduler(
	announcer Announcer,
	logger *logrus.Entry,
	loc *time.Location,
	now func() time.Time,
	cronSpecHolidayCheck string, // e.g. "0 8 * * *" (08:00 daily)
	cronSpecAcademicYear string, // e.g. "0 9 1 3 *" (09:00 on March 1st)
) *AnnouncementScheduler {
	return &AnnouncementScheduler{
		cronEngine:           cron.New(cron.WithLocation(loc)),
		announcer:            announcer,
		logger:               logger,
		now:                  now,
		cronSpecHolidayCheck: cronSpecHolidayCheck,
		cronSpecAcademicYear: cronSpecAcademicYear,
	}
}

// Start registers the jobs and starts the cron engine. Nothing is started if
// any spec is invalid.
func (s *AnnouncementScheduler) Start() error {
	s.logger.Info("Starting announcement scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecHolidayCheck, s.runHolidayCheck); err != nil {
		return fmt.Errorf("could not add holiday check cron job: %w", err)
	}
	if _, err := s.cronEngine.AddFunc(s.cronSpecAcademicYear, s.runAcademicYear); err != nil {
		return fmt.Errorf("could not add academic year cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.WithField("jobs", len(s.cronEngine.Entries())).Info("Announcement scheduler started with jobs.")
	return nil
}

func (s *AnnouncementScheduler) runHolidayCheck() {
	log := s.logger.WithField("job", "holiday_check")
	log.Info("Cron job triggered for holiday check.")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	n, err := s.announcer.AnnounceTomorrow(ctx, s.now())
	if err != nil {
		log.WithError(err).Error("Holiday announcement failed")
		return
	}
	log.WithField("delivered", n).Info("Holiday check finished")
}

func (s *AnnouncementScheduler) runAcademicYear() {
	log := s.logger.WithField("job", "academic_year")
	log.Info("Cron job triggered for academic year start.")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	n, err := s.announcer.AnnounceAcademicYear(ctx, s.now())
	if err != nil {
		log.WithError(err).Error("Academic year announcement failed")
		return
	}
	log.WithField("delivered", n).Info("Academic year announcement finished")
}

func (s *AnnouncementScheduler) Stop() {
	s.logger.Info("Stopping announcement scheduler...")
	ctx := s.cronEngine.Stop() // waits for running jobs
	<-ctx.Done()
	s.logger.Info("Announcement scheduler gracefully stopped.")
}
