package scheduler

import (
	"context"
	"time"

	"recruitment_notification_bot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// NotificationScheduler drives the periodic work: the exam time-window sweep
// and the unsent-result webhook push. The cron engine runs one invocation per
// job at a time; the dedup records make an overlapping or repeated sweep
// harmless anyway.
type NotificationScheduler struct {
	cronEngine         *cron.Cron
	notifService       *app.NotificationService
	logger             *logrus.Logger
	cronSpecSweep      string
	cronSpecResultPush string
}

func NewNotificationScheduler(
	notifService *app.NotificationService,
	logger *logrus.Logger,
	cronSpecSweep string, // e.g. "*/10 * * * *"
	cronSpecResultPush string, // e.g. "*/15 * * * *"
) *NotificationScheduler {
	return &NotificationScheduler{
		cronEngine:         cron.New(cron.WithLocation(time.Local)),
		notifService:       notifService,
		logger:             logger,
		cronSpecSweep:      cronSpecSweep,
		cronSpecResultPush: cronSpecResultPush,
	}
}

func (s *NotificationScheduler) Start() {
	s.logger.Info("Starting notification scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecSweep, func() {
		s.logger.Info("Cron job triggered for exam window sweep.")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.notifService.RunSweep(ctx, time.Now()); err != nil {
			s.logger.Errorf("Error during exam window sweep: %v", err)
		}
	})
	if err != nil {
		s.logger.Fatalf("Could not add exam window sweep cron job: %v", err)
	}

	_, err = s.cronEngine.AddFunc(s.cronSpecResultPush, func() {
		s.logger.Info("Cron job triggered for result webhook push.")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.notifService.PushResults(ctx); err != nil {
			s.logger.Errorf("Error during result webhook push: %v", err)
		}
	})
	if err != nil {
		s.logger.Fatalf("Could not add result webhook push cron job: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Info("Notification scheduler started with jobs.")
}

func (s *NotificationScheduler) Stop() {
	s.logger.Info("Stopping notification scheduler...")
	ctx := s.cronEngine.Stop() // Waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Notification scheduler gracefully stopped.")
}
