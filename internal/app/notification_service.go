package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recruitment_notification_bot/internal/domain/course"
	"recruitment_notification_bot/internal/domain/direction"
	"recruitment_notification_bot/internal/domain/exam"
	"recruitment_notification_bot/internal/domain/notification"
	idb "recruitment_notification_bot/internal/infra/database"
	"recruitment_notification_bot/internal/infra/webhook"

	"github.com/sirupsen/logrus"
)

// sweepComponent tags exam-window messages in the audit tables.
const sweepComponent = "exam_window"

// ResultPoster pushes one exam result summary to the automation endpoint.
type ResultPoster interface {
	PostResult(ctx context.Context, payload webhook.ResultPayload) error
}

// NotificationService runs the scheduled work: the time-window sweep over
// exams and the unsent-result webhook push.
type NotificationService struct {
	examRepo      exam.Repository
	directionRepo direction.Repository
	userRepo      direction.UserRepository
	catalog       course.Catalog
	notifRepo     notification.Repository
	dispatcher    *ChannelDispatcher
	poster        ResultPoster
	logger        *logrus.Logger
}

func NewNotificationService(
	er exam.Repository,
	dr direction.Repository,
	ur direction.UserRepository,
	catalog course.Catalog,
	nr notification.Repository,
	dispatcher *ChannelDispatcher,
	poster ResultPoster,
	logger *logrus.Logger,
) *NotificationService {
	return &NotificationService{
		examRepo:      er,
		directionRepo: dr,
		userRepo:      ur,
		catalog:       catalog,
		notifRepo:     nr,
		dispatcher:    dispatcher,
		poster:        poster,
		logger:        logger,
	}
}

// RunSweep evaluates every exam's time windows against now and fires at most
// one notification round per (exam, type). The dedup record is inserted once
// after the whole recipient loop; per-recipient channel failures are audited
// but do not hold the record back.
func (s *NotificationService) RunSweep(ctx context.Context, now time.Time) error {
	exams, err := s.examRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list exams for sweep: %w", err)
	}

	for _, e := range exams {
		for _, notifType := range notification.DueTypes(now, e.OpensAt, e.ClosesAt) {
			if err := s.fireRound(ctx, e, notifType, now); err != nil {
				// One broken exam must not stall the rest of the sweep.
				s.logger.Errorf("Sweep round %s for exam %d failed: %v", notifType, e.ID, err)
			}
		}
	}
	return nil
}

func (s *NotificationService) fireRound(ctx context.Context, e *exam.Exam, notifType notification.Type, now time.Time) error {
	sent, err := s.notifRepo.Exists(ctx, notification.EntityExam, e.ID, notifType)
	if err != nil {
		return fmt.Errorf("failed to check notification record: %w", err)
	}
	if sent {
		return nil
	}

	d, err := s.directionRepo.GetByID(ctx, e.DirectionID)
	if err != nil {
		if errors.Is(err, idb.ErrDirectionNotFound) {
			s.logger.Warnf("Direction %d for exam %d no longer exists, suppressing %s round.", e.DirectionID, e.ID, notifType)
			return nil
		}
		return fmt.Errorf("failed to load direction %d: %w", e.DirectionID, err)
	}

	memberIDs, err := s.catalog.CohortMemberIDs(ctx, d.CohortID)
	if err != nil {
		return fmt.Errorf("failed to list cohort %d members: %w", d.CohortID, err)
	}
	recipients, err := s.userRepo.ListByIDs(ctx, memberIDs)
	if err != nil {
		return fmt.Errorf("failed to load recipients: %w", err)
	}

	subject, body := sweepMessage(e, notifType)
	s.logger.Infof("Firing %s round for exam %d (%s) to %d recipients.", notifType, e.ID, e.Name, len(recipients))
	for _, u := range recipients {
		s.dispatcher.Dispatch(ctx, u, subject, body, sweepComponent)
	}

	// The single insert is the dedup gate for the whole round.
	rec := &notification.Record{
		EntityKind: notification.EntityExam,
		EntityID:   e.ID,
		Type:       notifType,
		SentAt:     now,
	}
	if err := s.notifRepo.Create(ctx, rec); err != nil {
		if errors.Is(err, idb.ErrDuplicateRecord) {
			s.logger.Infof("Round %s for exam %d was recorded by a concurrent sweep.", notifType, e.ID)
			return nil
		}
		return fmt.Errorf("failed to create notification record: %w", err)
	}
	return nil
}

func sweepMessage(e *exam.Exam, notifType notification.Type) (subject, body string) {
	openFmt := e.OpensAt.Format("2006-01-02 15:04")
	closeFmt := e.ClosesAt.Format("2006-01-02 15:04")
	switch notifType {
	case notification.TypeSevenDaysBefore:
		return fmt.Sprintf("%s opens soon", e.Name),
			fmt.Sprintf("The test %q opens on %s. Make sure you are ready.", e.Name, openFmt)
	case notification.TypeOnOpen:
		return fmt.Sprintf("%s is open", e.Name),
			fmt.Sprintf("The test %q is now open until %s.", e.Name, closeFmt)
	case notification.TypeTwentyFourHours:
		return fmt.Sprintf("%s closes in 24 hours", e.Name),
			fmt.Sprintf("Last call: the test %q closes on %s.", e.Name, closeFmt)
	default:
		return e.Name, fmt.Sprintf("Update for the test %q.", e.Name)
	}
}

// PushResults posts every unsent exam result summary to the webhook. A 2xx
// response marks the result sent; anything else leaves the flag unset for
// the next run.
func (s *NotificationService) PushResults(ctx context.Context) error {
	unsent, err := s.examRepo.ListUnsentResults(ctx)
	if err != nil {
		return fmt.Errorf("failed to list unsent results: %w", err)
	}
	if len(unsent) == 0 {
		return nil
	}
	s.logger.Infof("Pushing %d exam results to webhook.", len(unsent))

	for _, res := range unsent {
		e, err := s.examRepo.GetByID(ctx, res.ExamID)
		if err != nil {
			s.logger.Errorf("Failed to load exam %d for result %d: %v", res.ExamID, res.ID, err)
			continue
		}
		u, err := s.userRepo.GetByID(ctx, res.UserID)
		if err != nil {
			s.logger.Errorf("Failed to load user %d for result %d: %v", res.UserID, res.ID, err)
			continue
		}

		payload := webhook.ResultPayload{
			ExamID:      e.ID,
			ExamName:    e.Name,
			UserID:      u.ID,
			Email:       u.Email,
			Score:       res.Score,
			MaxScore:    res.MaxScore,
			SubmittedAt: res.SubmittedAt,
		}
		if err := s.poster.PostResult(ctx, payload); err != nil {
			s.logger.Errorf("Webhook push for result %d failed: %v", res.ID, err)
			continue
		}
		if err := s.examRepo.MarkResultSent(ctx, res.ID, time.Now()); err != nil {
			s.logger.Errorf("Failed to mark result %d sent: %v", res.ID, err)
		}
	}
	return nil
}
