package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"recruitment_notification_bot/internal/domain/course"
	"recruitment_notification_bot/internal/domain/direction"
	"recruitment_notification_bot/internal/domain/task"
	domainTelegram "recruitment_notification_bot/internal/domain/telegram"
	idb "recruitment_notification_bot/internal/infra/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ProvisioningService owns the direction lifecycle: the synchronous creation
// step (category + cohort + pending direction + exactly one queued job) and
// the asynchronous task run that duplicates template courses and binds the
// cohort-sync enrolment.
type ProvisioningService struct {
	directionRepo direction.Repository
	catalog       course.Catalog
	duplicator    course.Duplicator
	enroller      course.CohortEnroller
	ledger        course.CopyLedger
	queue         task.Queue
	tgClient      domainTelegram.Client
	adminChatID   int64
	maxAttempts   int
	logger        *logrus.Logger
}

func NewProvisioningService(
	dr direction.Repository,
	catalog course.Catalog,
	duplicator course.Duplicator,
	enroller course.CohortEnroller,
	ledger course.CopyLedger,
	queue task.Queue,
	tgClient domainTelegram.Client,
	adminChatID int64,
	maxAttempts int,
	logger *logrus.Logger,
) *ProvisioningService {
	return &ProvisioningService{
		directionRepo: dr,
		catalog:       catalog,
		duplicator:    duplicator,
		enroller:      enroller,
		ledger:        ledger,
		queue:         queue,
		tgClient:      tgClient,
		adminChatID:   adminChatID,
		maxAttempts:   maxAttempts,
		logger:        logger,
	}
}

// CreateDirection allocates the category and cohort synchronously, persists
// the direction as PENDING and enqueues the one provisioning job. The course
// references stay null until the job's final atomic update.
func (s *ProvisioningService) CreateDirection(ctx context.Context, recruitmentID int64, name string, baseCategoryID int64) (*direction.Direction, error) {
	rec, err := s.directionRepo.GetRecruitmentByID(ctx, recruitmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recruitment %d: %w", recruitmentID, err)
	}

	cat := &course.Category{Name: fmt.Sprintf("%s %d - %s", rec.Name, rec.Year, name)}
	if err := s.catalog.CreateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("failed to create direction category: %w", err)
	}

	cohort := &course.Cohort{Name: fmt.Sprintf("%s %d - %s", rec.Name, rec.Year, name)}
	if err := s.catalog.CreateCohort(ctx, cohort); err != nil {
		return nil, fmt.Errorf("failed to create direction cohort: %w", err)
	}

	d := &direction.Direction{
		RecruitmentID:  recruitmentID,
		Name:           name,
		BaseCategoryID: baseCategoryID,
		CategoryID:     cat.ID,
		CohortID:       cohort.ID,
		CopyStatus:     direction.CopyStatusPending,
	}
	if err := s.directionRepo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create direction: %w", err)
	}

	t := &task.Provisioning{
		ID:          uuid.NewString(),
		DirectionID: d.ID,
		NameToken:   fmt.Sprintf("%s %d", name, rec.Year),
		MaxAttempts: s.maxAttempts,
	}
	if err := s.queue.Enqueue(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to enqueue provisioning task: %w", err)
	}
	s.logger.Infof("Direction %d created, provisioning task %s enqueued.", d.ID, t.ID)
	return d, nil
}

// Run executes one provisioning task: duplicate every course directly under
// the base category into the direction's category, attach cohort sync to the
// produced courses, then publish the result with a single atomic update.
//
// Re-running after a partial failure is safe: every finished duplication has
// a ledger row keyed by (direction, source course) and is skipped on retry.
func (s *ProvisioningService) Run(ctx context.Context, t *task.Provisioning) error {
	d, err := s.directionRepo.GetByID(ctx, t.DirectionID)
	if err != nil {
		if errors.Is(err, idb.ErrDirectionNotFound) {
			// Direction was deleted before the task ran. The only silent
			// early-exit in the runner.
			s.logger.Warnf("Direction %d no longer exists, skipping provisioning task %s.", t.DirectionID, t.ID)
			return nil
		}
		return fmt.Errorf("failed to load direction %d: %w", t.DirectionID, err)
	}

	sources, err := s.catalog.ListByCategory(ctx, d.BaseCategoryID)
	if err != nil {
		return fmt.Errorf("failed to list template courses in category %d: %w", d.BaseCategoryID, err)
	}
	s.logger.Infof("Provisioning direction %d: %d template courses under category %d.", d.ID, len(sources), d.BaseCategoryID)

	var archive, preparation, quizes sql.NullInt64
	var produced []int64

	for _, src := range sources {
		name, shortName, slot := s.classify(src, d, t.NameToken, &archive, &preparation, &quizes)

		newID, err := s.copyOnce(ctx, d.ID, src.ID, name, shortName, d.CategoryID)
		if err != nil {
			// Duplication failures propagate so the queue can retry the task.
			return fmt.Errorf("failed to duplicate course %d: %w", src.ID, err)
		}
		produced = append(produced, newID)
		if slot != nil {
			*slot = sql.NullInt64{Int64: newID, Valid: true}
		}
	}

	for _, courseID := range produced {
		if err := s.enroller.AttachCohortSync(ctx, courseID, d.CohortID); err != nil {
			return fmt.Errorf("failed to attach cohort sync to course %d: %w", courseID, err)
		}
	}

	if err := s.directionRepo.CompleteCopy(ctx, d.ID, archive, preparation, quizes); err != nil {
		return fmt.Errorf("failed to complete direction %d copy: %w", d.ID, err)
	}
	s.logger.Infof("Direction %d provisioned: %d courses copied, copy status DONE.", d.ID, len(produced))

	s.alertAdmin(fmt.Sprintf("Direction %d (%s) provisioned: %d courses copied.", d.ID, d.Name, len(produced)))
	return nil
}

// classify picks the produced name, short name and target reference slot for
// one template course. Markers are matched as substrings of the external id.
// A second course matching an already-filled slot is copied verbatim like an
// unclassified one.
func (s *ProvisioningService) classify(
	src *course.Course,
	d *direction.Direction,
	nameToken string,
	archive, preparation, quizes *sql.NullInt64,
) (name, shortName string, slot *sql.NullInt64) {
	externalID := strings.ToLower(src.ExternalID)
	switch {
	case strings.Contains(externalID, course.MarkerArchive) && !archive.Valid:
		return course.LabelArchive, fmt.Sprintf("archive-%d", d.ID), archive
	case strings.Contains(externalID, course.MarkerPreparation) && !preparation.Valid:
		return course.LabelPreparation, fmt.Sprintf("preparation-%d", d.ID), preparation
	case strings.Contains(externalID, course.MarkerTests) && !quizes.Valid:
		return course.LabelTests, fmt.Sprintf("tests-%d", d.ID), quizes
	default:
		// Verbatim copy with a uniqueness suffix to avoid name collisions.
		return fmt.Sprintf("%s (%s)", src.Name, nameToken),
			fmt.Sprintf("%s-%d", src.ShortName, d.ID), nil
	}
}

// copyOnce duplicates a source course unless the ledger already records a
// copy for this (direction, source) pair.
func (s *ProvisioningService) copyOnce(ctx context.Context, directionID, sourceID int64, name, shortName string, destCategoryID int64) (int64, error) {
	if cp, err := s.ledger.Find(ctx, directionID, sourceID); err == nil {
		s.logger.Infof("Course %d already duplicated for direction %d (new course %d), skipping.", sourceID, directionID, cp.NewCourseID)
		return cp.NewCourseID, nil
	} else if !errors.Is(err, idb.ErrCopyNotRecorded) {
		return 0, fmt.Errorf("failed to check copy ledger: %w", err)
	}

	newID, err := s.duplicator.Duplicate(ctx, sourceID, name, shortName, destCategoryID)
	if err != nil {
		return 0, err
	}
	if err := s.ledger.Record(ctx, &course.Copy{
		DirectionID:    directionID,
		SourceCourseID: sourceID,
		NewCourseID:    newID,
	}); err != nil {
		return 0, fmt.Errorf("failed to record copy ledger row: %w", err)
	}
	return newID, nil
}

// alertAdmin sends a best-effort telegram notice to the configured admin.
func (s *ProvisioningService) alertAdmin(text string) {
	if s.tgClient == nil || s.adminChatID == 0 {
		return
	}
	if err := s.tgClient.SendMessage(s.adminChatID, text, nil); err != nil {
		s.logger.Errorf("Failed to send admin alert: %v", err)
	}
}

// AlertFailure notifies the admin that a task failed terminally. Called by
// the worker once retries are exhausted.
func (s *ProvisioningService) AlertFailure(t *task.Provisioning, cause error) {
	s.alertAdmin(fmt.Sprintf("Provisioning task %s for direction %d failed after %d attempts: %v", t.ID, t.DirectionID, t.Attempts, cause))
}
