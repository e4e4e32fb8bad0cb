package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recruitment_notification_bot/internal/domain/course"
	"recruitment_notification_bot/internal/domain/direction"
	"recruitment_notification_bot/internal/domain/exam"
)

// Custom application-level errors for admin service
var (
	ErrAdminNotAuthorized = errors.New("performing user is not authorized as an admin")
	ErrInvalidExamWindow  = errors.New("exam close time must be after open time")
)

// AdminService gates the administrative operations behind the configured
// admin chat id, the same way every bot command is gated.
type AdminService struct {
	directionRepo   direction.Repository
	examRepo        exam.Repository
	catalog         course.Catalog
	enroller        course.CohortEnroller
	provisioning    *ProvisioningService
	declaration     *DeclarationService
	adminTelegramID int64
}

func NewAdminService(
	dr direction.Repository,
	er exam.Repository,
	catalog course.Catalog,
	enroller course.CohortEnroller,
	provisioning *ProvisioningService,
	declaration *DeclarationService,
	adminID int64,
) *AdminService {
	return &AdminService{
		directionRepo:   dr,
		examRepo:        er,
		catalog:         catalog,
		enroller:        enroller,
		provisioning:    provisioning,
		declaration:     declaration,
		adminTelegramID: adminID,
	}
}

// AddRecruitment creates a new top-level recruitment.
func (s *AdminService) AddRecruitment(ctx context.Context, performingAdminID int64, name string, year int) (*direction.Recruitment, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	rec := &direction.Recruitment{Name: name, Year: year}
	if err := s.directionRepo.CreateRecruitment(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create recruitment: %w", err)
	}
	return rec, nil
}

// AddDirection creates a direction under a recruitment and kicks off the
// asynchronous provisioning job.
func (s *AdminService) AddDirection(ctx context.Context, performingAdminID, recruitmentID int64, name string, baseCategoryID int64) (*direction.Direction, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	return s.provisioning.CreateDirection(ctx, recruitmentID, name, baseCategoryID)
}

// DirectionStatus returns the direction so callers can poll its copy status
// and produced course references.
func (s *AdminService) DirectionStatus(ctx context.Context, performingAdminID, directionID int64) (*direction.Direction, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	return s.directionRepo.GetByID(ctx, directionID)
}

// AddExam registers an internal test window for a direction.
func (s *AdminService) AddExam(ctx context.Context, performingAdminID, directionID int64, name string, opensAt, closesAt time.Time) (*exam.Exam, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	if !closesAt.After(opensAt) {
		return nil, ErrInvalidExamWindow
	}
	if _, err := s.directionRepo.GetByID(ctx, directionID); err != nil {
		return nil, fmt.Errorf("failed to load direction %d: %w", directionID, err)
	}

	e := &exam.Exam{
		DirectionID: directionID,
		Name:        name,
		OpensAt:     opensAt,
		ClosesAt:    closesAt,
	}
	if err := s.examRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}
	return e, nil
}

// EnrollUser joins a user to a direction: a direction_users row, cohort
// membership, and a resync so every cohort-bound course picks the user up.
func (s *AdminService) EnrollUser(ctx context.Context, performingAdminID, directionID, userID int64) error {
	if performingAdminID != s.adminTelegramID {
		return ErrAdminNotAuthorized
	}
	d, err := s.directionRepo.GetByID(ctx, directionID)
	if err != nil {
		return fmt.Errorf("failed to load direction %d: %w", directionID, err)
	}

	du := &direction.DirectionUser{DirectionID: directionID, UserID: userID}
	if err := s.directionRepo.AddUser(ctx, du); err != nil {
		return err
	}
	if err := s.catalog.AddCohortMember(ctx, d.CohortID, userID); err != nil {
		return fmt.Errorf("failed to add cohort member: %w", err)
	}
	if err := s.enroller.SyncCohort(ctx, d.CohortID); err != nil {
		return fmt.Errorf("failed to resync cohort %d: %w", d.CohortID, err)
	}
	return nil
}

// Declare performs the declaration transition on behalf of a user, e.g. from
// a signed paper declaration.
func (s *AdminService) Declare(ctx context.Context, performingAdminID, directionID, userID int64) error {
	if performingAdminID != s.adminTelegramID {
		return ErrAdminNotAuthorized
	}
	return s.declaration.Declare(ctx, directionID, userID)
}
