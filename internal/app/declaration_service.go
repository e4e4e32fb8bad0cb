package app

import (
	"context"
	"errors"
	"fmt"

	"recruitment_notification_bot/internal/domain/direction"
	idb "recruitment_notification_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// declarationComponent tags declaration messages in the audit tables.
const declarationComponent = "declaration"

// DeclarationService drives the one-way declaration transition for a
// direction user: undeclared -> declared, confirmed by a single email + SMS.
type DeclarationService struct {
	directionRepo direction.Repository
	userRepo      direction.UserRepository
	dispatcher    *ChannelDispatcher
	logger        *logrus.Logger
}

func NewDeclarationService(
	dr direction.Repository,
	ur direction.UserRepository,
	dispatcher *ChannelDispatcher,
	logger *logrus.Logger,
) *DeclarationService {
	return &DeclarationService{
		directionRepo: dr,
		userRepo:      ur,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// Declare marks the user as declared for the direction and sends the
// confirmation. The transition is guarded by a conditional update: replaying
// the call for an already-declared user is a no-op and sends nothing.
func (s *DeclarationService) Declare(ctx context.Context, directionID, userID int64) error {
	err := s.directionRepo.MarkDeclared(ctx, directionID, userID)
	if err != nil {
		if errors.Is(err, idb.ErrAlreadyDeclared) {
			s.logger.Infof("UserID %d already declared for direction %d, nothing to do.", userID, directionID)
			return nil
		}
		return fmt.Errorf("failed to mark user %d declared for direction %d: %w", userID, directionID, err)
	}
	s.logger.Infof("UserID %d declared for direction %d.", userID, directionID)

	d, err := s.directionRepo.GetByID(ctx, directionID)
	if err != nil {
		return fmt.Errorf("failed to load direction %d after declare: %w", directionID, err)
	}
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user %d after declare: %w", userID, err)
	}

	subject := fmt.Sprintf("Declaration confirmed: %s", d.Name)
	body := fmt.Sprintf("Hello %s, your exam declaration for %s has been registered.", u.FirstName, d.Name)
	s.dispatcher.Dispatch(ctx, u, subject, body, declarationComponent)

	if err := s.directionRepo.MarkNotified(ctx, directionID, userID); err != nil {
		// The declaration itself already committed; only the notified flag
		// is lost on error here.
		s.logger.Errorf("Failed to mark user %d notified for direction %d: %v", userID, directionID, err)
	}
	return nil
}
