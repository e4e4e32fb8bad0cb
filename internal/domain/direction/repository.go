package direction

import (
	"context"
	"database/sql"
)

// Repository defines persistence for recruitments, directions and their users.
type Repository interface {
	// Recruitment methods
	CreateRecruitment(ctx context.Context, r *Recruitment) error
	GetRecruitmentByID(ctx context.Context, id int64) (*Recruitment, error)

	// Direction methods
	Create(ctx context.Context, d *Direction) error
	GetByID(ctx context.Context, id int64) (*Direction, error)
	ListByRecruitment(ctx context.Context, recruitmentID int64) ([]*Direction, error)
	// CompleteCopy sets the produced course references and flips copy_status
	// to DONE in a single statement. Readers see either a pending direction
	// with no references or a done direction with the full reference set.
	CompleteCopy(ctx context.Context, id int64, archive, preparation, quizes sql.NullInt64) error

	// DirectionUser methods
	AddUser(ctx context.Context, du *DirectionUser) error
	GetUser(ctx context.Context, directionID, userID int64) (*DirectionUser, error)
	// MarkDeclared performs the guarded one-way transition. It returns
	// ErrAlreadyDeclared when the flag was already set, so callers can skip
	// the declaration notification instead of re-sending it.
	MarkDeclared(ctx context.Context, directionID, userID int64) error
	MarkNotified(ctx context.Context, directionID, userID int64) error
	ListUsersByDirection(ctx context.Context, directionID int64) ([]*DirectionUser, error)
}

// UserRepository defines persistence for platform users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*User, error)
}
