package course

import (
	"context"
	"time"
)

// Markers matched against a course's external identifier to classify template
// courses during provisioning.
const (
	MarkerArchive     = "archive"
	MarkerPreparation = "preparation"
	MarkerTests       = "tests"
)

// Labels given to the recognized template copies.
const (
	LabelArchive     = "Archive"
	LabelPreparation = "Preparation"
	LabelTests       = "Tests"
)

// EnrolMethodCohortSync mirrors a cohort's membership into course enrolment.
const EnrolMethodCohortSync = "cohort_sync"

// Category is a container for courses. Directions get a fresh category each.
type Category struct {
	ID       int64
	Name     string
	ParentID int64 // 0 for top-level categories
}

// Cohort is a named group of users whose membership is synced into courses.
type Cohort struct {
	ID   int64
	Name string
}

// Course is a unit of study. ExternalID carries the template marker used for
// classification during provisioning.
type Course struct {
	ID         int64
	CategoryID int64
	Name       string
	ShortName  string
	ExternalID string
	CreatedAt  time.Time
}

// Catalog defines read/create operations on categories, cohorts and courses.
type Catalog interface {
	CreateCategory(ctx context.Context, c *Category) error
	CreateCohort(ctx context.Context, c *Cohort) error
	GetCourseByID(ctx context.Context, id int64) (*Course, error)
	// ListByCategory returns the courses directly under a category, in id order.
	ListByCategory(ctx context.Context, categoryID int64) ([]*Course, error)
	// CohortMemberIDs returns the user ids currently in a cohort.
	CohortMemberIDs(ctx context.Context, cohortID int64) ([]int64, error)
	AddCohortMember(ctx context.Context, cohortID, userID int64) error
}

// Duplicator performs a full deep copy of a course (sections and modules
// included) under a new name in the destination category and returns the new
// course id.
type Duplicator interface {
	Duplicate(ctx context.Context, sourceCourseID int64, name, shortName string, destCategoryID int64) (int64, error)
}

// CohortEnroller attaches a cohort-sync enrolment method to a course and
// enrols the cohort's current members through it. Future membership changes
// propagate via SyncCohort.
type CohortEnroller interface {
	AttachCohortSync(ctx context.Context, courseID, cohortID int64) error
	SyncCohort(ctx context.Context, cohortID int64) error
}
