package app

import (
	"context"
	"testing"
	"time"

	"recruitment_notification_bot/internal/domain/direction"
	idb "recruitment_notification_bot/internal/infra/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminID = int64(42)

func newAdminFixture(t *testing.T) (*AdminService, *fakeDirectionRepo, *fakeCatalog, *fakeExamRepo) {
	t.Helper()
	dirRepo := newFakeDirectionRepo()
	catalog := newFakeCatalog()
	examRepo := newFakeExamRepo()
	userRepo := newFakeUserRepo(&direction.User{ID: 5, FirstName: "Anna", Email: "anna@example.com"})
	queue := &fakeQueue{}

	dispatcher := NewChannelDispatcher(&fakeEmailSender{}, &fakeSMSSender{}, &fakeHistoryRepo{}, testLogger())
	provisioning := NewProvisioningService(dirRepo, catalog, catalog, catalog, catalog, queue, &fakeTelegramClient{}, adminID, 3, testLogger())
	declaration := NewDeclarationService(dirRepo, userRepo, dispatcher, testLogger())
	svc := NewAdminService(dirRepo, examRepo, catalog, catalog, provisioning, declaration, adminID)
	return svc, dirRepo, catalog, examRepo
}

func TestAdminOperationsRejectNonAdmin(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)
	ctx := context.Background()
	stranger := int64(1337)

	_, err := svc.AddRecruitment(ctx, stranger, "Rekrutacja", 2026)
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
	_, err = svc.AddDirection(ctx, stranger, 1, "Informatyka", 1)
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
	_, err = svc.DirectionStatus(ctx, stranger, 1)
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
	_, err = svc.AddExam(ctx, stranger, 1, "Test", time.Now(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
	assert.ErrorIs(t, svc.EnrollUser(ctx, stranger, 1, 5), ErrAdminNotAuthorized)
	assert.ErrorIs(t, svc.Declare(ctx, stranger, 1, 5), ErrAdminNotAuthorized)
}

func TestAddExamRejectsInvertedWindow(t *testing.T) {
	svc, dirRepo, _, _ := newAdminFixture(t)
	ctx := context.Background()
	require.NoError(t, dirRepo.Create(ctx, &direction.Direction{RecruitmentID: 1, Name: "Informatyka"}))

	opens := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	_, err := svc.AddExam(ctx, adminID, 1, "Test", opens, opens.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidExamWindow)

	_, err = svc.AddExam(ctx, adminID, 1, "Test", opens, opens)
	assert.ErrorIs(t, err, ErrInvalidExamWindow)
}

func TestAddExamRequiresExistingDirection(t *testing.T) {
	svc, _, _, examRepo := newAdminFixture(t)

	opens := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	_, err := svc.AddExam(context.Background(), adminID, 99, "Test", opens, opens.Add(time.Hour))
	require.Error(t, err)
	assert.Empty(t, examRepo.exams)
}

func TestEnrollUserJoinsCohortAndResyncs(t *testing.T) {
	svc, dirRepo, catalog, _ := newAdminFixture(t)
	ctx := context.Background()
	require.NoError(t, dirRepo.Create(ctx, &direction.Direction{RecruitmentID: 1, Name: "Informatyka", CohortID: 7}))

	require.NoError(t, svc.EnrollUser(ctx, adminID, 1, 5))

	du, err := dirRepo.GetUser(ctx, 1, 5)
	require.NoError(t, err)
	assert.False(t, du.Declared)
	assert.Contains(t, catalog.members[7], int64(5))
	assert.Equal(t, []int64{7}, catalog.synced)
}

func TestEnrollUserTwiceIsRejected(t *testing.T) {
	svc, dirRepo, catalog, _ := newAdminFixture(t)
	ctx := context.Background()
	require.NoError(t, dirRepo.Create(ctx, &direction.Direction{RecruitmentID: 1, Name: "Informatyka", CohortID: 7}))

	require.NoError(t, svc.EnrollUser(ctx, adminID, 1, 5))
	err := svc.EnrollUser(ctx, adminID, 1, 5)
	assert.ErrorIs(t, err, idb.ErrDuplicateDirectionUser)
	assert.Len(t, catalog.members[7], 1)
}
