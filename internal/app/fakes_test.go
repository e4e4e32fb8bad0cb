package app

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"recruitment_notification_bot/internal/domain/course"
	"recruitment_notification_bot/internal/domain/direction"
	"recruitment_notification_bot/internal/domain/exam"
	"recruitment_notification_bot/internal/domain/messaging"
	"recruitment_notification_bot/internal/domain/notification"
	"recruitment_notification_bot/internal/domain/task"
	idb "recruitment_notification_bot/internal/infra/database"
	"recruitment_notification_bot/internal/infra/webhook"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// --- direction repository -------------------------------------------------

type completedCopy struct {
	directionID                 int64
	archive, preparation, quizes sql.NullInt64
}

type fakeDirectionRepo struct {
	recruitments map[int64]*direction.Recruitment
	directions   map[int64]*direction.Direction
	users        map[string]*direction.DirectionUser
	completed    []completedCopy
	nextID       int64
}

func newFakeDirectionRepo() *fakeDirectionRepo {
	return &fakeDirectionRepo{
		recruitments: make(map[int64]*direction.Recruitment),
		directions:   make(map[int64]*direction.Direction),
		users:        make(map[string]*direction.DirectionUser),
	}
}

func duKey(directionID, userID int64) string {
	return fmt.Sprintf("%d:%d", directionID, userID)
}

func (r *fakeDirectionRepo) CreateRecruitment(_ context.Context, rec *direction.Recruitment) error {
	r.nextID++
	rec.ID = r.nextID
	rec.CreatedAt = time.Now()
	r.recruitments[rec.ID] = rec
	return nil
}

func (r *fakeDirectionRepo) GetRecruitmentByID(_ context.Context, id int64) (*direction.Recruitment, error) {
	rec, ok := r.recruitments[id]
	if !ok {
		return nil, idb.ErrRecruitmentNotFound
	}
	return rec, nil
}

func (r *fakeDirectionRepo) Create(_ context.Context, d *direction.Direction) error {
	r.nextID++
	d.ID = r.nextID
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	r.directions[d.ID] = d
	return nil
}

func (r *fakeDirectionRepo) GetByID(_ context.Context, id int64) (*direction.Direction, error) {
	d, ok := r.directions[id]
	if !ok {
		return nil, idb.ErrDirectionNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDirectionRepo) ListByRecruitment(_ context.Context, recruitmentID int64) ([]*direction.Direction, error) {
	out := make([]*direction.Direction, 0)
	for _, d := range r.directions {
		if d.RecruitmentID == recruitmentID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDirectionRepo) CompleteCopy(_ context.Context, id int64, archive, preparation, quizes sql.NullInt64) error {
	d, ok := r.directions[id]
	if !ok {
		return idb.ErrDirectionNotFound
	}
	d.ArchiveCourseID = archive
	d.PreparationCourseID = preparation
	d.QuizesCourseID = quizes
	d.CopyStatus = direction.CopyStatusDone
	r.completed = append(r.completed, completedCopy{id, archive, preparation, quizes})
	return nil
}

func (r *fakeDirectionRepo) AddUser(_ context.Context, du *direction.DirectionUser) error {
	key := duKey(du.DirectionID, du.UserID)
	if _, ok := r.users[key]; ok {
		return idb.ErrDuplicateDirectionUser
	}
	r.nextID++
	du.ID = r.nextID
	du.CreatedAt = time.Now()
	r.users[key] = du
	return nil
}

func (r *fakeDirectionRepo) GetUser(_ context.Context, directionID, userID int64) (*direction.DirectionUser, error) {
	du, ok := r.users[duKey(directionID, userID)]
	if !ok {
		return nil, idb.ErrDirectionUserNotFound
	}
	return du, nil
}

func (r *fakeDirectionRepo) MarkDeclared(_ context.Context, directionID, userID int64) error {
	du, ok := r.users[duKey(directionID, userID)]
	if !ok {
		return idb.ErrDirectionUserNotFound
	}
	if du.Declared {
		return idb.ErrAlreadyDeclared
	}
	du.Declared = true
	return nil
}

func (r *fakeDirectionRepo) MarkNotified(_ context.Context, directionID, userID int64) error {
	du, ok := r.users[duKey(directionID, userID)]
	if !ok {
		return idb.ErrDirectionUserNotFound
	}
	du.Notified = true
	du.NotifiedAt = sql.NullTime{Time: time.Now(), Valid: true}
	return nil
}

func (r *fakeDirectionRepo) ListUsersByDirection(_ context.Context, directionID int64) ([]*direction.DirectionUser, error) {
	out := make([]*direction.DirectionUser, 0)
	for _, du := range r.users {
		if du.DirectionID == directionID {
			out = append(out, du)
		}
	}
	return out, nil
}

// --- user repository ------------------------------------------------------

type fakeUserRepo struct {
	users map[int64]*direction.User
}

func newFakeUserRepo(users ...*direction.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int64]*direction.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *direction.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*direction.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, idb.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) ListByIDs(_ context.Context, ids []int64) ([]*direction.User, error) {
	out := make([]*direction.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// --- course catalog / duplicator / enroller / ledger ----------------------

type attachCall struct {
	courseID, cohortID int64
}

type fakeCatalog struct {
	mu          sync.Mutex
	categories  map[int64]*course.Category
	cohorts     map[int64]*course.Cohort
	courses     map[int64]*course.Course
	members     map[int64][]int64
	ledger      map[string]*course.Copy
	attachments []attachCall
	synced      []int64
	duplicated  int
	failOn      int64 // source course id that fails duplication once
	nextID      int64
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		categories: make(map[int64]*course.Category),
		cohorts:    make(map[int64]*course.Cohort),
		courses:    make(map[int64]*course.Course),
		members:    make(map[int64][]int64),
		ledger:     make(map[string]*course.Copy),
		nextID:     1000,
	}
}

func (c *fakeCatalog) addCourse(categoryID int64, name, shortName, externalID string) *course.Course {
	c.nextID++
	crs := &course.Course{ID: c.nextID, CategoryID: categoryID, Name: name, ShortName: shortName, ExternalID: externalID}
	c.courses[crs.ID] = crs
	return crs
}

func (c *fakeCatalog) CreateCategory(_ context.Context, cat *course.Category) error {
	c.nextID++
	cat.ID = c.nextID
	c.categories[cat.ID] = cat
	return nil
}

func (c *fakeCatalog) CreateCohort(_ context.Context, ch *course.Cohort) error {
	c.nextID++
	ch.ID = c.nextID
	c.cohorts[ch.ID] = ch
	return nil
}

func (c *fakeCatalog) GetCourseByID(_ context.Context, id int64) (*course.Course, error) {
	crs, ok := c.courses[id]
	if !ok {
		return nil, idb.ErrCourseNotFound
	}
	return crs, nil
}

func (c *fakeCatalog) ListByCategory(_ context.Context, categoryID int64) ([]*course.Course, error) {
	out := make([]*course.Course, 0)
	for id := int64(0); id <= c.nextID; id++ {
		if crs, ok := c.courses[id]; ok && crs.CategoryID == categoryID {
			out = append(out, crs)
		}
	}
	return out, nil
}

func (c *fakeCatalog) CohortMemberIDs(_ context.Context, cohortID int64) ([]int64, error) {
	return c.members[cohortID], nil
}

func (c *fakeCatalog) AddCohortMember(_ context.Context, cohortID, userID int64) error {
	for _, id := range c.members[cohortID] {
		if id == userID {
			return nil
		}
	}
	c.members[cohortID] = append(c.members[cohortID], userID)
	return nil
}

func (c *fakeCatalog) Duplicate(_ context.Context, sourceCourseID int64, name, shortName string, destCategoryID int64) (int64, error) {
	if c.failOn == sourceCourseID {
		c.failOn = 0
		return 0, fmt.Errorf("duplication backend unavailable")
	}
	c.duplicated++
	c.nextID++
	c.courses[c.nextID] = &course.Course{ID: c.nextID, CategoryID: destCategoryID, Name: name, ShortName: shortName}
	return c.nextID, nil
}

func (c *fakeCatalog) AttachCohortSync(_ context.Context, courseID, cohortID int64) error {
	c.attachments = append(c.attachments, attachCall{courseID, cohortID})
	return nil
}

func (c *fakeCatalog) SyncCohort(_ context.Context, cohortID int64) error {
	c.synced = append(c.synced, cohortID)
	return nil
}

func ledgerKey(directionID, sourceCourseID int64) string {
	return fmt.Sprintf("%d:%d", directionID, sourceCourseID)
}

func (c *fakeCatalog) Record(_ context.Context, cp *course.Copy) error {
	c.ledger[ledgerKey(cp.DirectionID, cp.SourceCourseID)] = cp
	return nil
}

func (c *fakeCatalog) Find(_ context.Context, directionID, sourceCourseID int64) (*course.Copy, error) {
	cp, ok := c.ledger[ledgerKey(directionID, sourceCourseID)]
	if !ok {
		return nil, idb.ErrCopyNotRecorded
	}
	return cp, nil
}

// --- task queue -----------------------------------------------------------

type fakeQueue struct {
	enqueued []*task.Provisioning
}

func (q *fakeQueue) Enqueue(_ context.Context, t *task.Provisioning) error {
	t.Status = task.StatusQueued
	t.EnqueuedAt = time.Now()
	q.enqueued = append(q.enqueued, t)
	return nil
}

func (q *fakeQueue) Claim(_ context.Context) (*task.Provisioning, error) {
	return nil, idb.ErrNoTask
}

func (q *fakeQueue) MarkDone(_ context.Context, _ string) error { return nil }

func (q *fakeQueue) MarkFailed(_ context.Context, _ string, _ error) (bool, error) {
	return false, nil
}

// --- notification repository ----------------------------------------------

type fakeNotifRepo struct {
	records []*notification.Record
}

func recKey(kind notification.EntityKind, entityID int64, t notification.Type) string {
	return fmt.Sprintf("%s:%d:%s", kind, entityID, t)
}

func (r *fakeNotifRepo) Exists(_ context.Context, kind notification.EntityKind, entityID int64, t notification.Type) (bool, error) {
	for _, rec := range r.records {
		if recKey(rec.EntityKind, rec.EntityID, rec.Type) == recKey(kind, entityID, t) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotifRepo) Create(_ context.Context, rec *notification.Record) error {
	exists, _ := r.Exists(context.Background(), rec.EntityKind, rec.EntityID, rec.Type)
	if exists {
		return idb.ErrDuplicateRecord
	}
	r.records = append(r.records, rec)
	return nil
}

// --- exam repository ------------------------------------------------------

type fakeExamRepo struct {
	exams   map[int64]*exam.Exam
	results map[int64]*exam.Result
	nextID  int64
}

func newFakeExamRepo() *fakeExamRepo {
	return &fakeExamRepo{exams: make(map[int64]*exam.Exam), results: make(map[int64]*exam.Result)}
}

func (r *fakeExamRepo) Create(_ context.Context, e *exam.Exam) error {
	r.nextID++
	e.ID = r.nextID
	r.exams[e.ID] = e
	return nil
}

func (r *fakeExamRepo) GetByID(_ context.Context, id int64) (*exam.Exam, error) {
	e, ok := r.exams[id]
	if !ok {
		return nil, idb.ErrExamNotFound
	}
	return e, nil
}

func (r *fakeExamRepo) ListAll(_ context.Context) ([]*exam.Exam, error) {
	out := make([]*exam.Exam, 0, len(r.exams))
	for id := int64(1); id <= r.nextID; id++ {
		if e, ok := r.exams[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExamRepo) CreateResult(_ context.Context, res *exam.Result) error {
	r.nextID++
	res.ID = r.nextID
	r.results[res.ID] = res
	return nil
}

func (r *fakeExamRepo) ListUnsentResults(_ context.Context) ([]*exam.Result, error) {
	out := make([]*exam.Result, 0)
	for id := int64(1); id <= r.nextID; id++ {
		if res, ok := r.results[id]; ok && !res.WebhookSent {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeExamRepo) MarkResultSent(_ context.Context, resultID int64, sentAt time.Time) error {
	res, ok := r.results[resultID]
	if !ok {
		return idb.ErrResultNotFound
	}
	res.WebhookSent = true
	res.SentAt = sql.NullTime{Time: sentAt, Valid: true}
	return nil
}

// --- channels -------------------------------------------------------------

type sentEmail struct {
	to, subject, body string
}

type fakeEmailSender struct {
	sent []sentEmail
	fail bool
}

func (s *fakeEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	if s.fail {
		return fmt.Errorf("smtp relay refused connection")
	}
	s.sent = append(s.sent, sentEmail{to, subject, body})
	return nil
}

type sentSMS struct {
	phone, text string
}

type fakeSMSSender struct {
	sent []sentSMS
}

func (s *fakeSMSSender) SendSMS(_ context.Context, phone, text string) (messaging.SMSResult, error) {
	s.sent = append(s.sent, sentSMS{phone, text})
	return messaging.SMSResult{Success: true, Response: `{"success":true}`}, nil
}

type fakeHistoryRepo struct {
	sms  []*messaging.SMSHistory
	mail []*messaging.MailHistory
}

func (r *fakeHistoryRepo) RecordSMS(_ context.Context, h *messaging.SMSHistory) error {
	r.sms = append(r.sms, h)
	return nil
}

func (r *fakeHistoryRepo) RecordMail(_ context.Context, h *messaging.MailHistory) error {
	r.mail = append(r.mail, h)
	return nil
}

// --- telegram -------------------------------------------------------------

type fakeTelegramClient struct {
	messages []string
}

func (c *fakeTelegramClient) SendMessage(_ int64, text string, _ *telebot.SendOptions) error {
	c.messages = append(c.messages, text)
	return nil
}

// --- webhook --------------------------------------------------------------

type fakePoster struct {
	posted   []webhook.ResultPayload
	failOnce bool
}

func (p *fakePoster) PostResult(_ context.Context, payload webhook.ResultPayload) error {
	if p.failOnce {
		p.failOnce = false
		return fmt.Errorf("webhook endpoint returned status 500")
	}
	p.posted = append(p.posted, payload)
	return nil
}
