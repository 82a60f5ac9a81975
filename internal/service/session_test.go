package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DictatorXP/ExamWeb/internal/catalog"
	"github.com/DictatorXP/ExamWeb/internal/guard"
	"github.com/DictatorXP/ExamWeb/internal/model"
	"github.com/DictatorXP/ExamWeb/internal/notify"
	"github.com/DictatorXP/ExamWeb/internal/registry"
)

const (
	adminChatID = int64(-100555)
	secret      = "test-secret"
)

var (
	adminActor    = Actor{UserID: 1, ChatID: adminChatID}
	strangerActor = Actor{UserID: 77, ChatID: 777}
)

// fakeNotifier records sends and can be told to fail.
type fakeNotifier struct {
	mu      sync.Mutex
	sends   []string
	fail    bool
	sendErr error
}

func (f *fakeNotifier) Send(_ context.Context, text string) error {
	return f.record(text)
}

func (f *fakeNotifier) SendWithActions(_ context.Context, text string, _ []notify.Action) error {
	return f.record(text)
}

func (f *fakeNotifier) record(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		if f.sendErr == nil {
			f.sendErr = errors.New("channel unavailable")
		}
		return f.sendErr
	}
	f.sends = append(f.sends, text)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

func (f *fakeNotifier) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

type fixture struct {
	controller *Controller
	admin      *AdminService
	approvals  *registry.ApprovalRegistry
	attempts   *registry.AttemptRegistry
	catalog    *catalog.Catalog
	notifier   *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := catalog.NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	cat := catalog.New(store, zerolog.Nop())
	approvals := registry.NewApprovalRegistry()
	attempts := registry.NewAttemptRegistry()
	notifier := &fakeNotifier{}
	g := guard.New(secret, adminChatID)

	return &fixture{
		controller: NewController(approvals, attempts, cat, notifier, g, zerolog.Nop()),
		admin:      NewAdminService(cat, approvals, attempts, notifier, g, t.TempDir(), zerolog.Nop()),
		approvals:  approvals,
		attempts:   attempts,
		catalog:    cat,
		notifier:   notifier,
	}
}

func (f *fixture) loadExam(t *testing.T) {
	t.Helper()
	_, err := f.catalog.ReplaceFromText("1. Q1\na. X\nb. Y\n2. Q2\na. Z\nb. W")
	require.NoError(t, err)
	require.NoError(t, f.catalog.SetAnswerKey("ab"))
}

func student(id string) model.StudentIdentity {
	return model.StudentIdentity{StudentID: id, Name: "Ada", Surname: "Lovelace"}
}

func TestRegisterCreatesPendingAndNotifies(t *testing.T) {
	f := newFixture(t)

	outcome, err := f.controller.Register(context.Background(), student("s1"))
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, outcome)
	assert.Equal(t, 1, f.notifier.count())

	status, ok := f.controller.ApprovalStatus("s1")
	require.True(t, ok)
	assert.Equal(t, model.ApprovalPending, status)
}

func TestRegisterWhilePendingSendsNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.controller.Register(context.Background(), student("s1"))
	require.NoError(t, err)

	outcome, err := f.controller.Register(context.Background(), student("s1"))
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, outcome)
	assert.Equal(t, 1, f.notifier.count())
}

func TestRegisterRollsBackOnNotifyFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.setFail(true)

	_, err := f.controller.Register(context.Background(), student("s1"))
	assert.ErrorIs(t, err, ErrNotifyFailed)

	// No pending record may exist without an attempted notification.
	_, ok := f.controller.ApprovalStatus("s1")
	assert.False(t, ok)
}

func TestRegisterRollbackRestoresRejectedRecord(t *testing.T) {
	f := newFixture(t)

	_, err := f.controller.Register(context.Background(), student("s1"))
	require.NoError(t, err)
	require.NoError(t, f.controller.Reject(adminActor, "s1"))

	f.notifier.setFail(true)
	_, err = f.controller.Register(context.Background(), student("s1"))
	assert.ErrorIs(t, err, ErrNotifyFailed)

	status, ok := f.controller.ApprovalStatus("s1")
	require.True(t, ok)
	assert.Equal(t, model.ApprovalRejected, status)
}

func TestConcurrentRegistrationSendsOneNotification(t *testing.T) {
	f := newFixture(t)

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _ = f.controller.Register(context.Background(), student("s1"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.notifier.count())
}

func TestRegisterAfterApprovalShortCircuits(t *testing.T) {
	f := newFixture(t)

	_, err := f.controller.Register(context.Background(), student("s1"))
	require.NoError(t, err)
	require.NoError(t, f.controller.Approve(adminActor, "s1"))

	outcome, err := f.controller.Register(context.Background(), student("s1"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApproved, outcome)
	assert.Equal(t, 1, f.notifier.count())
}

func TestApproveNonPendingReportsNotFound(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.controller.Approve(adminActor, "ghost"), ErrNotFound)

	_, err := f.controller.Register(context.Background(), student("s1"))
	require.NoError(t, err)
	require.NoError(t, f.controller.Approve(adminActor, "s1"))

	// Already approved: a second decision has nothing pending to act on.
	assert.ErrorIs(t, f.controller.Approve(adminActor, "s1"), ErrNotFound)
	assert.ErrorIs(t, f.controller.Reject(adminActor, "s1"), ErrNotFound)
}

func TestRejectedStudentMayRegisterAgain(t *testing.T) {
	f := newFixture(t)

	_, err := f.controller.Register(context.Background(), student("s1"))
	require.NoError(t, err)
	require.NoError(t, f.controller.Reject(adminActor, "s1"))

	outcome, err := f.controller.Register(context.Background(), student("s1"))
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, outcome)
	assert.Equal(t, 2, f.notifier.count())
}

func TestRequestExamRequiresApproval(t *testing.T) {
	f := newFixture(t)
	f.loadExam(t)

	_, err := f.controller.RequestExam(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotApproved)
}

func TestRequestExamWithoutExam(t *testing.T) {
	f := newFixture(t)
	approve(t, f, "s1")

	_, err := f.controller.RequestExam(context.Background(), "s1")
	assert.ErrorIs(t, err, catalog.ErrNoExamActive)
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	f.loadExam(t)

	// Register → pending, one notification.
	outcome, err := f.controller.Register(context.Background(), student("s1"))
	require.NoError(t, err)
	require.Equal(t, OutcomePending, outcome)
	require.Equal(t, 1, f.notifier.count())

	// Admin approves → approved.
	require.NoError(t, f.controller.Approve(adminActor, "s1"))

	// Request exam → served questions.
	access, err := f.controller.RequestExam(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, AccessExam, access.State)
	require.Len(t, access.Exam.Questions, 2)

	// Submit answers matching the key at every position → full score.
	result, err := f.controller.SubmitAnswers(context.Background(), "s1", map[string]string{"1": "a", "2": "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Correct)
	assert.Equal(t, 0, result.Incorrect)
	assert.Equal(t, result.Total, result.Correct)
	assert.Equal(t, []string{"a", "b"}, result.Answers)

	// Request exam again → retake request created (another notification).
	sendsBefore := f.notifier.count()
	access, err = f.controller.RequestExam(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, AccessRetakeWait, access.State)
	assert.Equal(t, sendsBefore+1, f.notifier.count())

	st, err := f.controller.RetakeStatusOf("s1")
	require.NoError(t, err)
	assert.Equal(t, RetakePending, st)

	// Admin approves the retake → attempt reset, result cleared.
	require.NoError(t, f.controller.ApproveRetake(adminActor, "s1"))
	_, hasResult := f.controller.Result("s1")
	assert.False(t, hasResult)

	st, err = f.controller.RetakeStatusOf("s1")
	require.NoError(t, err)
	assert.Equal(t, RetakeApproved, st)

	// The exam is served again and resubmission produces a fresh result.
	access, err = f.controller.RequestExam(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, AccessExam, access.State)

	result, err = f.controller.SubmitAnswers(context.Background(), "s1", map[string]string{"1": "a", "2": "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Correct)
	assert.Equal(t, 1, result.Incorrect)
}

func TestRetakeRejectedAllowsFreshRequest(t *testing.T) {
	f := newFixture(t)
	f.loadExam(t)
	approve(t, f, "s1")

	_, err := f.controller.SubmitAnswers(context.Background(), "s1", map[string]string{"1": "a", "2": "b"})
	require.NoError(t, err)

	// First retake request.
	access, err := f.controller.RequestExam(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, AccessRetakeWait, access.State)

	require.NoError(t, f.controller.RejectRetake(adminActor, "s1"))

	st, err := f.controller.RetakeStatusOf("s1")
	require.NoError(t, err)
	assert.Equal(t, RetakeRejected, st)

	// Not blocked forever: a later exam request opens a fresh retake
	// request instead of silently dead-ending.
	sendsBefore := f.notifier.count()
	access, err = f.controller.RequestExam(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, AccessRetakeWait, access.State)
	assert.Equal(t, sendsBefore+1, f.notifier.count())
}

func TestRetakeRequestRollsBackOnNotifyFailure(t *testing.T) {
	f := newFixture(t)
	f.loadExam(t)
	approve(t, f, "s1")

	_, err := f.controller.SubmitAnswers(context.Background(), "s1", map[string]string{"1": "a", "2": "b"})
	require.NoError(t, err)

	f.notifier.setFail(true)
	_, err = f.controller.RequestExam(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrNotifyFailed)

	att, ok := f.attempts.Attempt("s1")
	require.True(t, ok)
	assert.False(t, att.RetakePending)
	assert.True(t, att.Completed)
}

func TestSubmitSurvivesNotifyFailure(t *testing.T) {
	f := newFixture(t)
	f.loadExam(t)
	approve(t, f, "s1")

	f.notifier.setFail(true)
	result, err := f.controller.SubmitAnswers(context.Background(), "s1", map[string]string{"1": "a", "2": "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Correct)

	stored, ok := f.controller.Result("s1")
	require.True(t, ok)
	assert.Equal(t, result.Correct, stored.Correct)
}

func TestSubmitWithoutKeyScoresNothing(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.ReplaceFromText("1. Q1\na. X\nb. Y")
	require.NoError(t, err)
	approve(t, f, "s1")

	result, err := f.controller.SubmitAnswers(context.Background(), "s1", map[string]string{"1": "a"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Correct)
	assert.Equal(t, 0, result.Incorrect)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, []string{"a"}, result.Answers)
}

func TestUnauthorizedAdminTransitionsAreNoOps(t *testing.T) {
	f := newFixture(t)
	f.loadExam(t)
	approve(t, f, "s1")

	_, err := f.controller.SubmitAnswers(context.Background(), "s1", map[string]string{"1": "a", "2": "b"})
	require.NoError(t, err)
	_, err = f.controller.RequestExam(context.Background(), "s1") // opens retake request
	require.NoError(t, err)

	approvalsBefore := f.approvals.Snapshot()
	attemptsBefore := f.attempts.Snapshot()
	resultsBefore := f.attempts.Results()

	assert.ErrorIs(t, f.controller.Approve(strangerActor, "s1"), ErrAdminRequired)
	assert.ErrorIs(t, f.controller.Reject(strangerActor, "s1"), ErrAdminRequired)
	assert.ErrorIs(t, f.controller.ApproveRetake(strangerActor, "s1"), ErrAdminRequired)
	assert.ErrorIs(t, f.controller.RejectRetake(strangerActor, "s1"), ErrAdminRequired)

	_, err = f.admin.SetAnswerKey(context.Background(), strangerActor, "ab")
	assert.ErrorIs(t, err, ErrAdminRequired)
	assert.ErrorIs(t, f.admin.DeleteExam(strangerActor), ErrAdminRequired)
	_, err = f.admin.ListResults(strangerActor)
	assert.ErrorIs(t, err, ErrAdminRequired)
	assert.ErrorIs(t, f.admin.ClearResults(strangerActor), ErrAdminRequired)

	assert.Equal(t, approvalsBefore, f.approvals.Snapshot())
	assert.Equal(t, attemptsBefore, f.attempts.Snapshot())
	assert.Equal(t, resultsBefore, f.attempts.Results())
}

// approve registers and approves a student through the normal path.
func approve(t *testing.T, f *fixture, id string) {
	t.Helper()
	_, err := f.controller.Register(context.Background(), student(id))
	require.NoError(t, err)
	require.NoError(t, f.controller.Approve(adminActor, id))
}
