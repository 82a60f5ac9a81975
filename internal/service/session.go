// Package service contains the session controller: the only component
// allowed to mutate the approval, attempt and score registries. Every
// transition that pairs a precondition check with an outbound notification
// follows reserve-then-confirm — the state is tentatively committed under
// the per-student lock, the notification is sent outside it, and a failed
// send rolls the reservation back.
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/DictatorXP/ExamWeb/internal/catalog"
	"github.com/DictatorXP/ExamWeb/internal/guard"
	"github.com/DictatorXP/ExamWeb/internal/model"
	"github.com/DictatorXP/ExamWeb/internal/notify"
	"github.com/DictatorXP/ExamWeb/internal/registry"
)

// now is swappable in tests.
var now = time.Now

// Actor identifies the sender of a privileged command for guard checks.
type Actor struct {
	UserID int64
	ChatID int64
}

// RegistrationOutcome tells the caller where to route a registering student.
type RegistrationOutcome string

const (
	// OutcomePending means an approval request is on its way to the admin
	// channel (or already was); the student waits.
	OutcomePending RegistrationOutcome = "pending"
	// OutcomeApproved means the student is already approved and goes
	// straight to the exam.
	OutcomeApproved RegistrationOutcome = "approved"
)

// AccessState tells the caller what an approved student gets on exam request.
type AccessState string

const (
	// AccessExam means the current exam definition is served.
	AccessExam AccessState = "exam"
	// AccessRetakeWait means a retake decision is pending; the student
	// waits.
	AccessRetakeWait AccessState = "retake_wait"
)

// RetakeStatus is the poll result for a student's retake request.
type RetakeStatus string

const (
	RetakePending  RetakeStatus = "pending"
	RetakeApproved RetakeStatus = "approved"
	RetakeRejected RetakeStatus = "rejected"
)

// ExamAccess is the result of an approved student's exam request.
type ExamAccess struct {
	State AccessState
	Exam  *model.ExamDefinition
}

// Controller orchestrates the exam session state machine.
type Controller struct {
	approvals *registry.ApprovalRegistry
	attempts  *registry.AttemptRegistry
	catalog   *catalog.Catalog
	notifier  notify.Notifier
	guard     *guard.Guard
	locks     *keyedMutex
	log       zerolog.Logger
}

// NewController creates the session controller.
func NewController(
	approvals *registry.ApprovalRegistry,
	attempts *registry.AttemptRegistry,
	cat *catalog.Catalog,
	notifier notify.Notifier,
	g *guard.Guard,
	log zerolog.Logger,
) *Controller {
	return &Controller{
		approvals: approvals,
		attempts:  attempts,
		catalog:   cat,
		notifier:  notifier,
		guard:     g,
		locks:     newKeyedMutex(),
		log:       log.With().Str("component", "session_controller").Logger(),
	}
}

// Register handles a student's self-registration.
//
// An approved student short-circuits straight to exam access with no new
// notification. A student already pending stays pending — two registrations
// never produce two outbound approval requests. Otherwise (never registered,
// or previously rejected) a pending record is reserved and the approval
// request is sent; if the send fails the reservation is rolled back so no
// pending record exists without an attempted notification.
func (c *Controller) Register(ctx context.Context, student model.StudentIdentity) (RegistrationOutcome, error) {
	lock := c.locks.Lock(student.StudentID)

	prior, existed := c.approvals.Get(student.StudentID)
	if existed {
		switch prior.Status {
		case model.ApprovalApproved:
			lock.Unlock()
			return OutcomeApproved, nil
		case model.ApprovalPending:
			lock.Unlock()
			return OutcomePending, nil
		}
	}

	c.approvals.Put(model.ApprovalRecord{Student: student, Status: model.ApprovalPending})
	lock.Unlock()

	text := fmt.Sprintf(
		"New Student Login Request:\nName: %s\nSurname: %s\nStudent ID: %s",
		student.Name, student.Surname, student.StudentID,
	)
	actions := []notify.Action{
		{Label: "Accept ✅", Token: notify.Token(notify.ActionApprove, student.StudentID)},
		{Label: "Reject ❌", Token: notify.Token(notify.ActionReject, student.StudentID)},
	}

	if err := c.notifier.SendWithActions(ctx, text, actions); err != nil {
		lock = c.locks.Lock(student.StudentID)
		if existed {
			c.approvals.Put(prior)
		} else {
			c.approvals.Delete(student.StudentID)
		}
		lock.Unlock()

		c.log.Error().Err(err).Str("student_id", student.StudentID).
			Msg("Approval request could not be delivered; registration rolled back")
		return "", fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	c.log.Info().Str("student_id", student.StudentID).Msg("Approval request sent to admin channel")
	return OutcomePending, nil
}

// Approve marks a pending registration approved. Admin only.
func (c *Controller) Approve(actor Actor, studentID string) error {
	return c.decideRegistration(actor, studentID, model.ApprovalApproved)
}

// Reject marks a pending registration rejected. Admin only.
func (c *Controller) Reject(actor Actor, studentID string) error {
	return c.decideRegistration(actor, studentID, model.ApprovalRejected)
}

func (c *Controller) decideRegistration(actor Actor, studentID string, status model.ApprovalStatus) error {
	if !c.guard.IsAuthorized(actor.UserID, actor.ChatID) {
		return ErrAdminRequired
	}

	lock := c.locks.Lock(studentID)
	defer lock.Unlock()

	rec, ok := c.approvals.Get(studentID)
	if !ok || rec.Status != model.ApprovalPending {
		return ErrNotFound
	}
	rec.Status = status
	c.approvals.Put(rec)

	c.log.Info().Str("student_id", studentID).Str("status", string(status)).
		Msg("Registration decided")
	return nil
}

// RequestExam handles an approved student asking for the exam.
//
// A student who has not completed the exam is served the current definition.
// A completed student with a pending retake request is routed to the wait
// view. A completed student without one gets a retake request reserved and
// sent to the admin channel; a failed send rolls the reservation back.
func (c *Controller) RequestExam(ctx context.Context, studentID string) (ExamAccess, error) {
	rec, ok := c.approvals.Get(studentID)
	if !ok || rec.Status != model.ApprovalApproved {
		return ExamAccess{}, ErrNotApproved
	}

	exam := c.catalog.Exam()
	if exam == nil {
		return ExamAccess{}, catalog.ErrNoExamActive
	}

	lock := c.locks.Lock(studentID)

	att, hasAttempt := c.attempts.Attempt(studentID)
	if !hasAttempt || !att.Completed {
		lock.Unlock()
		return ExamAccess{State: AccessExam, Exam: exam}, nil
	}
	if att.RetakePending {
		lock.Unlock()
		return ExamAccess{State: AccessRetakeWait}, nil
	}

	att.RetakePending = true
	c.attempts.SetAttempt(studentID, att)
	lock.Unlock()

	prevScore := 0
	if res, ok := c.attempts.Result(studentID); ok {
		prevScore = res.Correct
	}
	text := fmt.Sprintf(
		"🔄 <b>Exam Retake Request</b>\n\nStudent is attempting to retake the exam:\nName: %s\nSurname: %s\nStudent ID: %s\n\nPrevious attempt score: %d/%d",
		rec.Student.Name, rec.Student.Surname, studentID, prevScore, len(exam.Questions),
	)
	actions := []notify.Action{
		{Label: "Allow Retake ✅", Token: notify.Token(notify.ActionRetakeApprove, studentID)},
		{Label: "Reject Retake ❌", Token: notify.Token(notify.ActionRetakeReject, studentID)},
	}

	if err := c.notifier.SendWithActions(ctx, text, actions); err != nil {
		lock = c.locks.Lock(studentID)
		if cur, ok := c.attempts.Attempt(studentID); ok {
			cur.RetakePending = false
			c.attempts.SetAttempt(studentID, cur)
		}
		lock.Unlock()

		c.log.Error().Err(err).Str("student_id", studentID).
			Msg("Retake request could not be delivered; reservation rolled back")
		return ExamAccess{}, fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	c.log.Info().Str("student_id", studentID).Msg("Retake request sent to admin channel")
	return ExamAccess{State: AccessRetakeWait}, nil
}

// SubmitAnswers grades a submission and stores the result.
//
// Scoring compares, position by position over the exam's question list, the
// submitted answer for each question ID against the answer key at the same
// position. Local state commits before the admin breakdown is sent; a failed
// send is logged but never undoes the student-visible outcome.
func (c *Controller) SubmitAnswers(ctx context.Context, studentID string, answers map[string]string) (model.ScoreResult, error) {
	rec, ok := c.approvals.Get(studentID)
	if !ok || rec.Status != model.ApprovalApproved {
		return model.ScoreResult{}, ErrNotApproved
	}

	exam := c.catalog.Exam()
	if exam == nil {
		return model.ScoreResult{}, catalog.ErrNoExamActive
	}
	key := c.catalog.AnswerKey()

	lock := c.locks.Lock(studentID)

	c.attempts.SetAttempt(studentID, model.AttemptRecord{Completed: true, RetakePending: false})

	result := score(exam, key, answers)
	c.attempts.SetResult(studentID, result)

	lock.Unlock()

	if err := c.notifier.Send(ctx, formatSubmission(rec.Student, exam, key, answers, result)); err != nil {
		c.log.Warn().Err(err).Str("student_id", studentID).
			Msg("Submission breakdown not delivered; result stored regardless")
	}

	c.log.Info().Str("student_id", studentID).
		Int("correct", result.Correct).Int("total", result.Total).
		Msg("Submission graded")
	return result, nil
}

// ApproveRetake resets the student's attempt and discards the stored score.
// Admin only.
func (c *Controller) ApproveRetake(actor Actor, studentID string) error {
	if !c.guard.IsAuthorized(actor.UserID, actor.ChatID) {
		return ErrAdminRequired
	}

	lock := c.locks.Lock(studentID)
	defer lock.Unlock()

	att, ok := c.attempts.Attempt(studentID)
	if !ok || !att.RetakePending {
		return ErrNotFound
	}
	c.attempts.SetAttempt(studentID, model.AttemptRecord{Completed: false, RetakePending: false})
	c.attempts.DeleteResult(studentID)

	c.log.Info().Str("student_id", studentID).Msg("Retake approved")
	return nil
}

// RejectRetake closes the retake request, leaving the student locked out
// until a future request is approved. Admin only.
func (c *Controller) RejectRetake(actor Actor, studentID string) error {
	if !c.guard.IsAuthorized(actor.UserID, actor.ChatID) {
		return ErrAdminRequired
	}

	lock := c.locks.Lock(studentID)
	defer lock.Unlock()

	att, ok := c.attempts.Attempt(studentID)
	if !ok || !att.RetakePending {
		return ErrNotFound
	}
	att.RetakePending = false
	c.attempts.SetAttempt(studentID, att)

	c.log.Info().Str("student_id", studentID).Msg("Retake rejected")
	return nil
}

// ApprovalStatus is a pure read of the student's registration state.
func (c *Controller) ApprovalStatus(studentID string) (model.ApprovalStatus, bool) {
	rec, ok := c.approvals.Get(studentID)
	if !ok {
		return "", false
	}
	return rec.Status, true
}

// RetakeStatusOf is a pure read of the student's retake request state.
func (c *Controller) RetakeStatusOf(studentID string) (RetakeStatus, error) {
	att, ok := c.attempts.Attempt(studentID)
	if !ok {
		return "", ErrNotFound
	}
	switch {
	case att.RetakePending:
		return RetakePending, nil
	case att.Completed:
		return RetakeRejected, nil
	default:
		return RetakeApproved, nil
	}
}

// CurrentExam is a pure read of the active exam definition, nil when no
// exam is loaded.
func (c *Controller) CurrentExam() *model.ExamDefinition {
	return c.catalog.Exam()
}

// Result is a pure read of the student's stored score result.
func (c *Controller) Result(studentID string) (model.ScoreResult, bool) {
	return c.attempts.Result(studentID)
}

// score grades answers positionally against the key. Positions beyond the
// key's length are recorded but not counted either way.
func score(exam *model.ExamDefinition, key []string, answers map[string]string) model.ScoreResult {
	result := model.ScoreResult{
		Total:       len(exam.Questions),
		Answers:     make([]string, 0, len(exam.Questions)),
		SubmittedAt: now(),
	}
	for i, q := range exam.Questions {
		answer := answers[strconv.Itoa(q.ID)]
		result.Answers = append(result.Answers, answer)
		if i >= len(key) {
			continue
		}
		if answer == key[i] {
			result.Correct++
		} else {
			result.Incorrect++
		}
	}
	return result
}

// formatSubmission builds the per-question breakdown sent to the admin
// channel after grading.
func formatSubmission(student model.StudentIdentity, exam *model.ExamDefinition, key []string, answers map[string]string, result model.ScoreResult) string {
	var b strings.Builder
	b.WriteString("📝 <b>Exam Submission Received</b>\n\n")
	b.WriteString("👤 <b>Student Information:</b>\n")
	fmt.Fprintf(&b, "Name: %s\nSurname: %s\nStudent ID: %s\n\n", student.Name, student.Surname, student.StudentID)

	if len(key) > 0 && result.Total > 0 {
		pct := float64(result.Correct) / float64(result.Total) * 100
		fmt.Fprintf(&b, "📊 <b>Score:</b> %d/%d (%.1f%%)\n\n", result.Correct, result.Total, pct)
	}

	b.WriteString("📋 <b>Answers:</b>\n")
	for i, q := range exam.Questions {
		answer := answers[strconv.Itoa(q.ID)]

		answerText := "Not answered"
		for _, opt := range q.Options {
			if opt.ID == answer {
				answerText = fmt.Sprintf("%s. %s", strings.ToUpper(opt.ID), opt.Text)
				break
			}
		}

		mark := "❌"
		if i < len(key) && answer == key[i] {
			mark = "✅"
		}

		fmt.Fprintf(&b, "\n<b>Q%d:</b> %s\n<b>A:</b> %s %s\n", q.ID, q.Text, answerText, mark)
	}
	return b.String()
}
