package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/DictatorXP/ExamWeb/internal/catalog"
	"github.com/DictatorXP/ExamWeb/internal/guard"
	"github.com/DictatorXP/ExamWeb/internal/model"
	"github.com/DictatorXP/ExamWeb/internal/notify"
	"github.com/DictatorXP/ExamWeb/internal/registry"
)

// AdminService carries the privileged operations outside the per-student
// state machine: exam import, answer key updates, exam deletion, result
// listing and clearing. Every operation passes the verification guard.
type AdminService struct {
	catalog   *catalog.Catalog
	approvals *registry.ApprovalRegistry
	attempts  *registry.AttemptRegistry
	notifier  notify.Notifier
	guard     *guard.Guard
	uploadDir string
	log       zerolog.Logger
}

// NewAdminService creates the admin operations service.
func NewAdminService(
	cat *catalog.Catalog,
	approvals *registry.ApprovalRegistry,
	attempts *registry.AttemptRegistry,
	notifier notify.Notifier,
	g *guard.Guard,
	uploadDir string,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		catalog:   cat,
		approvals: approvals,
		attempts:  attempts,
		notifier:  notifier,
		guard:     g,
		uploadDir: uploadDir,
		log:       log.With().Str("component", "admin_service").Logger(),
	}
}

// StudentResult is a stored score joined with the student's identity for
// admin listings.
type StudentResult struct {
	Student model.StudentIdentity
	Result  model.ScoreResult
}

// ImportExamText replaces the active exam with questions extracted from
// raw page text. Returns the resulting question count.
func (s *AdminService) ImportExamText(actor Actor, raw string) (int, error) {
	if !s.guard.IsAuthorized(actor.UserID, actor.ChatID) {
		return 0, ErrAdminRequired
	}

	exam, err := s.catalog.ReplaceFromText(raw)
	if err != nil {
		return 0, err
	}
	return len(exam.Questions), nil
}

// SetAnswerKey validates and installs a new positional answer key, then
// notifies the admin channel. The key is committed before the notification,
// so a failed send is logged, not fatal.
func (s *AdminService) SetAnswerKey(ctx context.Context, actor Actor, rawLetters string) (int, error) {
	if !s.guard.IsAuthorized(actor.UserID, actor.ChatID) {
		return 0, ErrAdminRequired
	}

	letters := strings.ToLower(strings.TrimSpace(rawLetters))
	if err := s.catalog.SetAnswerKey(letters); err != nil {
		return 0, err
	}

	text := fmt.Sprintf("✅ Correct answers set successfully for %d questions.\nAnswers: %s", len(letters), letters)
	if err := s.notifier.Send(ctx, text); err != nil {
		s.log.Warn().Err(err).Msg("Answer key confirmation not delivered; key is already committed")
	}
	return len(letters), nil
}

// DeleteExam clears the active exam, the answer key, all stored results and
// any uploaded source documents.
func (s *AdminService) DeleteExam(actor Actor) error {
	if !s.guard.IsAuthorized(actor.UserID, actor.ChatID) {
		return ErrAdminRequired
	}

	if err := s.catalog.Clear(); err != nil {
		return err
	}
	s.attempts.ClearResults()
	s.removeUploads()

	s.log.Info().Msg("Exam, answer key and results deleted")
	return nil
}

// ListResults returns every stored score joined with student identity,
// ordered by student ID for stable output.
func (s *AdminService) ListResults(actor Actor) ([]StudentResult, error) {
	if !s.guard.IsAuthorized(actor.UserID, actor.ChatID) {
		return nil, ErrAdminRequired
	}

	results := s.attempts.Results()
	out := make([]StudentResult, 0, len(results))
	for id, res := range results {
		entry := StudentResult{Result: res}
		if rec, ok := s.approvals.Get(id); ok {
			entry.Student = rec.Student
		} else {
			entry.Student = model.StudentIdentity{StudentID: id}
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Student.StudentID < out[j].Student.StudentID
	})
	return out, nil
}

// ClearResults discards every stored score result.
func (s *AdminService) ClearResults(actor Actor) error {
	if !s.guard.IsAuthorized(actor.UserID, actor.ChatID) {
		return ErrAdminRequired
	}
	s.attempts.ClearResults()
	s.log.Info().Msg("All student results cleared")
	return nil
}

// removeUploads deletes PDF files left in the upload directory. Failures
// are logged only; the in-memory deletion already happened.
func (s *AdminService) removeUploads() {
	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Msg("Could not scan upload directory")
		}
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		path := filepath.Join(s.uploadDir, e.Name())
		if err := os.Remove(path); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("Could not remove uploaded document")
		}
	}
}
