// Package catalog owns the single active ExamDefinition and its positional
// answer key. All replacement is build-then-swap under one lock; readers get
// copies and can never observe a partially updated exam.
package catalog

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/DictatorXP/ExamWeb/internal/extract"
	"github.com/DictatorXP/ExamWeb/internal/model"
)

var (
	// ErrNoExamActive is returned when an operation needs an active exam
	// and none is loaded.
	ErrNoExamActive = errors.New("no exam is currently active")

	// ErrKeyLengthMismatch is returned when the supplied answer key does
	// not have exactly one letter per question.
	ErrKeyLengthMismatch = errors.New("answer count does not match question count")

	// ErrKeyInvalidSymbol is returned when the answer key contains a
	// character outside {a,b,c,d}.
	ErrKeyInvalidSymbol = errors.New("answers must only contain a, b, c or d")
)

// Catalog holds the active exam definition and answer key.
type Catalog struct {
	mu        sync.RWMutex
	exam      *model.ExamDefinition
	answerKey []string

	store *ArtifactStore
	log   zerolog.Logger
}

// New creates a Catalog backed by the given artifact store.
func New(store *ArtifactStore, log zerolog.Logger) *Catalog {
	return &Catalog{
		store: store,
		log:   log.With().Str("component", "catalog").Logger(),
	}
}

// LoadArtifacts repopulates the catalog from persisted artifacts at process
// start. Absent artifacts are not an error: the catalog simply starts empty.
func (c *Catalog) LoadArtifacts() error {
	questions, err := c.store.LoadQuestions()
	if err != nil {
		return err
	}
	key, err := c.store.LoadAnswerKey()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(questions) > 0 {
		c.exam = &model.ExamDefinition{Questions: questions}
		c.log.Info().Int("questions", len(questions)).Msg("Loaded exam definition from artifact")
	}
	if len(key) > 0 {
		c.answerKey = key
		c.log.Info().Int("answers", len(key)).Msg("Loaded answer key from artifact")
	}
	if c.exam != nil && len(c.answerKey) > 0 && len(c.answerKey) != len(c.exam.Questions) {
		c.log.Warn().
			Int("answers", len(c.answerKey)).
			Int("questions", len(c.exam.Questions)).
			Msg("Answer key length does not match question count; scoring will be misaligned")
	}
	return nil
}

// ReplaceFromText extracts questions from raw page text, builds a fresh
// ExamDefinition and swaps it in atomically, then persists the questions
// artifact. A previously set answer key is kept as-is; a resulting length
// mismatch is logged, not repaired.
func (c *Catalog) ReplaceFromText(raw string) (*model.ExamDefinition, error) {
	questions := extract.Questions(raw)
	exam := &model.ExamDefinition{RawText: raw, Questions: questions}

	c.mu.Lock()
	c.exam = exam
	keyLen := len(c.answerKey)
	c.mu.Unlock()

	if keyLen > 0 && keyLen != len(questions) {
		c.log.Warn().
			Int("answers", keyLen).
			Int("questions", len(questions)).
			Msg("Existing answer key no longer matches question count")
	}

	if err := c.store.SaveQuestions(questions); err != nil {
		return nil, err
	}

	c.log.Info().Int("questions", len(questions)).Msg("Exam definition replaced")
	return c.snapshot(), nil
}

// Exam returns a copy of the active exam definition, or nil when none is
// loaded. The copy is safe for callers to hold across further updates.
func (c *Catalog) Exam() *model.ExamDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyExamLocked()
}

// QuestionCount returns the number of questions in the active exam.
func (c *Catalog) QuestionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.exam.QuestionCount()
}

// AnswerKey returns a copy of the current positional answer key, which may
// be empty.
func (c *Catalog) AnswerKey() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := make([]string, len(c.answerKey))
	copy(key, c.answerKey)
	return key
}

// SetAnswerKey validates rawLetters against the active exam and replaces the
// answer key atomically, then persists the artifact. Validation failures
// leave the prior key untouched.
func (c *Catalog) SetAnswerKey(rawLetters string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exam == nil || len(c.exam.Questions) == 0 {
		return ErrNoExamActive
	}
	if len(rawLetters) != len(c.exam.Questions) {
		return ErrKeyLengthMismatch
	}
	key := make([]string, 0, len(rawLetters))
	for _, r := range rawLetters {
		if r < 'a' || r > 'd' {
			return ErrKeyInvalidSymbol
		}
		key = append(key, string(r))
	}

	c.answerKey = key
	if err := c.store.SaveAnswerKey(key); err != nil {
		// The in-memory key is already committed; persistence failure is
		// surfaced so the caller can warn the admin.
		return err
	}

	c.log.Info().Int("answers", len(key)).Msg("Answer key replaced")
	return nil
}

// Clear drops the active exam, the answer key and both artifacts.
func (c *Catalog) Clear() error {
	c.mu.Lock()
	c.exam = nil
	c.answerKey = nil
	c.mu.Unlock()

	c.log.Info().Msg("Exam definition and answer key cleared")
	return c.store.Remove()
}

func (c *Catalog) snapshot() *model.ExamDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyExamLocked()
}

func (c *Catalog) copyExamLocked() *model.ExamDefinition {
	if c.exam == nil {
		return nil
	}
	questions := make([]model.Question, len(c.exam.Questions))
	copy(questions, c.exam.Questions)
	return &model.ExamDefinition{RawText: c.exam.RawText, Questions: questions}
}
