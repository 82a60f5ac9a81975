package registry

import (
	"sync"

	"github.com/DictatorXP/ExamWeb/internal/model"
)

// AttemptRegistry stores per-student attempt progress and stored score
// results. Records exist only for students who were approved at least once.
type AttemptRegistry struct {
	mu       sync.RWMutex
	attempts map[string]model.AttemptRecord
	results  map[string]model.ScoreResult
}

// NewAttemptRegistry creates an empty AttemptRegistry.
func NewAttemptRegistry() *AttemptRegistry {
	return &AttemptRegistry{
		attempts: make(map[string]model.AttemptRecord),
		results:  make(map[string]model.ScoreResult),
	}
}

// Attempt returns the attempt record for a student ID.
func (r *AttemptRegistry) Attempt(studentID string) (model.AttemptRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.attempts[studentID]
	return rec, ok
}

// SetAttempt stores or overwrites the attempt record for a student ID.
func (r *AttemptRegistry) SetAttempt(studentID string, rec model.AttemptRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[studentID] = rec
}

// Result returns the stored score result for a student ID.
func (r *AttemptRegistry) Result(studentID string) (model.ScoreResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.results[studentID]
	return res, ok
}

// SetResult stores the score result for a student ID.
func (r *AttemptRegistry) SetResult(studentID string, res model.ScoreResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[studentID] = res
}

// DeleteResult discards the stored score result for a student ID.
func (r *AttemptRegistry) DeleteResult(studentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.results, studentID)
}

// Results returns a copy of all stored results, keyed by student ID.
func (r *AttemptRegistry) Results() map[string]model.ScoreResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]model.ScoreResult, len(r.results))
	for id, res := range r.results {
		out[id] = res
	}
	return out
}

// ClearResults discards every stored score result, keeping attempt records.
func (r *AttemptRegistry) ClearResults() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = make(map[string]model.ScoreResult)
}

// Snapshot returns a copy of every attempt record.
func (r *AttemptRegistry) Snapshot() map[string]model.AttemptRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]model.AttemptRecord, len(r.attempts))
	for id, rec := range r.attempts {
		out[id] = rec
	}
	return out
}
