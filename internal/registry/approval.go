// Package registry provides the in-memory per-student state stores. All
// mutation goes through the session controller; the registries themselves
// only guarantee that individual operations are atomic and that reads
// return copies.
package registry

import (
	"sync"

	"github.com/DictatorXP/ExamWeb/internal/model"
)

// ApprovalRegistry stores per-student registration approval records.
type ApprovalRegistry struct {
	mu      sync.RWMutex
	records map[string]model.ApprovalRecord
}

// NewApprovalRegistry creates an empty ApprovalRegistry.
func NewApprovalRegistry() *ApprovalRegistry {
	return &ApprovalRegistry{records: make(map[string]model.ApprovalRecord)}
}

// Get returns the approval record for a student ID.
func (r *ApprovalRegistry) Get(studentID string) (model.ApprovalRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[studentID]
	return rec, ok
}

// Put stores or overwrites the record for its student ID.
func (r *ApprovalRegistry) Put(rec model.ApprovalRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.Student.StudentID] = rec
}

// Delete removes the record for a student ID, if any.
func (r *ApprovalRegistry) Delete(studentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, studentID)
}

// SetStatus updates the status of an existing record. Returns false when no
// record exists.
func (r *ApprovalRegistry) SetStatus(studentID string, status model.ApprovalStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[studentID]
	if !ok {
		return false
	}
	rec.Status = status
	r.records[studentID] = rec
	return true
}

// Snapshot returns a copy of every record, keyed by student ID.
func (r *ApprovalRegistry) Snapshot() map[string]model.ApprovalRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]model.ApprovalRecord, len(r.records))
	for id, rec := range r.records {
		out[id] = rec
	}
	return out
}
