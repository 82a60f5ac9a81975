package model

import "time"

// StudentIdentity is the self-asserted identity a student registers with.
// The student ID is treated as the primary key and is not verified against
// any external registry.
type StudentIdentity struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
}

// ApprovalStatus enumerates the registration approval states.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ApprovalRecord is the per-student registration approval state.
// Absence of a record means the student never registered.
type ApprovalRecord struct {
	Student StudentIdentity `json:"student"`
	Status  ApprovalStatus  `json:"status"`
}

// AttemptRecord tracks exam-taking progress for a student who has been
// approved at least once.
type AttemptRecord struct {
	Completed     bool `json:"completed"`
	RetakePending bool `json:"retake_pending"`
}

// ScoreResult is the computed outcome of a graded submission.
// Answers is aligned with ExamDefinition.Questions by list position,
// not by question ID.
type ScoreResult struct {
	Correct     int       `json:"correct"`
	Incorrect   int       `json:"incorrect"`
	Total       int       `json:"total"`
	Answers     []string  `json:"answers"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// RegisterRequest is the payload for student self-registration.
type RegisterRequest struct {
	StudentID string `json:"student_id" binding:"required,min=1,max=64"`
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Surname   string `json:"surname" binding:"required,min=1,max=100"`
}

// SubmitRequest is the payload for submitting exam answers.
// Answers maps question ID (decimal string) to the chosen option letter.
type SubmitRequest struct {
	StudentID string            `json:"student_id" binding:"required,min=1,max=64"`
	Answers   map[string]string `json:"answers" binding:"required"`
}
