package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Exam flow ─────────────────────────────────────────────────────
	ErrNoExamActive ErrCode = "NO_EXAM_ACTIVE"
	ErrNotApproved  ErrCode = "STUDENT_NOT_APPROVED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_REQUIRED"

	// ─── Transport ─────────────────────────────────────────────────────
	ErrNotifyFailed ErrCode = "NOTIFY_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrNotFound:
		return "Student not found. Please submit the form again."
	case ErrNoExamActive:
		return "No exam is currently available. Please check back later."
	case ErrNotApproved:
		return "Your Student ID is not approved for this exam. Please contact your administrator."
	case ErrAdminAccessOnly:
		return "You need admin access to perform this action."
	case ErrNotifyFailed:
		return "The approval request could not be delivered. Please try again later."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
