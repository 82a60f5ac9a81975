package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DictatorXP/ExamWeb/internal/catalog"
	"github.com/DictatorXP/ExamWeb/internal/model"
	"github.com/DictatorXP/ExamWeb/internal/response"
	"github.com/DictatorXP/ExamWeb/internal/service"
	"github.com/DictatorXP/ExamWeb/internal/validator"
)

// StudentHandler handles the student-facing exam session endpoints.
type StudentHandler struct {
	sessions *service.Controller
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(sessions *service.Controller) *StudentHandler {
	return &StudentHandler{sessions: sessions}
}

// Register godoc
// POST /api/v1/students/register
// Registers a student and requests admin approval. An already approved
// student is told so immediately; everyone else waits for the decision.
func (h *StudentHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	outcome, err := h.sessions.Register(c.Request.Context(), model.StudentIdentity{
		StudentID: req.StudentID,
		Name:      req.Name,
		Surname:   req.Surname,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotifyFailed) {
			response.Fail(c, http.StatusBadGateway, response.ErrNotifyFailed)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if outcome == service.OutcomeApproved {
		response.Success(c, http.StatusOK, gin.H{"status": string(model.ApprovalApproved)})
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"status": string(model.ApprovalPending)})
}

// ApprovalStatus godoc
// GET /api/v1/students/:id/approval
// Polls the registration approval decision for a student.
func (h *StudentHandler) ApprovalStatus(c *gin.Context) {
	status, ok := h.sessions.ApprovalStatus(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": string(status)})
}

// RetakeStatus godoc
// GET /api/v1/students/:id/retake
// Polls the retake decision for a student with a completed attempt.
func (h *StudentHandler) RetakeStatus(c *gin.Context) {
	status, err := h.sessions.RetakeStatusOf(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": string(status)})
}

// GetExam godoc
// GET /api/v1/exam?student_id=...
// Serves the active exam to an approved student, or turns a repeat request
// into a retake request towards the admin channel. Without a student_id it
// is a plain read of the current exam definition.
func (h *StudentHandler) GetExam(c *gin.Context) {
	studentID := c.Query("student_id")
	if studentID == "" {
		exam := h.sessions.CurrentExam()
		if exam == nil {
			response.Fail(c, http.StatusNotFound, response.ErrNoExamActive)
			return
		}
		response.Success(c, http.StatusOK, gin.H{
			"exam": gin.H{"questions": exam.Questions},
		})
		return
	}

	access, err := h.sessions.RequestExam(c.Request.Context(), studentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotApproved):
			response.Fail(c, http.StatusForbidden, response.ErrNotApproved)
		case errors.Is(err, catalog.ErrNoExamActive):
			response.Fail(c, http.StatusNotFound, response.ErrNoExamActive)
		case errors.Is(err, service.ErrNotifyFailed):
			response.Fail(c, http.StatusBadGateway, response.ErrNotifyFailed)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	if access.State == service.AccessRetakeWait {
		response.Success(c, http.StatusAccepted, gin.H{"state": string(access.State)})
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"state": string(access.State),
		"exam":  gin.H{"questions": access.Exam.Questions},
	})
}

// Submit godoc
// POST /api/v1/exam/submit
// Grades a student's answers against the active exam and stores the result.
func (h *StudentHandler) Submit(c *gin.Context) {
	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.sessions.SubmitAnswers(c.Request.Context(), req.StudentID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotApproved):
			response.Fail(c, http.StatusForbidden, response.ErrNotApproved)
		case errors.Is(err, catalog.ErrNoExamActive):
			response.Fail(c, http.StatusNotFound, response.ErrNoExamActive)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// Result godoc
// GET /api/v1/students/:id/result
// Returns the stored score for a student's completed attempt.
func (h *StudentHandler) Result(c *gin.Context) {
	result, ok := h.sessions.Result(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}
