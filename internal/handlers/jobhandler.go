package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/temu/internal/auth"
	"github.com/justsurfingit/temu/internal/dtos"
	"github.com/justsurfingit/temu/internal/flows"
	"github.com/justsurfingit/temu/internal/models"
	"github.com/justsurfingit/temu/internal/services"
)

type JobHandler struct {
	LLMService *services.LLMService
	JobService *services.JobService
	Onboarding *services.OnboardingService
	Matcher    *services.MatcherService
}

// NewJobHandler creates the handler with dependencies. llm may be nil when no
// model is configured.
func NewJobHandler(llm *services.LLMService, j *services.JobService, o *services.OnboardingService, m *services.MatcherService) *JobHandler {
	return &JobHandler{
		LLMService: llm,
		JobService: j,
		Onboarding: o,
		Matcher:    m,
	}
}

// ParseJob is the POST /jobs/extract endpoint. The extracted fields are merged
// into the employer's job posting draft.
func (h *JobHandler) ParseJob(c *gin.Context) {
	if h.LLMService == nil {
		respondError(c, services.ErrUnavailable)
		return
	}
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON format", err)
		return
	}
	id, _ := auth.FromContext(c)

	extracted, err := h.LLMService.ExtractJobPosting(c.Request.Context(), req.RawAd)
	if err != nil {
		abort(c, http.StatusBadGateway, dtos.ErrorResponse{Error: "AI extraction failed: " + err.Error()})
		return
	}
	snap, err := h.Onboarding.Prefill(c.Request.Context(), id.UserID, flows.JobPosting, extracted)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"extracted": extracted,
		"draft":     snap,
	})
}

// GET /jobs
func (h *JobHandler) List(c *gin.Context) {
	var f dtos.JobFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, "Invalid query", err)
		return
	}
	if f.Mine {
		id, _ := auth.FromContext(c)
		if id.Role != models.RoleEmployer {
			abort(c, http.StatusForbidden, dtos.ErrorResponse{Error: "only employers have postings", Code: CodeForbidden})
			return
		}
		f.EmployerID = id.UserID
	}
	jobs, err := h.JobService.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// GET /jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	jobID, ok := idParam(c, "id")
	if !ok {
		return
	}
	job, err := h.JobService.Get(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// GET /jobs/recommended
func (h *JobHandler) Recommended(c *gin.Context) {
	id, _ := auth.FromContext(c)
	profile, err := h.Onboarding.RequireCompleted(c.Request.Context(), id.UserID, flows.JobSeeker)
	if err != nil {
		respondError(c, err)
		return
	}
	matches, err := h.Matcher.Recommend(c.Request.Context(), profile, 20)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

// PATCH /jobs/:id/status
func (h *JobHandler) SetStatus(c *gin.Context) {
	jobID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dtos.JobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON format", err)
		return
	}
	id, _ := auth.FromContext(c)
	job, err := h.JobService.SetStatus(c.Request.Context(), id.UserID, jobID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// DELETE /jobs/:id
func (h *JobHandler) Delete(c *gin.Context) {
	jobID, ok := idParam(c, "id")
	if !ok {
		return
	}
	id, _ := auth.FromContext(c)
	if err := h.JobService.Delete(c.Request.Context(), id.UserID, jobID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
