package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/placement-track/placement-track-backend/internal/companies/domain"
	"github.com/placement-track/placement-track-backend/internal/companies/service"
)

type Handler struct {
	svc       *service.Service
	summaries *service.SummaryService
}

func New(svc *service.Service, summaries *service.SummaryService) *Handler {
	return &Handler{svc: svc, summaries: summaries}
}

// Register mounts the company routes. requireUser guards creation and
// regeneration; rateLimit throttles the generator-backed regenerate route.
func (h *Handler) Register(rg *gin.RouterGroup, requireUser, rateLimit gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.POST("", requireUser, h.Create)
	rg.GET("/:id", h.Detail)
	rg.POST("/:id/summary/regenerate", requireUser, rateLimit, h.RegenerateSummary)
}

func (h *Handler) List(c *gin.Context) {
	companies, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

type createBody struct {
	Name          string `json:"name"`
	Industry      string `json:"industry"`
	Description   string `json:"description"`
	Website       string `json:"website"`
	Headquarters  string `json:"headquarters"`
	Founded       *int64 `json:"founded"`
	EmployeeCount string `json:"employeeCount"`
}

func (h *Handler) Create(c *gin.Context) {
	var body createBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company name is required"})
		return
	}

	company, err := h.svc.Create(c.Request.Context(), domain.CreateInput{
		Name:          body.Name,
		Industry:      body.Industry,
		Description:   body.Description,
		Website:       body.Website,
		Headquarters:  body.Headquarters,
		Founded:       body.Founded,
		EmployeeCount: body.EmployeeCount,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create company"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"company": company})
}

// Detail returns the company page payload. A failed summary generation does
// not fail the request; the error is reported next to the data so the page
// renders without the summary.
func (h *Handler) Detail(c *gin.Context) {
	detail, err := h.svc.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	resp := gin.H{
		"company":     detail.Company,
		"experiences": detail.Experiences,
		"summary":     detail.Summary,
	}
	if detail.SummaryErr != nil {
		resp["summary_error"] = "summary generation is currently unavailable"
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) RegenerateSummary(c *gin.Context) {
	summary, err := h.summaries.Regenerate(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
		case errors.Is(err, domain.ErrNoExperiences):
			c.JSON(http.StatusConflict, gin.H{"error": "no experiences available for summary"})
		default:
			var genErr *service.SummaryGenerationError
			if errors.As(err, &genErr) {
				c.JSON(http.StatusBadGateway, gin.H{"error": "summary generation failed"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
