package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/placement-track/placement-track-backend/internal/auth"
	companiesdomain "github.com/placement-track/placement-track-backend/internal/companies/domain"
	"github.com/placement-track/placement-track-backend/internal/experiences/domain"
	"github.com/placement-track/placement-track-backend/internal/experiences/service"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the experience routes. requireUser guards the
// submit/edit/delete/mine routes; view and upvote stay open.
func (h *Handler) Register(rg *gin.RouterGroup, requireUser gin.HandlerFunc) {
	rg.POST("", requireUser, h.Submit)
	rg.GET("/recent", h.Recent)
	rg.GET("/mine", requireUser, h.Mine)
	rg.PATCH("/:id", requireUser, h.Edit)
	rg.DELETE("/:id", requireUser, h.Delete)
	rg.POST("/:id/view", h.View)
	rg.POST("/:id/upvote", h.Upvote)
}

type newCompanyBody struct {
	Name          string `json:"name"`
	Industry      string `json:"industry"`
	Description   string `json:"description"`
	Website       string `json:"website"`
	Headquarters  string `json:"headquarters"`
	Founded       *int64 `json:"founded"`
	EmployeeCount string `json:"employeeCount"`
}

type submitBody struct {
	CompanyID     string          `json:"companyId"`
	NewCompany    *newCompanyBody `json:"newCompany"`
	Position      string          `json:"position"`
	Description   string          `json:"description"`
	Rounds        []string        `json:"rounds"`
	Tips          string          `json:"tips"`
	Difficulty    string          `json:"difficulty"`
	OfferStatus   string          `json:"offerStatus"`
	Salary        string          `json:"salary"`
	Location      string          `json:"location"`
	InterviewDate *time.Time      `json:"interviewDate"`
}

func (h *Handler) Submit(c *gin.Context) {
	ident, _ := auth.IdentityFrom(c)

	var body submitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in := service.SubmitInput{
		CompanyID:     body.CompanyID,
		Position:      body.Position,
		Description:   body.Description,
		Rounds:        body.Rounds,
		Tips:          body.Tips,
		Difficulty:    body.Difficulty,
		OfferStatus:   body.OfferStatus,
		Salary:        body.Salary,
		Location:      body.Location,
		InterviewDate: body.InterviewDate,
	}
	if body.NewCompany != nil {
		in.NewCompany = &companiesdomain.CreateInput{
			Name:          body.NewCompany.Name,
			Industry:      body.NewCompany.Industry,
			Description:   body.NewCompany.Description,
			Website:       body.NewCompany.Website,
			Headquarters:  body.NewCompany.Headquarters,
			Founded:       body.NewCompany.Founded,
			EmployeeCount: body.NewCompany.EmployeeCount,
		}
	}

	id, err := h.svc.Submit(c.Request.Context(), ident, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type editBody struct {
	Position      *string    `json:"position"`
	Description   *string    `json:"description"`
	Rounds        []string   `json:"rounds"`
	Tips          *string    `json:"tips"`
	Difficulty    *string    `json:"difficulty"`
	OfferStatus   *string    `json:"offerStatus"`
	Salary        *string    `json:"salary"`
	Location      *string    `json:"location"`
	InterviewDate *time.Time `json:"interviewDate"`
}

func (h *Handler) Edit(c *gin.Context) {
	ident, _ := auth.IdentityFrom(c)

	var body editBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.svc.Edit(c.Request.Context(), ident, c.Param("id"), service.EditInput{
		Position:      body.Position,
		Description:   body.Description,
		Rounds:        body.Rounds,
		Tips:          body.Tips,
		Difficulty:    body.Difficulty,
		OfferStatus:   body.OfferStatus,
		Salary:        body.Salary,
		Location:      body.Location,
		InterviewDate: body.InterviewDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Delete(c *gin.Context) {
	ident, _ := auth.IdentityFrom(c)

	if err := h.svc.Delete(c.Request.Context(), ident, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	experiences, err := h.svc.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"experiences": experiences})
}

func (h *Handler) Mine(c *gin.Context) {
	ident, _ := auth.IdentityFrom(c)

	experiences, err := h.svc.Mine(c.Request.Context(), ident)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"experiences": experiences})
}

func (h *Handler) View(c *gin.Context) {
	if err := h.svc.RecordView(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Upvote(c *gin.Context) {
	if err := h.svc.RecordUpvote(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "fields": vErr.Fields})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
	case errors.Is(err, domain.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "experience belongs to another user"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "experience not found"})
	case errors.Is(err, companiesdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
