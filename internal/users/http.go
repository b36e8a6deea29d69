package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/placement-track/placement-track-backend/internal/auth"
)

type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

// Register mounts the profile routes; all of them require authentication.
func (h *Handler) Register(rg *gin.RouterGroup, requireUser gin.HandlerFunc) {
	rg.GET("/me", requireUser, h.Me)
	rg.PUT("/me", requireUser, h.UpdateMe)
	rg.POST("/me/accept-terms", requireUser, h.AcceptTerms)
}

// Me returns the stored profile, falling back to the token identity when the
// user never saved one.
func (h *Handler) Me(c *gin.Context) {
	ident, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	profile, err := h.repo.Get(c.Request.Context(), ident.UID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if profile == nil {
		profile = &Profile{
			UID:         ident.UID,
			DisplayName: ident.DisplayName,
			Email:       ident.Email,
		}
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

type updateBody struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Bio         string `json:"bio"`
	LinkedIn    string `json:"linkedin"`
	GitHub      string `json:"github"`
}

func (h *Handler) UpdateMe(c *gin.Context) {
	ident, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var body updateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, err := h.repo.Upsert(c.Request.Context(), ident.UID, UpsertInput{
		DisplayName: body.DisplayName,
		Email:       body.Email,
		Bio:         body.Bio,
		LinkedIn:    body.LinkedIn,
		GitHub:      body.GitHub,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *Handler) AcceptTerms(c *gin.Context) {
	ident, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.repo.AcceptTerms(c.Request.Context(), ident.UID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record acceptance"})
		return
	}
	c.Status(http.StatusNoContent)
}
