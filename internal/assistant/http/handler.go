package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/placement-track/placement-track-backend/internal/assistant"
	"github.com/placement-track/placement-track-backend/internal/auth"
	companiesrepo "github.com/placement-track/placement-track-backend/internal/companies/repository"
	experiencesrepo "github.com/placement-track/placement-track-backend/internal/experiences/repository"
	"github.com/placement-track/placement-track-backend/internal/users"
)

// recentContextLimit bounds how many recent experiences get serialized into
// the prompt; the full corpus would blow the context window as the site grows.
const recentContextLimit = 20

type Handler struct {
	engine      *assistant.Engine
	companies   *companiesrepo.Repo
	experiences *experiencesrepo.Repo
	profiles    *users.Repo
	log         *zap.Logger
}

func New(engine *assistant.Engine, companies *companiesrepo.Repo, experiences *experiencesrepo.Repo, profiles *users.Repo, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{engine: engine, companies: companies, experiences: experiences, profiles: profiles, log: log}
}

func (h *Handler) Register(rg *gin.RouterGroup, rateLimit gin.HandlerFunc) {
	rg.POST("/ask", rateLimit, h.Ask)
}

type askBody struct {
	Question string `json:"question"`
}

// Ask always answers with 200: context assembly failures degrade to a
// smaller snapshot and generation failures surface as the fallback reply.
func (h *Handler) Ask(c *gin.Context) {
	var body askBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	snapshot := assistant.Context{}

	if companies, err := h.companies.List(ctx); err != nil {
		h.log.Warn("assistant context: company list unavailable", zap.Error(err))
	} else {
		snapshot.Companies = companies
	}

	if recent, err := h.experiences.GetRecent(ctx, recentContextLimit); err != nil {
		h.log.Warn("assistant context: recent experiences unavailable", zap.Error(err))
	} else {
		snapshot.RecentExperiences = recent
	}

	if ident, ok := auth.IdentityFrom(c); ok {
		if profile, err := h.profiles.Get(ctx, ident.UID); err != nil {
			h.log.Warn("assistant context: profile unavailable", zap.String("uid", ident.UID), zap.Error(err))
		} else {
			snapshot.Profile = profile
		}
		if own, err := h.experiences.GetByUser(ctx, ident.UID); err != nil {
			h.log.Warn("assistant context: own experiences unavailable", zap.String("uid", ident.UID), zap.Error(err))
		} else {
			snapshot.OwnExperiences = own
		}
	}

	c.JSON(http.StatusOK, gin.H{"answer": h.engine.Answer(ctx, body.Question, snapshot)})
}
