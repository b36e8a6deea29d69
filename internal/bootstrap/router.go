package bootstrap

import (
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/placement-track/placement-track-backend/config"
	httpapi "github.com/placement-track/placement-track-backend/internal/api/http"
	apimiddleware "github.com/placement-track/placement-track-backend/internal/api/http/middleware"
	"github.com/placement-track/placement-track-backend/internal/assistant"
	assistanthttp "github.com/placement-track/placement-track-backend/internal/assistant/http"
	authmiddleware "github.com/placement-track/placement-track-backend/internal/auth/middleware"
	companieshttp "github.com/placement-track/placement-track-backend/internal/companies/http"
	companiesrepo "github.com/placement-track/placement-track-backend/internal/companies/repository"
	companiesservice "github.com/placement-track/placement-track-backend/internal/companies/service"
	experienceshttp "github.com/placement-track/placement-track-backend/internal/experiences/http"
	experiencesrepo "github.com/placement-track/placement-track-backend/internal/experiences/repository"
	experiencesservice "github.com/placement-track/placement-track-backend/internal/experiences/service"
	"github.com/placement-track/placement-track-backend/internal/llm"
	"github.com/placement-track/placement-track-backend/internal/store"
	"github.com/placement-track/placement-track-backend/internal/users"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Config      *config.Config
	Store       store.DocumentStore
	AuthClient  *fbauth.Client // nil enables the header-based dev identity
	Generator   llm.TextGenerator
	Logger      *zap.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	log := dep.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(ginzap.Ginzap(log, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(log, true))
	r.Use(apimiddleware.RequestID())
	r.Use(cors.Default())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Store)
	healthHandler.RegisterRoutes(r)

	requireUser := authmiddleware.DevRequireUser()
	optionalUser := authmiddleware.DevOptionalUser()
	if dep.AuthClient != nil {
		requireUser = authmiddleware.RequireUser(dep.AuthClient)
		optionalUser = authmiddleware.OptionalUser(dep.AuthClient)
	} else {
		log.Warn("no Firebase auth client configured, using unverified header identities")
	}

	rateLimit := apimiddleware.RateLimit(dep.Config.RateLimit.GenerationPerMinute, 2)

	companyRepo := companiesrepo.New(dep.Store)
	experienceRepo := experiencesrepo.New(dep.Store, log)
	userRepo := users.NewRepo(dep.Store)

	summarySvc := companiesservice.NewSummaryService(companyRepo, experienceRepo, dep.Generator, log)
	companySvc := companiesservice.New(companyRepo, experienceRepo, summarySvc, log)
	experienceSvc := experiencesservice.New(experienceRepo, companyRepo, dep.Config.Aggregates, log)
	engine := assistant.NewEngine(dep.Generator, log)

	api := r.Group("/api/v1")
	api.Use(optionalUser)

	companieshttp.New(companySvc, summarySvc).Register(api.Group("/companies"), requireUser, rateLimit)
	experienceshttp.New(experienceSvc).Register(api.Group("/experiences"), requireUser)
	assistanthttp.New(engine, companyRepo, experienceRepo, userRepo, log).Register(api.Group("/assistant"), rateLimit)
	users.NewHandler(userRepo).Register(api.Group("/users"), requireUser)

	return r
}
