package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/temu/internal/auth"
	"github.com/justsurfingit/temu/internal/models"
	"github.com/justsurfingit/temu/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services the API is built from. LLM may be nil.
type Deps struct {
	Users        *services.UserService
	Onboarding   *services.OnboardingService
	Jobs         *services.JobService
	Matcher      *services.MatcherService
	Applications *services.ApplicationService
	Uploads      *services.UploadService
	Dashboard    *services.DashboardService
	LLM          *services.LLMService

	AllowedOrigins []string
	// SaveTimeout bounds wizard loads and saves.
	SaveTimeout time.Duration
	// UploadDir is served under /uploads when files are stored on disk.
	UploadDir string
	Gatherer  prometheus.Gatherer
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()

	config := cors.DefaultConfig()
	if len(d.AllowedOrigins) == 0 || (len(d.AllowedOrigins) == 1 && d.AllowedOrigins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = d.AllowedOrigins
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization",
		auth.HeaderUserID, auth.HeaderUserEmail, auth.HeaderUserRole}
	config.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	r.Use(cors.New(config))

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	onboarding := NewOnboardingHandler(d.Onboarding, d.SaveTimeout)
	uploads := NewUploadHandler(d.Uploads)
	jobs := NewJobHandler(d.LLM, d.Jobs, d.Onboarding, d.Matcher)
	applications := NewApplicationHandler(d.Applications)
	dashboard := NewDashboardHandler(d.Dashboard)

	seeker := auth.RequireRole(models.RoleJobSeeker)
	employer := auth.RequireRole(models.RoleEmployer)

	r.GET("/api/v1/health", HealthCheck)

	api := r.Group("/api/v1", auth.Middleware(d.Users))
	{
		// Wizards
		api.GET("/onboarding/:flow", onboarding.Get)
		api.POST("/onboarding/:flow", onboarding.Save)
		api.DELETE("/onboarding/:flow", onboarding.Reset)
		api.POST("/upload", uploads.Upload)

		// Job Routes
		api.GET("/jobs", jobs.List)
		api.GET("/jobs/recommended", seeker, jobs.Recommended)
		api.GET("/jobs/:id", jobs.Get)
		api.POST("/jobs/extract", employer, jobs.ParseJob)
		api.PATCH("/jobs/:id/status", employer, jobs.SetStatus)
		api.DELETE("/jobs/:id", employer, jobs.Delete)

		// Applications
		api.POST("/jobs/:id/applications", seeker, applications.Apply)
		api.GET("/jobs/:id/applications", employer, applications.ListForJob)
		api.GET("/applications", seeker, applications.ListMine)
		api.PATCH("/applications/:id", employer, applications.UpdateStatus)
		api.GET("/applications/:id/events", applications.Events)

		api.GET("/dashboard", dashboard.Get)
	}
	return r
}
