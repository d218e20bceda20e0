package app

import (
	"strings"
	"time"

	"taskmanager/internal/config"
	"taskmanager/internal/handlers"
	"taskmanager/internal/logging"
	"taskmanager/internal/metrics"
	"taskmanager/internal/ratelimit"
	"taskmanager/internal/service"

	_ "taskmanager/docs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps is everything the router needs. Limiter and Metrics are optional.
type Deps struct {
	Config  config.Config
	Log     zerolog.Logger
	Tasks   *service.TaskService
	Limiter *ratelimit.Limiter
	Metrics *metrics.Metrics
	Started time.Time
}

// NewRouter builds the engine with the middleware chain and all routes.
func NewRouter(d Deps) *gin.Engine {
	dev := d.Config.App.IsDevelopment()

	r := gin.New()
	r.Use(handlers.Recovery(d.Log, dev))
	if dev {
		r.Use(logging.RequestLogger(d.Log))
	}
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:   []string{"Content-Length", "Content-Type", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:          12 * time.Hour,
	}))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	r.Use(handlers.ErrorHandler(d.Log, dev))

	Setup(r, d)
	return r
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, d Deps) {
	sys := handlers.NewSystemHandler(d.Config.App.Env, d.Config.App.Version, d.Started)

	r.GET("/", sys.Root)
	r.GET("/version", sys.Version)
	r.GET("/ready", handlers.Ready(d.Tasks))
	r.GET("/swagger-doc.json", sys.SwaggerDoc)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	api := r.Group("/api")
	var limit gin.HandlerFunc
	if d.Limiter != nil {
		limit = ratelimit.Middleware(d.Limiter, d.Log)
		api.Use(limit)
	}
	api.GET("", sys.Info)

	v1 := api.Group("/v1")
	v1.GET("/health", sys.Health)

	taskHandler := handlers.NewTaskHandler(d.Tasks)
	registerTaskRoutes(v1.Group("", handlers.BodyLimit(d.Config.HTTP.BodyLimit)), taskHandler)

	if limit != nil {
		// unknown /api paths count against the limit too
		r.NoRoute(underAPI(limit), handlers.NotFound)
	} else {
		r.NoRoute(handlers.NotFound)
	}
}

// underAPI runs mw only for paths below /api.
func underAPI(mw gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == "/api" || strings.HasPrefix(p, "/api/") {
			mw(c)
			return
		}
		c.Next()
	}
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.GET("/tasks", h.List)
	api.POST("/tasks", h.Create)
	api.GET("/tasks/:id", h.Get)
	api.PATCH("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
}
