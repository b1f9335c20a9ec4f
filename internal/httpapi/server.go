package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"daily-tracker/internal/service"
)

// Services are the operations exposed over HTTP.
type Services struct {
	Tasks      *service.TaskService
	Categories *service.CategoryService
	Routines   *service.RoutineService
	Aggregator *service.CompletionAggregator
}

// Server is the planner's JSON API.
type Server struct {
	svc      Services
	auth     Authenticator
	identity service.IdentityResolver
	log      *zap.Logger
	router   *gin.Engine
	now      func() time.Time
}

// NewServer wires routes. Every /api route requires a bearer token.
func NewServer(svc Services, auth Authenticator, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	router := gin.New()

	s := &Server{
		svc:      svc,
		auth:     auth,
		identity: service.ContextIdentity{},
		log:      log.Named("http"),
		router:   router,
		now:      time.Now,
	}

	router.Use(s.requestLog, gin.Recovery())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api", s.authenticate)
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.PUT("/tasks/:id", s.handleUpdateTask)
		api.PATCH("/tasks/:id/toggle", s.handleToggleTask)
		api.PATCH("/tasks/:id/today", s.handleSetForToday)
		api.DELETE("/tasks/:id", s.handleDeleteTask)

		api.GET("/categories", s.handleListCategories)
		api.POST("/categories", s.handleCreateCategory)
		api.DELETE("/categories/:id", s.handleDeleteCategory)
		api.GET("/categories/:id/tasks", s.handleCategoryTasks)

		api.GET("/routines", s.handleListRoutines)
		api.POST("/routines", s.handleCreateRoutine)
		api.GET("/routines/week", s.handleWeek)
		api.DELETE("/routines/:id", s.handleDeleteRoutine)
		api.POST("/routines/:id/complete", s.handleCompleteRoutine)
		api.GET("/routine-logs", s.handleDayLogs)
		api.DELETE("/routine-logs/:id", s.handleUncompleteRoutine)
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLog(c *gin.Context) {
	start := time.Now()
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)

	c.Next()

	s.log.Info("request",
		zap.String("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(start)),
	)
}

// authenticate resolves the caller and gives the request its own read cache.
func (s *Server) authenticate(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	userID, err := s.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		s.log.Error("authenticate", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not resolve user"})
		return
	}

	ctx := service.WithRequestCache(service.WithUserID(c.Request.Context(), userID))
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
