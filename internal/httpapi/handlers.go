package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"daily-tracker/internal/service"
)

// caller returns the authenticated user, writing 401 when there is none.
func (s *Server) caller(c *gin.Context) (uint, bool) {
	userID, err := s.identity.CurrentUserID(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return 0, false
	}
	return userID, true
}

func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBlankInput):
		c.Status(http.StatusNoContent)
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidRange), errors.Is(err, errBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

var errBadRequest = errors.New("bad request")

func idParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, c.Param("id"))
	}
	return uint(id), nil
}

func optionalID(raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	v := uint(id)
	return &v, nil
}

// day reads a YYYY-MM-DD value, defaulting to today.
func (s *Server) day(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.now(), nil
	}
	day, err := s.svc.Aggregator.Calendar().ParseDay(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return day, nil
}

func (s *Server) handleListTasks(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	tasks, err := s.svc.Tasks.ListTasks(c.Request.Context(), userID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	categoryID, err := optionalID(c.PostForm("categoryId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	task, err := s.svc.Tasks.CreateTask(c.Request.Context(), userID, service.TaskInput{
		Content:    c.PostForm("content"),
		CategoryID: categoryID,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	id, err := idParam(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	tasks, err := s.svc.Tasks.UpdateTaskContent(c.Request.Context(), userID, id, c.PostForm("content"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleToggleTask(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	id, err := idParam(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	tasks, err := s.svc.Tasks.ToggleTask(c.Request.Context(), userID, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleSetForToday(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	id, err := idParam(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	forToday, err := strconv.ParseBool(c.DefaultPostForm("forToday", "true"))
	if err != nil {
		s.writeError(c, fmt.Errorf("%w: forToday must be a boolean", errBadRequest))
		return
	}
	tasks, err := s.svc.Tasks.SetForToday(c.Request.Context(), userID, id, forToday)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	id, err := idParam(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	tasks, err := s.svc.Tasks.DeleteTask(c.Request.Context(), userID, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleListCategories(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	categories, err := s.svc.Categories.ListCategories(c.Request.Context(), userID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	title := c.PostForm("title")
	if title == "" {
		title = c.PostForm("content")
	}
	categories, err := s.svc.Categories.CreateCategory(c.Request.Context(), userID, title, c.PostForm("color"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, categories)
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	id, err := idParam(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	categories, err := s.svc.Categories.DeleteCategory(c.Request.Context(), userID, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) handleCategoryTasks(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	id, err := idParam(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	tasks, err := s.svc.Categories.TasksInCategory(c.Request.Context(), userID, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// handleListRoutines lists routines with their completion for ?day=, today by
// default.
func (s *Server) handleListRoutines(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	day, err := s.day(c.Query("day"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	routines, err := s.svc.Routines.RoutinesForDay(c.Request.Context(), userID, day)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, routines)
}

func (s *Server) handleCreateRoutine(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	routine, err := s.svc.Routines.CreateRoutine(c.Request.Context(), userID, c.PostForm("content"), c.PostForm("color"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, routine)
}

func (s *Server) handleDeleteRoutine(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	id, err := idParam(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.svc.Routines.DeleteRoutine(c.Request.Context(), userID, id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCompleteRoutine(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	id, err := idParam(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	day, err := s.day(c.PostForm("day"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	entry, err := s.svc.Routines.CompleteRoutine(c.Request.Context(), userID, id, day)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleUncompleteRoutine(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	id, err := idParam(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.svc.Routines.UncompleteRoutine(c.Request.Context(), userID, id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDayLogs(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	day, err := s.day(c.Query("day"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	logs, err := s.svc.Aggregator.LogsForDay(c.Request.Context(), userID, day)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

type weekResponse struct {
	Week    []string          `json:"week"`
	Days    map[string][]uint `json:"days"`
	Percent map[uint]float64  `json:"percent"`
}

// handleWeek reports completion for an explicit ?days= list of seven dates or,
// without it, the Sunday-first week containing ?start= (today by default).
func (s *Server) handleWeek(c *gin.Context) {
	userID, ok := s.caller(c)
	if !ok {
		return
	}
	calendar := s.svc.Aggregator.Calendar()

	var week []time.Time
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			day, err := s.day(part)
			if err != nil {
				s.writeError(c, err)
				return
			}
			week = append(week, day)
		}
	} else {
		start, err := s.day(c.Query("start"))
		if err != nil {
			s.writeError(c, err)
			return
		}
		week = calendar.WeekOf(start)
	}

	ctx := c.Request.Context()
	report, err := s.svc.Aggregator.WeeklyCompletion(ctx, userID, week)
	if err != nil {
		s.writeError(c, err)
		return
	}
	routines, err := s.svc.Routines.ListRoutines(ctx, userID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := weekResponse{
		Week:    report.DayKeys(),
		Days:    make(map[string][]uint, len(report.Days)),
		Percent: make(map[uint]float64, len(routines)),
	}
	for key := range report.Days {
		resp.Days[key] = report.Days.RoutineIDs(key)
	}
	for _, routine := range routines {
		resp.Percent[routine.ID] = report.Percent(routine.ID)
	}
	c.JSON(http.StatusOK, resp)
}
