package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"daily-tracker/internal/model"
	"daily-tracker/internal/repository"
	"daily-tracker/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	*Server
	users *repository.UserRepository
}

// newTestServer serves real services over a temp database. Tokens of the
// form "user-N" authenticate as user N.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "api.db"), nil)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	logRepo := repository.NewRoutineLogRepository(db)
	aggregator := service.NewCompletionAggregator(logRepo, service.NewCalendar(service.KST))

	svc := Services{
		Tasks:      service.NewTaskService(taskRepo, categoryRepo, nil),
		Categories: service.NewCategoryService(categoryRepo, taskRepo, nil),
		Routines:   service.NewRoutineService(repository.NewRoutineRepository(db), logRepo, aggregator, nil),
		Aggregator: aggregator,
	}
	auth := AuthenticatorFunc(func(ctx context.Context, token string) (uint, error) {
		var id uint
		if _, err := fmt.Sscanf(token, "user-%d", &id); err != nil {
			return 0, service.ErrUnauthenticated
		}
		return id, nil
	})
	srv := NewServer(svc, auth, nil)
	srv.now = func() time.Time { return time.Date(2024, 1, 3, 12, 0, 0, 0, service.KST) }
	return &testServer{Server: srv, users: repository.NewUserRepository(db)}
}

func (s *testServer) do(t *testing.T, method, path, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthzNeedsNoAuth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set")
	}
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t)
	if w := s.do(t, http.MethodGet, "/api/tasks", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/tasks", "garbage", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", w.Code)
	}
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/tasks", "user-1", url.Values{"content": {"   "}})
	if w.Code != http.StatusNoContent {
		t.Fatalf("blank create status = %d, want 204", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/tasks", "user-1", url.Values{"content": {"water plants"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body)
	}
	task := decode[model.Task](t, w)
	if task.Content != "water plants" || task.Completed {
		t.Errorf("created = %+v", task)
	}
	path := "/api/tasks/" + itoa(task.ID)

	w = s.do(t, http.MethodPatch, path+"/toggle", "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle status = %d: %s", w.Code, w.Body)
	}
	if tasks := decode[[]model.Task](t, w); len(tasks) != 1 || !tasks[0].Completed {
		t.Errorf("after toggle = %+v", tasks)
	}

	w = s.do(t, http.MethodPut, path, "user-1", url.Values{"content": {"water all plants"}})
	if tasks := decode[[]model.Task](t, w); tasks[0].Content != "water all plants" {
		t.Errorf("after update = %+v", tasks)
	}

	w = s.do(t, http.MethodPatch, path+"/today", "user-1", url.Values{"forToday": {"false"}})
	if tasks := decode[[]model.Task](t, w); tasks[0].ForToday == nil || *tasks[0].ForToday {
		t.Errorf("after today=false = %+v", tasks)
	}

	if w := s.do(t, http.MethodDelete, path, "user-2", nil); w.Code != http.StatusNotFound {
		t.Errorf("foreign delete status = %d, want 404", w.Code)
	}
	w = s.do(t, http.MethodDelete, path, "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", w.Code, w.Body)
	}
	if tasks := decode[[]model.Task](t, w); len(tasks) != 0 {
		t.Errorf("after delete = %+v", tasks)
	}

	if w := s.do(t, http.MethodDelete, "/api/tasks/abc", "user-1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/categories", "user-1", url.Values{"title": {"work"}, "color": {"red"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body)
	}
	cats := decode[[]model.Category](t, w)
	catID := itoa(cats[0].ID)

	s.do(t, http.MethodPost, "/api/tasks", "user-1", url.Values{"content": {"report"}, "categoryId": {catID}})

	w = s.do(t, http.MethodGet, "/api/categories/"+catID+"/tasks", "user-1", nil)
	if tasks := decode[[]model.Task](t, w); len(tasks) != 1 || tasks[0].Content != "report" {
		t.Errorf("category tasks = %+v", tasks)
	}
	if w := s.do(t, http.MethodGet, "/api/categories/"+catID+"/tasks", "user-2", nil); w.Code != http.StatusNotFound {
		t.Errorf("foreign category status = %d, want 404", w.Code)
	}

	w = s.do(t, http.MethodDelete, "/api/categories/"+catID, "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", w.Code, w.Body)
	}
	w = s.do(t, http.MethodGet, "/api/tasks", "user-1", nil)
	if tasks := decode[[]model.Task](t, w); len(tasks) != 1 || tasks[0].CategoryID != nil {
		t.Errorf("tasks after category delete = %+v", tasks)
	}
}

func TestRoutineEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/routines", "user-1", url.Values{"content": {"Read"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body)
	}
	routine := decode[model.Routine](t, w)
	if routine.Color != model.DefaultRoutineColor {
		t.Errorf("Color = %q", routine.Color)
	}
	rid := itoa(routine.ID)

	w = s.do(t, http.MethodPost, "/api/routines/"+rid+"/complete", "user-1", url.Values{"day": {"2024-01-01"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("complete status = %d: %s", w.Code, w.Body)
	}
	entry := decode[model.RoutineLog](t, w)

	w = s.do(t, http.MethodGet, "/api/routines/week?days=2024-01-01,2024-01-02,2024-01-03,2024-01-04,2024-01-05,2024-01-06,2024-01-07", "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("week status = %d: %s", w.Code, w.Body)
	}
	week := decode[weekResponse](t, w)
	if ids := week.Days["2024-01-01"]; len(ids) != 1 || ids[0] != routine.ID {
		t.Errorf("days = %+v", week.Days)
	}
	if p := week.Percent[routine.ID]; p < 14.28 || p > 14.29 {
		t.Errorf("percent = %v, want ~14.29", p)
	}

	if w := s.do(t, http.MethodGet, "/api/routines/week?days=2024-01-01,2024-01-02", "user-1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("short week status = %d, want 400", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/routines?day=2024-01-01", "user-1", nil)
	statuses := decode[[]service.RoutineStatus](t, w)
	if len(statuses) != 1 || !statuses[0].Complete || statuses[0].LogID == nil || *statuses[0].LogID != entry.ID {
		t.Errorf("routines for day = %+v", statuses)
	}

	w = s.do(t, http.MethodGet, "/api/routine-logs?day=2024-01-01", "user-1", nil)
	if logs := decode[[]model.RoutineLog](t, w); len(logs) != 1 {
		t.Errorf("day logs = %+v", logs)
	}

	if w := s.do(t, http.MethodDelete, "/api/routine-logs/"+itoa(entry.ID), "user-1", nil); w.Code != http.StatusNoContent {
		t.Errorf("uncomplete status = %d: %s", w.Code, w.Body)
	}
	if w := s.do(t, http.MethodDelete, "/api/routine-logs/"+itoa(entry.ID), "user-1", nil); w.Code != http.StatusNotFound {
		t.Errorf("second uncomplete status = %d, want 404", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/routine-logs?day=01-01-2024", "user-1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad day status = %d, want 400", w.Code)
	}
	if w := s.do(t, http.MethodDelete, "/api/routines/"+rid, "user-1", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d: %s", w.Code, w.Body)
	}
}

func TestWeekDefaultsToCurrentWeek(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/routines/week", "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	week := decode[weekResponse](t, w)
	if len(week.Week) != 7 || week.Week[0] != "2023-12-31" || week.Week[6] != "2024-01-06" {
		t.Errorf("week = %v", week.Week)
	}
}
