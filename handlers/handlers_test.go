package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/purbarunBC13/team-tracker/activity"
	"github.com/purbarunBC13/team-tracker/events"
	"github.com/purbarunBC13/team-tracker/memstore"
	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/notify"
	"github.com/purbarunBC13/team-tracker/security"
	"github.com/purbarunBC13/team-tracker/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testServer struct {
	t      *testing.T
	mem    *memstore.Memory
	tokens *security.TokenManager
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	mem := memstore.New()
	tokens := security.NewTokenManager("test-secret", time.Hour)
	publisher := events.NewPublisher(nil, logger)
	svc := service.New(mem.Store(), notify.NewNotifier(mem, logger), activity.NewRecorder(mem, logger), publisher, tokens, logger)
	return &testServer{
		t:      t,
		mem:    mem,
		tokens: tokens,
		router: NewRouter(NewHandler(logger, svc), tokens, []string{"http://localhost:4200"}, io.Discard),
	}
}

// seed stores a user and returns it with a bearer token.
func (s *testServer) seed(name string, role models.Role) (*models.User, string) {
	s.t.Helper()
	u := models.NewUser(name, name+"@example.com", "", role, "acme")
	if err := s.mem.CreateUser(context.Background(), &u); err != nil {
		s.t.Fatalf("seed user: %v", err)
	}
	token, err := s.tokens.NewAccessToken(&u)
	if err != nil {
		s.t.Fatalf("sign token: %v", err)
	}
	return &u, token
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do("GET", "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"name": "Ana", "email": "ana@example.com", "password": "Passw0rd!"}

	w := s.do("POST", "/api/auth/register", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", w.Code, w.Body.String())
	}
	if bytes.Contains(w.Body.Bytes(), []byte("Passw0rd")) || bytes.Contains(w.Body.Bytes(), []byte(`"password"`)) {
		t.Fatalf("password leaked in response: %s", w.Body.String())
	}
	if w := s.do("POST", "/api/auth/register", "", body); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email got %d", w.Code)
	}

	w = s.do("POST", "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "nope"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	w = s.do("POST", "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "Passw0rd!"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var login struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeBody(t, w, &login)

	w = s.do("GET", "/api/users/me", login.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var me models.User
	decodeBody(t, w, &me)
	if me.Email != "ana@example.com" || me.Role != models.RoleMember {
		t.Fatalf("unexpected profile %+v", me)
	}
}

func TestAuthAndRoleGuards(t *testing.T) {
	s := newTestServer(t)
	_, memberToken := s.seed("alice", models.RoleMember)

	if w := s.do("GET", "/api/tasks", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	if w := s.do("POST", "/api/projects", memberToken, map[string]string{"title": "x"}); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", w.Code)
	}
	if w := s.do("GET", "/api/activity", memberToken, nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", w.Code)
	}
	if w := s.do("GET", "/api/tasks/not-an-id", memberToken, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if w := s.do("GET", "/api/tasks/"+primitive.NewObjectID().Hex(), memberToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestTaskFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	manager, managerToken := s.seed("mona", models.RoleManager)
	member, memberToken := s.seed("alice", models.RoleMember)

	w := s.do("POST", "/api/projects", managerToken, map[string]string{"title": "Apollo"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create project: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var project models.Project
	decodeBody(t, w, &project)

	w = s.do("POST", "/api/tasks", managerToken, map[string]interface{}{
		"title":    "Launch",
		"assignee": member.ID.Hex(),
		"project":  project.ID.Hex(),
		"priority": "high",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create task: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var task models.Task
	decodeBody(t, w, &task)
	if task.Status != models.StatusTodo || task.Priority != models.PriorityHigh || task.Creator != manager.ID {
		t.Fatalf("unexpected task %+v", task)
	}

	if w := s.do("DELETE", "/api/projects/"+project.ID.Hex(), managerToken, nil); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", w.Code)
	}

	w = s.do("PATCH", "/api/tasks/"+task.ID.Hex()+"/status", memberToken, map[string]string{"status": "completed"})
	if w.Code != http.StatusOK {
		t.Fatalf("status: expected 200 got %d: %s", w.Code, w.Body.String())
	}
	decodeBody(t, w, &task)
	if task.CompletedAt == nil {
		t.Fatalf("completedAt must be set")
	}

	w = s.do("POST", "/api/tasks/"+task.ID.Hex()+"/comments", memberToken, map[string]string{"text": "done and dusted"})
	if w.Code != http.StatusCreated {
		t.Fatalf("comment: expected 201 got %d", w.Code)
	}

	w = s.do("GET", "/api/notifications?unread=true", managerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("notifications: expected 200 got %d", w.Code)
	}
	var inbox service.NotificationPage
	decodeBody(t, w, &inbox)
	if inbox.Total != 2 || inbox.Unread != 2 {
		t.Fatalf("expected completion and comment notifications, got %+v", inbox)
	}

	w = s.do("PUT", "/api/notifications/"+inbox.Items[0].ID.Hex()+"/read", managerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("read: expected 200 got %d", w.Code)
	}
	if w := s.do("PUT", "/api/notifications/"+inbox.Items[0].ID.Hex()+"/read", memberToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("reading another user's notification: expected 404 got %d", w.Code)
	}
	w = s.do("PUT", "/api/notifications/read-all", managerToken, nil)
	var updated map[string]int64
	decodeBody(t, w, &updated)
	if updated["updated"] != 1 {
		t.Fatalf("expected 1 updated got %v", updated)
	}

	w = s.do("GET", "/api/activity/me?action=task_completed", memberToken, nil)
	var page activity.Page
	decodeBody(t, w, &page)
	if page.Total != 1 || page.Items[0].Action != models.ActionTaskCompleted {
		t.Fatalf("expected one task_completed entry, got %+v", page)
	}
}

func TestActivityAdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.seed("ada", models.RoleAdmin)
	_, managerToken := s.seed("mona", models.RoleManager)
	s.do("POST", "/api/projects", managerToken, map[string]string{"title": "One"})
	s.do("POST", "/api/projects", managerToken, map[string]string{"title": "Two"})

	w := s.do("GET", "/api/activity/stats?groupBy=action", managerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: expected 200 got %d", w.Code)
	}
	var stats []struct {
		Key   string `json:"key"`
		Count int64  `json:"count"`
	}
	decodeBody(t, w, &stats)
	if len(stats) != 1 || stats[0].Key != string(models.ActionProjectCreated) || stats[0].Count != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if w := s.do("GET", "/api/activity/stats?groupBy=mood", managerToken, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if w := s.do("GET", "/api/activity?from=yesterday", managerToken, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}

	if w := s.do("DELETE", "/api/activity/cleanup?days=30", managerToken, nil); w.Code != http.StatusForbidden {
		t.Fatalf("cleanup is admin only, got %d", w.Code)
	}
	if w := s.do("DELETE", "/api/activity/cleanup?days=0", adminToken, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	w = s.do("DELETE", "/api/activity/cleanup?days=30", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cleanup: expected 200 got %d", w.Code)
	}
	var result map[string]int64
	decodeBody(t, w, &result)
	if result["deleted"] != 0 {
		t.Fatalf("fresh entries must survive, got %v", result)
	}
}

func TestRemovedMemberLosesAccess(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.seed("ada", models.RoleAdmin)
	member, memberToken := s.seed("alice", models.RoleMember)

	if w := s.do("GET", "/api/tasks", memberToken, nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 before removal got %d", w.Code)
	}
	if w := s.do("DELETE", "/api/team/"+member.ID.Hex(), adminToken, nil); w.Code != http.StatusNoContent {
		t.Fatalf("remove: expected 204 got %d", w.Code)
	}

	if w := s.do("GET", "/api/tasks", memberToken, nil); w.Code != http.StatusForbidden {
		t.Fatalf("list with old token: expected 403 got %d", w.Code)
	}
	w := s.do("POST", "/api/tasks", memberToken, map[string]interface{}{"title": "sneaky", "assignee": member.ID.Hex()})
	if w.Code != http.StatusForbidden {
		t.Fatalf("create with old token: expected 403 got %d", w.Code)
	}
}

func TestRoleChangeAppliesToExistingToken(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.seed("ada", models.RoleAdmin)
	member, memberToken := s.seed("alice", models.RoleMember)

	if w := s.do("POST", "/api/projects", memberToken, map[string]string{"title": "x"}); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before promotion got %d", w.Code)
	}
	w := s.do("PUT", "/api/team/"+member.ID.Hex(), adminToken, map[string]string{"role": "manager"})
	if w.Code != http.StatusOK {
		t.Fatalf("promote: expected 200 got %d: %s", w.Code, w.Body.String())
	}
	if w := s.do("POST", "/api/projects", memberToken, map[string]string{"title": "x"}); w.Code != http.StatusCreated {
		t.Fatalf("expected 201 after promotion got %d", w.Code)
	}
}

func TestDateOnlyUpperBoundCoversWholeDay(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/activity?from=2024-05-01&to=2024-05-01", nil)
	from, err := queryTime(req, "from", false)
	if err != nil {
		t.Fatalf("from: %v", err)
	}
	to, err := queryTime(req, "to", true)
	if err != nil {
		t.Fatalf("to: %v", err)
	}
	evening := time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)
	if evening.Before(*from) || evening.After(*to) {
		t.Fatalf("expected %s within [%s, %s]", evening, from, to)
	}
	if next := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC); !next.After(*to) {
		t.Fatalf("upper bound %s must stop before the next day", to)
	}

	req = httptest.NewRequest("GET", "/api/activity?to=2024-05-01T12:00:00Z", nil)
	exact, _ := queryTime(req, "to", true)
	if !exact.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("timestamps must be used as given, got %s", exact)
	}
}
