package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"saodo/internal/database"
	"saodo/internal/events"
	"saodo/internal/models"
	"saodo/internal/realtime"
	"saodo/internal/repository"
	"saodo/internal/security"
	"saodo/internal/service"
	"saodo/migrations"
)

type testServer struct {
	*httptest.Server
	auth *service.AuthService
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping handler test in short mode")
	}
	ctx := context.Background()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "handlers.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.RunMigrations(ctx, migrations.FS); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher, _ := events.NewPublisher(events.Config{}, logger)

	classRepo := repository.NewClassRepository(db)
	logRepo := repository.NewLogRepository(db)
	criteriaRepo := repository.NewCriteriaRepository(db)
	store := realtime.NewStore(logRepo, classRepo, logger)
	if err := store.ReloadAll(ctx); err != nil {
		t.Fatal(err)
	}

	yearStart := time.Date(2024, time.September, 2, 0, 0, 0, 0, time.UTC)
	authService := service.NewAuthService(repository.NewUserRepository(db), security.NewTokenIssuer("test-secret", time.Hour), logger)
	classService := service.NewClassService(classRepo, store, publisher, logger)
	criteriaService := service.NewCriteriaService(criteriaRepo, logger)
	logService := service.NewLogService(logRepo, classRepo, criteriaRepo, repository.NewSettingsRepository(db), store, publisher, yearStart, logger)
	rankingService := service.NewRankingService(store, logger)
	reportService := service.NewReportService(repository.NewReportRepository(db), criteriaService, store, nil, nil, publisher, nil, logger)
	limiter := security.NewRateLimiter(100, time.Minute)
	t.Cleanup(limiter.Stop)

	csrf := security.NewCSRFGenerator("test-secret")
	startup := NewStartupStatus()
	startup.MarkReady()
	h := &Handlers{
		Middleware:    NewMiddleware(authService, csrf, limiter, logger),
		Startup:       startup,
		Auth:          NewAuthHandler(authService, csrf, nil, "", logger),
		Classes:       NewClassHandler(classService, criteriaService),
		Logs:          NewLogHandler(logService),
		Rankings:      NewRankingHandler(rankingService, logger),
		Announcements: NewAnnouncementHandler(service.NewAnnouncementService(repository.NewAnnouncementRepository(db))),
		Reports:       NewReportHandler(reportService),
		Admin:         NewAdminHandler(authService, logService, service.NewBackupService(db, logger), store, logger),
	}
	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	for _, u := range []service.UserInput{
		{Email: "admin@school.vn", Name: "Cô Lan", Role: models.RoleAdmin, Password: "password123"},
		{Email: "monitor@school.vn", Name: "Minh", Role: models.RoleReporter, Password: "password123"},
	} {
		if _, _, err := authService.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	return &testServer{Server: srv, auth: authService}
}

// client is a signed-in browser session
type client struct {
	t       *testing.T
	srv     *testServer
	cookie  *http.Cookie
	csrf    string
	noCSRF  bool
	bearer  string
	lastRaw []byte
}

func (s *testServer) login(t *testing.T, email string) *client {
	t.Helper()
	body := strings.NewReader(`{"email":"` + email + `","password":"password123"}`)
	resp, err := http.Post(s.URL+"/api/auth/login", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	var session SessionView
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatal(err)
	}
	c := &client{t: t, srv: s, csrf: session.CSRFToken}
	for _, ck := range resp.Cookies() {
		if ck.Name == security.SessionCookieName {
			c.cookie = ck
		}
	}
	if c.cookie == nil || session.CSRFToken == "" || session.Token == "" {
		t.Fatalf("login did not return a session: %+v", session)
	}
	return c
}

func (c *client) do(method, path string, payload interface{}) *http.Response {
	c.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			c.t.Fatal(err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, body)
	if err != nil {
		c.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	} else if c.cookie != nil {
		req.AddCookie(c.cookie)
		if !c.noCSRF {
			req.Header.Set(CSRFHeaderName, c.csrf)
		}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatal(err)
	}
	c.lastRaw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp
}

func (c *client) decode(v interface{}) {
	c.t.Helper()
	if err := json.Unmarshal(c.lastRaw, v); err != nil {
		c.t.Fatalf("decode %s: %v", c.lastRaw, err)
	}
}

func TestHealthz(t *testing.T) {
	status := NewStartupStatus()
	recorder := httptest.NewRecorder()
	status.Health(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if recorder.Code != http.StatusServiceUnavailable {
		t.Errorf("status before ready = %d, want 503", recorder.Code)
	}

	status.CompleteStep(StepDatabase)
	status.MarkReady()
	recorder = httptest.NewRecorder()
	status.Health(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if recorder.Code != http.StatusOK {
		t.Errorf("status after ready = %d, want 200", recorder.Code)
	}
}

func TestLoginAndMe(t *testing.T) {
	srv := setupTestServer(t)

	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json", strings.NewReader(`{"email":"admin@school.vn","password":"nope"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", resp.StatusCode)
	}

	admin := srv.login(t, "admin@school.vn")
	if resp := admin.do(http.MethodGet, "/api/auth/me", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d", resp.StatusCode)
	}
	var me SessionView
	admin.decode(&me)
	if me.User.Role != models.RoleAdmin || me.CSRFToken != admin.csrf {
		t.Errorf("me = %+v", me)
	}

	anon := &client{t: t, srv: srv}
	if resp := anon.do(http.MethodGet, "/api/auth/me", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous me status = %d, want 401", resp.StatusCode)
	}
}

func TestMutationsRequireRoleAndCSRF(t *testing.T) {
	srv := setupTestServer(t)
	admin := srv.login(t, "admin@school.vn")
	monitor := srv.login(t, "monitor@school.vn")

	if resp := monitor.do(http.MethodPost, "/api/classes", map[string]interface{}{"name": "5A", "grade": 5}); resp.StatusCode != http.StatusForbidden {
		t.Errorf("reporter create class status = %d, want 403", resp.StatusCode)
	}

	admin.noCSRF = true
	if resp := admin.do(http.MethodPost, "/api/classes", map[string]interface{}{"name": "5A", "grade": 5}); resp.StatusCode != http.StatusForbidden {
		t.Errorf("missing CSRF status = %d, want 403", resp.StatusCode)
	}
	admin.noCSRF = false

	if resp := admin.do(http.MethodPost, "/api/classes", map[string]interface{}{"name": "5A", "grade": 9}); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid grade status = %d, want 400", resp.StatusCode)
	}
	var verr errorResponse
	admin.decode(&verr)
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "grade" {
		t.Errorf("validation fields = %+v", verr.Fields)
	}

	if resp := admin.do(http.MethodPost, "/api/classes", map[string]interface{}{"name": "5A", "grade": 5}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create class status = %d: %s", resp.StatusCode, admin.lastRaw)
	}

	bearer := &client{t: t, srv: srv, bearer: mustToken(t, srv, "admin@school.vn")}
	if resp := bearer.do(http.MethodPost, "/api/classes", map[string]interface{}{"name": "4B", "grade": 4}); resp.StatusCode != http.StatusCreated {
		t.Errorf("bearer create class status = %d, want 201", resp.StatusCode)
	}
}

func mustToken(t *testing.T, srv *testServer, email string) string {
	t.Helper()
	token, _, _, err := srv.auth.Login(context.Background(), email, "password123")
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestLogsAndRankingsFlow(t *testing.T) {
	srv := setupTestServer(t)
	admin := srv.login(t, "admin@school.vn")
	monitor := srv.login(t, "monitor@school.vn")

	var classA, classB models.Class
	admin.do(http.MethodPost, "/api/classes", map[string]interface{}{"name": "5A", "grade": 5})
	admin.decode(&classA)
	admin.do(http.MethodPost, "/api/classes", map[string]interface{}{"name": "4B", "grade": 4})
	admin.decode(&classB)
	var late models.CriteriaConfig
	admin.do(http.MethodPost, "/api/criteria", map[string]interface{}{"name": "Đi học muộn", "maxPoints": 10, "type": "discipline"})
	admin.decode(&late)

	for _, entry := range []struct {
		class  string
		points int
	}{{classA.ID, 2}, {classB.ID, 5}} {
		resp := monitor.do(http.MethodPost, "/api/logs", map[string]interface{}{
			"date":       "2024-09-10",
			"classId":    entry.class,
			"deductions": []map[string]interface{}{{"criteriaId": late.ID, "pointsLost": entry.points}},
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create log status = %d: %s", resp.StatusCode, monitor.lastRaw)
		}
	}
	var created LogView
	monitor.decode(&created)
	if created.TotalScore != 95 || created.Week != 2 || created.ViolationCount != 1 {
		t.Errorf("created log = %+v", created)
	}

	anon := &client{t: t, srv: srv}
	if resp := anon.do(http.MethodGet, "/api/rankings?period=week:2", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("rankings status = %d", resp.StatusCode)
	}
	var rankings RankingsView
	anon.decode(&rankings)
	if rankings.Period != "week:2" || len(rankings.Items) != 2 || rankings.Items[0].ClassID != classA.ID || rankings.Items[0].Rank != 1 {
		t.Errorf("rankings = %+v", rankings)
	}

	if resp := anon.do(http.MethodGet, "/api/rankings?period=month:1", nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad period status = %d, want 400", resp.StatusCode)
	}

	anon.do(http.MethodGet, "/api/rankings/"+classB.ID+"/logs?period=semester:1", nil)
	var detail ClassDetailView
	anon.decode(&detail)
	if len(detail.Logs) != 1 || detail.Logs[0].Date != "2024-09-10" {
		t.Errorf("detail = %+v", detail)
	}

	anon.do(http.MethodGet, "/api/logs?period=year", nil)
	var logs []LogView
	anon.decode(&logs)
	if len(logs) != 2 {
		t.Errorf("logs len = %d, want 2", len(logs))
	}

	if resp := admin.do(http.MethodDelete, "/api/classes/"+classB.ID, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete class status = %d", resp.StatusCode)
	}
	admin.do(http.MethodGet, "/api/admin/orphans?period=year", nil)
	var orphans []LogView
	admin.decode(&orphans)
	if len(orphans) != 1 || orphans[0].ClassID != classB.ID {
		t.Errorf("orphans = %+v", orphans)
	}

	if resp := admin.do(http.MethodPost, "/api/reports/2/generate", nil); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("generate without model status = %d, want 503", resp.StatusCode)
	}
	if resp := anon.do(http.MethodGet, "/api/reports/latest", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("latest report status = %d, want 404", resp.StatusCode)
	}
}

func TestRankingStreamSendsEvents(t *testing.T) {
	srv := setupTestServer(t)
	admin := srv.login(t, "admin@school.vn")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/rankings/stream?period=year", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	events := make(chan RankingsView, 8)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var view RankingsView
			if json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &view) == nil {
				events <- view
			}
		}
		close(events)
	}()

	first := <-events
	if len(first.Items) != 0 {
		t.Fatalf("first event = %+v, want no classes", first)
	}

	admin.do(http.MethodPost, "/api/classes", map[string]interface{}{"name": "1A", "grade": 1})
	deadline := time.After(3 * time.Second)
	for {
		select {
		case view, ok := <-events:
			if !ok {
				t.Fatal("stream closed early")
			}
			if len(view.Items) == 1 && view.Items[0].ClassName == "1A" {
				return
			}
		case <-deadline:
			t.Fatal("no ranking event after class creation")
		}
	}
}

func TestAdminUsers(t *testing.T) {
	srv := setupTestServer(t)
	admin := srv.login(t, "admin@school.vn")

	resp := admin.do(http.MethodPost, "/api/admin/users", map[string]interface{}{"email": "new@school.vn", "name": "Lan", "role": "reporter"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create user status = %d: %s", resp.StatusCode, admin.lastRaw)
	}
	var created CreatedUserView
	admin.decode(&created)
	if created.Password == "" || created.User.Role != models.RoleReporter {
		t.Errorf("created = %+v", created)
	}
	if resp := admin.do(http.MethodPost, "/api/admin/users", map[string]interface{}{"email": "new@school.vn", "name": "Lan", "role": "reporter"}); resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate user status = %d, want 409", resp.StatusCode)
	}

	if _, _, _, err := srv.auth.Login(context.Background(), "new@school.vn", created.Password); err != nil {
		t.Errorf("login with issued password: %v", err)
	}

	admin.do(http.MethodGet, "/api/admin/users", nil)
	var users []UserView
	admin.decode(&users)
	if len(users) != 3 {
		t.Errorf("users len = %d, want 3", len(users))
	}

	var me SessionView
	admin.do(http.MethodGet, "/api/auth/me", nil)
	admin.decode(&me)
	if resp := admin.do(http.MethodDelete, "/api/admin/users/"+me.User.ID, nil); resp.StatusCode != http.StatusConflict {
		t.Errorf("self delete status = %d, want 409", resp.StatusCode)
	}
	if resp := admin.do(http.MethodDelete, "/api/admin/users/"+created.User.ID, nil); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete user status = %d", resp.StatusCode)
	}

	if resp := admin.do(http.MethodPut, "/api/admin/settings/school-year-start", map[string]string{"schoolYearStart": "2025-09-05"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("set school year status = %d: %s", resp.StatusCode, admin.lastRaw)
	}
	var year SchoolYearView
	admin.decode(&year)
	if year.SchoolYearStart != "2025-09-05" {
		t.Errorf("school year = %+v", year)
	}
}
