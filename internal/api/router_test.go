package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/healthtrack/healthtrack/internal/core/domain"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*domain.User
}

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) remove(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.byID {
		if u.Email == email {
			delete(m.byID, id)
		}
	}
}

type memMedications struct {
	mu   sync.Mutex
	meds []*domain.Medication
}

func (m *memMedications) Create(_ context.Context, med *domain.Medication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meds = append(m.meds, med)
	return nil
}

func (m *memMedications) ListByUser(_ context.Context, userID string) ([]*domain.Medication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Medication
	for _, med := range m.meds {
		if med.UserID == userID {
			out = append(out, med)
		}
	}
	return out, nil
}

func (m *memMedications) FindByID(_ context.Context, userID, id string) (*domain.Medication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, med := range m.meds {
		if med.ID == id && med.UserID == userID {
			return med, nil
		}
	}
	return nil, domain.ErrMedicationNotFound
}

func (m *memMedications) Update(_ context.Context, upd *domain.Medication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, med := range m.meds {
		if med.ID == upd.ID && med.UserID == upd.UserID {
			m.meds[i] = upd
			return nil
		}
	}
	return domain.ErrMedicationNotFound
}

func (m *memMedications) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, med := range m.meds {
		if med.ID == id && med.UserID == userID {
			m.meds = append(m.meds[:i], m.meds[i+1:]...)
			return nil
		}
	}
	return domain.ErrMedicationNotFound
}

type memMetrics struct {
	mu      sync.Mutex
	metrics []*domain.HealthMetric
}

func (m *memMetrics) Create(_ context.Context, metric *domain.HealthMetric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = append(m.metrics, metric)
	return nil
}

func (m *memMetrics) ListByUser(_ context.Context, userID string) ([]*domain.HealthMetric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.HealthMetric
	for i := len(m.metrics) - 1; i >= 0; i-- {
		if m.metrics[i].UserID == userID {
			out = append(out, m.metrics[i])
		}
	}
	return out, nil
}

type testAPI struct {
	t     *testing.T
	e     http.Handler
	users *memUsers
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	users := &memUsers{byID: make(map[string]*domain.User)}
	e := NewRouter(Dependencies{
		Users:         users,
		Medications:   &memMedications{},
		Metrics:       &memMetrics{},
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
		AuthRateLimit: 0,
		Logger:        zerolog.Nop(),
		Registry:      prometheus.NewRegistry(),
	})
	return &testAPI{t: t, e: e, users: users}
}

func (a *testAPI) do(method, path, token, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) register(email string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/auth/register", "", `{"name":"Test","email":"`+email+`","password":"secret1"}`)
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		a.t.Fatalf("register: no token in %s", rec.Body.String())
	}
	return resp.Token
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if err := json.Unmarshal(env.Data, into); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
}

func TestRouter_AuthFlow(t *testing.T) {
	a := newTestAPI(t)
	a.register("alice@example.com")

	if rec := a.do(http.MethodPost, "/auth/register", "", `{"name":"Again","email":"alice@example.com","password":"secret1"}`); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", rec.Code)
	}
	if rec := a.do(http.MethodPost, "/auth/login", "", `{"email":"alice@example.com","password":"wrong!"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}
	if rec := a.do(http.MethodPost, "/auth/login", "", `{"email":"alice@example.com","password":"secret1"}`); rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := a.do(http.MethodPost, "/auth/register", "", `{"name":"","email":"bad","password":"1"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid register: expected 422, got %d", rec.Code)
	}
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	a := newTestAPI(t)

	if rec := a.do(http.MethodGet, "/medications", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := a.do(http.MethodGet, "/metrics", "garbage", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}

	token := a.register("bob@example.com")
	a.users.remove("bob@example.com")

	rec := a.do(http.MethodGet, "/medications", token, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for deleted account, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
}

func TestRouter_MedicationsAreScopedToOwner(t *testing.T) {
	a := newTestAPI(t)
	alice := a.register("alice@example.com")
	mallory := a.register("mallory@example.com")

	rec := a.do(http.MethodPost, "/medications", alice, `{"name":"Aspirin","dosage":"81mg","frequency":"daily"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var med domain.Medication
	decodeData(t, rec, &med)

	if rec := a.do(http.MethodGet, "/medications/"+med.ID, mallory, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign get: expected 404, got %d", rec.Code)
	}
	if rec := a.do(http.MethodDelete, "/medications/"+med.ID, mallory, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: expected 404, got %d", rec.Code)
	}

	rec = a.do(http.MethodPut, "/medications/"+med.ID, alice, `{"name":"Aspirin","dosage":"100mg","frequency":"daily"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var list []domain.Medication
	decodeData(t, a.do(http.MethodGet, "/medications", alice, ""), &list)
	if len(list) != 1 || list[0].Dosage != "100mg" {
		t.Fatalf("unexpected list: %+v", list)
	}

	var empty []domain.Medication
	decodeData(t, a.do(http.MethodGet, "/medications", mallory, ""), &empty)
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty array for mallory, got %#v", empty)
	}

	if rec := a.do(http.MethodDelete, "/medications/"+med.ID, alice, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
}

func TestRouter_MetricsAndHistory(t *testing.T) {
	a := newTestAPI(t)
	token := a.register("carol@example.com")

	for _, body := range []string{
		`{"type":"heart-rate","value":70,"unit":"bpm"}`,
		`{"type":"blood-pressure","systolic":120,"diastolic":80}`,
		`{"type":"heart-rate","value":72,"unit":"bpm"}`,
	} {
		if rec := a.do(http.MethodPost, "/metrics", token, body); rec.Code != http.StatusCreated {
			t.Fatalf("record %s: expected 201, got %d: %s", body, rec.Code, rec.Body.String())
		}
	}

	if rec := a.do(http.MethodPost, "/metrics", token, `{"type":"blood-pressure","value":120}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid metric: expected 422, got %d", rec.Code)
	}
	if rec := a.do(http.MethodPost, "/metrics", token, `{"type":"mood","value":1,"unit":"x"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown type: expected 422, got %d", rec.Code)
	}

	var history map[string][]domain.Reading
	decodeData(t, a.do(http.MethodGet, "/metrics/history", token, ""), &history)
	hr := history["heart-rate"]
	if len(hr) != 2 || *hr[0].Value != 70 || *hr[1].Value != 72 {
		t.Fatalf("unexpected heart-rate history: %+v", hr)
	}
	if bp := history["blood-pressure"]; len(bp) != 1 || *bp[0].Systolic != 120 || bp[0].Unit != domain.UnitMmHg {
		t.Fatalf("unexpected blood-pressure history: %+v", bp)
	}

	var metrics []domain.HealthMetric
	decodeData(t, a.do(http.MethodGet, "/metrics", token, ""), &metrics)
	if len(metrics) != 3 || *metrics[0].Value != 72 {
		t.Fatalf("expected newest first, got %+v", metrics)
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	a := newTestAPI(t)

	for _, path := range []string{"/health", "/health/ready", "/prometheus"} {
		if rec := a.do(http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
