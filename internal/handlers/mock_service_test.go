package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"greenhouse_control/internal/config"
	"greenhouse_control/internal/logger"
	"greenhouse_control/internal/models"
	"greenhouse_control/internal/repository"
	"greenhouse_control/internal/repository/db"
	"greenhouse_control/internal/service"

	"github.com/gin-gonic/gin"
)

const testToken = "SUPER_SECRET_TOKEN"

var errBoom = errors.New("boom")

// ---- Service Mocks ----

type mockActuators struct {
	states   []models.ActuatorState
	setErr   error
	setCalls int
}

func (m *mockActuators) List() []models.ActuatorState { return m.states }
func (m *mockActuators) SetState(ctx context.Context, name, state string) (models.ActuatorState, error) {
	m.setCalls++
	if m.setErr != nil {
		return models.ActuatorState{}, m.setErr
	}
	return models.ActuatorState{Name: name, State: state, UpdatedAt: time.Now().UTC()}, nil
}
func (m *mockActuators) IsOn(name string) bool { return false }
func (m *mockActuators) Names() []string { return models.DefaultActuators }

type mockFailsafe struct {
	status   models.FailsafeStatus
	applyErr error
}

func (m *mockFailsafe) Status() models.FailsafeStatus { return m.status }
func (m *mockFailsafe) ApplyOverride(ctx context.Context, target string, state bool) (models.FailsafeStatus, error) {
	if m.applyErr != nil {
		return m.status, m.applyErr
	}
	m.status = m.status.With(target, state)
	return m.status, nil
}
func (m *mockFailsafe) Trip(ctx context.Context, flag string, tripped bool, reason string) error {
	return nil
}
func (m *mockFailsafe) ClearIf(ctx context.Context, flag, reason string) error { return nil }

// mockCulture keeps its phase when setErr is set, like the real store.
type mockCulture struct {
	phase  models.CulturePhase
	setErr error
}

func (m *mockCulture) Phase() models.CulturePhase { return m.phase }
func (m *mockCulture) SetPhase(ctx context.Context, p models.CulturePhase) (models.CulturePhase, error) {
	if m.setErr != nil {
		return m.phase, m.setErr
	}
	m.phase = p
	return m.phase, nil
}

type mockSensors struct {
	reading models.SensorReading
	err     error
}

func (m *mockSensors) Latest() (models.SensorReading, error) { return m.reading, m.err }
func (m *mockSensors) RecordAir(r models.AirReading, at time.Time) {}
func (m *mockSensors) RecordSoil(r models.SoilReading, at time.Time) {}

type mockEventLog struct {
	resp     []models.ControlEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.ControlEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// newMockService returns a service with the real authenticator and validator
// and the given collaborators.
func newMockService() *service.Service {
	return &service.Service{
		Authenticator: service.NewTokenAuthenticator(testToken),
		Validation:    service.NewRequestValidator(models.DefaultActuators, false),
	}
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, config.RateLimitConfig{}, config.HTTPConfig{})
	return h.InitRoutes()
}

// newIntegrationService wires the real services over a temporary SQLite file.
func newIntegrationService(t *testing.T, allowGlobal bool) (*service.Service, *repository.Repository) {
	t.Helper()
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "greenhouse.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	repos := repository.NewRepository(conn)
	svc := service.NewService(repos, nil, service.Options{
		Token:       testToken,
		AllowGlobal: allowGlobal,
	}, logger.Nop())
	if err := svc.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	return svc, repos
}

func doRequest(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
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
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
