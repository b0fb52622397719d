package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Deratheone/Signal-Hunt/internal/models"
	"github.com/Deratheone/Signal-Hunt/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockMonitoring struct {
	mu         sync.Mutex
	snap       models.RadarSnapshot
	radarCalls int
}

func (m *mockMonitoring) Radar() models.RadarSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.radarCalls++
	return m.snap
}

// calls reads the snapshot counter without racing the ws writer goroutine.
func (m *mockMonitoring) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.radarCalls
}

type mockHunt struct {
	scoreResp  models.ScoreReport
	resetResp  models.SessionState
	resetErr   error
	resetCalls int
}

func (m *mockHunt) Score() models.ScoreReport {
	return m.scoreResp
}
func (m *mockHunt) Reset(ctx context.Context) (models.SessionState, error) {
	m.resetCalls++
	return m.resetResp, m.resetErr
}

type mockExport struct {
	resp models.HuntReport
}

func (m *mockExport) Report() models.HuntReport {
	return m.resp
}

type mockEventLog struct {
	resp     []models.GameEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.GameEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
