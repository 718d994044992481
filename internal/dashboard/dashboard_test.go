package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"salary-board/internal/app"
	"salary-board/internal/dataset"
	"salary-board/internal/features"
	"salary-board/internal/ml"
	"salary-board/internal/schema"
	"salary-board/internal/viz"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type fakeRenderer struct {
	mu     sync.Mutex
	inputs []app.Input
	err    error
}

func (f *fakeRenderer) Render(ctx context.Context, in app.Input) (*app.Page, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if in.Player == "Nobody" {
		return nil, fmt.Errorf("%w: %s", features.ErrUnknownPlayer, in.Player)
	}

	page := &app.Page{Player: in.Player, Language: "ru", Features: map[string]float64{schema.Age: 25}}
	switch in.Player {
	case "Blank PER":
		page.Features[schema.Efficiency] = math.NaN()
	case "Unencodable":
		page.Prediction = &app.Prediction{Salary: math.NaN()}
		return page, nil
	}
	if in.Predict {
		neighbors := []dataset.Player{
			{Name: "A", Salary: 3000000, Features: schema.Vector{1, 25, 1000, 15, 20, 1}},
			{Name: "B", Salary: 1000000, Features: schema.Vector{30, 23, 800, 12, 18, -1}},
		}
		page.Prediction = &app.Prediction{
			Salary:      123456.78,
			Message:     "Predicted salary for " + in.Player + ": $123,456.78",
			Neighbors:   neighbors,
			SalaryChart: viz.SalaryBar(neighbors),
			SkillChart:  viz.SkillRadar(neighbors),
		}
	}
	if in.ShowLeague {
		leaders := []dataset.Leader{
			{Player: "James Harden", Points: 2191, FieldGoalsAttempts: 1449, FreeThrowsAttempts: 727, FieldGoalsMade: 651, FreeThrowsMade: 624, GamesPlayed: 72},
			{Player: "Anthony Davis", Points: 2110, FieldGoalsAttempts: 1462, FreeThrowsAttempts: 602, FieldGoalsMade: 780, FreeThrowsMade: 495, GamesPlayed: 75},
			{Player: "Damian Lillard", Points: 1962, FieldGoalsAttempts: 1451, FreeThrowsAttempts: 534, FieldGoalsMade: 621, FreeThrowsMade: 493, GamesPlayed: 73},
		}
		page.League = &app.League{
			Leaders:         leaders,
			LeadersChart:    viz.PointLeaders(leaders),
			EfficiencyChart: viz.ScoringEfficiency(leaders),
		}
	}
	return page, nil
}

func (f *fakeRenderer) Players() ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []string{schema.AbstractPlayer, "Stephen Curry", "LeBron James"}, nil
}

func (f *fakeRenderer) Schema(lang string) []features.Control {
	return features.Catalog(schema.MatchLanguage(lang))
}

type fakeModels struct{}

func (fakeModels) Models() []ml.ModelMetadata {
	return []ml.ModelMetadata{{Kind: ml.KindLinear, Version: "2018.1"}, {Kind: ml.KindKNN, Version: "2018.1"}}
}

type fakeMetrics struct {
	mu       sync.Mutex
	requests map[string]int
	clients  int
}

func (m *fakeMetrics) HTTPRequestsInc(route string, code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.requests == nil {
		m.requests = make(map[string]int)
	}
	m.requests[fmt.Sprintf("%s %d", route, code)]++
}

func (m *fakeMetrics) WSClientsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients++
}

func (m *fakeMetrics) WSClientsDec() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients--
}

func (m *fakeMetrics) get(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[key]
}

func (m *fakeMetrics) connected() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients
}

func newTestDashboard(r Renderer, m *fakeMetrics) *Dashboard {
	var metrics MetricsInterface
	if m != nil {
		metrics = m
	}
	return New(r, fakeModels{}, metrics, Config{Port: 8501, ReadTimeout: time.Second, WriteTimeout: time.Second, Language: "ru"})
}

func do(t *testing.T, d *Dashboard, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	metrics := &fakeMetrics{}
	d := newTestDashboard(&fakeRenderer{}, metrics)

	rec := do(t, d, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "Веб-сервис для прогнозирования зарплат профессиональных спортсменов")
	assert.Contains(t, body, `<option value="Stephen Curry">Stephen Curry</option>`)
	assert.Contains(t, body, `<option value="Abstract player">Абстрактный игрок</option>`)
	assert.Contains(t, body, "«Абстрактный игрок»")
	assert.Contains(t, body, "basketball-reference.com/about/glossary.html")
	assert.Equal(t, 1, metrics.get("/ 200"))

	rec = do(t, d, http.MethodGet, "/?lang=en", nil)
	assert.Contains(t, rec.Body.String(), "Salary forecasts for professional athletes")
	assert.Contains(t, rec.Body.String(), `<option value="Abstract player">Abstract player</option>`)
}

func TestIndex_AssetFailure(t *testing.T) {
	d := newTestDashboard(&fakeRenderer{err: app.ErrAssetUnavailable}, nil)
	rec := do(t, d, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRender(t *testing.T) {
	renderer := &fakeRenderer{}
	metrics := &fakeMetrics{}
	d := newTestDashboard(renderer, metrics)

	body, err := json.Marshal(app.Input{Player: "Stephen Curry", Predict: true})
	require.NoError(t, err)
	rec := do(t, d, http.MethodPost, "/api/render", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var page map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "Stephen Curry", page["player"])
	prediction := page["prediction"].(map[string]interface{})
	assert.Equal(t, 123456.78, prediction["salary"])
	assert.Len(t, prediction["neighbors"], 2)

	require.Len(t, renderer.inputs, 1)
	assert.True(t, renderer.inputs[0].Predict)
	assert.Equal(t, 1, metrics.get("/api/render 200"))
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name     string
		renderer *fakeRenderer
		body     string
		wantCode int
	}{
		{"malformed body", &fakeRenderer{}, "{", http.StatusBadRequest},
		{"unknown player", &fakeRenderer{}, `{"player":"Nobody"}`, http.StatusBadRequest},
		{"asset failure", &fakeRenderer{err: fmt.Errorf("%w: boom", app.ErrAssetUnavailable)}, `{}`, http.StatusInternalServerError},
		{"cancelled", &fakeRenderer{err: context.Canceled}, `{}`, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDashboard(tt.renderer, nil)
			rec := do(t, d, http.MethodPost, "/api/render", []byte(tt.body))
			assert.Equal(t, tt.wantCode, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestRender_MissingValues(t *testing.T) {
	metrics := &fakeMetrics{}
	d := newTestDashboard(&fakeRenderer{}, metrics)

	body, _ := json.Marshal(app.Input{Player: "Blank PER"})
	rec := do(t, d, http.MethodPost, "/api/render", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"PER":null`)

	body, _ = json.Marshal(app.Input{Player: "Unencodable"})
	rec = do(t, d, http.MethodPost, "/api/render", body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, 1, metrics.get("/api/render 500"))
}

func TestRender_MethodNotAllowed(t *testing.T) {
	d := newTestDashboard(&fakeRenderer{}, nil)
	rec := do(t, d, http.MethodGet, "/api/render", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPlayersSchemaModels(t *testing.T) {
	d := newTestDashboard(&fakeRenderer{}, nil)

	rec := do(t, d, http.MethodGet, "/api/players", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var players []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	assert.Equal(t, schema.AbstractPlayer, players[0])

	rec = do(t, d, http.MethodGet, "/api/schema?lang=en", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var controls []features.Control
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &controls))
	require.Len(t, controls, schema.NumFeatures)
	assert.Equal(t, features.Catalog(language.English), controls)

	rec = do(t, d, http.MethodGet, "/api/models", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var models []ml.ModelMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &models))
	require.Len(t, models, 2)
	assert.Equal(t, ml.KindKNN, models[1].Kind)
}

func TestHealth(t *testing.T) {
	d := newTestDashboard(&fakeRenderer{}, nil)
	rec := do(t, d, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	d := newTestDashboard(&fakeRenderer{}, nil)
	rec := do(t, d, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChart(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantImage bool
	}{
		{"salaries", "/charts/salaries.png?player=Stephen+Curry", http.StatusOK, true},
		{"leaders", "/charts/leaders.png", http.StatusOK, true},
		{"efficiency", "/charts/efficiency.png", http.StatusOK, true},
		{"unknown chart", "/charts/skills.png", http.StatusNotFound, false},
		{"unknown player", "/charts/salaries.png?player=Nobody", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDashboard(&fakeRenderer{}, nil)
			rec := do(t, d, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantImage {
				assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
				assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
			}
		})
	}
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestWebSocket_Loop(t *testing.T) {
	metrics := &fakeMetrics{}
	d := newTestDashboard(&fakeRenderer{}, metrics)
	srv := httptest.NewServer(d.Handler())
	defer srv.Close()

	conn := dialWS(t, srv)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(app.Input{Player: "LeBron James", Predict: true}))
	var page map[string]interface{}
	require.NoError(t, conn.ReadJSON(&page))
	assert.Equal(t, "LeBron James", page["player"])
	assert.NotNil(t, page["prediction"])
	assert.Equal(t, 1, metrics.connected())

	require.NoError(t, conn.WriteJSON(app.Input{Player: "Nobody"}))
	var resp errorResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Contains(t, resp.Error, "Nobody")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	resp = errorResponse{}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Contains(t, resp.Error, "invalid input")

	// the connection survives errors
	require.NoError(t, conn.WriteJSON(app.Input{ShowLeague: true}))
	page = nil
	require.NoError(t, conn.ReadJSON(&page))
	assert.NotNil(t, page["league"])
}

func TestWebSocket_EncodeFailureKeepsConnection(t *testing.T) {
	d := newTestDashboard(&fakeRenderer{}, nil)
	srv := httptest.NewServer(d.Handler())
	defer srv.Close()

	conn := dialWS(t, srv)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(app.Input{Player: "Unencodable"}))
	var resp errorResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.NotEmpty(t, resp.Error)

	require.NoError(t, conn.WriteJSON(app.Input{Player: "Blank PER"}))
	var page map[string]interface{}
	require.NoError(t, conn.ReadJSON(&page))
	assert.Equal(t, "Blank PER", page["player"])
}

func TestWebSocket_DisconnectUpdatesGauge(t *testing.T) {
	metrics := &fakeMetrics{}
	d := newTestDashboard(&fakeRenderer{}, metrics)
	srv := httptest.NewServer(d.Handler())
	defer srv.Close()

	conn := dialWS(t, srv)
	require.NoError(t, conn.WriteJSON(app.Input{}))
	var page map[string]interface{}
	require.NoError(t, conn.ReadJSON(&page))
	conn.Close()

	assert.Eventually(t, func() bool { return metrics.connected() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStartStop(t *testing.T) {
	d := New(&fakeRenderer{}, nil, nil, Config{Port: 18501, ReadTimeout: time.Second, WriteTimeout: time.Second})
	require.NoError(t, d.Start())
	assert.Error(t, d.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, d.Stop(ctx))
	// stopping twice is harmless
	assert.NoError(t, d.Stop(ctx))
}
