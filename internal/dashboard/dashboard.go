// Package dashboard serves the salary dashboard: the HTML page, the JSON API the page
// and the CLI talk to, a websocket for the interactive loop and server-side chart
// images.
//
// Every request is answered by one render cycle of the app; the server holds no
// per-user state beyond the open websocket connections.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"salary-board/internal/app"
	"salary-board/internal/common"
	"salary-board/internal/features"
	"salary-board/internal/ml"
	"salary-board/internal/schema"
	"salary-board/internal/viz"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Renderer produces pages. *app.App implements it.
type Renderer interface {
	Render(ctx context.Context, in app.Input) (*app.Page, error)
	Players() ([]string, error)
	Schema(lang string) []features.Control
}

// ModelLister reports the loaded model artifacts.
type ModelLister interface {
	Models() []ml.ModelMetadata
}

// MetricsInterface defines metrics methods needed by the dashboard
type MetricsInterface interface {
	HTTPRequestsInc(route string, code int)
	WSClientsInc()
	WSClientsDec()
}

// Config holds the server settings.
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Language     string
	Gatherer     prometheus.Gatherer
}

// Dashboard is the HTTP server of the salary dashboard.
type Dashboard struct {
	renderer  Renderer
	models    ModelLister
	metrics   MetricsInterface
	language  string
	page      *template.Template
	router    *mux.Router
	server    *http.Server
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	isRunning bool
	mu        sync.Mutex
}

// New creates a dashboard with its routes registered. models and metrics may be nil.
func New(renderer Renderer, models ModelLister, metrics MetricsInterface, cfg Config) *Dashboard {
	d := &Dashboard{
		renderer: renderer,
		models:   models,
		metrics:  metrics,
		language: cfg.Language,
		page:     template.Must(template.New("page").Parse(pageTemplate)),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  make(map[*websocket.Conn]bool),
	}

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := mux.NewRouter()
	r.HandleFunc(common.RouteIndex, d.handleIndex).Methods(http.MethodGet)
	r.HandleFunc(common.RouteRender, d.handleRender).Methods(http.MethodPost)
	r.HandleFunc(common.RoutePlayers, d.handlePlayers).Methods(http.MethodGet)
	r.HandleFunc(common.RouteSchema, d.handleSchema).Methods(http.MethodGet)
	r.HandleFunc(common.RouteModels, d.handleModels).Methods(http.MethodGet)
	r.HandleFunc("/charts/{name:[a-z]+}.png", d.handleChart).Methods(http.MethodGet)
	r.HandleFunc(common.RouteWS, d.handleWebSocket).Methods(http.MethodGet)
	r.HandleFunc(common.RouteHealth, d.handleHealth).Methods(http.MethodGet)
	r.Handle(common.RouteMetrics, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	d.router = r

	d.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return d
}

// Handler returns the router, for tests and embedding.
func (d *Dashboard) Handler() http.Handler {
	return d.router
}

// Start starts the HTTP server in the background.
func (d *Dashboard) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isRunning {
		return fmt.Errorf("dashboard is already running")
	}

	go func() {
		log.Info().
			Str("address", d.server.Addr).
			Msg("Starting dashboard server")

		if err := d.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Dashboard server failed")
		}
	}()

	d.isRunning = true
	return nil
}

// Stop closes the websocket connections and shuts the server down.
func (d *Dashboard) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isRunning {
		return nil
	}

	d.clientsMu.Lock()
	for client := range d.clients {
		client.Close()
	}
	d.clients = make(map[*websocket.Conn]bool)
	d.clientsMu.Unlock()

	if err := d.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown dashboard server")
		return err
	}

	d.isRunning = false
	log.Info().Msg("Dashboard stopped")
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a render error to an HTTP status.
func statusFor(err error) int {
	switch {
	case app.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v before the status goes out, so an unencodable value is
// reported as a 500 rather than an empty 200.
func (d *Dashboard) writeJSON(w http.ResponseWriter, route string, code int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Error().Err(err).Str("route", route).Msg("Failed to encode response")
		code = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorResponse{Error: "response encoding failed"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Warn().Err(err).Str("route", route).Msg("Failed to write response")
	}
	d.count(route, code)
}

func (d *Dashboard) writeError(w http.ResponseWriter, route string, code int, err error) {
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("route", route).Msg("Request failed")
	}
	d.writeJSON(w, route, code, errorResponse{Error: err.Error()})
}

func (d *Dashboard) count(route string, code int) {
	if d.metrics != nil {
		d.metrics.HTTPRequestsInc(route, code)
	}
}

type pageData struct {
	Lang    string
	Copy    pageCopy
	Players []playerOption
}

// playerOption is one selector entry: the name sent back and the text shown.
type playerOption struct {
	Value string
	Label string
}

func (d *Dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	players, err := d.renderer.Players()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list players")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		d.count(common.RouteIndex, http.StatusInternalServerError)
		return
	}

	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = d.language
	}
	tag := schema.MatchLanguage(lang)
	options := make([]playerOption, len(players))
	for i, name := range players {
		options[i] = playerOption{Value: name, Label: schema.PlayerLabel(name, tag)}
	}
	data := pageData{Lang: lang, Copy: copyFor(lang), Players: options}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := d.page.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("Failed to render page")
	}
	d.count(common.RouteIndex, http.StatusOK)
}

func (d *Dashboard) handleRender(w http.ResponseWriter, r *http.Request) {
	var in app.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		d.writeError(w, common.RouteRender, http.StatusBadRequest, fmt.Errorf("invalid input: %w", err))
		return
	}

	page, err := d.renderer.Render(r.Context(), in)
	if err != nil {
		d.writeError(w, common.RouteRender, statusFor(err), err)
		return
	}
	d.writeJSON(w, common.RouteRender, http.StatusOK, page)
}

func (d *Dashboard) handlePlayers(w http.ResponseWriter, r *http.Request) {
	players, err := d.renderer.Players()
	if err != nil {
		d.writeError(w, common.RoutePlayers, http.StatusInternalServerError, err)
		return
	}
	d.writeJSON(w, common.RoutePlayers, http.StatusOK, players)
}

func (d *Dashboard) handleSchema(w http.ResponseWriter, r *http.Request) {
	d.writeJSON(w, common.RouteSchema, http.StatusOK, d.renderer.Schema(r.URL.Query().Get("lang")))
}

func (d *Dashboard) handleModels(w http.ResponseWriter, r *http.Request) {
	models := []ml.ModelMetadata{}
	if d.models != nil {
		models = d.models.Models()
	}
	d.writeJSON(w, common.RouteModels, http.StatusOK, models)
}

func (d *Dashboard) handleHealth(w http.ResponseWriter, r *http.Request) {
	d.writeJSON(w, common.RouteHealth, http.StatusOK, map[string]string{"status": "ok"})
}

func (d *Dashboard) handleChart(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	q := r.URL.Query()
	in := app.Input{Player: q.Get("player"), Language: q.Get("lang")}

	switch name {
	case viz.KindSalaries:
		in.Predict = true
	case viz.KindLeaders, viz.KindEfficiency:
		in.ShowLeague = true
	default:
		d.writeError(w, common.RouteChart, http.StatusNotFound, fmt.Errorf("unknown chart %q", name))
		return
	}

	page, err := d.renderer.Render(r.Context(), in)
	if err != nil {
		d.writeError(w, common.RouteChart, statusFor(err), err)
		return
	}

	var fig viz.Figure
	switch name {
	case viz.KindSalaries:
		fig = page.Prediction.SalaryChart
	case viz.KindLeaders:
		fig = page.League.LeadersChart
	case viz.KindEfficiency:
		fig = page.League.EfficiencyChart
	}

	w.Header().Set("Content-Type", "image/png")
	if err := viz.RenderPNG(fig, w, viz.DefaultWidth, viz.DefaultHeight); err != nil {
		// headers are not committed until the first write
		w.Header().Set("Content-Type", "application/json")
		code := http.StatusInternalServerError
		if errors.Is(err, viz.ErrEmptyFigure) {
			code = http.StatusNotFound
		}
		d.writeError(w, common.RouteChart, code, err)
		return
	}
	d.count(common.RouteChart, http.StatusOK)
}

// handleWebSocket runs the interactive loop: every text message is an Input and is
// answered with the rendered Page, or an error object when rendering fails.
func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	d.clientsMu.Lock()
	d.clients[conn] = true
	d.clientsMu.Unlock()
	if d.metrics != nil {
		d.metrics.WSClientsInc()
	}
	log.Debug().Str("remote", r.RemoteAddr).Msg("WebSocket client connected")

	defer func() {
		d.clientsMu.Lock()
		delete(d.clients, conn)
		d.clientsMu.Unlock()
		if d.metrics != nil {
			d.metrics.WSClientsDec()
		}
		log.Debug().Str("remote", r.RemoteAddr).Msg("WebSocket client disconnected")
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var reply interface{}
		var in app.Input
		if err := json.Unmarshal(data, &in); err != nil {
			reply = errorResponse{Error: fmt.Sprintf("invalid input: %v", err)}
		} else if page, err := d.renderer.Render(r.Context(), in); err != nil {
			if statusFor(err) >= http.StatusInternalServerError {
				log.Error().Err(err).Msg("WebSocket render failed")
			}
			reply = errorResponse{Error: err.Error()}
		} else {
			reply = page
		}

		out, err := json.Marshal(reply)
		if err != nil {
			log.Error().Err(err).Msg("Failed to encode WebSocket reply")
			out, _ = json.Marshal(errorResponse{Error: "response encoding failed"})
		}
		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			log.Warn().Err(err).Msg("Failed to send page to WebSocket client")
			break
		}
	}
}
