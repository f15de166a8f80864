package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/vetref/data"
	"github.com/giygas/vetref/datasetparser/entities"
	"github.com/giygas/vetref/interfaces"
	"github.com/giygas/vetref/logging"
	"github.com/giygas/vetref/metrics"
	"github.com/giygas/vetref/monograph"
	"github.com/giygas/vetref/render"
	"github.com/giygas/vetref/report"
	"github.com/giygas/vetref/search"
	"github.com/giygas/vetref/session"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

const noResultsMessage = "Ничего не найдено"

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore     interfaces.DataStore
	validator     interfaces.DataValidator
	renderer      session.Renderer
	healthChecker interfaces.HealthChecker
	sender        interfaces.ReportSender
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(dataStore interfaces.DataStore, validator interfaces.DataValidator, renderer session.Renderer,
	healthChecker interfaces.HealthChecker, sender interfaces.ReportSender) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		dataStore:     dataStore,
		validator:     validator,
		renderer:      renderer,
		healthChecker: healthChecker,
		sender:        sender,
	}
}

// SearchResult is one merged entry in a search answer
type SearchResult struct {
	Key     string            `json:"key"`
	Name    string            `json:"name"`
	Sources []entities.Source `json:"sources"`
}

// SearchResponse is the answer of GET /v1/search
type SearchResponse struct {
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Results []SearchResult `json:"results"`
	Message string         `json:"message,omitempty"`
}

// DrugResponse is the answer of GET /v1/drugs/{key}
type DrugResponse struct {
	render.Content
	AvailableSources []entities.Source `json:"available_sources"`
	Categories       []string          `json:"categories,omitempty"`
}

// MonographsResponse is the answer of GET /v1/monographs
type MonographsResponse struct {
	Name       string                `json:"name"`
	Count      int                   `json:"count"`
	Candidates []monograph.Candidate `json:"candidates"`
}

// ReportRequest is the body of POST /v1/report
type ReportRequest struct {
	DrugKey string `json:"drug_key,omitempty"`
	Comment string `json:"comment"`
}

// ReportResponse is the answer of an accepted report
type ReportResponse struct {
	Status string `json:"status"`
	Text   string `json:"text"`
	URL    string `json:"url"`
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Uptime        string         `json:"uptime"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

func (h *HTTPHandlerImpl) newView() *session.View {
	return session.NewView(h.dataStore, h.renderer)
}

func (h *HTTPHandlerImpl) requireData(w http.ResponseWriter) bool {
	if h.dataStore.IsLoaded() {
		return true
	}
	RespondWithError(w, http.StatusServiceUnavailable, data.ErrNotLoaded.Error())
	return false
}

// Search handles GET /v1/search?q=
func (h *HTTPHandlerImpl) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	if strings.TrimSpace(query) == "" {
		metrics.SearchTotals.WithLabelValues("rejected").Inc()
		RespondWithError(w, http.StatusBadRequest, search.ErrEmptyQuery.Error())
		return
	}
	if err := h.validator.ValidateQuery(query); err != nil {
		logging.Warn("Unusual user input", "query", query, "error", err)
		metrics.SearchTotals.WithLabelValues("rejected").Inc()
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.requireData(w) {
		return
	}

	results, err := h.newView().Search(query)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := SearchResponse{Query: query, Count: len(results), Results: make([]SearchResult, 0, len(results))}
	for _, e := range results {
		resp.Results = append(resp.Results, SearchResult{Key: e.Key, Name: e.Name(), Sources: e.Sources()})
	}
	if len(results) == 0 {
		resp.Message = noResultsMessage
		metrics.SearchTotals.WithLabelValues("empty").Inc()
	} else {
		metrics.SearchTotals.WithLabelValues("results").Inc()
	}

	RespondWithJSON(w, http.StatusOK, resp)
}

// ShowDrug handles GET /v1/drugs/{key}?source=&categories=&format=
func (h *HTTPHandlerImpl) ShowDrug(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := h.validator.ValidateKey(key); err != nil {
		logging.Warn("Unusual user input", "key", key, "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.requireData(w) {
		return
	}

	entry := search.Lookup(key, h.dataStore.GetVetLek(), h.dataStore.GetVidal())
	if entry == nil {
		RespondWithError(w, http.StatusNotFound, "drug not found")
		return
	}

	view := h.newView()
	view.Open(entry)

	if raw := r.URL.Query().Get("source"); raw != "" {
		src, ok := entities.ParseSource(raw)
		if !ok {
			RespondWithError(w, http.StatusBadRequest, "source must be vetlek or vidal")
			return
		}
		if err := view.SwitchSource(src); err != nil {
			RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
	}

	var categories []string
	for _, c := range strings.Split(r.URL.Query().Get("categories"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			view.ToggleCategory(c, true)
			categories = append(categories, c)
		}
	}

	content, err := view.Render(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrSourceUnavailable) {
			RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		logging.Error("Failed to render drug", "key", key, "error", err)
		RespondWithError(w, http.StatusInternalServerError, "failed to render drug")
		return
	}

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(content.HTML())); err != nil {
			logging.Warn("Failed to write response", "error", err)
		}
		return
	}

	RespondWithJSON(w, http.StatusOK, DrugResponse{
		Content:          content,
		AvailableSources: view.AvailableSources(),
		Categories:       categories,
	})
}

// FindMonographs handles GET /v1/monographs?name=
func (h *HTTPHandlerImpl) FindMonographs(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		RespondWithError(w, http.StatusBadRequest, "name cannot be empty")
		return
	}
	if err := h.validator.ValidateQuery(name); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.requireData(w) {
		return
	}

	index := h.dataStore.GetMonographs()
	if index == nil {
		RespondWithError(w, http.StatusServiceUnavailable, "monograph corpus is not configured")
		return
	}
	corpus, err := index.Corpus(r.Context())
	if err != nil {
		logging.Warn("Monograph corpus unavailable", "error", err)
		RespondWithError(w, http.StatusBadGateway, "monograph corpus unavailable")
		return
	}

	candidates := corpus.Candidates(name)
	RespondWithJSON(w, http.StatusOK, MonographsResponse{Name: name, Count: len(candidates), Candidates: candidates})
}

// Report handles POST /v1/report
func (h *HTTPHandlerImpl) Report(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	view := h.newView()
	if req.DrugKey != "" && h.dataStore.IsLoaded() {
		if entry := search.Lookup(req.DrugKey, h.dataStore.GetVetLek(), h.dataStore.GetVidal()); entry != nil {
			view.Open(entry)
		}
	}

	if h.sender == nil {
		RespondWithError(w, http.StatusServiceUnavailable, report.ErrDisabled.Error())
		return
	}
	msg, err := h.sender.NewMessage(view.ReportContext(), req.Comment)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.sender.Send(r.Context(), msg); err != nil {
		if errors.Is(err, report.ErrDisabled) {
			RespondWithError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		logging.Error("Failed to deliver issue report", "error", err)
		RespondWithError(w, http.StatusBadGateway, err.Error())
		return
	}

	RespondWithJSON(w, http.StatusAccepted, ReportResponse{Status: "sent", Text: msg.Text, URL: msg.URL})
}

// HealthCheck handles GET /health
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status, details, httpStatus := h.healthChecker.HealthCheck()

	uptime := time.Duration(0)
	if start := h.dataStore.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	RespondWithJSON(w, httpStatus, HealthResponse{
		Status:        status,
		UptimeSeconds: uptime.Seconds(),
		Uptime:        formatUptimeHuman(uptime),
		Data:          details,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	})
}
