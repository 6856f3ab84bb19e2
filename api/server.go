// Package api serves the ledger, bill extraction and dashboard data over a
// local HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/aqlanhadi/solarpayback/dashboard"
	"github.com/aqlanhadi/solarpayback/extractor"
	"github.com/aqlanhadi/solarpayback/extractor/common"
	"github.com/aqlanhadi/solarpayback/ledger"
	"github.com/aqlanhadi/solarpayback/report"
	"github.com/aqlanhadi/solarpayback/session"
)

// Config holds the API server configuration
type Config struct {
	Port            string
	MaxUploadMemory int64
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:            ":8080",
		MaxUploadMemory: 32 << 20,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server owns the session state and the ledger file. Handlers run one at a
// time; the file itself has no lock against other processes.
type Server struct {
	config  Config
	mux     *http.ServeMux
	store   *ledger.Store
	state   *session.State
	metrics *metrics
	now     func() time.Time

	mu sync.Mutex
}

// New creates a new API server with the given configuration
func New(cfg Config, store *ledger.Store, state *session.State) *Server {
	s := &Server{
		config:  cfg,
		mux:     http.NewServeMux(),
		store:   store,
		state:   state,
		metrics: newMetrics(),
		now:     time.Now,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.handle("/health", s.handleHealth)
	s.handle("/extract", s.handleExtract)
	s.handle("/prefill", s.handlePrefill)
	s.handle("/periods", s.handlePeriods)
	s.handle("/periods/last", s.handleDeleteLast)
	s.handle("/summary", s.handleSummary)
	s.handle("/dashboard", s.handleDashboard)
	s.handle("/report", s.handleReport)
	s.handle("/goal", s.handleGoal)
	s.mux.Handle("/metrics", s.metrics.handler())
}

func (s *Server) handle(route string, h http.HandlerFunc) {
	s.mux.HandleFunc(route, s.metrics.instrument(route, s.serialize(h)))
}

func (s *Server) serialize(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		h(w, r)
	}
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Port,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("server shutdown")
		}
	}()

	log.WithField("addr", s.config.Port).Info("starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	log.WithField("remote", r.RemoteAddr).Debug("extract request")

	if !allowMethods(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseMultipartForm(s.config.MaxUploadMemory); err != nil {
		log.WithError(err).Warn("error parsing multipart form")
		http.Error(w, "Could not parse multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		log.WithError(err).Warn("error getting file from form")
		http.Error(w, "Could not get uploaded file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		log.WithError(err).Error("error reading file bytes")
		http.Error(w, "Could not read file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if parseExtractOptions(r).TextOnly {
		s.handleTextOnlyExtract(w, fileBytes, handler.Filename)
		return
	}

	result, err := extractor.ProcessReader(bytes.NewReader(fileBytes), handler.Filename)
	s.metrics.observeExtraction(result.Missing, err)
	if err != nil {
		log.WithError(err).WithField("file", handler.Filename).Warn("bill could not be read")
		http.Error(w, "Could not read bill: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.state.Stage(result.Prefill)
	writeJSON(w, http.StatusOK, result)
}

// ExtractOptions holds the options for extraction
type ExtractOptions struct {
	TextOnly bool
}

func parseExtractOptions(r *http.Request) ExtractOptions {
	return ExtractOptions{
		TextOnly: coalesce(r.FormValue("text_only"), r.URL.Query().Get("text_only")) == "true",
	}
}

func (s *Server) handleTextOnlyExtract(w http.ResponseWriter, data []byte, filename string) {
	text, err := common.ExtractText(data)
	if err != nil {
		log.WithError(err).Warn("error extracting text")
		http.Error(w, "Could not extract text from file: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"filename": filename,
		"text":     text,
	})
}

func (s *Server) handlePrefill(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	if s.state.PendingPrefill == nil {
		http.Error(w, "No bill has been uploaded", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.state.PendingPrefill)
}

type periodsResponse struct {
	Columns  []string                 `json:"columns"`
	Periods  []ledger.Period          `json:"periods"`
	Warnings []ledger.CoercionWarning `json:"warnings,omitempty"`
}

// load reads the ledger for display. A load failure is logged and shown as
// an empty ledger.
func (s *Server) load() (*ledger.Ledger, []ledger.CoercionWarning) {
	l, warnings, err := s.store.Load()
	if err != nil {
		log.WithError(err).Error("could not load ledger, continuing with no periods")
	}
	for _, w := range warnings {
		log.Warn(w.String())
	}
	s.metrics.ledgerPeriods.Set(float64(l.Len()))
	return l, warnings
}

func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if r.Method == http.MethodPost {
		s.handleSubmit(w, r)
		return
	}

	l, warnings := s.load()
	periods := l.Periods()
	if periods == nil {
		periods = []ledger.Period{}
	}
	writeJSON(w, http.StatusOK, periodsResponse{
		Columns:  l.Columns(),
		Periods:  periods,
		Warnings: warnings,
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var sub ledger.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		s.metrics.submissions.WithLabelValues(resultRejected).Inc()
		http.Error(w, "Could not decode submission: "+err.Error(), http.StatusBadRequest)
		return
	}

	period, err := sub.ToPeriod()
	if err != nil {
		s.metrics.submissions.WithLabelValues(resultRejected).Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	l, _, err := s.store.LoadForUpdate()
	if err != nil {
		s.metrics.submissions.WithLabelValues(resultError).Inc()
		log.WithError(err).Error("refusing to write over an unreadable ledger")
		http.Error(w, "Ledger could not be read: "+err.Error(), http.StatusInternalServerError)
		return
	}

	period = l.Append(period)
	if err := s.store.Save(l); err != nil {
		s.metrics.submissions.WithLabelValues(resultError).Inc()
		log.WithError(err).Error("failed to save ledger")
		http.Error(w, "Could not save ledger: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.state.Clear()
	s.metrics.submissions.WithLabelValues(resultSuccess).Inc()
	s.metrics.ledgerPeriods.Set(float64(l.Len()))
	log.WithField("period", period.Label).WithField("number", period.Number).Info("period added")
	writeJSON(w, http.StatusCreated, period)
}

func (s *Server) handleDeleteLast(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodDelete) {
		return
	}

	l, _, err := s.store.LoadForUpdate()
	if err != nil {
		log.WithError(err).Error("refusing to write over an unreadable ledger")
		http.Error(w, "Ledger could not be read: "+err.Error(), http.StatusInternalServerError)
		return
	}

	removed, err := l.DeleteLast()
	if errors.Is(err, ledger.ErrEmptyLedger) {
		log.Warn("no periods to delete")
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	if err := s.store.Save(l); err != nil {
		log.WithError(err).Error("failed to save ledger")
		http.Error(w, "Could not save ledger: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.metrics.ledgerPeriods.Set(float64(l.Len()))
	log.WithField("period", removed.Label).Info("last period deleted")
	writeJSON(w, http.StatusOK, removed)
}

// parseFilter reads repeated period, source and tier query parameters.
func parseFilter(r *http.Request) ledger.Filter {
	q := r.URL.Query()
	return ledger.Filter{
		Periods: q["period"],
		Sources: q["source"],
		Tiers:   q["tier"],
	}
}

func (s *Server) view(r *http.Request) ledger.View {
	l, _ := s.load()
	return l.Filter(parseFilter(r))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, ledger.Summarize(s.view(r), s.state.GoalAmount))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Build(s.view(r), s.state.GoalAmount))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}

	out, err := report.Render(dashboard.Build(s.view(r), s.state.GoalAmount), s.now())
	if err != nil {
		log.WithError(err).Error("failed to render report")
		http.Error(w, "Could not render report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="solarpayback-report.pdf"`)
	w.Write(out)
}

type goalRequest struct {
	Goal ledger.FormValue `json:"goal"`
}

func (s *Server) handleGoal(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPut) {
		return
	}

	if r.Method == http.MethodPut {
		var req goalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Could not decode goal: "+err.Error(), http.StatusBadRequest)
			return
		}
		goal, err := common.ParseAmount(string(req.Goal))
		if err != nil {
			http.Error(w, "Goal is not a number", http.StatusBadRequest)
			return
		}
		if err := s.state.SetGoal(goal); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.WithField("goal", goal.String()).Info("goal updated")
	}

	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"goal": s.state.GoalAmount})
}

// coalesce returns the first non-empty string
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
