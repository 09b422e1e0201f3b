package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"salonq/internal/config"
	"salonq/internal/database"
	"salonq/internal/queue"
	"salonq/internal/service"

	"github.com/rs/zerolog"
)

const whatsappPrefix = "whatsapp:"

// QueueOperations is what the HTTP surface needs from the queue service.
type QueueOperations interface {
	HandleInbound(ctx context.Context, body, phone string) (string, error)
	Advance(ctx context.Context) (*service.AdvanceResult, error)
	Prioritize(ctx context.Context, id int64) error
	Snapshot(ctx context.Context) []queue.Position
}

type SettingsOperations interface {
	IsBotActive(ctx context.Context) bool
	Authorize(ctx context.Context, code string) bool
	Toggle(ctx context.Context) (bool, error)
}

type Exporter interface {
	Export(ctx context.Context, w io.Writer, from, to time.Time) error
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators behind the HTTP handlers.
type Deps struct {
	Queue    QueueOperations
	Settings SettingsOperations
	Exporter Exporter
	Store    Pinger
}

// HTTPServer serves the webhook and the admin API.
type HTTPServer struct {
	cfg     config.APIConfig
	deps    Deps
	auth    AdminAuth
	limiter *rateLimiter
	server  *http.Server
	logger  *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, adminCfg config.AdminConfig, deps Deps, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	srv := &HTTPServer{
		cfg:     cfg,
		deps:    deps,
		auth:    HeaderCodeAuth(adminCfg.Header, deps.Settings),
		limiter: newRateLimiter(adminCfg),
		logger:  logger,
	}

	mux := http.NewServeMux()
	srv.routes(mux)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           loggingMiddleware(logger, mux),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return srv
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, instrument(pattern, h))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return RequireAdmin(s.auth, h)
	}

	handle("GET /{$}", s.handleRoot)
	handle("GET /healthz", s.handleHealth)
	handle("POST /whatsapp", s.handleWhatsApp)
	handle("POST /admin/login", s.handleLogin)

	handle("GET /queue", admin(s.handleQueue))
	handle("GET /queue/export", admin(s.handleExport))
	handle("GET /bot/status", admin(s.handleBotStatus))
	handle("POST /bot/toggle", admin(s.handleBotToggle))
	handle("POST /next", admin(s.handleNext))
	handle("POST /priority/{id}", admin(s.handlePriority))

	if s.cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
}

// Handler exposes the routed handler, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, service.ReplyRoot)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Store.PingContext(ctx); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleWhatsApp(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	if err := r.ParseForm(); err != nil {
		logger.Warn().Err(err).Msg("invalid webhook form")
		writeTwiML(w, service.ReplyTechnicalError)
		return
	}

	body := r.PostForm.Get("Body")
	phone := strings.TrimPrefix(strings.TrimSpace(r.PostForm.Get("From")), whatsappPrefix)
	if phone == "" {
		logger.Warn().Msg("webhook without sender")
		writeTwiML(w, service.ReplyTechnicalError)
		return
	}

	reply, err := s.deps.Queue.HandleInbound(r.Context(), body, phone)
	if err != nil {
		logger.Error().Err(err).Str("phone", phone).Msg("inbound message failed")
		reply = service.ReplyTechnicalError
	}
	writeTwiML(w, reply)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(r) {
		writeJSON(w, http.StatusTooManyRequests, map[string]bool{"success": false})
		return
	}

	code, err := readLoginCode(r)
	if err != nil || !s.deps.Settings.Authorize(r.Context(), code) {
		writeJSON(w, http.StatusUnauthorized, map[string]bool{"success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// readLoginCode accepts both JSON and form bodies.
func readLoginCode(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&body); err != nil {
			return "", err
		}
		return body.Code, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostForm.Get("code"), nil
}

func (s *HTTPServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Queue.Snapshot(r.Context()))
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.deps.Exporter == nil {
		writeError(w, http.StatusNotFound, "export disabled")
		return
	}

	from, to, err := exportRange(r, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := s.deps.Exporter.Export(r.Context(), &buf, from, to); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.ExportFileName(from, to)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// exportRange reads from/to (YYYY-MM-DD); default is the last 30 days.
func exportRange(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	const layout = "2006-01-02"
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -30)
	to := today

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		d, err := time.Parse(layout, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date; expected YYYY-MM-DD")
		}
		from = d
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		d, err := time.Parse(layout, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date; expected YYYY-MM-DD")
		}
		to = d
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to is before from")
	}
	// the whole "to" day is included
	return from, to.Add(24*time.Hour - time.Nanosecond), nil
}

func (s *HTTPServer) handleBotStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"bot_active": s.deps.Settings.IsBotActive(r.Context())})
}

func (s *HTTPServer) handleBotToggle(w http.ResponseWriter, r *http.Request) {
	active, err := s.deps.Settings.Toggle(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "toggle failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"bot_active": active})
}

func (s *HTTPServer) handleNext(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Queue.Advance(r.Context())
	switch {
	case errors.Is(err, service.ErrQueueEmpty):
		writeReply(w, http.StatusOK, service.ReplyQueueEmpty)
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("advance failed")
		writeReply(w, http.StatusInternalServerError, service.ReplyTechnicalError)
	default:
		writeReply(w, http.StatusOK, service.ReplyAdvanced(res.Entry.Phone, res.Remaining))
	}
}

func (s *HTTPServer) handlePriority(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	err = s.deps.Queue.Prioritize(r.Context(), id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeReply(w, http.StatusNotFound, service.ReplyUnknownEntry)
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Int64("entry_id", id).Msg("prioritize failed")
		writeReply(w, http.StatusInternalServerError, service.ReplyTechnicalError)
	default:
		writeReply(w, http.StatusOK, service.ReplyPrioritized)
	}
}

func writeReply(w http.ResponseWriter, statusCode int, reply string) {
	writeJSON(w, statusCode, map[string]string{"reply": reply})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
