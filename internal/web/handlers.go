package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/seanhalberthal/uncomment/internal/config"
	"github.com/seanhalberthal/uncomment/internal/logger"
	"github.com/seanhalberthal/uncomment/internal/metrics"
	"github.com/seanhalberthal/uncomment/internal/processor"
	"github.com/seanhalberthal/uncomment/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// bodyOverhead is the allowance for JSON or form encoding on top of the
// code size limit.
const bodyOverhead = 4096

// Handler serves the web routes for a processor.
type Handler struct {
	proc    *processor.Processor
	page    *template.Template
	maxBody int64
	origins []string
	limiter *RateLimiter
}

// pageData feeds the index template.
type pageData struct {
	Languages []types.Language
	Selected  string
	Code      string
	Output    string
	Message   string
	IsError   bool
	Version   string
}

// NewHandler builds the web handler.
func NewHandler(proc *processor.Processor, cfg *config.Config) (*Handler, error) {
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	h := &Handler{
		proc:    proc,
		page:    page,
		maxBody: 2*cfg.Limits.MaxInputBytes + bodyOverhead,
		origins: cfg.Server.AllowedOrigins,
	}
	if cfg.Limits.RatePerSecond > 0 {
		h.limiter = NewRateLimiter(cfg.Limits.RatePerSecond, cfg.Limits.Burst)
	}
	return h, nil
}

// Routes returns the full middleware-wrapped route tree.
func (h *Handler) Routes() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/strip", h.handleStrip)
	api.HandleFunc("GET /api/languages", h.handleLanguages)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.Handle("POST /{$}", h.limit(http.HandlerFunc(h.handleForm)))
	mux.Handle("/api/", cors(h.origins)(h.limit(api)))
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	return requestID(accessLog(metrics.Middleware(mux)))
}

// limit applies the rate limiter when one is configured.
func (h *Handler) limit(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}
	return h.limiter.Middleware(next)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.newPage())
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	data := h.newPage()

	if err := r.ParseForm(); err != nil {
		status := http.StatusBadRequest
		if isTooLarge(err) {
			status = http.StatusRequestEntityTooLarge
			err = processor.ErrInputTooLarge
		}
		data.Message, data.IsError = userMessage(err), true
		h.render(w, r, status, data)
		return
	}

	data.Code = r.PostFormValue("code")
	data.Selected = r.PostFormValue("language")

	res, err := h.proc.Process(types.StripRequest{Code: data.Code, Language: data.Selected})
	if err != nil {
		data.Message, data.IsError = userMessage(err), true
		h.render(w, r, statusFor(err), data)
		return
	}

	data.Output = res.Output
	data.Message = res.Message
	h.render(w, r, http.StatusOK, data)
}

func (h *Handler) handleStrip(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req types.StripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, processor.ErrInputTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.proc.Process(req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	logger.WithContext(r.Context()).Debug("stripped snippet",
		"language", res.Language,
		"lines_before", res.OriginalLines,
		"lines_after", res.ResultLines,
		"cached", res.Cached,
	)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.proc.Languages())
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": types.Version,
	})
}

func (h *Handler) newPage() pageData {
	return pageData{
		Languages: h.proc.Languages(),
		Version:   types.Version,
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf strings.Builder
	if err := h.page.Execute(&buf, data); err != nil {
		logger.WithContext(r.Context()).Error("failed to render page", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

// statusFor maps processor errors to HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, processor.ErrInputTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// userMessage turns an error into a sentence for the form.
func userMessage(err error) string {
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	msg = string(unicode.ToUpper(r)) + msg[size:]
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
