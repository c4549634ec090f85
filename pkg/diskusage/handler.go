// pkg/diskusage/handler.go

package diskusage

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/gorilla/mux"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

//go:embed templates/diskusage.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/diskusage.html"))

// HandlerOptions tune the widget server.
type HandlerOptions struct {
	// RatePerSecond limits requests across all clients; zero disables limiting.
	RatePerSecond float64 `mapstructure:"rate_per_second" yaml:"rate_per_second"`
	Burst         int     `mapstructure:"burst" yaml:"burst"`
}

type handler struct {
	fetcher Fetcher
}

type page struct {
	Group string
	Path  string
	Alert string
	Chart *chart
}

// NewHandler returns the widget router:
//
//	GET /diskusage.html?<group>   page with the chart or an alert
//	GET /api/series/{group}       decoded series as JSON
//	GET /rrd/{group}.rrd          the raw archive
func NewHandler(f Fetcher, opts HandlerOptions) http.Handler {
	h := &handler{fetcher: f}

	r := mux.NewRouter()
	r.Use(logRequests)
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)))
	}

	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/diskusage.html", http.StatusFound)
	}).Methods(http.MethodGet)
	r.HandleFunc("/diskusage.html", h.page).Methods(http.MethodGet)
	r.HandleFunc("/api/series/{group}", h.series).Methods(http.MethodGet)
	r.HandleFunc("/rrd/{group:[A-Za-z0-9._-]+}.rrd", h.raw).Methods(http.MethodGet)
	return r
}

func (h *handler) page(w http.ResponseWriter, r *http.Request) {
	p := page{}
	status := http.StatusOK

	group, err := GroupFromQuery(r.URL.RawQuery)
	if err == nil {
		p.Group = group
		p.Path = ResourcePath(group)

		var s *Series
		if s, err = LoadSeries(r.Context(), h.fetcher, group); err == nil {
			c := buildChart(s)
			p.Chart = &c
		}
	}
	if err != nil {
		p.Alert = alertText(err)
		status = statusFor(err)
		otelzap.Ctx(r.Context()).Warn("Disk usage page rendered with alert",
			zap.String("group", group), zap.Error(err))
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		otelzap.Ctx(r.Context()).Error("Template execution failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (h *handler) series(w http.ResponseWriter, r *http.Request) {
	group, err := ValidateGroup(mux.Vars(r)["group"])
	if err != nil {
		writeJSONError(w, statusFor(err), err)
		return
	}
	s, err := LoadSeries(r.Context(), h.fetcher, group)
	if err != nil {
		writeJSONError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handler) raw(w http.ResponseWriter, r *http.Request) {
	group, err := ValidateGroup(mux.Vars(r)["group"])
	if err != nil {
		http.Error(w, alertText(err), statusFor(err))
		return
	}
	body, err := h.fetcher.Fetch(r.Context(), group)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ErrResourceNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(body)
}

// alertText is the operator-facing message for err.
func alertText(err error) string {
	var classified *gsc_err.ClassifiedError
	if errors.As(err, &classified) {
		return classified.Message
	}
	return err.Error()
}

func statusFor(err error) int {
	switch gsc_err.CategoryOf(err) {
	case gsc_err.CategoryValidation:
		return http.StatusBadRequest
	case gsc_err.CategoryNotFound:
		return http.StatusNotFound
	case gsc_err.CategoryParse:
		return http.StatusUnprocessableEntity
	case gsc_err.CategoryNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("Failed to encode JSON response", zap.Error(err))
	}
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": alertText(err)})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		otelzap.Ctx(r.Context()).Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func rateLimit(l *rate.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
