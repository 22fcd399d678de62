package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sezam-club/sezam/internal/journal"
	"github.com/sezam-club/sezam/internal/sezam/service"
)

// maxRequestBody caps the callback payload. The largest legitimate envelope
// (message_new with a long text) stays well under 4 KiB; 64 KiB is generous.
const maxRequestBody = 64 << 10

type Dependencies struct {
	Logger   *zap.Logger
	Addr     string
	Router   *service.Router
	Journal  *journal.Journal
	Registry *prometheus.Registry
}

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	router     *service.Router
	log        *journal.Logger
}

func NewServer(d Dependencies) *Server {
	s := &Server{
		logger: d.Logger,
		router: d.Router,
		log:    d.Journal.For("httpapi"),
	}

	r := chi.NewRouter()
	r.Use(loggingMiddleware(d.Logger))

	// The chat platform and the door controller both post to the webhook;
	// /callback is the documented path, / kept for older controller firmware.
	r.Post("/", s.handleCallback)
	r.Post("/callback", s.handleCallback)

	r.Get("/healthz", s.handleHealthz)
	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleCallback is the ingress boundary. Whatever goes wrong inside, the
// transport gets 200 "ok": the platform redelivers on anything else, and a
// redelivered event is exactly what the ledger exists to fend off. Failures
// are journaled before being swallowed.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.log.Error("callback read failed", err.Error())
		writeText(w, "ok")
		return
	}

	out, err := s.router.Route(r.Context(), body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSecretMismatch):
			s.log.Debug("secret mismatch", "")
		default:
			s.log.Error("callback failed", err.Error())
			s.logger.Warn("callback failed", zap.Error(err))
		}
		writeText(w, "ok")
		return
	}

	writeText(w, out)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeText(w, "ok")
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
