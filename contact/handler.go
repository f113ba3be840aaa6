package contact

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"contact-gateway/logging"
	"contact-gateway/metrics"
	"contact-gateway/middleware/ratelimit"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultMaxBodyBytes = 64 << 10

type Options struct {
	// Endpoint é a URL do processador externo.
	Endpoint  string
	Forwarder Forwarder

	// Guard nil desliga o rate limit (formato serverless, sem estado).
	Guard              *ratelimit.Guard
	TrustXForwardedFor bool
	MaxBodyBytes       int64

	Logger  *zap.Logger
	Metrics *metrics.Metrics

	Now   func() time.Time
	NewID func() string
}

// Handler atende POST /api/contact.
type Handler struct {
	endpoint  string
	forwarder Forwarder
	guard     *ratelimit.Guard
	trustXFF  bool
	maxBody   int64
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string
}

func NewHandler(opts Options) *Handler {
	h := &Handler{
		endpoint:  opts.Endpoint,
		forwarder: opts.Forwarder,
		guard:     opts.Guard,
		trustXFF:  opts.TrustXForwardedFor,
		maxBody:   opts.MaxBodyBytes,
		log:       logging.OrNop(opts.Logger).Named("contact"),
		metrics:   opts.Metrics,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if h.forwarder == nil {
		h.forwarder = NewHTTPForwarder()
	}
	if h.maxBody <= 0 {
		h.maxBody = defaultMaxBodyBytes
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.newID == nil {
		h.newID = uuid.NewString
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		h.fail(w, r, ErrMethodNotAllowed)
		return
	}

	sub, err := DecodeSubmission(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ip := ratelimit.ClientIP(r, h.trustXFF)
	id := h.newID()
	log := h.log.With(zap.String("submission_id", id))
	log.Info("form submission received",
		zap.String("email", sub.Email()),
		zap.String("ip", ip),
	)

	if err := Validate(sub); err != nil {
		h.failWith(w, log, err)
		return
	}

	if h.guard != nil {
		dec := h.guard.Check(w, r, ratelimit.ClientKey(ip, sub.Email()))
		h.metrics.RateDecision(dec.Allowed)
		if !dec.Allowed {
			h.failWith(w, log, ErrRateLimited)
			return
		}
	}

	if h.endpoint == "" {
		h.failWith(w, log, ErrConfiguration)
		return
	}

	payload := sub.WithMetadata(Metadata{
		UserAgent: r.UserAgent(),
		IPAddress: ip,
		At:        h.now(),
	})

	start := time.Now()
	reply, err := h.forwarder.Forward(WithSubmissionID(r.Context(), id), h.endpoint, payload)
	h.metrics.ObserveUpstream(reply.Status, time.Since(start))
	if err != nil {
		var uerr *UpstreamError
		if !errors.As(err, &uerr) && !errors.Is(err, ErrConfiguration) {
			err = &UpstreamError{Reason: UpstreamTransport, Err: err}
		}
		h.failWith(w, log, err)
		return
	}
	if reply.Status < 200 || reply.Status >= 300 {
		h.failWith(w, log, &UpstreamError{Reason: UpstreamStatus, Status: reply.Status})
		return
	}
	if !json.Valid(reply.Body) {
		h.failWith(w, log, &UpstreamError{Reason: UpstreamBody, Status: reply.Status})
		return
	}

	log.Info("form processor accepted submission", zap.Int("upstream_status", reply.Status))
	h.metrics.Submission(metrics.OutcomeForwarded)
	writeRawJSON(w, http.StatusOK, reply.Body)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.failWith(w, h.log.With(zap.String("method", r.Method), zap.String("path", r.URL.Path)), err)
}

// failWith loga o erro interno e responde só com a mensagem pública.
func (h *Handler) failWith(w http.ResponseWriter, log *zap.Logger, err error) {
	pe := classify(err)
	if pe.status >= http.StatusInternalServerError {
		log.Error("contact request failed", zap.Int("status", pe.status), zap.Error(err))
	} else {
		log.Warn("contact request rejected", zap.Int("status", pe.status), zap.Error(err))
	}
	if pe.outcome != "" {
		h.metrics.Submission(pe.outcome)
	}
	writeError(w, pe.status, pe.message)
}
