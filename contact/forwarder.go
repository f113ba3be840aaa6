package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Reply é a resposta crua do processador externo.
type Reply struct {
	Status int
	Body   []byte
}

// Forwarder envia o payload JSON para endpoint via POST.
// Erro só para falha de transporte/configuração; status não-2xx vem em Reply.
type Forwarder interface {
	Forward(ctx context.Context, endpoint string, payload any) (Reply, error)
}

// ForwarderFunc adapta uma função ao Forwarder.
type ForwarderFunc func(ctx context.Context, endpoint string, payload any) (Reply, error)

func (f ForwarderFunc) Forward(ctx context.Context, endpoint string, payload any) (Reply, error) {
	return f(ctx, endpoint, payload)
}

const (
	defaultUpstreamTimeout  = 10 * time.Second
	defaultMaxResponseBytes = 1 << 20
)

// HTTPForwarder é o Forwarder de produção.
type HTTPForwarder struct {
	client    *http.Client
	limiter   *rate.Limiter
	maxBody   int64
	userAgent string
}

type ForwarderOption func(*HTTPForwarder)

// WithHTTPClient troca o client (o timeout dele passa a valer).
func WithHTTPClient(c *http.Client) ForwarderOption {
	return func(f *HTTPForwarder) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout limita a chamada inteira (conexão, envio e leitura da resposta).
func WithTimeout(d time.Duration) ForwarderOption {
	return func(f *HTTPForwarder) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithRate limita o ritmo de saída para o processador, somando todos os clientes.
// rps <= 0 desliga.
func WithRate(rps float64, burst int) ForwarderOption {
	return func(f *HTTPForwarder) {
		if rps <= 0 {
			f.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithMaxResponseBytes(n int64) ForwarderOption {
	return func(f *HTTPForwarder) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

func WithUserAgent(ua string) ForwarderOption {
	return func(f *HTTPForwarder) { f.userAgent = ua }
}

func NewHTTPForwarder(opts ...ForwarderOption) *HTTPForwarder {
	f := &HTTPForwarder{
		client:    &http.Client{Timeout: defaultUpstreamTimeout},
		maxBody:   defaultMaxResponseBytes,
		userAgent: "contact-gateway/1.0",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *HTTPForwarder) Forward(ctx context.Context, endpoint string, payload any) (Reply, error) {
	if endpoint == "" {
		return Reply{}, ErrConfiguration
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Reply{}, fmt.Errorf("encode payload: %w", err)
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return Reply{}, &UpstreamError{Reason: UpstreamTransport, Err: fmt.Errorf("outbound rate wait: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	id := SubmissionIDFrom(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set("X-Submission-Id", id)

	resp, err := f.client.Do(req)
	if err != nil {
		return Reply{}, &UpstreamError{Reason: UpstreamTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return Reply{}, &UpstreamError{Reason: UpstreamTransport, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(raw)) > f.maxBody {
		return Reply{}, &UpstreamError{Reason: UpstreamBody, Status: resp.StatusCode, Err: fmt.Errorf("response larger than %d bytes", f.maxBody)}
	}
	return Reply{Status: resp.StatusCode, Body: raw}, nil
}

type submissionIDKey struct{}

// WithSubmissionID guarda o id da submissão no ctx (vai no header X-Submission-Id).
func WithSubmissionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, submissionIDKey{}, id)
}

func SubmissionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(submissionIDKey{}).(string)
	return id
}
