package contact

import (
	"errors"
	"fmt"
	"net/http"

	"contact-gateway/metrics"
)

var (
	ErrMalformedRequest = errors.New("malformed request body")
	ErrBodyTooLarge     = errors.New("request body too large")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrConfiguration    = errors.New("form endpoint not configured")
	ErrUpstream         = errors.New("form processor failure")
)

// Motivos de *UpstreamError.
const (
	UpstreamTransport = "transport"
	UpstreamStatus    = "status"
	UpstreamBody      = "body"
)

// UpstreamError descreve uma falha do processador externo.
// errors.Is(err, ErrUpstream) vale para qualquer motivo.
type UpstreamError struct {
	Reason string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	msg := "form processor " + e.Reason + " error"
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// Mensagens públicas. Nada do erro interno chega ao cliente.
const (
	msgMissingFields = "Missing required fields"
	msgInvalidJSON   = "Invalid JSON in request body"
	msgTooLarge      = "Request body too large"
	msgMethod        = "Method not allowed"
	msgRateLimited   = "Too many requests. Please try again later."
	msgConfig        = "Server configuration error"
	msgSubmission    = "Form submission failed"
	msgBadUpstream   = "Invalid response from form processor"
	msgInternal      = "An error occurred while processing your request"
	msgNotFound      = "Endpoint not found"
	msgBusy          = "Server is busy. Please try again later."
)

type publicError struct {
	status  int
	message string
	outcome string
}

func classify(err error) publicError {
	var verr *ValidationError
	var uerr *UpstreamError
	switch {
	case errors.As(err, &verr):
		return publicError{http.StatusBadRequest, msgMissingFields, metrics.OutcomeInvalid}
	case errors.Is(err, ErrBodyTooLarge):
		return publicError{http.StatusRequestEntityTooLarge, msgTooLarge, metrics.OutcomeMalformed}
	case errors.Is(err, ErrMalformedRequest):
		return publicError{http.StatusBadRequest, msgInvalidJSON, metrics.OutcomeMalformed}
	case errors.Is(err, ErrMethodNotAllowed):
		return publicError{http.StatusMethodNotAllowed, msgMethod, ""}
	case errors.Is(err, ErrRateLimited):
		return publicError{http.StatusTooManyRequests, msgRateLimited, metrics.OutcomeRateLimited}
	case errors.Is(err, ErrConfiguration):
		return publicError{http.StatusInternalServerError, msgConfig, metrics.OutcomeConfig}
	case errors.As(err, &uerr):
		if uerr.Reason == UpstreamBody {
			return publicError{http.StatusInternalServerError, msgBadUpstream, metrics.OutcomeUpstream}
		}
		return publicError{http.StatusInternalServerError, msgSubmission, metrics.OutcomeUpstream}
	default:
		return publicError{http.StatusInternalServerError, msgInternal, metrics.OutcomeInternal}
	}
}
