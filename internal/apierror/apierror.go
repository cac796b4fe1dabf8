// Package apierror provides the error envelope returned by the API.
// Handlers build every 4xx/5xx body here, so internal details (stack traces,
// credentials in URLs) never reach the client.
package apierror

import (
	"net/http"
	"strings"
)

// maxUpstreamBody caps how much of a store/relay reply is echoed back.
const maxUpstreamBody = 200

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail   string    `json:"detail"`
	Upstream *Upstream `json:"upstream,omitempty"`
}

// Upstream describes the answer of a third-party service that caused a 502.
// Status is 0 when the service could not be reached at all.
type Upstream struct {
	Status int    `json:"status"`
	Body   string `json:"body,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// NewUpstream builds a 502 body: "<msg>: <reason>", where reason is the
// trimmed upstream body, the status text, or "servicio no disponible".
func NewUpstream(msg string, status int, body string) *APIError {
	body = strings.TrimSpace(body)
	if len(body) > maxUpstreamBody {
		body = body[:maxUpstreamBody]
	}

	reason := body
	switch {
	case status == 0:
		reason = "servicio no disponible"
	case reason == "":
		reason = http.StatusText(status)
	}
	return &APIError{
		Detail:   msg + ": " + reason,
		Upstream: &Upstream{Status: status, Body: body},
	}
}

// ValidationError lists the offending fields by their JSON name.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
