package apierror

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUpstream(t *testing.T) {
	e := NewUpstream("No se pudo guardar el ticket", 401, "  Permission denied\n")
	assert.Equal(t, "No se pudo guardar el ticket: Permission denied", e.Detail)
	require.NotNil(t, e.Upstream)
	assert.Equal(t, 401, e.Upstream.Status)

	e = NewUpstream("x", 503, "")
	assert.Equal(t, "x: Service Unavailable", e.Detail)

	e = NewUpstream("x", 0, "dial tcp: refused")
	assert.Equal(t, "x: servicio no disponible", e.Detail)

	e = NewUpstream("x", 500, strings.Repeat("a", 500))
	assert.Len(t, e.Upstream.Body, maxUpstreamBody)
}

func TestNew(t *testing.T) {
	assert.Nil(t, New("x").Upstream)
	assert.Equal(t, "Error de validacion", NewValidation(map[string]string{"a": "required"}).Detail)
}
