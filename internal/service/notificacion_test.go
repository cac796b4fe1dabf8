package service

import (
	"testing"

	"snp/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmail_Variantes(t *testing.T) {
	tk := model.Ticket{
		Sucursal:         "Centro",
		Cliente:          "JUAN PEREZ",
		Producto:         "061",
		Falla:            "Falla SKU 1 (061): no enciende",
		FechaCompra:      "2025-10-01",
		CreatedAtDisplay: "jueves, 13/11/2025, 18:42:31",
	}

	gerente, err := RenderEmail(TipoGerente, tk)
	require.NoError(t, err)
	assert.Contains(t, gerente, "Copia de ticket a SNP")
	assert.Contains(t, gerente, "figurás como gerente")
	assert.Contains(t, gerente, "01/10/2025")
	assert.Contains(t, gerente, "&lt;-&gt;", "missing manager email renders as a dash")

	snp, err := RenderEmail(TipoSNP, tk)
	require.NoError(t, err)
	assert.Contains(t, snp, "Nuevo ticket cargado por sucursal Centro")
	assert.Contains(t, snp, "jueves, 13/11/2025, 18:42:31")

	_, err = RenderEmail("otro", tk)
	assert.Error(t, err)
}

func TestRenderEmail_EscapaCampos(t *testing.T) {
	tk := model.Ticket{Sucursal: "Centro", Falla: `<script>alert("x")</script>`}

	html, err := RenderEmail(TipoSNP, tk)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestAsuntoSNP(t *testing.T) {
	assert.Equal(t, "Tenés un nuevo ticket cargado por sucursal Norte", AsuntoSNP("Norte"))
}
