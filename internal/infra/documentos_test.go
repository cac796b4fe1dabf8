package infra

import (
	"bytes"
	"strings"
	"testing"

	"snp/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func ticketDePrueba() model.Ticket {
	return model.Ticket{
		FirebaseKey:      "jueves_13_11_2025_18_42_31",
		Sucursal:         "Centro",
		Cliente:          "José Pérez",
		NroCliente:       "123",
		Direccion:        "San Martín 100",
		Telefono:         "3415551234",
		Producto:         "061, 070",
		Falla:            "Falla SKU 1 (061): no enciende, Falla SKU 2 (070): ruido",
		FechaCompra:      "2025-10-01",
		CreatedAtDisplay: "13/11/2025, 18:42:31",
		Status:           model.EstadoNuevo,
	}
}

func TestRecibo_UnaPaginaDosCopias(t *testing.T) {
	tk := ticketDePrueba()
	tk.Falla = strings.Repeat("texto de falla muy largo ", 400)

	pdf := buildRecibo(42, tk)
	require.NoError(t, pdf.Error())
	assert.Equal(t, 1, pdf.PageNo())

	copias := copiasRecibo(42, tk)
	assert.Equal(t, CopiaCliente, copias[0].Etiqueta)
	assert.Equal(t, CopiaSucursal, copias[1].Etiqueta)
	assert.Equal(t, copias[0].Ticket, copias[1].Ticket)

	data, err := ReciboBytes(42, tk)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestLineasFalla_Trunca(t *testing.T) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 9)

	lineas := lineasFalla(pdf, strings.Repeat("palabra ", 300), 100, 3)
	require.Len(t, lineas, 3)
	assert.True(t, strings.HasSuffix(lineas[2], "\x85"))

	assert.Nil(t, lineasFalla(pdf, "corto", 100, 0))
	assert.Len(t, lineasFalla(pdf, "corto", 100, 5), 1)
}

func TestExportarXLSX(t *testing.T) {
	a, b := ticketDePrueba(), ticketDePrueba()
	b.Cliente = "Ana"
	data, err := ExportarXLSX([]FilaExport{{Numero: 1, Ticket: a}, {Numero: 2, Ticket: b}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(HojaTickets)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Ticket", rows[0][0])
	assert.Equal(t, "00001", rows[1][0])
	assert.Equal(t, "José Pérez", rows[1][5])
	assert.Equal(t, "01/10/2025", rows[1][11])
	assert.Equal(t, "Ana", rows[2][5])
	assert.Equal(t, "jueves_13_11_2025_18_42_31", rows[2][13])
}
