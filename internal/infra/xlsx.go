package infra

import (
	"bytes"
	"fmt"

	"snp/internal/model"

	"github.com/xuri/excelize/v2"
)

// HojaTickets is the sheet name used by the history export.
const HojaTickets = "Tickets"

var columnasExport = []string{
	"Ticket", "Fecha", "Sucursal", "Gerente", "Email gerente", "Cliente", "N° cliente",
	"Dirección", "Teléfono", "Producto", "Falla", "Fecha de compra", "Estado", "Clave",
}

// FilaExport is one exported ticket with its derived number.
type FilaExport struct {
	Numero int
	Ticket model.Ticket
}

// ExportarXLSX writes the rows, in the given order, to a single-sheet workbook.
func ExportarXLSX(filas []FilaExport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), HojaTickets); err != nil {
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	header := make([]any, len(columnasExport))
	for i, c := range columnasExport {
		header[i] = c
	}
	if err := f.SetSheetRow(HojaTickets, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: header: %w", err)
	}

	for i, fila := range filas {
		t := fila.Ticket
		row := []any{
			model.FormatNumeroTicket(fila.Numero), t.CreatedAtDisplay, t.Sucursal,
			t.SucursalGerenteNombre, t.SucursalGerenteEmail, t.Cliente, t.NroCliente,
			t.Direccion, t.Telefono, t.Producto, t.Falla, t.FechaCompraDisplay(), t.Status, t.FirebaseKey,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("xlsx: cell name: %w", err)
		}
		if err := f.SetSheetRow(HojaTickets, cell, &row); err != nil {
			return nil, fmt.Errorf("xlsx: row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(HojaTickets, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("xlsx: freeze header: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}
