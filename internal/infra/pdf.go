package infra

// pdf.go: ticket reprint as a PDF receipt using go-pdf/fpdf.
// One A4 page holds two identical copies stacked vertically (customer on top,
// branch below) separated by a dashed cut line:
//   - Header and copy label
//   - Ticket number (5 digits), creation date and branch
//   - Bordered customer block
//   - Products, optional purchase date, wrapped fault text
//
// Auto page break is off: the fault text is truncated to its section so both
// copies always land on the same single page.

import (
	"bytes"
	"fmt"
	"io"

	"snp/internal/model"

	"github.com/go-pdf/fpdf"
)

const (
	reciboMargen     = 12.0
	reciboLineaFalla = 4.5
)

// Copy labels, top to bottom.
const (
	CopiaCliente  = "COPIA CLIENTE"
	CopiaSucursal = "COPIA SUCURSAL"
)

// seccionRecibo is one copy. Both copies are built from the same ticket value;
// only the label differs.
type seccionRecibo struct {
	Etiqueta string
	Numero   int
	Ticket   model.Ticket
}

func copiasRecibo(numero int, t model.Ticket) [2]seccionRecibo {
	return [2]seccionRecibo{
		{Etiqueta: CopiaCliente, Numero: numero, Ticket: t},
		{Etiqueta: CopiaSucursal, Numero: numero, Ticket: t},
	}
}

// RenderRecibo writes the two-copy receipt for ticket t (derived number numero).
func RenderRecibo(w io.Writer, numero int, t model.Ticket) error {
	pdf := buildRecibo(numero, t)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render: %w", err)
	}
	return nil
}

// ReciboBytes renders the receipt into memory (HTTP download).
func ReciboBytes(numero int, t model.Ticket) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderRecibo(&buf, numero, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildRecibo(numero int, t model.Ticket) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(reciboMargen, reciboMargen, reciboMargen)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(fmt.Sprintf("Ticket SNP %s", model.FormatNumeroTicket(numero)), true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()
	mitad := pageH / 2

	copias := copiasRecibo(numero, t)
	for i, c := range copias {
		top := float64(i) * mitad
		dibujarSeccion(pdf, tr, c, top+reciboMargen, top+mitad-reciboMargen, pageW)
	}

	// ── Cut line ─────────────────────────────────────────────────────────────
	pdf.SetDrawColor(120, 120, 120)
	pdf.SetDashPattern([]float64{2, 1.5}, 0)
	pdf.Line(reciboMargen/2, mitad, pageW-reciboMargen/2, mitad)
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetDrawColor(0, 0, 0)

	return pdf
}

func dibujarSeccion(pdf *fpdf.Fpdf, tr func(string) string, s seccionRecibo, top, bottom, pageW float64) {
	contentW := pageW - 2*reciboMargen
	t := s.Ticket
	pdf.SetXY(reciboMargen, top)

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW*0.6, 7, tr("NOVOGAR · SNP"), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW*0.4, 7, tr(s.Etiqueta), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, tr("Servicio de post venta · Ticket de reclamo"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// ── Ticket info ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 6, tr("Ticket N° "+model.FormatNumeroTicket(s.Numero)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW*0.6, 5, tr("Fecha: "+t.CreatedAtDisplay), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.4, 5, tr("Sucursal: "+t.Sucursal), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	// ── Customer block ───────────────────────────────────────────────────────
	const filaH = 5.0
	boxY := pdf.GetY()
	filas := [][2]string{
		{"Cliente", t.Cliente},
		{"N° cliente", t.NroCliente},
		{"Teléfono", t.Telefono},
		{"Dirección", t.Direccion},
	}
	pdf.SetY(boxY + 1.5)
	for _, f := range filas {
		pdf.SetX(reciboMargen + 2)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(26, filaH, tr(f[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW-30, filaH, tr(f[1]), "", 1, "L", false, 0, "")
	}
	boxH := float64(len(filas))*filaH + 3
	pdf.Rect(reciboMargen, boxY, contentW, boxH, "D")
	pdf.SetY(boxY + boxH + 3)

	// ── Product ──────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(26, 5, "Producto:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(contentW-26, 5, tr(t.Producto), "", "L", false)

	if fecha := t.FechaCompraDisplay(); fecha != "" {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(32, 5, "Fecha de compra:", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW-32, 5, tr(fecha), "", 1, "L", false, 0, "")
	}
	pdf.Ln(1)

	// ── Fault ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 5, "Falla / Reclamo:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)

	firmaY := bottom - 6
	maxLineas := int((firmaY - 2 - pdf.GetY()) / reciboLineaFalla)
	for _, linea := range lineasFalla(pdf, tr(t.Falla), contentW, maxLineas) {
		pdf.CellFormat(contentW, reciboLineaFalla, linea, "", 1, "L", false, 0, "")
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.SetXY(reciboMargen, firmaY)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW*0.5, 5, tr("Conserve este comprobante para el seguimiento del reclamo."), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.5, 5, tr("Firma y aclaración: ______________________"), "", 0, "R", false, 0, "")
}

// lineasFalla wraps text (already cp1252) to width w with the current font and
// keeps at most max lines, marking the cut with an ellipsis.
func lineasFalla(pdf *fpdf.Fpdf, text string, w float64, max int) []string {
	if max < 1 {
		return nil
	}
	var out []string
	for _, l := range pdf.SplitLines([]byte(text), w) {
		out = append(out, string(l))
	}
	if len(out) > max {
		out = out[:max]
		last := out[max-1]
		if len(last) > 3 {
			last = last[:len(last)-3]
		}
		// 0x85 is the ellipsis in cp1252.
		out[max-1] = last + "\x85"
	}
	return out
}
