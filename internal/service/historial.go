package service

import (
	"strings"

	"snp/internal/model"
)

// TicketsPorPagina is the fixed history page size.
const TicketsPorPagina = 6

// PaginaHistorial is one page of the filtered, newest-first history.
type PaginaHistorial struct {
	Termino      string
	Pagina       int
	TotalPaginas int
	Total        int
	Tickets      []TicketNumerado
}

// FiltrarHistorial keeps the records whose searchable text contains term,
// case-insensitively. The term is lowercased but accents are kept, so
// "rio" does not match "Río". An empty term returns desc unchanged.
func FiltrarHistorial(desc []TicketNumerado, term string) []TicketNumerado {
	q := strings.ToLower(strings.TrimSpace(term))
	if q == "" {
		return desc
	}
	out := make([]TicketNumerado, 0, len(desc))
	for _, n := range desc {
		if strings.Contains(textoBusqueda(n), q) {
			out = append(out, n)
		}
	}
	return out
}

func textoBusqueda(n TicketNumerado) string {
	t := n.Ticket
	campos := []string{
		"ticket " + model.FormatNumeroTicket(n.Numero),
		n.Key,
		t.Sucursal,
		t.SucursalGerenteNombre,
		t.Cliente,
		t.NroCliente,
		t.FechaCompra,
		t.Direccion,
		t.Telefono,
		t.Producto,
		t.Falla,
		t.CreatedAtDisplay,
	}
	return strings.ToLower(strings.Join(campos, " "))
}

// TotalPaginas is ceil(n / TicketsPorPagina), never less than 1.
func TotalPaginas(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + TicketsPorPagina - 1) / TicketsPorPagina
}

// Paginar clamps pagina into [1, total] and returns that slice of filtrados.
func Paginar(filtrados []TicketNumerado, pagina int) ([]TicketNumerado, int) {
	total := TotalPaginas(len(filtrados))
	if pagina > total {
		pagina = total
	}
	if pagina < 1 {
		pagina = 1
	}
	from := (pagina - 1) * TicketsPorPagina
	to := from + TicketsPorPagina
	if to > len(filtrados) {
		to = len(filtrados)
	}
	return filtrados[from:to], pagina
}

// EstadoHistorial is the history view state: current term and page.
type EstadoHistorial struct {
	Termino string
	Pagina  int
}

// NuevoEstadoHistorial starts on page 1 with no term.
func NuevoEstadoHistorial() EstadoHistorial {
	return EstadoHistorial{Pagina: 1}
}

// Buscar sets the term. Any change of term goes back to page 1.
func (e *EstadoHistorial) Buscar(term string) {
	term = strings.TrimSpace(term)
	if term != e.Termino {
		e.Pagina = 1
	}
	e.Termino = term
}

// IrA moves to pagina; Aplicar clamps it against the filtered result.
func (e *EstadoHistorial) IrA(pagina int) {
	e.Pagina = pagina
}

// Aplicar filters and paginates desc with the current state, storing the
// clamped page back.
func (e *EstadoHistorial) Aplicar(desc []TicketNumerado) PaginaHistorial {
	filtrados := FiltrarHistorial(desc, e.Termino)
	items, pagina := Paginar(filtrados, e.Pagina)
	e.Pagina = pagina
	return PaginaHistorial{
		Termino:      e.Termino,
		Pagina:       pagina,
		TotalPaginas: TotalPaginas(len(filtrados)),
		Total:        len(filtrados),
		Tickets:      items,
	}
}
