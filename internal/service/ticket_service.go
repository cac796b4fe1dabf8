package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"snp/internal/dto"
	"snp/internal/infra"
	"snp/internal/model"
	"snp/internal/worker"

	"github.com/rs/zerolog/log"
)

// Step states reported in dto.Paso.
const (
	PasoOK    = "ok"
	PasoError = "error"
)

// EmailSender delivers one HTML email. Implemented by the MailUp and SMTP
// transports.
type EmailSender interface {
	Enviar(ctx context.Context, m infra.Email) error
}

// SheetRelay forwards a ticket to the spreadsheet without confirmation.
type SheetRelay interface {
	Despachar(ctx context.Context, p infra.SheetPayload) (infra.Despachado, error)
}

// Directorio resolves a branch to its manager contact.
type Directorio interface {
	Buscar(nombre string) (model.Sucursal, bool)
	Vacio() bool
}

// TicketService defines the ticket submission and history operations.
type TicketService interface {
	Registrar(ctx context.Context, req dto.RegistrarTicketRequest) (dto.RegistrarTicketResponse, error)
	Historial(ctx context.Context, estado EstadoHistorial) (dto.HistorialResponse, error)
	Obtener(ctx context.Context, key string) (TicketNumerado, error)
	Reimprimir(ctx context.Context, key string) ([]byte, TicketNumerado, error)
	Exportar(ctx context.Context) ([]byte, error)
	Recargar(ctx context.Context) (int, error)
}

type ticketService struct {
	store     *TicketStore
	dir       Directorio
	sheets    SheetRelay
	mailer    EmailSender
	snpEmails []string
	dlq       worker.DeadLetter
}

// NewTicketService wires the pipeline. snpEmails are notified in order after
// the branch manager; blank entries are ignored. A nil dlq disables the
// dead-letter list.
func NewTicketService(
	store *TicketStore,
	dir Directorio,
	sheets SheetRelay,
	mailer EmailSender,
	snpEmails []string,
	dlq worker.DeadLetter,
) TicketService {
	if dlq == nil {
		dlq = worker.NopDLQ{}
	}
	emails := make([]string, 0, len(snpEmails))
	for _, e := range snpEmails {
		if e = strings.TrimSpace(e); e != "" {
			emails = append(emails, e)
		}
	}
	return &ticketService{
		store:     store,
		dir:       dir,
		sheets:    sheets,
		mailer:    mailer,
		snpEmails: emails,
		dlq:       dlq,
	}
}

// Registrar validates the form, saves the ticket and then runs every
// notification step in order. Only the save can fail the call; each later
// step is reported in Pasos and never stops the ones after it.
func (s *ticketService) Registrar(ctx context.Context, req dto.RegistrarTicketRequest) (dto.RegistrarTicketResponse, error) {
	t, err := s.prepararTicket(req)
	if err != nil {
		return dto.RegistrarTicketResponse{}, err
	}

	// Once started, a submission runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	g, err := s.store.Guardar(ctx, t)
	if err != nil {
		log.Error().Err(err).Str("paso", "guardar").Str("sucursal", t.Sucursal).Msg("ticket: store save failed")
		return dto.RegistrarTicketResponse{}, err
	}
	t = g.Ticket
	log.Info().Str("ticket", g.Key).Str("sucursal", t.Sucursal).Msg("ticket: saved")

	pasos := make([]dto.Paso, 0, 2+len(s.snpEmails))
	pasos = append(pasos, s.pasoSheets(ctx, t))

	if email := strings.TrimSpace(t.SucursalGerenteEmail); email != "" {
		pasos = append(pasos, s.pasoEmail(ctx, t, TipoGerente, t.SucursalGerenteNombre, email))
	}
	for _, email := range s.snpEmails {
		pasos = append(pasos, s.pasoEmail(ctx, t, TipoSNP, nombreSNP, email))
	}

	advertencias := 0
	for _, p := range pasos {
		if p.Estado == PasoError {
			advertencias++
		}
	}

	return dto.RegistrarTicketResponse{
		Ticket:       mapTicket(0, t),
		Pasos:        pasos,
		Advertencias: advertencias,
	}, nil
}

// prepararTicket applies the form rules and builds the record to save.
// Everything here happens before any network call.
func (s *ticketService) prepararTicket(req dto.RegistrarTicketRequest) (model.Ticket, error) {
	fields := make(map[string]string)
	requerido := func(name, v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			fields[name] = "required"
		}
		return v
	}
	sucursal := requerido("sucursal", req.Sucursal)
	cliente := requerido("cliente", req.Cliente)
	nroCliente := requerido("nroCliente", req.NroCliente)
	direccion := requerido("direccion", req.Direccion)
	telefono := requerido("telefono", req.Telefono)

	items := make([]LineaItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = LineaItem{SKU: it.SKU, Falla: it.Falla}
	}
	producto, falla := ComponerLineas(items)
	if producto == "" || falla == "" {
		fields["items"] = "al menos un producto con SKU y falla"
	}

	var suc model.Sucursal
	if sucursal != "" {
		found, ok := s.dir.Buscar(sucursal)
		switch {
		case ok:
			suc = found
		case s.dir.Vacio():
			suc = model.Sucursal{Nombre: sucursal}
		default:
			fields["sucursal"] = "sucursal desconocida"
		}
	}

	if len(fields) > 0 {
		return model.Ticket{}, &ValidationError{Fields: fields}
	}

	return model.Ticket{
		Sucursal:              suc.Nombre,
		SucursalGerenteNombre: strings.TrimSpace(suc.GerenteNombre),
		SucursalGerenteEmail:  strings.TrimSpace(suc.GerenteEmail),
		Cliente:               strings.ToUpper(cliente),
		NroCliente:            strings.ToUpper(nroCliente),
		Direccion:             strings.ToUpper(direccion),
		Telefono:              telefono,
		Producto:              producto,
		Falla:                 falla,
		FechaCompra:           strings.TrimSpace(req.FechaCompra),
		Timezone:              model.TicketTimezone,
		Status:                model.EstadoNuevo,
	}, nil
}

func (s *ticketService) pasoSheets(ctx context.Context, t model.Ticket) dto.Paso {
	const nombre = "Google Sheets"
	d, err := s.sheets.Despachar(ctx, infra.SheetPayload{
		Sucursal:              t.Sucursal,
		SucursalGerenteNombre: t.SucursalGerenteNombre,
		SucursalGerenteEmail:  t.SucursalGerenteEmail,
		Cliente:               t.Cliente,
		NroCliente:            t.NroCliente,
		Direccion:             t.Direccion,
		Telefono:              t.Telefono,
		Producto:              t.Producto,
		Falla:                 t.Falla,
		CreatedAtDisplay:      t.CreatedAtDisplay,
		CreatedAtIso:          t.CreatedAtIso,
		FirebaseKey:           t.FirebaseKey,
	})
	if err != nil {
		return s.fallo(ctx, t, nombre, "", err)
	}
	return dto.Paso{Nombre: nombre, Estado: PasoOK, Detalle: "despachado " + d.At.Format("15:04:05")}
}

func (s *ticketService) pasoEmail(ctx context.Context, t model.Ticket, tipo, toName, toEmail string) dto.Paso {
	nombre := fmt.Sprintf("Email %s (%s)", tipo, toEmail)

	subject := asuntoGerente
	if tipo == TipoSNP {
		subject = AsuntoSNP(t.Sucursal)
	}
	html, err := RenderEmail(tipo, t)
	if err != nil {
		return s.fallo(ctx, t, nombre, toEmail, err)
	}

	err = s.mailer.Enviar(ctx, infra.Email{
		ToName:  toName,
		ToEmail: toEmail,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return s.fallo(ctx, t, nombre, toEmail, err)
	}
	return dto.Paso{Nombre: nombre, Estado: PasoOK}
}

// fallo logs a failed step, records it in the dead-letter list and returns
// its warning entry.
func (s *ticketService) fallo(ctx context.Context, t model.Ticket, paso, destino string, err error) dto.Paso {
	log.Warn().Err(err).
		Str("ticket", t.FirebaseKey).
		Str("paso", paso).
		Msg("ticket: notification step failed")
	s.dlq.Registrar(ctx, worker.DLQEntry{
		TicketKey: t.FirebaseKey,
		Paso:      paso,
		Destino:   destino,
		Reason:    err.Error(),
	})
	return dto.Paso{Nombre: paso, Estado: PasoError, Detalle: err.Error()}
}

func (s *ticketService) snapshot(ctx context.Context) (asc, desc []TicketNumerado, err error) {
	coleccion, err := s.store.GetOrLoad(ctx)
	if err != nil {
		log.Error().Err(err).Msg("ticket: history load failed")
		return nil, nil, err
	}
	asc, desc = Numerar(coleccion)
	return asc, desc, nil
}

// Historial returns the page described by estado over the newest-first view.
func (s *ticketService) Historial(ctx context.Context, estado EstadoHistorial) (dto.HistorialResponse, error) {
	_, desc, err := s.snapshot(ctx)
	if err != nil {
		return dto.HistorialResponse{}, err
	}
	page := estado.Aplicar(desc)

	tickets := make([]dto.TicketResponse, 0, len(page.Tickets))
	for _, n := range page.Tickets {
		tickets = append(tickets, mapTicket(n.Numero, n.Ticket))
	}
	return dto.HistorialResponse{
		Termino:      page.Termino,
		Pagina:       page.Pagina,
		TotalPaginas: page.TotalPaginas,
		Total:        page.Total,
		PorPagina:    TicketsPorPagina,
		Tickets:      tickets,
	}, nil
}

// Obtener looks key up in the current snapshot.
func (s *ticketService) Obtener(ctx context.Context, key string) (TicketNumerado, error) {
	asc, _, err := s.snapshot(ctx)
	if err != nil {
		return TicketNumerado{}, err
	}
	for _, n := range asc {
		if n.Key == key {
			return n, nil
		}
	}
	return TicketNumerado{}, &NotFoundError{Key: key}
}

// Reimprimir renders the two-copy receipt for key.
func (s *ticketService) Reimprimir(ctx context.Context, key string) ([]byte, TicketNumerado, error) {
	n, err := s.Obtener(ctx, key)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			log.Warn().Str("ticket", key).Msg("ticket: reprint of unknown key")
		}
		return nil, TicketNumerado{}, err
	}
	pdf, err := infra.ReciboBytes(n.Numero, n.Ticket)
	if err != nil {
		return nil, TicketNumerado{}, err
	}
	return pdf, n, nil
}

// Exportar writes the whole collection, oldest first, as an XLSX workbook.
func (s *ticketService) Exportar(ctx context.Context) ([]byte, error) {
	asc, _, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	filas := make([]infra.FilaExport, len(asc))
	for i, n := range asc {
		filas[i] = infra.FilaExport{Numero: n.Numero, Ticket: n.Ticket}
	}
	return infra.ExportarXLSX(filas)
}

// Recargar drops the snapshot and loads it again.
func (s *ticketService) Recargar(ctx context.Context) (int, error) {
	s.store.Invalidar()
	coleccion, err := s.store.GetOrLoad(ctx)
	if err != nil {
		return 0, err
	}
	return len(coleccion), nil
}

func mapTicket(numero int, t model.Ticket) dto.TicketResponse {
	r := dto.TicketResponse{
		FirebaseKey:           t.FirebaseKey,
		Numero:                numero,
		Sucursal:              t.Sucursal,
		SucursalGerenteNombre: t.SucursalGerenteNombre,
		SucursalGerenteEmail:  t.SucursalGerenteEmail,
		Cliente:               t.Cliente,
		NroCliente:            t.NroCliente,
		Direccion:             t.Direccion,
		Telefono:              t.Telefono,
		Producto:              t.Producto,
		Falla:                 t.Falla,
		FechaCompra:           t.FechaCompra,
		CreatedAtIso:          t.CreatedAtIso,
		CreatedAtDisplay:      t.CreatedAtDisplay,
		Timezone:              t.Timezone,
		Status:                t.Status,
	}
	if numero > 0 {
		r.NumeroFormateado = model.FormatNumeroTicket(numero)
	}
	return r
}
