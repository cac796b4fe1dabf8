package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"snp/internal/dto"
	"snp/internal/model"
	"snp/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type TicketsHandler struct {
	svc service.TicketService
}

func NewTicketsHandler(svc service.TicketService) *TicketsHandler {
	return &TicketsHandler{svc: svc}
}

// Registrar godoc
// @Summary Registrar un ticket SNP
// @Description Guarda el ticket y ejecuta las notificaciones (Sheets, gerente, SNP). Las notificaciones fallidas se informan como pasos con estado "error" sin invalidar el alta.
// @Tags tickets
// @Accept json
// @Produce json
// @Param body body dto.RegistrarTicketRequest true "Datos del ticket"
// @Success 201 {object} dto.RegistrarTicketResponse
// @Failure 422 {object} apierror.ValidationError
// @Failure 502 {object} apierror.APIError
// @Router /v1/tickets [post]
func (h *TicketsHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarTicketRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Historial godoc
// @Summary Historial de tickets (más nuevos primero)
// @Description Búsqueda por subcadena sin distinguir mayúsculas. Si se envía q_prev y difiere de q, la página vuelve a 1.
// @Tags tickets
// @Produce json
// @Param q query string false "Término de búsqueda"
// @Param page query int false "Página (desde 1)"
// @Param q_prev query string false "Término de la consulta anterior"
// @Success 200 {object} dto.HistorialResponse
// @Failure 502 {object} apierror.APIError
// @Router /v1/tickets [get]
func (h *TicketsHandler) Historial(c *gin.Context) {
	q := c.Query("q")
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}

	prev, hasPrev := c.GetQuery("q_prev")
	if !hasPrev {
		prev = q
	}
	estado := service.EstadoHistorial{Termino: prev, Pagina: page}
	estado.Buscar(q)

	resp, err := h.svc.Historial(c.Request.Context(), estado)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary Obtener un ticket por clave
// @Tags tickets
// @Produce json
// @Param key path string true "Clave del ticket"
// @Success 200 {object} dto.TicketResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/tickets/{key} [get]
func (h *TicketsHandler) Obtener(c *gin.Context) {
	n, err := h.svc.Obtener(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticketResponse(n))
}

// Reimprimir godoc
// @Summary Reimprimir ticket en PDF (copia cliente y copia sucursal)
// @Tags tickets
// @Produce application/pdf
// @Param key path string true "Clave del ticket"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/tickets/{key}/pdf [get]
func (h *TicketsHandler) Reimprimir(c *gin.Context) {
	pdf, n, err := h.svc.Reimprimir(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="ticket_%s.pdf"`, model.FormatNumeroTicket(n.Numero)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Recargar godoc
// @Summary Forzar recarga del historial desde el store
// @Tags tickets
// @Produce json
// @Success 200 {object} dto.RecargarResponse
// @Failure 502 {object} apierror.APIError
// @Router /v1/tickets/recargar [post]
func (h *TicketsHandler) Recargar(c *gin.Context) {
	total, err := h.svc.Recargar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RecargarResponse{Total: total})
}

// Exportar godoc
// @Summary Exportar todos los tickets a XLSX (más antiguos primero)
// @Tags tickets
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 502 {object} apierror.APIError
// @Router /v1/exportar/tickets.xlsx [get]
func (h *TicketsHandler) Exportar(c *gin.Context) {
	data, err := h.svc.Exportar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="tickets_snp.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func ticketResponse(n service.TicketNumerado) dto.TicketResponse {
	t := n.Ticket
	return dto.TicketResponse{
		FirebaseKey:           n.Key,
		Numero:                n.Numero,
		NumeroFormateado:      model.FormatNumeroTicket(n.Numero),
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
}
