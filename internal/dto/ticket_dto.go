package dto

// ── Requests ──────────────────────────────────────────────────────────────────

type LineaItemRequest struct {
	SKU   string `json:"sku"`
	Falla string `json:"falla"`
}

// RegistrarTicketRequest is the submission form. Items is ordered: the
// position of each item becomes its "Falla SKU N" number.
type RegistrarTicketRequest struct {
	Sucursal    string             `json:"sucursal"    validate:"required"`
	Cliente     string             `json:"cliente"     validate:"required"`
	NroCliente  string             `json:"nroCliente"  validate:"required"`
	Direccion   string             `json:"direccion"   validate:"required"`
	Telefono    string             `json:"telefono"    validate:"required"`
	FechaCompra string             `json:"fechaCompra" validate:"omitempty"`
	Items       []LineaItemRequest `json:"items"       validate:"required,min=1"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

type TicketResponse struct {
	FirebaseKey           string `json:"firebaseKey"`
	Numero                int    `json:"numero,omitempty"`
	NumeroFormateado      string `json:"numeroFormateado,omitempty"`
	Sucursal              string `json:"sucursal"`
	SucursalGerenteNombre string `json:"sucursalGerenteNombre"`
	SucursalGerenteEmail  string `json:"sucursalGerenteEmail"`
	Cliente               string `json:"cliente"`
	NroCliente            string `json:"nroCliente"`
	Direccion             string `json:"direccion"`
	Telefono              string `json:"telefono"`
	Producto              string `json:"producto"`
	Falla                 string `json:"falla"`
	FechaCompra           string `json:"fechaCompra,omitempty"`
	CreatedAtIso          string `json:"createdAtIso"`
	CreatedAtDisplay      string `json:"createdAtDisplay"`
	Timezone              string `json:"timezone"`
	Status                string `json:"status"`
}

// Paso is the outcome of one notification step after the ticket was saved.
type Paso struct {
	Nombre  string `json:"nombre"`
	Estado  string `json:"estado"` // ok | error
	Detalle string `json:"detalle,omitempty"`
}

type RegistrarTicketResponse struct {
	Ticket       TicketResponse `json:"ticket"`
	Pasos        []Paso         `json:"pasos"`
	Advertencias int            `json:"advertencias"`
}

type HistorialResponse struct {
	Termino      string           `json:"termino"`
	Pagina       int              `json:"pagina"`
	TotalPaginas int              `json:"totalPaginas"`
	Total        int              `json:"total"`
	PorPagina    int              `json:"porPagina"`
	Tickets      []TicketResponse `json:"tickets"`
}

type RecargarResponse struct {
	Total int `json:"total"`
}
