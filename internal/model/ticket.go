package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	// TicketTimezone is stored on every record; display dates are rendered in it.
	TicketTimezone = "America/Argentina/Cordoba"
	// EstadoNuevo is the only status ever written. No transitions exist.
	EstadoNuevo = "nuevo"
)

// Ticket is the persisted repair/complaint record. JSON names match the
// documents already stored in the Firebase collection.
type Ticket struct {
	FirebaseKey           string `gorm:"primaryKey;column:firebase_key" json:"firebaseKey"`
	Sucursal              string `gorm:"index;not null"                 json:"sucursal"`
	SucursalGerenteNombre string `json:"sucursalGerenteNombre"`
	SucursalGerenteEmail  string `json:"sucursalGerenteEmail"`
	Cliente               string `gorm:"not null"                       json:"cliente"`
	NroCliente            string `json:"nroCliente"`
	Direccion             string `json:"direccion"`
	Telefono              string `json:"telefono"`
	// Producto is the comma-joined SKU list; Falla holds one entry per SKU.
	Producto         string `gorm:"not null" json:"producto"`
	Falla            string `gorm:"not null" json:"falla"`
	FechaCompra      string `json:"fechaCompra,omitempty"`
	CreatedAtIso     string `gorm:"index"    json:"createdAtIso"`
	CreatedAtDisplay string `json:"createdAtDisplay"`
	Timezone         string `json:"timezone"`
	Status           string `gorm:"not null" json:"status"`
}

func (Ticket) TableName() string { return "tickets_snp" }

// FormatNumeroTicket zero-pads a derived ticket number to five digits.
func FormatNumeroTicket(n int) string {
	return fmt.Sprintf("%05d", n)
}

// FechaCompraDisplay renders a YYYY-MM-DD purchase date as DD/MM/YYYY and
// passes any other value through unchanged.
func (t Ticket) FechaCompraDisplay() string {
	s := strings.TrimSpace(t.FechaCompra)
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d.Format("02/01/2006")
	}
	return s
}
