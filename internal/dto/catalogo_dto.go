package dto

import "github.com/shopspring/decimal"

// SugerenciaProducto is one SKU autocomplete entry.
type SugerenciaProducto struct {
	SKU    string           `json:"sku"`
	Precio *decimal.Decimal `json:"precio,omitempty"`
	Stock  *decimal.Decimal `json:"stock,omitempty"`
	Label  string           `json:"label"` // "061 $12999 · Stock: 4"
}

type SugerenciasResponse struct {
	Termino     string               `json:"termino"`
	Sugerencias []SugerenciaProducto `json:"sugerencias"`
}
