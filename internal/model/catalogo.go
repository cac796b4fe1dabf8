package model

import "github.com/shopspring/decimal"

// ProductoCatalogo is a read-only catalog entry used for SKU suggestions.
// Every price field is optional in the source document.
type ProductoCatalogo struct {
	SKU            string              `json:"sku"`
	ML             decimal.NullDecimal `json:"ml"`
	ContadoWeb     decimal.NullDecimal `json:"contadoWeb"`
	Oferta         decimal.NullDecimal `json:"oferta"`
	PrecioSugerido decimal.NullDecimal `json:"precioSugerido"`
	Stock          decimal.NullDecimal `json:"stock"`
}

// PrecioReferencia returns the first present price following the catalog's
// display order: contado web, oferta, precio sugerido, ML.
func (p ProductoCatalogo) PrecioReferencia() (decimal.Decimal, bool) {
	for _, v := range []decimal.NullDecimal{p.ContadoWeb, p.Oferta, p.PrecioSugerido, p.ML} {
		if v.Valid && !v.Decimal.IsZero() {
			return v.Decimal, true
		}
	}
	return decimal.Zero, false
}
