package service

import (
	"fmt"
	"strings"
)

// LineaItem is one (SKU, fault) pair as entered in the form.
type LineaItem struct {
	SKU   string
	Falla string
}

// ComponerLineas merges the items into the persisted producto/falla fields.
// Items with a blank SKU or blank fault are dropped; positions keep the
// original 1-based index, so dropped items leave gaps.
func ComponerLineas(items []LineaItem) (producto, falla string) {
	skus := make([]string, 0, len(items))
	fallas := make([]string, 0, len(items))
	for i, it := range items {
		sku := strings.ToUpper(strings.TrimSpace(it.SKU))
		texto := strings.TrimSpace(it.Falla)
		if sku == "" || texto == "" {
			continue
		}
		skus = append(skus, sku)
		fallas = append(fallas, fmt.Sprintf("Falla SKU %d (%s): %s", i+1, sku, texto))
	}
	return strings.Join(skus, ", "), strings.Join(fallas, ", ")
}
