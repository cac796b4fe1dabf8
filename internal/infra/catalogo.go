package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"snp/internal/model"

	"github.com/shopspring/decimal"
)

// CatalogoClient fetches the public price list used for SKU suggestions.
type CatalogoClient struct {
	url        string
	httpClient *http.Client
}

func NewCatalogoClient(url string, httpClient *http.Client) *CatalogoClient {
	return &CatalogoClient{url: url, httpClient: httpClient}
}

// Fetch downloads the whole catalog. Records are sorted by SKU so callers get a
// stable order regardless of the source map.
func (c *CatalogoClient) Fetch(ctx context.Context) ([]model.ProductoCatalogo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalogo: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalogo: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalogo: status %d", resp.StatusCode)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("catalogo: decode: %w", err)
	}
	if raw == nil {
		return nil, errors.New("catalogo: empty document")
	}
	return ParseCatalogo(raw), nil
}

// ParseCatalogo converts the keyed catalog document into entries. Missing or
// malformed fields are left unset; entries that are not objects are skipped.
func ParseCatalogo(raw map[string]json.RawMessage) []model.ProductoCatalogo {
	out := make([]model.ProductoCatalogo, 0, len(raw))
	for key, value := range raw {
		dec := json.NewDecoder(bytes.NewReader(value))
		dec.UseNumber()
		var fields map[string]any
		if err := dec.Decode(&fields); err != nil || fields == nil {
			continue
		}

		sku := strings.TrimSpace(stringField(fields["sku"]))
		if sku == "" {
			sku = key
		}
		ml := decimalField(fields["ML"])
		if !ml.Valid {
			ml = decimalField(fields["ml"])
		}
		out = append(out, model.ProductoCatalogo{
			SKU:            sku,
			ML:             ml,
			ContadoWeb:     decimalField(fields["contadoWeb"]),
			Oferta:         decimalField(fields["oferta"]),
			PrecioSugerido: decimalField(fields["precioSugerido"]),
			Stock:          decimalField(fields["stock"]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func decimalField(v any) decimal.NullDecimal {
	s := strings.TrimSpace(stringField(v))
	if s == "" {
		return decimal.NullDecimal{}
	}
	s = strings.TrimPrefix(s, "$")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
