package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RelayError is a network-level failure forwarding a ticket to the sheet.
type RelayError struct {
	Endpoint string
	Err      error
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("sheets: relay to %s failed: %v", e.Endpoint, e.Err)
}

func (e *RelayError) Unwrap() error { return e.Err }

// SheetPayload is the subset of ticket fields mirrored into the spreadsheet.
type SheetPayload struct {
	Sucursal              string `json:"sucursal"`
	SucursalGerenteNombre string `json:"sucursalGerenteNombre"`
	SucursalGerenteEmail  string `json:"sucursalGerenteEmail"`
	Cliente               string `json:"cliente"`
	NroCliente            string `json:"nroCliente"`
	Direccion             string `json:"direccion"`
	Telefono              string `json:"telefono"`
	Producto              string `json:"producto"`
	Falla                 string `json:"falla"`
	CreatedAtDisplay      string `json:"createdAtDisplay"`
	CreatedAtIso          string `json:"createdAtIso"`
	FirebaseKey           string `json:"firebaseKey"`
}

// Despachado only records that the request left without a network error.
// The Apps Script endpoint's answer is never read, so it proves nothing about
// the row actually being written.
type Despachado struct {
	At time.Time
}

// SheetsRelay posts tickets to the Apps Script web app.
type SheetsRelay struct {
	endpoint   string
	httpClient *http.Client
}

func NewSheetsRelay(endpoint string, httpClient *http.Client) *SheetsRelay {
	return &SheetsRelay{endpoint: endpoint, httpClient: httpClient}
}

// Despachar sends the payload as a single form field and discards the reply.
func (r *SheetsRelay) Despachar(ctx context.Context, p SheetPayload) (Despachado, error) {
	if r.endpoint == "" {
		return Despachado{}, &RelayError{Endpoint: "(sin configurar)", Err: errors.New("SHEETS_ENDPOINT vacío")}
	}

	data, err := json.Marshal(p)
	if err != nil {
		return Despachado{}, &RelayError{Endpoint: r.endpoint, Err: err}
	}
	form := url.Values{"payload": {string(data)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Despachado{}, &RelayError{Endpoint: r.endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Despachado{}, &RelayError{Endpoint: r.endpoint, Err: err}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return Despachado{At: time.Now()}, nil
}
