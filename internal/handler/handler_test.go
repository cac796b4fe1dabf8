package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"snp/internal/apierror"
	"snp/internal/dto"
	"snp/internal/model"
	"snp/internal/repository"
	"snp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Stub TicketService ───────────────────────────────────────────────────────

type stubTicketService struct {
	registrarErr error
	lastReq      dto.RegistrarTicketRequest
	lastEstado   service.EstadoHistorial
	historialErr error
	tickets      map[string]service.TicketNumerado
}

func (s *stubTicketService) Registrar(_ context.Context, req dto.RegistrarTicketRequest) (dto.RegistrarTicketResponse, error) {
	s.lastReq = req
	if s.registrarErr != nil {
		return dto.RegistrarTicketResponse{}, s.registrarErr
	}
	return dto.RegistrarTicketResponse{
		Ticket:       dto.TicketResponse{FirebaseKey: "jueves_13_11_2025_18_42_31", Status: model.EstadoNuevo},
		Pasos:        []dto.Paso{{Nombre: "Google Sheets", Estado: service.PasoError, Detalle: "x"}},
		Advertencias: 1,
	}, nil
}

func (s *stubTicketService) Historial(_ context.Context, e service.EstadoHistorial) (dto.HistorialResponse, error) {
	s.lastEstado = e
	if s.historialErr != nil {
		return dto.HistorialResponse{}, s.historialErr
	}
	return dto.HistorialResponse{Termino: e.Termino, Pagina: e.Pagina, TotalPaginas: 1, PorPagina: service.TicketsPorPagina}, nil
}

func (s *stubTicketService) Obtener(_ context.Context, key string) (service.TicketNumerado, error) {
	n, ok := s.tickets[key]
	if !ok {
		return service.TicketNumerado{}, &service.NotFoundError{Key: key}
	}
	return n, nil
}

func (s *stubTicketService) Reimprimir(ctx context.Context, key string) ([]byte, service.TicketNumerado, error) {
	n, err := s.Obtener(ctx, key)
	if err != nil {
		return nil, service.TicketNumerado{}, err
	}
	return []byte("%PDF-1.3 stub"), n, nil
}

func (s *stubTicketService) Exportar(context.Context) ([]byte, error) {
	return []byte("PK stub"), nil
}

func (s *stubTicketService) Recargar(context.Context) (int, error) {
	return len(s.tickets), nil
}

type stubCatalogo struct{ err error }

func (s stubCatalogo) Sugerencias(_ context.Context, q string) (dto.SugerenciasResponse, error) {
	if s.err != nil {
		return dto.SugerenciasResponse{}, s.err
	}
	return dto.SugerenciasResponse{Termino: q, Sugerencias: []dto.SugerenciaProducto{{SKU: "061AB", Label: "061AB"}}}, nil
}

func (s stubCatalogo) Recargar(context.Context) (int, error) { return 0, nil }

// ── Helpers ──────────────────────────────────────────────────────────────────

func newTestEngine(svc service.TicketService, cat service.CatalogoService) *gin.Engine {
	r := gin.New()
	th := NewTicketsHandler(svc)
	ph := NewProductosHandler(cat)
	r.POST("/v1/tickets", th.Registrar)
	r.GET("/v1/tickets", th.Historial)
	r.POST("/v1/tickets/recargar", th.Recargar)
	r.GET("/v1/tickets/:key", th.Obtener)
	r.GET("/v1/tickets/:key/pdf", th.Reimprimir)
	r.GET("/v1/exportar/tickets.xlsx", th.Exportar)
	r.GET("/v1/productos", ph.Sugerencias)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validBody() map[string]any {
	return map[string]any{
		"sucursal":   "Centro",
		"cliente":    "Juan Perez",
		"nroCliente": "123",
		"direccion":  "San Martín 100",
		"telefono":   "3415551234",
		"items":      []map[string]string{{"sku": "061", "falla": "no enciende"}},
	}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestRegistrar_201ConAdvertencias(t *testing.T) {
	svc := &stubTicketService{}
	w := do(newTestEngine(svc, stubCatalogo{}), http.MethodPost, "/v1/tickets", validBody())

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.RegistrarTicketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Advertencias)
	assert.Equal(t, "nuevo", resp.Ticket.Status)
	assert.Equal(t, "061", svc.lastReq.Items[0].SKU)
}

func TestRegistrar_ValidacionDeEstructura(t *testing.T) {
	body := validBody()
	delete(body, "cliente")
	body["items"] = []map[string]string{}

	w := do(newTestEngine(&stubTicketService{}, stubCatalogo{}), http.MethodPost, "/v1/tickets", body)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var verr apierror.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verr))
	assert.Equal(t, "required", verr.Fields["cliente"])
	assert.Equal(t, "min", verr.Fields["items"])
}

func TestRegistrar_ErroresTipados(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validacion", &service.ValidationError{Fields: map[string]string{"items": "vacío"}}, http.StatusUnprocessableEntity},
		{"store", &repository.StoreWriteError{Key: "k", Status: 401, Body: "Permission denied"}, http.StatusBadGateway},
		{"otro", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubTicketService{registrarErr: tc.err}
			w := do(newTestEngine(svc, stubCatalogo{}), http.MethodPost, "/v1/tickets", validBody())
			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestRegistrar_JSONInvalido(t *testing.T) {
	r := newTestEngine(&stubTicketService{}, stubCatalogo{})
	req := httptest.NewRequest(http.MethodPost, "/v1/tickets", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistorial_CambioDeTerminoReiniciaPagina(t *testing.T) {
	svc := &stubTicketService{}
	r := newTestEngine(svc, stubCatalogo{})

	w := do(r, http.MethodGet, "/v1/tickets?q=061&page=3&q_prev=070", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.lastEstado.Pagina)
	assert.Equal(t, "061", svc.lastEstado.Termino)

	do(r, http.MethodGet, "/v1/tickets?q=061&page=3&q_prev=061", nil)
	assert.Equal(t, 3, svc.lastEstado.Pagina)

	do(r, http.MethodGet, "/v1/tickets?q=061&page=3", nil)
	assert.Equal(t, 3, svc.lastEstado.Pagina, "without q_prev the term is taken as unchanged")

	do(r, http.MethodGet, "/v1/tickets?page=abc", nil)
	assert.Equal(t, 1, svc.lastEstado.Pagina)
}

func TestHistorial_ErrorDeLectura502(t *testing.T) {
	svc := &stubTicketService{historialErr: &repository.StoreReadError{Status: 503, Body: "unavailable"}}
	w := do(newTestEngine(svc, stubCatalogo{}), http.MethodGet, "/v1/tickets", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "unavailable")
}

func TestObtenerYReimprimir(t *testing.T) {
	svc := &stubTicketService{tickets: map[string]service.TicketNumerado{
		"k1": {Key: "k1", Numero: 42, Ticket: model.Ticket{Cliente: "X"}},
	}}
	r := newTestEngine(svc, stubCatalogo{})

	w := do(r, http.MethodGet, "/v1/tickets/k1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tr dto.TicketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tr))
	assert.Equal(t, "00042", tr.NumeroFormateado)
	assert.Equal(t, "k1", tr.FirebaseKey)

	w = do(r, http.MethodGet, "/v1/tickets/k1/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ticket_00042.pdf")

	w = do(r, http.MethodGet, "/v1/tickets/nada/pdf", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportarYRecargar(t *testing.T) {
	svc := &stubTicketService{tickets: map[string]service.TicketNumerado{"a": {}, "b": {}}}
	r := newTestEngine(svc, stubCatalogo{})

	w := do(r, http.MethodGet, "/v1/exportar/tickets.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))

	w = do(r, http.MethodPost, "/v1/tickets/recargar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":2}`, w.Body.String())
}

func TestSugerencias(t *testing.T) {
	w := do(newTestEngine(&stubTicketService{}, stubCatalogo{}), http.MethodGet, "/v1/productos?q=061", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "061AB")

	w = do(newTestEngine(&stubTicketService{}, stubCatalogo{err: errors.New("down")}), http.MethodGet, "/v1/productos?q=061", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

type stubListado []model.Sucursal

func (s stubListado) Listar() []model.Sucursal { return s }

func TestSucursales(t *testing.T) {
	r := gin.New()
	r.GET("/v1/sucursales", Sucursales(stubListado{{Nombre: "Centro", GerenteEmail: "a@b.c"}}))
	w := do(r, http.MethodGet, "/v1/sucursales", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"nombre":"Centro"`)

	r = gin.New()
	r.GET("/v1/sucursales", Sucursales(stubListado(nil)))
	w = do(r, http.MethodGet, "/v1/sucursales", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

type stubCache bool

func (s stubCache) Cargado() bool { return bool(s) }

func TestHealth_SinRedis(t *testing.T) {
	r := gin.New()
	r.GET("/health", Health(nil, nil, stubCache(true)))
	w := do(r, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"disabled"`)
	assert.Contains(t, w.Body.String(), `"tickets_cache":true`)
}
