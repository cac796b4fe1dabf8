package handler

import (
	"net/http"

	"snp/internal/apierror"
	"snp/internal/model"
	"snp/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct {
	svc service.CatalogoService
}

func NewProductosHandler(svc service.CatalogoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// Sugerencias godoc
// @Summary Autocompletar SKU desde el catálogo de precios
// @Description Devuelve hasta 8 productos cuyo SKU empieza con q (mínimo 3 caracteres).
// @Tags productos
// @Produce json
// @Param q query string true "Prefijo de SKU"
// @Success 200 {object} dto.SugerenciasResponse
// @Failure 502 {object} apierror.APIError
// @Router /v1/productos [get]
func (h *ProductosHandler) Sugerencias(c *gin.Context) {
	resp, err := h.svc.Sugerencias(c.Request.Context(), c.Query("q"))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, apierror.New("No se pudo cargar el listado de productos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListadoSucursales lists the configured branches.
type ListadoSucursales interface {
	Listar() []model.Sucursal
}

// Sucursales godoc
// @Summary Listar sucursales con su gerente
// @Tags sucursales
// @Produce json
// @Success 200 {array} model.Sucursal
// @Router /v1/sucursales [get]
func Sucursales(dir ListadoSucursales) gin.HandlerFunc {
	return func(c *gin.Context) {
		list := dir.Listar()
		if list == nil {
			list = []model.Sucursal{}
		}
		c.JSON(http.StatusOK, list)
	}
}
