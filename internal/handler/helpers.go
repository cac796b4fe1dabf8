package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"snp/internal/apierror"
	"snp/internal/repository"
	"snp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	// Report JSON field names ("nroCliente") instead of Go ones ("NroCliente").
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps the typed domain errors onto the API envelope.
func respondError(c *gin.Context, err error) {
	var (
		verr *service.ValidationError
		nf   *service.NotFoundError
		werr *repository.StoreWriteError
		rerr *repository.StoreReadError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(verr.Fields))
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, apierror.New(nf.Error()))
	case errors.As(err, &werr):
		c.JSON(http.StatusBadGateway, apierror.NewUpstream("No se pudo guardar el ticket", werr.Status, werr.Body))
	case errors.As(err, &rerr):
		c.JSON(http.StatusBadGateway, apierror.NewUpstream("No se pudo cargar el historial", rerr.Status, rerr.Body))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}
