package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BigPoppaG/CourseMe/internal/response"
	"github.com/BigPoppaG/CourseMe/internal/service"
)

// failFromService translates service-layer errors into the response
// envelope. Validation failures keep their field detail; anything
// unrecognized becomes a 500.
func failFromService(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, ve.Fields)
	case errors.Is(err, service.ErrNotAuthorised):
		response.Fail(c, http.StatusForbidden, response.ErrNotAuthorised)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
