package posserver

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	catalogdomain "github.com/Apurer/singgah-pos/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/singgah-pos/internal/domains/catalog/ports"
	orderingapp "github.com/Apurer/singgah-pos/internal/domains/ordering/application"
	orderingdomain "github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	orderingports "github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
	apierrors "github.com/Apurer/singgah-pos/internal/shared/errors"
)

var responder = apierrors.NewResponder("", mapCatalogError, mapOrderingError)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondServiceError names the missing resource when the route carries its id.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	if resource, param, ok := missingResource(err); ok {
		if id := c.Param(param); id != "" {
			respondProblem(c, apierrors.NewNotFoundProblem(resource, id))
			return
		}
	}
	responder.RespondError(c, err)
}

func missingResource(err error) (resource, param string, ok bool) {
	switch {
	case errors.Is(err, orderingports.ErrNotFound):
		return "order", "orderId", true
	case errors.Is(err, orderingports.ErrCartNotFound):
		return "cart", "cartId", true
	case errors.Is(err, orderingdomain.ErrLineNotFound):
		return "cart line", "itemId", true
	}
	return "", "", false
}

func mapCatalogError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, catalogports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, catalogdomain.ErrUnknownCategory):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapOrderingError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, orderingports.ErrNotFound),
		errors.Is(err, orderingports.ErrCartNotFound),
		errors.Is(err, orderingdomain.ErrLineNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, orderingapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, orderingdomain.ErrInvalidStatus),
		errors.Is(err, orderingdomain.ErrInvalidQuantity):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, orderingdomain.ErrInvalidOperation):
		return apierrors.ErrFailedPrecondition.WithDetail(err.Error()), true
	case errors.Is(err, orderingapp.ErrIdentifierCollision):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

// respondBindError lists failed binding rules per field; malformed bodies get a plain 400.
func respondBindError(c *gin.Context, err error) {
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		fields := make(map[string]string, len(invalid))
		for _, fe := range invalid {
			fields[fe.Field()] = fe.Tag()
		}
		respondProblem(c, apierrors.NewValidationProblem(fields))
		return
	}
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}
