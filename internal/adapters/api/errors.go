package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// ErrorBody is the JSON shape of every failed request
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

const codeInternal = "INTERNAL"

// StatusFor maps a domain error code onto an HTTP status
func StatusFor(code shared.ErrorCode) int {
	switch code {
	case "":
		return http.StatusInternalServerError
	case shared.CodeNotFound:
		return http.StatusNotFound
	case shared.CodeConcurrentModification, shared.CodeInvalidState:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeError(c *gin.Context, err error) {
	code := shared.CodeOf(err)
	status := StatusFor(code)

	body := ErrorBody{Code: string(code), Message: err.Error(), Details: detailsOf(err)}
	if code == "" {
		body.Code = codeInternal
		body.Message = "internal error"
		_ = c.Error(err)
	}
	if shared.IsRetryable(err) {
		if body.Details == nil {
			body.Details = map[string]interface{}{}
		}
		body.Details["retryable"] = true
	}
	c.AbortWithStatusJSON(status, body)
}

func detailsOf(err error) map[string]interface{} {
	var detailed interface{ Details() map[string]interface{} }
	if errors.As(err, &detailed) {
		return detailed.Details()
	}

	var validation *shared.ValidationError
	if errors.As(err, &validation) {
		return map[string]interface{}{"field": validation.Field}
	}
	var notFound *shared.NotFoundError
	if errors.As(err, &notFound) {
		return map[string]interface{}{"entity": notFound.Entity, "id": notFound.ID}
	}
	var invalidState *shared.InvalidStateError
	if errors.As(err, &invalidState) {
		return map[string]interface{}{"entity": invalidState.Entity, "id": invalidState.ID, "state": invalidState.State}
	}
	return nil
}

// writeBindingError reports malformed bodies as validation failures, except
// domain errors raised while decoding (e.g. a fractional quantity)
func writeBindingError(c *gin.Context, err error) {
	if shared.CodeOf(err) != "" {
		writeError(c, err)
		return
	}

	body := ErrorBody{Code: string(shared.CodeValidation), Message: err.Error()}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fe.Field())
		}
		body.Details = map[string]interface{}{"fields": fields}
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, body)
}
