package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateAndDecode decodes the JSON body into payload and runs its validate tags.
func ValidateAndDecode(r *http.Request, payload interface{}) *AppError {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		return NewKindError(http.StatusBadRequest, "InvalidInput", "Invalid request body", nil)
	}

	if err := validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewKindError(http.StatusBadRequest, "InvalidInput", validationErrors.Error(), nil)
		}
		return NewAppError(http.StatusInternalServerError, "Could not validate request", err)
	}

	return nil
}

// DecodeOptional decodes a JSON body that may legitimately be empty.
func DecodeOptional(r *http.Request, payload interface{}) *AppError {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil && !errors.Is(err, io.EOF) {
		return NewKindError(http.StatusBadRequest, "InvalidInput", "Invalid request body", nil)
	}
	return nil
}
