package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	shared_dtos "github.com/viraj01032007/setmystay02/backend/shared/go-dtos"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

var validate = shared_dtos.NewValidator()

// visitorFrom returns the id the visitor middleware resolved. Header and IP
// ids live in separate namespaces.
func visitorFrom(r *http.Request) (string, error) {
	v, ok := utils.VisitorIDFromContext(r.Context())
	if !ok {
		return "", &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeInvalidPayload,
			Message:    "Missing " + utils.VisitorHeader + " header",
		}
	}
	return string(v.Type) + ":" + v.Value, nil
}

// decodeAndValidate writes the 400 itself and returns false on failure.
// An empty body is accepted when allowEmpty is set.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool, logger *logrus.Entry) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			logger.WithError(err).Info("Invalid JSON payload")
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
			return false
		}
	}
	if err := validate.Struct(dst); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
				shared_dtos.FormatValidationErrors(validationErrs), err)
		} else {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		}
		return false
	}
	return true
}
