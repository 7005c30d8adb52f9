package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = newValidator()

// newValidator reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorStatus maps a domain error to its HTTP status and error kind.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrAssistantDisabled):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrAccountNotActive),
		errors.Is(err, domain.ErrEmailAlreadyExists):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, "upstream"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeError renders err as {"error": kind, "message": text}. Server-side failures are logged
// and their details are not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	status, kind := errorStatus(err)
	message := err.Error()
	switch {
	case status == http.StatusInternalServerError:
		log.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
		message = "internal server error"
	case status == http.StatusBadGateway:
		log.Error("Upstream failure", zap.String("path", r.URL.Path), zap.Error(err))
		message = "upstream service failure"
	}
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON reads the request body into dst and runs its validate tags.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := decodeBody(r, dst); err != nil {
		return err
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, describeValidation(err))
	}
	return nil
}

// decodeBody only checks the JSON shape. Mutations on an existing listing use it so
// the usecase answers 401/404/403 before any field validation.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
