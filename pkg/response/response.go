package response

import (
	"encoding/json"
	"net/http"

	"clinic-appointment-system/pkg/apperror"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	JSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Error(w http.ResponseWriter, statusCode int, message string, err interface{}) {
	JSON(w, statusCode, Response{
		Success: false,
		Message: message,
		Error:   err,
	})
}

func ValidationError(w http.ResponseWriter, errors interface{}) {
	JSON(w, http.StatusBadRequest, Response{
		Success: false,
		Message: "Validation failed",
		Error:   errors,
	})
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	Error(w, http.StatusUnauthorized, message, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Error(w, http.StatusNotFound, message, nil)
}

func Conflict(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Conflict"
	}
	Error(w, http.StatusConflict, message, nil)
}

func InternalServerError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Internal server error"
	}
	Error(w, http.StatusInternalServerError, message, nil)
}

func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Forbidden"
	}
	Error(w, http.StatusForbidden, message, nil)
}

// FromError maps a kinded error to the matching HTTP status, carrying the
// kind so clients can distinguish retryable failures.
func FromError(w http.ResponseWriter, err error) {
	kind := apperror.KindOf(err)
	switch kind {
	case apperror.KindNotFound:
		NotFound(w, err.Error())
	case apperror.KindAuthorization:
		Forbidden(w, err.Error())
	case apperror.KindSlotConflict:
		Error(w, http.StatusConflict, err.Error(), string(kind))
	case apperror.KindInvalidStateTransition:
		Error(w, http.StatusConflict, err.Error(), string(kind))
	case apperror.KindValidation:
		Error(w, http.StatusBadRequest, err.Error(), string(kind))
	case apperror.KindTransient:
		Error(w, http.StatusServiceUnavailable, err.Error(), string(kind))
	default:
		InternalServerError(w, "")
	}
}
