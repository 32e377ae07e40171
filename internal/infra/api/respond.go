package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"celebrity-subscription/internal/domain"
	"celebrity-subscription/internal/usecase"
)

// envelope is the common response shape; handlers embed it next to their own fields.
type envelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	FailedStep string `json:"failed_step,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// errorEnvelope builds the failure body. Store errors are not echoed to the caller.
func errorEnvelope(err error) (int, envelope) {
	status := statusFor(err)
	env := envelope{Success: false}

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		env.Error = ve.Error()
	case status == http.StatusUnauthorized:
		env.Error = "missing or invalid credentials"
	case status == http.StatusForbidden:
		env.Error = "admin privileges required"
	case status == http.StatusNotFound:
		env.Error = "not found"
	case status == http.StatusConflict:
		env.Error = "already exists"
	case status == http.StatusTooManyRequests:
		env.Error = "too many requests"
	case status == http.StatusBadRequest:
		env.Error = err.Error()
	default:
		env.Error = "internal error"
	}

	var se *usecase.StepError
	if errors.As(err, &se) {
		env.FailedStep = se.Step
	}
	return status, env
}

func writeError(w http.ResponseWriter, err error) {
	status, env := errorEnvelope(err)
	writeJSON(w, status, env)
}
