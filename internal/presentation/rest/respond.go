package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bibbank/loanintake/internal/application/usecase"
	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
)

const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// readJSON decodes a JSON body into dst, rejecting bodies over 1 MB and
// unknown fields.
func readJSON(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

// writeError maps a use-case error onto an HTTP status. Only unexpected
// errors are logged at error level.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		logger.Debug("application rejected", "fields", len(verr.Fields))
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Message: "Validation failed",
			Fields:  verr.Fields.Strings(),
		})
	case errors.Is(err, model.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "Invalid password")
	case errors.Is(err, model.ErrApplicationNotFound):
		writeMessage(w, http.StatusNotFound, "Application not found")
	case errors.Is(err, valueobject.ErrInvalidDate):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrInvalidTerms), errors.Is(err, usecase.ErrUnsupportedFormat):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrStoreUnavailable):
		logger.Error("store unavailable", "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "Service unavailable")
	default:
		logger.Error("request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal error")
	}
}
