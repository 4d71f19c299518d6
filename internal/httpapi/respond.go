package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/joseph-ayodele/cibil-extractor/internal/common"
	"github.com/joseph-ayodele/cibil-extractor/internal/report"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeFailure maps pipeline and storage errors onto HTTP statuses.
func writeFailure(w http.ResponseWriter, err error) {
	body := errorBody{Error: common.MessageOf(err), Code: common.CodeOf(err)}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, report.ErrNoAccounts):
		status = http.StatusUnprocessableEntity
		body.Error = report.ErrNoAccounts.Error()
		body.Code = common.CodeNoAccounts
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput), common.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	writeJSON(w, status, body)
}
