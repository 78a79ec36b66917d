package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/restriden/simpli-immo-sub002/internal/usecase"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), errorResponse{Success: false, Error: err.Error()})
}

// statusForError maps the usecase error taxonomy onto HTTP statuses.
// Domain errors are the caller's fault, upstream rejections surface as bad
// gateway, everything technical is a plain 500.
func statusForError(err error) int {
	var domainErr *usecase.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case usecase.CodeLeadNotFound, usecase.CodeNoActiveConnection:
			return http.StatusNotFound
		default:
			return http.StatusBadRequest
		}
	}

	if usecase.IsUpstreamError(err) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

// Options answers preflight-less OPTIONS probes with a bare 200; the CORS
// middleware has already attached its headers by the time this runs.
func Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
