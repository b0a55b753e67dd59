package ui

import (
	"encoding/json"
	"errors"
	"net/http"

	"exodash/internal/domain"
)

// statusFromError maps domain errors to HTTP status codes.
func statusFromError(err error) (int, string) {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var fetch *domain.FetchError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, "Not Found"
	case errors.As(err, &validation):
		return http.StatusBadRequest, "Invalid Request"
	case errors.As(err, &fetch):
		return http.StatusBadGateway, "Catalog Unavailable"
	default:
		return http.StatusInternalServerError, "Unexpected Error"
	}
}

// publicMessage returns the text shown to clients. Upstream failure details
// are hidden in production.
func (h *Handler) publicMessage(status int, err error) string {
	switch {
	case status == http.StatusInternalServerError:
		return "An unexpected error occurred while loading this page."
	case status == http.StatusBadGateway && h.Production:
		return "The exoplanet archive is unavailable. Try again later."
	}
	return err.Error()
}

func (h *Handler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, title := statusFromError(err)
	message := h.publicMessage(status, err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	renderHTML(w, status, errorPage(title, message))
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeJSONError(w http.ResponseWriter, err error) {
	status, _ := statusFromError(err)
	message := h.publicMessage(status, err)
	if status == http.StatusInternalServerError {
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}
