package handler

import (
	"net/http"

	"github.com/sugawarayuuta/sonnet"

	"restaurant-queue/internal/microservices/tracker/service"
)

type TrackerHandler struct {
	service service.TrackerServiceInterface
}

func NewTrackerHandler(svc service.TrackerServiceInterface) *TrackerHandler {
	return &TrackerHandler{service: svc}
}

func (h *TrackerHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.GetStatus())
}

func (h *TrackerHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.GetSummary())
}

func (h *TrackerHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	hl := h.service.GetHealth()
	code := http.StatusOK
	if hl.Status == "closed" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, hl)
}

// writeJSON encodes v with sonnet and writes it with status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := sonnet.Marshal(v)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "encode_error", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(append(b, '\n'))
}

// writeProblem reports errors as simplified RFC 7807 problem+json.
func writeProblem(w http.ResponseWriter, code int, typ, detail string) {
	w.Header().Set("Content-Type", "application/problem+json; charset=utf-8")
	w.WriteHeader(code)
	b, _ := sonnet.Marshal(map[string]any{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": detail,
	})
	_, _ = w.Write(b)
}
