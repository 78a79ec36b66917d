package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/restriden/simpli-immo-sub002/internal/infra/http/middleware"
	"github.com/restriden/simpli-immo-sub002/internal/usecase"
)

type WorkflowExecutor interface {
	Execute(ctx context.Context, event usecase.WorkflowEvent) (*usecase.WorkflowActionOutput, error)
}

// WorkflowHandler receives CRM workflow webhooks. The CRM probes the URL
// when an automation is saved, so verification requests must succeed no
// matter how empty they are.
type WorkflowHandler struct {
	WorkflowUC WorkflowExecutor
}

func NewWorkflowHandler(uc WorkflowExecutor) *WorkflowHandler {
	return &WorkflowHandler{WorkflowUC: uc}
}

type probeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *WorkflowHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet, http.MethodHead:
		writeJSON(w, http.StatusOK, probeResponse{Success: true, Message: "workflow endpoint ready"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Error: "could not read request body"})
		return
	}

	// Verification calls come in as empty POSTs.
	if len(strings.TrimSpace(string(body))) == 0 {
		log.Println("📥 Workflow webhook probe acknowledged")
		writeJSON(w, http.StatusOK, probeResponse{Success: true, Message: "workflow endpoint ready"})
		return
	}

	event, err := usecase.NormalizeWorkflowPayload(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Error: "invalid JSON payload"})
		return
	}

	output, err := h.WorkflowUC.Execute(r.Context(), event)
	if err != nil {
		writeError(w, err)
		return
	}

	if output.Success {
		middleware.RecordMaklerNotification()
	}

	writeJSON(w, http.StatusOK, output)
}
