package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/restriden/simpli-immo-sub002/internal/entity"
	"github.com/restriden/simpli-immo-sub002/internal/infra/http/middleware"
	"github.com/restriden/simpli-immo-sub002/internal/usecase"
)

type ContactCreator interface {
	Execute(ctx context.Context, input usecase.CreateContactInput) (*usecase.CreateContactOutput, error)
}

type ContactHandler struct {
	CreateContactUC ContactCreator
}

func NewContactHandler(uc ContactCreator) *ContactHandler {
	return &ContactHandler{CreateContactUC: uc}
}

type createContactResponse struct {
	Success      bool         `json:"success"`
	Lead         *entity.Lead `json:"lead"`
	CrmContactID string       `json:"crm_contact_id"`
}

func (h *ContactHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateContactInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Error: "invalid JSON body"})
		return
	}

	output, err := h.CreateContactUC.Execute(r.Context(), input)
	if err != nil {
		if usecase.IsUpstreamError(err) {
			middleware.RecordIntegrationError("gohighlevel")
		}
		writeError(w, err)
		return
	}

	middleware.RecordLeadCreated()

	writeJSON(w, http.StatusCreated, createContactResponse{
		Success:      true,
		Lead:         output.Lead,
		CrmContactID: output.CrmContactID,
	})
}
