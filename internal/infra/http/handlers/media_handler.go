package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/restriden/simpli-immo-sub002/internal/infra/http/middleware"
	"github.com/restriden/simpli-immo-sub002/internal/usecase"
)

const maxMediaUploadBytes = 32 << 20 // 32 MB

type MediaDispatcher interface {
	Execute(ctx context.Context, input usecase.SendMediaInput) (*usecase.SendMediaOutput, error)
}

type MediaHandler struct {
	SendMediaUC MediaDispatcher
}

func NewMediaHandler(uc MediaDispatcher) *MediaHandler {
	return &MediaHandler{SendMediaUC: uc}
}

type sendMediaResponse struct {
	Success      bool   `json:"success"`
	MessageID    string `json:"message_id,omitempty"`
	MediaURL     string `json:"media_url,omitempty"`
	Error        string `json:"error,omitempty"`
	SavedLocally bool   `json:"saved_locally,omitempty"`
	Warning      string `json:"warning,omitempty"`
}

func (h *MediaHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMediaUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Error: "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Error: "file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Error: "could not read uploaded file"})
		return
	}

	input := usecase.SendMediaInput{
		UserID:    r.FormValue("user_id"),
		LeadID:    r.FormValue("lead_id"),
		MediaType: r.FormValue("media_type"),
		Media: usecase.MediaPayload{
			Data:        data,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		},
	}

	output, err := h.SendMediaUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.RecordMediaMessage(input.MediaType, output.Delivered)

	// A rejected CRM send still answers 200: the message is saved locally
	// and a non-2xx here would only make the caller hammer the endpoint.
	if !output.Delivered {
		middleware.RecordIntegrationError("gohighlevel")
		writeJSON(w, http.StatusOK, sendMediaResponse{
			Success:      false,
			MediaURL:     output.MediaURL,
			Error:        "CRM delivery failed: " + output.CrmError,
			SavedLocally: true,
		})
		return
	}

	writeJSON(w, http.StatusOK, sendMediaResponse{
		Success:   true,
		MessageID: output.MessageID,
		MediaURL:  output.MediaURL,
		Warning:   output.Warning,
	})
}
