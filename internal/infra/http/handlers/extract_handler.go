package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/restriden/simpli-immo-sub002/internal/infra/http/middleware"
	"github.com/restriden/simpli-immo-sub002/internal/infra/integration/extractor"
)

type DocumentUploader interface {
	UploadDocument(data []byte, docType, filename, contentType string) (string, error)
}

type DocumentAnalyzer interface {
	AnalyzeDocument(ctx context.Context, input extractor.AnalyzeInput) (*extractor.AnalyzeOutput, error)
}

// ExtractHandler uploads a document image and has the extractor read its
// fields. Both collaborators are optional at wiring time; the endpoint
// refuses politely when one is missing.
type ExtractHandler struct {
	Storage  DocumentUploader
	Analyzer DocumentAnalyzer
}

func NewExtractHandler(storage DocumentUploader, analyzer DocumentAnalyzer) *ExtractHandler {
	return &ExtractHandler{Storage: storage, Analyzer: analyzer}
}

type extractResponse struct {
	Success  bool              `json:"success"`
	Fields   map[string]string `json:"fields"`
	MediaURL string            `json:"media_url"`
}

func (h *ExtractHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.Storage == nil || h.Analyzer == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Success: false, Error: "document extraction not configured"})
		return
	}

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

	docType := r.FormValue("doc_type")

	mediaURL, err := h.Storage.UploadDocument(data, docType, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Success: false, Error: "document upload failed"})
		return
	}

	result, err := h.Analyzer.AnalyzeDocument(r.Context(), extractor.AnalyzeInput{FileURL: mediaURL, DocType: docType})
	if err != nil {
		middleware.RecordIntegrationError("extractor")
		status := http.StatusBadGateway
		var apiErr *extractor.APIError
		if !errors.As(err, &apiErr) {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, errorResponse{Success: false, Error: "document analysis failed"})
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{
		Success:  true,
		Fields:   result.Fields,
		MediaURL: mediaURL,
	})
}
