package extractor_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/restriden/simpli-immo-sub002/internal/infra/integration/extractor"
)

func extractorStub(t *testing.T, content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "gpt-4o-mini", body["model"])

		response := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(response)
	}))
}

// TestAnalyzeDocument - plain JSON answer is parsed into the field map
func TestAnalyzeDocument(t *testing.T) {
	server := extractorStub(t, `{"adresse":"Hauptstraße 5, Berlin","wohnflaeche":"82 m²","zimmer":"3"}`)
	defer server.Close()

	client := extractor.NewClient(server.URL, "key-123", "gpt-4o-mini")

	output, err := client.AnalyzeDocument(context.Background(), extractor.AnalyzeInput{
		FileURL: "https://cdn.simpli-immo.de/documents/expose/plan.jpg",
		DocType: "expose",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Hauptstraße 5, Berlin", output.Fields["adresse"])
	assert.Equal(t, "82 m²", output.Fields["wohnflaeche"])
	assert.Equal(t, "3", output.Fields["zimmer"])
}

// TestAnalyzeDocumentFencedAnswer - models love to wrap JSON in markdown fences
func TestAnalyzeDocumentFencedAnswer(t *testing.T) {
	server := extractorStub(t, "```json\n{\"baujahr\": 1998, \"keller\": null}\n```")
	defer server.Close()

	client := extractor.NewClient(server.URL, "key-123", "gpt-4o-mini")

	output, err := client.AnalyzeDocument(context.Background(), extractor.AnalyzeInput{
		FileURL: "https://cdn.simpli-immo.de/documents/grundriss/plan.jpg",
	})

	assert.NoError(t, err)
	// Non-string values flatten to their JSON form
	assert.Equal(t, "1998", output.Fields["baujahr"])
	assert.Equal(t, "", output.Fields["keller"])
}

// TestAnalyzeDocumentUpstreamError
func TestAnalyzeDocumentUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client := extractor.NewClient(server.URL, "key-123", "gpt-4o-mini")

	output, err := client.AnalyzeDocument(context.Background(), extractor.AnalyzeInput{
		FileURL: "https://cdn.simpli-immo.de/documents/plan.jpg",
	})

	assert.Error(t, err)
	assert.Nil(t, output)

	var apiErr *extractor.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

// TestAnalyzeDocumentUnparseableAnswer - prose instead of JSON is an error,
// not an empty result
func TestAnalyzeDocumentUnparseableAnswer(t *testing.T) {
	server := extractorStub(t, "Das Dokument ist leider nicht lesbar.")
	defer server.Close()

	client := extractor.NewClient(server.URL, "key-123", "gpt-4o-mini")

	output, err := client.AnalyzeDocument(context.Background(), extractor.AnalyzeInput{
		FileURL: "https://cdn.simpli-immo.de/documents/plan.jpg",
	})

	assert.Error(t, err)
	assert.Nil(t, output)
}
