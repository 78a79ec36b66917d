package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultInstruction = "Extrahiere alle erkennbaren Felder aus diesem Immobilien-Dokument " +
	"und antworte ausschließlich mit einem flachen JSON-Objekt (Schlüssel -> Wert als Text)."

// APIError mirrors a non-2xx extractor response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("extractor returned status %d: %s", e.StatusCode, e.Body)
}

// Client reads structured fields out of document images through an
// OpenAI-compatible vision endpoint. The prompt stays generic; which fields
// come back depends on the document.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *resty.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    resty.New().SetTimeout(60 * time.Second),
	}
}

// AnalyzeDocument sends the document image for extraction and returns the
// flat field map the model produced.
func (c *Client) AnalyzeDocument(ctx context.Context, input AnalyzeInput) (*AnalyzeOutput, error) {
	instruction := defaultInstruction
	if input.DocType != "" {
		instruction = fmt.Sprintf("Dokumenttyp: %s. %s", input.DocType, defaultInstruction)
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: instruction},
					{Type: "image_url", ImageURL: &imageURL{URL: input.FileURL}},
				},
			},
		},
		MaxTokens: 1024,
	}

	var response chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", c.apiKey)).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(&response).
		Post(c.baseURL + "/v1/chat/completions")

	if err != nil {
		return nil, fmt.Errorf("extractor request: %w", err)
	}

	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	if response.Error != nil {
		return nil, fmt.Errorf("extractor rejected request: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("extractor response carried no choices")
	}

	raw := response.Choices[0].Message.Content
	fields, err := parseFields(raw)
	if err != nil {
		return nil, fmt.Errorf("parse extractor fields: %w", err)
	}

	return &AnalyzeOutput{Fields: fields, Raw: raw}, nil
}

// parseFields tolerates markdown fences and non-string values; everything
// flattens to strings for the caller.
func parseFields(raw string) (map[string]string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(parsed))
	for k, v := range parsed {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case nil:
			fields[k] = ""
		default:
			encoded, _ := json.Marshal(val)
			fields[k] = string(encoded)
		}
	}
	return fields, nil
}
