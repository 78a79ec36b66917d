package gohighlevel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultBaseURL = "https://services.leadconnectorhq.com"

	// Each API family is pinned to its own version header.
	contactsAPIVersion      = "2021-07-28"
	conversationsAPIVersion = "2021-04-15"

	MessageTypeWhatsApp = "WhatsApp"
)

// APIError is returned for every non-2xx response, carrying the raw body so
// callers can persist or surface what the CRM said. It is never retried here.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gohighlevel returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the GoHighLevel REST API. It holds no credentials: tokens
// belong to per-user CRM connections and are passed in on every call.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateContact creates a contact under the connection's location and
// returns the CRM contact id.
func (c *Client) CreateContact(ctx context.Context, accessToken string, input CreateContactInput) (*ContactOutput, error) {
	url := fmt.Sprintf("%s/contacts/", c.baseURL)

	payload := createContactRequest{
		LocationID: input.LocationID,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Email:      input.Email,
		Phone:      input.Phone,
		Source:     input.Source,
		Tags:       input.Tags,
	}

	var response contactResponse
	if err := c.post(ctx, url, contactsAPIVersion, accessToken, payload, &response); err != nil {
		return nil, err
	}

	if response.Contact.ID == "" {
		return nil, fmt.Errorf("gohighlevel response carried no contact id")
	}

	return &ContactOutput{ID: response.Contact.ID, LocationID: response.Contact.LocationID}, nil
}

// SendMessage pushes an outbound message into the contact's conversation.
func (c *Client) SendMessage(ctx context.Context, accessToken string, input SendMessageInput) (*SendMessageOutput, error) {
	url := fmt.Sprintf("%s/conversations/messages", c.baseURL)

	msgType := input.Type
	if msgType == "" {
		msgType = MessageTypeWhatsApp
	}

	payload := sendMessageRequest{
		Type:        msgType,
		ContactID:   input.ContactID,
		Message:     input.Message,
		Attachments: input.Attachments,
	}

	var response sendMessageResponse
	if err := c.post(ctx, url, conversationsAPIVersion, accessToken, payload, &response); err != nil {
		return nil, err
	}

	return &SendMessageOutput{MessageID: response.MessageID, ConversationID: response.ConversationID}, nil
}

// post runs one JSON request against the CRM. Non-2xx responses come back as
// *APIError with the body preserved.
func (c *Client) post(ctx context.Context, url, version, accessToken string, payload interface{}, out interface{}) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal gohighlevel payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	c.setHeaders(req, accessToken, version)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gohighlevel request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode gohighlevel response: %w", err)
		}
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request, accessToken, version string) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	req.Header.Set("Version", version)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
