package gohighlevel_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/restriden/simpli-immo-sub002/internal/infra/integration/gohighlevel"
)

// TestCreateContact - request shape, auth headers and response parsing
func TestCreateContact(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/contacts/", r.URL.Path)
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		assert.Equal(t, "2021-07-28", r.Header.Get("Version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "loc-99", body["locationId"])
		assert.Equal(t, "Anna", body["firstName"])
		assert.Equal(t, "app", body["source"])
		// Empty optionals stay off the wire
		_, hasEmail := body["email"]
		assert.False(t, hasEmail)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"contact":{"id":"ghl-contact-42","locationId":"loc-99"}}`))
	}))
	defer server.Close()

	client := gohighlevel.NewClient(server.URL)

	contact, err := client.CreateContact(ctx, "token-abc", gohighlevel.CreateContactInput{
		LocationID: "loc-99",
		FirstName:  "Anna",
		Source:     "app",
	})

	assert.NoError(t, err)
	assert.Equal(t, "ghl-contact-42", contact.ID)
	assert.Equal(t, "loc-99", contact.LocationID)
}

// TestCreateContactRejected - non-2xx comes back as APIError with the body intact
func TestCreateContactRejected(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"phone invalid"}`))
	}))
	defer server.Close()

	client := gohighlevel.NewClient(server.URL)

	contact, err := client.CreateContact(ctx, "token-abc", gohighlevel.CreateContactInput{
		LocationID: "loc-99",
		FirstName:  "Anna",
	})

	assert.Error(t, err)
	assert.Nil(t, contact)

	var apiErr *gohighlevel.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, `{"message":"phone invalid"}`, apiErr.Body)
}

// TestCreateContactMissingID - a 2xx without a contact id is still an error
func TestCreateContactMissingID(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"contact":{}}`))
	}))
	defer server.Close()

	client := gohighlevel.NewClient(server.URL)

	contact, err := client.CreateContact(ctx, "token-abc", gohighlevel.CreateContactInput{
		LocationID: "loc-99",
		FirstName:  "Anna",
	})

	assert.Error(t, err)
	assert.Nil(t, contact)
}

// TestSendMessage - conversations API version, WhatsApp default and attachments
func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations/messages", r.URL.Path)
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		assert.Equal(t, "2021-04-15", r.Header.Get("Version"))

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "WhatsApp", body["type"])
		assert.Equal(t, "ghl-contact-42", body["contactId"])
		attachments := body["attachments"].([]interface{})
		assert.Equal(t, "https://cdn.simpli-immo.de/leads/lead-1/wohnung.jpg", attachments[0])
		// Attachment sends carry no message text
		_, hasMessage := body["message"]
		assert.False(t, hasMessage)

		w.Write([]byte(`{"conversationId":"conv-1","messageId":"msg-777"}`))
	}))
	defer server.Close()

	client := gohighlevel.NewClient(server.URL)

	sent, err := client.SendMessage(ctx, "token-abc", gohighlevel.SendMessageInput{
		ContactID:   "ghl-contact-42",
		Attachments: []string{"https://cdn.simpli-immo.de/leads/lead-1/wohnung.jpg"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "msg-777", sent.MessageID)
	assert.Equal(t, "conv-1", sent.ConversationID)
}

// TestSendMessageRejected
func TestSendMessageRejected(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"contact opted out"}`))
	}))
	defer server.Close()

	client := gohighlevel.NewClient(server.URL)

	sent, err := client.SendMessage(ctx, "token-abc", gohighlevel.SendMessageInput{
		ContactID: "ghl-contact-42",
		Message:   "📎 Datei",
	})

	assert.Error(t, err)
	assert.Nil(t, sent)

	var apiErr *gohighlevel.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}
