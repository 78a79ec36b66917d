package entity

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrMessageNotFound = errors.New("message not found")

const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// Local delivery status vocabulary. Statuses only move forward
// (pending -> sent -> delivered -> read); failed sends stay pending.
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusSent      = "sent"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusRead      = "read"
)

// MapCrmStatus translates a CRM-reported status string into the local
// vocabulary. The CRM does not distinguish "sent" from "delivered", so both
// collapse to delivered here. Unknown or empty statuses map to nothing.
func MapCrmStatus(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "completed", "delivered", "sent":
		return DeliveryStatusDelivered, true
	case "read":
		return DeliveryStatusRead, true
	default:
		return "", false
	}
}

// JSONB maps a Postgres jsonb column onto a Go map.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = JSONB{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed for jsonb column")
	}
	return json.Unmarshal(bytes, j)
}

// MessageCRMData is the typed view of the crm_data blob. Each message kind
// writes a closed set of keys; raw map access stays inside this file.
type MessageCRMData struct {
	MediaType string `json:"media_type,omitempty"`
	MediaURL  string `json:"media_url,omitempty"`
	CrmError  string `json:"crm_error,omitempty"`
	Status    string `json:"status,omitempty"` // written by the CRM sync, read by the reconciler
}

func (d MessageCRMData) ToJSONB() JSONB {
	out := JSONB{}
	if d.MediaType != "" {
		out["media_type"] = d.MediaType
	}
	if d.MediaURL != "" {
		out["media_url"] = d.MediaURL
	}
	if d.CrmError != "" {
		out["crm_error"] = d.CrmError
	}
	if d.Status != "" {
		out["status"] = d.Status
	}
	return out
}

// Entity: Message
type Message struct {
	ID             string    `json:"id"`
	LeadID         string    `json:"lead_id"`
	UserID         string    `json:"user_id"`
	Direction      string    `json:"direction"`
	Content        string    `json:"content"`
	DeliveryStatus string    `json:"delivery_status"`
	CrmMessageID   string    `json:"crm_message_id,omitempty"`
	CrmData        JSONB     `json:"crm_data"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewOutgoingMessage builds an outgoing message without fixing a delivery
// status; the store defaults it to pending on insert.
func NewOutgoingMessage(leadID, userID, content string, crmData MessageCRMData) *Message {
	return &Message{
		ID:        uuid.New().String(),
		LeadID:    leadID,
		UserID:    userID,
		Direction: DirectionOutgoing,
		Content:   content,
		CrmData:   crmData.ToJSONB(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// CRMData converts the stored blob back into its typed view.
func (m *Message) CRMData() MessageCRMData {
	var d MessageCRMData
	if m.CrmData == nil {
		return d
	}
	if v, ok := m.CrmData["media_type"].(string); ok {
		d.MediaType = v
	}
	if v, ok := m.CrmData["media_url"].(string); ok {
		d.MediaURL = v
	}
	if v, ok := m.CrmData["crm_error"].(string); ok {
		d.CrmError = v
	}
	if v, ok := m.CrmData["status"].(string); ok {
		d.Status = v
	}
	return d
}

type MessageRepositoryInterface interface {
	Create(ctx context.Context, msg *Message) error
	ListPendingOutgoing(ctx context.Context, afterID string, limit int) ([]*Message, error)
	UpdateDeliveryStatus(ctx context.Context, id string, status string) error
}
