package usecase

import (
	"context"
	"time"

	"github.com/restriden/simpli-immo-sub002/internal/entity"
	"github.com/restriden/simpli-immo-sub002/internal/infra/integration/gohighlevel"
	"github.com/restriden/simpli-immo-sub002/internal/infra/queue"
)

// --- Collaborator contracts ---

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *entity.Lead) error
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	FindByCrmContactID(ctx context.Context, crmContactID, crmLocationID string) (*entity.Lead, error)
	SetMaklerNotified(ctx context.Context, id string, notifiedAt time.Time) error
}

type ConnectionRepositoryInterface interface {
	FindActiveByUserID(ctx context.Context, userID string) (*entity.CrmConnection, error)
	FindActiveByLocationID(ctx context.Context, locationID string) (*entity.CrmConnection, error)
}

// CrmGateway is the outbound CRM surface. Tokens come from the caller's
// connection on every call; the gateway holds none.
type CrmGateway interface {
	CreateContact(ctx context.Context, accessToken string, input gohighlevel.CreateContactInput) (*gohighlevel.ContactOutput, error)
	SendMessage(ctx context.Context, accessToken string, input gohighlevel.SendMessageInput) (*gohighlevel.SendMessageOutput, error)
}

type MediaUploader interface {
	UploadMedia(data []byte, leadID, filename, contentType string) (string, error)
}

type QueueProducerInterface interface {
	PublishLeadNotification(ctx context.Context, payload queue.LeadNotificationPayload) error
}

// --- Inputs and outputs ---

type CreateContactInput struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	ObjektID  string `json:"objekt_id"`
}

type CreateContactOutput struct {
	Lead         *entity.Lead `json:"lead"`
	CrmContactID string       `json:"crm_contact_id"`
}

// MediaPayload carries the raw upload as it arrived, original filename
// included; the blob key is derived from it.
type MediaPayload struct {
	Data        []byte
	Filename    string
	ContentType string
}

type SendMediaInput struct {
	UserID    string
	LeadID    string
	Media     MediaPayload
	MediaType string
}

type SendMediaOutput struct {
	Delivered bool   `json:"delivered"`
	MediaURL  string `json:"media_url,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	CrmError  string `json:"crm_error,omitempty"`
	Warning   string `json:"warning,omitempty"`
}

// WorkflowEvent is the canonical form of an inbound workflow webhook after
// alias normalization. Action keeps the raw spelling; Timestamp is zero when
// the payload carried none or an unparseable one.
type WorkflowEvent struct {
	ContactID  string
	LocationID string
	Action     string
	Timestamp  time.Time
}

type WorkflowActionOutput struct {
	Success    bool       `json:"success"`
	Action     string     `json:"action,omitempty"`
	LeadID     string     `json:"lead_id,omitempty"`
	LeadName   string     `json:"lead_name,omitempty"`
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}
