package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/restriden/simpli-immo-sub002/internal/entity"
	"github.com/restriden/simpli-immo-sub002/internal/infra/integration/gohighlevel"
)

// SendMediaUseCase relays one media file to a lead over the CRM messaging
// API. Exactly one upload, one send and one insert happen per call. The blob
// upload is best effort: without a URL the message degrades to a localized
// placeholder instead of failing the send.
type SendMediaUseCase struct {
	Leads       LeadRepositoryInterface
	Messages    entity.MessageRepositoryInterface
	Connections ConnectionRepositoryInterface
	Crm         CrmGateway
	Storage     MediaUploader // nil disables uploads
}

func NewSendMediaUseCase(
	leads LeadRepositoryInterface,
	messages entity.MessageRepositoryInterface,
	connections ConnectionRepositoryInterface,
	crm CrmGateway,
	storage MediaUploader,
) *SendMediaUseCase {
	return &SendMediaUseCase{
		Leads:       leads,
		Messages:    messages,
		Connections: connections,
		Crm:         crm,
		Storage:     storage,
	}
}

func (uc *SendMediaUseCase) Execute(ctx context.Context, input SendMediaInput) (*SendMediaOutput, error) {
	if validationErrors := ValidateSendMediaInput(input); len(validationErrors) > 0 {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: joinValidationErrors(validationErrors),
		}
	}

	lead, err := uc.Leads.FindByID(ctx, input.LeadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &DomainError{Code: CodeLeadNotFound, Message: "lead not found"}
		}
		return nil, &TechnicalError{Code: CodeDatabaseError, Message: "lead lookup failed"}
	}

	if !lead.IsCrmLinked() {
		return nil, &DomainError{
			Code:    CodeLeadNotCrmLinked,
			Message: "lead has no CRM contact or location, cannot send media",
		}
	}

	conn, err := uc.Connections.FindActiveByLocationID(ctx, lead.CrmLocationID)
	if err != nil {
		if errors.Is(err, entity.ErrNoActiveConnection) {
			return nil, &DomainError{
				Code:    CodeNoActiveConnection,
				Message: "no active CRM connection for this location",
			}
		}
		return nil, &TechnicalError{Code: CodeDatabaseError, Message: "connection lookup failed"}
	}

	// 1. Upload, best effort.
	mediaURL := uc.uploadMedia(lead.ID, input)

	// 2. With a URL the message is a bare attachment; without one a
	// placeholder names the media kind so the lead still sees something.
	content := ""
	var attachments []string
	if mediaURL != "" {
		attachments = []string{mediaURL}
	} else {
		content = mediaPlaceholder(input.MediaType)
	}

	// 3. Send through the CRM conversation.
	sent, err := uc.Crm.SendMessage(ctx, conn.AccessToken, gohighlevel.SendMessageInput{
		Type:        gohighlevel.MessageTypeWhatsApp,
		ContactID:   lead.CrmContactID,
		Message:     content,
		Attachments: attachments,
	})
	if err != nil {
		var apiErr *gohighlevel.APIError
		if errors.As(err, &apiErr) {
			return uc.persistFailedSend(ctx, lead, input, content, mediaURL, apiErr)
		}
		return nil, &TechnicalError{Code: CodeInternalError, Message: "CRM request could not be sent: " + err.Error()}
	}

	// 4. Record the outgoing message. Delivery status stays at the store
	// default; the reconciler promotes it once the CRM reports back.
	msg := entity.NewOutgoingMessage(lead.ID, input.UserID, content, entity.MessageCRMData{
		MediaType: input.MediaType,
		MediaURL:  mediaURL,
	})
	msg.CrmMessageID = sent.MessageID

	if err := uc.Messages.Create(ctx, msg); err != nil {
		log.Printf("⚠️ CRITICAL: message %s delivered via CRM but insert failed: %v", sent.MessageID, err)
		return &SendMediaOutput{
			Delivered: true,
			MediaURL:  mediaURL,
			MessageID: sent.MessageID,
			Warning:   "message delivered but not recorded locally",
		}, nil
	}

	log.Printf("✅ Media message %s sent to lead %s (crm id %s)", msg.ID, lead.ID, sent.MessageID)

	return &SendMediaOutput{Delivered: true, MediaURL: mediaURL, MessageID: sent.MessageID}, nil
}

// persistFailedSend keeps the rejected message locally so nothing the user
// sent disappears. The row freezes at pending with the CRM error attached.
func (uc *SendMediaUseCase) persistFailedSend(ctx context.Context, lead *entity.Lead, input SendMediaInput, content, mediaURL string, apiErr *gohighlevel.APIError) (*SendMediaOutput, error) {
	log.Printf("❌ CRM rejected media message for lead %s (status %d): %s", lead.ID, apiErr.StatusCode, apiErr.Body)

	msg := entity.NewOutgoingMessage(lead.ID, input.UserID, content, entity.MessageCRMData{
		MediaType: input.MediaType,
		MediaURL:  mediaURL,
		CrmError:  apiErr.Body,
	})
	msg.DeliveryStatus = entity.DeliveryStatusPending

	if err := uc.Messages.Create(ctx, msg); err != nil {
		return nil, &TechnicalError{Code: CodeDatabaseError, Message: "message could not be saved after delivery failure"}
	}

	return &SendMediaOutput{Delivered: false, MediaURL: mediaURL, CrmError: apiErr.Body}, nil
}

func (uc *SendMediaUseCase) uploadMedia(leadID string, input SendMediaInput) string {
	if uc.Storage == nil {
		log.Printf("⚠️ Storage not configured, sending media for lead %s without URL", leadID)
		return ""
	}

	url, err := uc.Storage.UploadMedia(input.Media.Data, leadID, input.Media.Filename, input.Media.ContentType)
	if err != nil {
		log.Printf("⚠️ Media upload failed for lead %s, continuing without URL: %v", leadID, err)
		return ""
	}
	return url
}

// mediaPlaceholder names the media kind in the lead's language when no URL
// could be produced.
func mediaPlaceholder(mediaType string) string {
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "audio", "voice":
		return "🎤 Sprachnachricht"
	case "video":
		return "🎥 Video"
	case "image", "photo":
		return "📷 Bild"
	default:
		return "📎 Datei"
	}
}
