package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/restriden/simpli-immo-sub002/internal/entity"
	"github.com/restriden/simpli-immo-sub002/internal/infra/integration/gohighlevel"
)

// CreateContactUseCase mirrors a new contact into the CRM first and only
// then into the local lead store. The CRM is the source of truth for the
// contact id, so its create must succeed before anything is written here.
type CreateContactUseCase struct {
	Leads       LeadRepositoryInterface
	Connections ConnectionRepositoryInterface
	Crm         CrmGateway
}

func NewCreateContactUseCase(
	leads LeadRepositoryInterface,
	connections ConnectionRepositoryInterface,
	crm CrmGateway,
) *CreateContactUseCase {
	return &CreateContactUseCase{
		Leads:       leads,
		Connections: connections,
		Crm:         crm,
	}
}

func (uc *CreateContactUseCase) Execute(ctx context.Context, input CreateContactInput) (*CreateContactOutput, error) {
	if validationErrors := ValidateCreateContactInput(input); len(validationErrors) > 0 {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: joinValidationErrors(validationErrors),
		}
	}

	// 1. Resolve the user's active connection; its token and location scope
	// the CRM call.
	conn, err := uc.Connections.FindActiveByUserID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, entity.ErrNoActiveConnection) {
			return nil, &DomainError{
				Code:    CodeNoActiveConnection,
				Message: "no active CRM connection for this user",
			}
		}
		return nil, &TechnicalError{Code: CodeDatabaseError, Message: "connection lookup failed"}
	}

	// 2. Create the contact in the CRM. Empty optional fields stay off the
	// wire entirely.
	contact, err := uc.Crm.CreateContact(ctx, conn.AccessToken, gohighlevel.CreateContactInput{
		LocationID: conn.LocationID,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Email:      input.Email,
		Phone:      input.Phone,
		Source:     entity.LeadSourceApp,
	})
	if err != nil {
		var apiErr *gohighlevel.APIError
		if errors.As(err, &apiErr) {
			log.Printf("❌ CRM contact create rejected (status %d): %s", apiErr.StatusCode, apiErr.Body)
			return nil, &UpstreamError{Service: "gohighlevel", Status: apiErr.StatusCode, Body: apiErr.Body}
		}
		return nil, &TechnicalError{Code: CodeInternalError, Message: "CRM request could not be sent: " + err.Error()}
	}

	// 3. Mirror the contact locally. From here on the CRM side already
	// exists; losing the insert orphans the CRM contact, which is accepted
	// over inventing a lead without one.
	lead, err := entity.NewLead(input.UserID, input.FirstName, input.LastName, input.Email, input.Phone, input.ObjektID)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}
	lead.CrmContactID = contact.ID
	lead.CrmLocationID = conn.LocationID

	if err := uc.Leads.Create(ctx, lead); err != nil {
		log.Printf("⚠️ CRITICAL: CRM contact %s created but lead insert failed: %v", contact.ID, err)
		return nil, &TechnicalError{Code: CodeDatabaseError, Message: "lead could not be saved locally"}
	}

	log.Printf("✅ Lead %s created for CRM contact %s", lead.ID, contact.ID)

	return &CreateContactOutput{Lead: lead, CrmContactID: contact.ID}, nil
}
