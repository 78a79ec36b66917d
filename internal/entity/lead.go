package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrLeadNotFound = errors.New("lead not found")

const (
	LeadStatusNew = "neu"
	LeadSourceApp = "app"
)

// Entity: Lead
type Lead struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name,omitempty"`
	Email            string     `json:"email,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	Status           string     `json:"status"` // free-form, "neu" on creation
	Source           string     `json:"source"`
	ObjektID         string     `json:"objekt_id,omitempty"`
	CrmContactID     string     `json:"crm_contact_id,omitempty"`
	CrmLocationID    string     `json:"crm_location_id,omitempty"`
	MaklerNotifiedAt *time.Time `json:"makler_notified_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Factory
func NewLead(userID, firstName, lastName, email, phone, objektID string) (*Lead, error) {
	lead := &Lead{
		ID:        uuid.New().String(),
		UserID:    userID,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Phone:     phone,
		ObjektID:  objektID,
		Status:    LeadStatusNew,
		Source:    LeadSourceApp,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.UserID == "" {
		return errors.New("user_id is required")
	}
	if l.FirstName == "" {
		return errors.New("first_name is required")
	}
	return nil
}

func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// IsCrmLinked reports whether the lead can be addressed through the CRM.
// Both ids are required: the contact id targets the conversation, the
// location id selects the connection whose token authorizes it.
func (l *Lead) IsCrmLinked() bool {
	return l.CrmContactID != "" && l.CrmLocationID != ""
}
