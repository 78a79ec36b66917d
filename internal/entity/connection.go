package entity

import (
	"errors"
	"time"
)

var ErrNoActiveConnection = errors.New("no active crm connection")

// CrmConnection links a user to a CRM location and holds the access token
// for it. This service only reads connections; they are provisioned by the
// OAuth onboarding flow elsewhere.
type CrmConnection struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	LocationID  string    `json:"location_id"`
	AccessToken string    `json:"-"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
