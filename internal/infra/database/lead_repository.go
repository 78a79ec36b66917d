package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/restriden/simpli-immo-sub002/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, user_id, first_name, last_name, email, phone, status, source,
	objekt_id, crm_contact_id, crm_location_id, makler_notified_at,
	created_at, updated_at`

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, user_id, first_name, last_name, email, phone, status, source,
			objekt_id, crm_contact_id, crm_location_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			NULLIF($9, '')::uuid, $10, $11, $12, $13
		)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.UserID,
		lead.FirstName,
		nullString(lead.LastName),
		nullString(lead.Email),
		nullString(lead.Phone),
		lead.Status,
		lead.Source,
		lead.ObjektID,
		nullString(lead.CrmContactID),
		nullString(lead.CrmLocationID),
		lead.CreatedAt,
		lead.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}

	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return r.scanLead(r.DB.QueryRowContext(ctx, query, id))
}

// FindByCrmContactID resolves the lead the CRM is talking about. When a
// location id is supplied the match narrows to it; several leads can share
// a contact id across imports, so the newest one wins.
func (r *LeadRepository) FindByCrmContactID(ctx context.Context, crmContactID, crmLocationID string) (*entity.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE crm_contact_id = $1
		  AND ($2 = '' OR crm_location_id = $2)
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanLead(r.DB.QueryRowContext(ctx, query, crmContactID, crmLocationID))
}

func (r *LeadRepository) SetMaklerNotified(ctx context.Context, id string, notifiedAt time.Time) error {
	query := `UPDATE leads SET makler_notified_at = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.DB.ExecContext(ctx, query, notifiedAt, id)
	if err != nil {
		return fmt.Errorf("update makler_notified_at: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrLeadNotFound
	}

	return nil
}

func (r *LeadRepository) scanLead(row *sql.Row) (*entity.Lead, error) {
	var lead entity.Lead
	var lastName, email, phone, objektID, crmContactID, crmLocationID sql.NullString
	var maklerNotifiedAt sql.NullTime

	err := row.Scan(
		&lead.ID,
		&lead.UserID,
		&lead.FirstName,
		&lastName,
		&email,
		&phone,
		&lead.Status,
		&lead.Source,
		&objektID,
		&crmContactID,
		&crmLocationID,
		&maklerNotifiedAt,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, fmt.Errorf("scan lead: %w", err)
	}

	lead.LastName = lastName.String
	lead.Email = email.String
	lead.Phone = phone.String
	lead.ObjektID = objektID.String
	lead.CrmContactID = crmContactID.String
	lead.CrmLocationID = crmLocationID.String
	if maklerNotifiedAt.Valid {
		lead.MaklerNotifiedAt = &maklerNotifiedAt.Time
	}

	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
