package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/restriden/simpli-immo-sub002/internal/entity"
)

// ConnectionRepository reads CRM connections. Writes happen in the OAuth
// onboarding service, never here.
type ConnectionRepository struct {
	DB *sql.DB
}

func NewConnectionRepository(db *sql.DB) *ConnectionRepository {
	return &ConnectionRepository{DB: db}
}

const connectionColumns = `id, user_id, location_id, access_token, is_active, created_at, updated_at`

func (r *ConnectionRepository) FindActiveByUserID(ctx context.Context, userID string) (*entity.CrmConnection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM crm_connections
		WHERE user_id = $1 AND is_active = true
		ORDER BY updated_at DESC
		LIMIT 1
	`
	return r.scanConnection(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *ConnectionRepository) FindActiveByLocationID(ctx context.Context, locationID string) (*entity.CrmConnection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM crm_connections
		WHERE location_id = $1 AND is_active = true
		ORDER BY updated_at DESC
		LIMIT 1
	`
	return r.scanConnection(r.DB.QueryRowContext(ctx, query, locationID))
}

func (r *ConnectionRepository) scanConnection(row *sql.Row) (*entity.CrmConnection, error) {
	var conn entity.CrmConnection

	err := row.Scan(
		&conn.ID,
		&conn.UserID,
		&conn.LocationID,
		&conn.AccessToken,
		&conn.IsActive,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNoActiveConnection
		}
		return nil, fmt.Errorf("scan connection: %w", err)
	}

	return &conn, nil
}
