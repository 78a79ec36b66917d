package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/restriden/simpli-immo-sub002/internal/entity"
)

type MessageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

// Create inserts the message. An unset delivery status falls back to
// pending inside the statement, not in Go, so every row gets the same
// default the schema declares.
func (r *MessageRepository) Create(ctx context.Context, msg *entity.Message) error {
	query := `
		INSERT INTO messages (
			id, lead_id, user_id, direction, content,
			delivery_status, crm_message_id, crm_data, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			COALESCE(NULLIF($6, ''), 'pending'), NULLIF($7, ''), $8, $9, $10
		)
		RETURNING delivery_status
	`

	err := r.DB.QueryRowContext(ctx, query,
		msg.ID,
		msg.LeadID,
		msg.UserID,
		msg.Direction,
		msg.Content,
		msg.DeliveryStatus,
		msg.CrmMessageID,
		msg.CrmData,
		msg.CreatedAt,
		msg.UpdatedAt,
	).Scan(&msg.DeliveryStatus)

	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// ListPendingOutgoing pages through outgoing messages still at pending,
// keyed by id so corrected rows never shift the window.
func (r *MessageRepository) ListPendingOutgoing(ctx context.Context, afterID string, limit int) ([]*entity.Message, error) {
	query := `
		SELECT id, lead_id, user_id, direction, content,
		       delivery_status, crm_message_id, crm_data, created_at, updated_at
		FROM messages
		WHERE direction = 'outgoing'
		  AND delivery_status = 'pending'
		  AND id::text > $1
		ORDER BY id::text
		LIMIT $2
	`

	rows, err := r.DB.QueryContext(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending messages: %w", err)
	}
	defer rows.Close()

	var messages []*entity.Message
	for rows.Next() {
		var msg entity.Message
		var crmMessageID sql.NullString

		err := rows.Scan(
			&msg.ID,
			&msg.LeadID,
			&msg.UserID,
			&msg.Direction,
			&msg.Content,
			&msg.DeliveryStatus,
			&crmMessageID,
			&msg.CrmData,
			&msg.CreatedAt,
			&msg.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		msg.CrmMessageID = crmMessageID.String
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

func (r *MessageRepository) UpdateDeliveryStatus(ctx context.Context, id string, status string) error {
	query := `UPDATE messages SET delivery_status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update delivery status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrMessageNotFound
	}

	return nil
}
