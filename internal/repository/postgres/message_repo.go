package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dunebench/engine/internal/model"
)

// MessageRepo handles message and deal-negotiation database operations.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo creates a MessageRepo.
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create inserts a new message. RecipientID may be empty for public broadcasts.
// Kind is "chat" for table talk or "deal" for a structured deal proposal/response,
// in which case Data carries the JSON-encoded dune.Deal payload.
func (r *MessageRepo) Create(ctx context.Context, gameID, senderID, recipientID, kind, content, data, phaseID string) (*model.Message, error) {
	var m model.Message
	var recip, phase, dataCol sql.NullString
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO messages (game_id, sender_id, recipient_id, kind, content, data, phase_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, game_id, sender_id, recipient_id, kind, content, data, phase_id, created_at`,
		gameID, senderID, nullStr(recipientID), kind, content, nullStr(data), nullStr(phaseID),
	).Scan(&m.ID, &m.GameID, &m.SenderID, &recip, &m.Kind, &m.Content, &dataCol, &phase, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	m.RecipientID = recip.String
	m.Data = dataCol.String
	m.PhaseID = phase.String
	return &m, nil
}

// ListByGame returns messages visible to a user in a game.
// A user can see public messages (no recipient) and private messages sent to/from them.
func (r *MessageRepo) ListByGame(ctx context.Context, gameID, userID string) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, sender_id, COALESCE(recipient_id::text, ''), kind, content,
		        COALESCE(data, ''), COALESCE(phase_id::text, ''), created_at
		 FROM messages
		 WHERE game_id = $1 AND (recipient_id IS NULL OR sender_id = $2 OR recipient_id = $2)
		 ORDER BY created_at`, gameID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.GameID, &m.SenderID, &m.RecipientID, &m.Kind, &m.Content, &m.Data, &m.PhaseID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
