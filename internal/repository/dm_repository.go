package repository

import (
	"context"
	"database/sql"

	"github.com/brotherhood/platform/internal/model"
)

type DMRepo struct{ DB *sql.DB }

func NewDMRepo(db *sql.DB) *DMRepo { return &DMRepo{DB: db} }

// Create inserts a direct message and returns its id.
func (r *DMRepo) Create(ctx context.Context, senderID, recipientID, content string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO direct_messages (sender_id, recipient_id, content) VALUES (?,?,?)",
		senderID, recipientID, content)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a direct message by id.
func (r *DMRepo) GetByID(ctx context.Context, id uint64) (model.DirectMessage, error) {
	var m model.DirectMessage
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, sender_id, recipient_id, content, created_at
		 FROM direct_messages WHERE id=? LIMIT 1`, id).
		Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.CreatedAt)
	return m, err
}

// Conversation returns every message exchanged between the two users, in
// either direction, oldest first.
func (r *DMRepo) Conversation(ctx context.Context, userA, userB string) ([]model.DirectMessage, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, sender_id, recipient_id, content, created_at
		 FROM direct_messages
		 WHERE (sender_id=? AND recipient_id=?) OR (sender_id=? AND recipient_id=?)
		 ORDER BY id`,
		userA, userB, userB, userA)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DirectMessage
	for rows.Next() {
		var m model.DirectMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Delete removes a single direct message.  Returns sql.ErrNoRows when it
// does not exist.
func (r *DMRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM direct_messages WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
