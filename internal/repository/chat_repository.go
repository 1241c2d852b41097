package repository

import (
	"context"
	"database/sql"

	"github.com/brotherhood/platform/internal/model"
)

type ChatRepo struct{ DB *sql.DB }

func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{DB: db} }

// ChatMessageWithAuthor is a chat message joined with the sender fields
// broadcast to connected clients.
type ChatMessageWithAuthor struct {
	model.ChatMessage
	AuthorName   string
	AuthorAvatar string
	AuthorRole   string
}

// Create inserts a chat message and returns it joined with its author.
func (r *ChatRepo) Create(ctx context.Context, authorID, content, fileIDs string) (ChatMessageWithAuthor, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO chat_messages (author_id, content, file_ids) VALUES (?,?,?)",
		authorID, content, nullable(fileIDs))
	if err != nil {
		return ChatMessageWithAuthor{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ChatMessageWithAuthor{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a chat message joined with its author.
func (r *ChatRepo) GetByID(ctx context.Context, id uint64) (ChatMessageWithAuthor, error) {
	var m ChatMessageWithAuthor
	var fileIDs sql.NullString
	err := r.DB.QueryRowContext(ctx,
		`SELECT m.id, m.author_id, m.content, m.file_ids, m.created_at,
		        u.name, u.avatar_url, COALESCE(u.role, '')
		 FROM chat_messages m
		 JOIN users u ON u.id = m.author_id
		 WHERE m.id=? LIMIT 1`, id).
		Scan(&m.ID, &m.AuthorID, &m.Content, &fileIDs, &m.CreatedAt,
			&m.AuthorName, &m.AuthorAvatar, &m.AuthorRole)
	m.FileIDs = fileIDs.String
	return m, err
}

// ListRecent returns the newest messages in chronological order.
func (r *ChatRepo) ListRecent(ctx context.Context, limit int) ([]ChatMessageWithAuthor, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT * FROM (
		   SELECT m.id, m.author_id, m.content, m.file_ids, m.created_at,
		          u.name, u.avatar_url, COALESCE(u.role, '')
		   FROM chat_messages m
		   JOIN users u ON u.id = m.author_id
		   ORDER BY m.id DESC
		   LIMIT ?
		 ) recent ORDER BY id`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChatMessageWithAuthor
	for rows.Next() {
		var m ChatMessageWithAuthor
		var fileIDs sql.NullString
		if err := rows.Scan(&m.ID, &m.AuthorID, &m.Content, &fileIDs, &m.CreatedAt,
			&m.AuthorName, &m.AuthorAvatar, &m.AuthorRole); err != nil {
			return nil, err
		}
		m.FileIDs = fileIDs.String
		out = append(out, m)
	}
	return out, rows.Err()
}

// Delete removes a single message.  Returns sql.ErrNoRows when it does not
// exist.
func (r *ChatRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM chat_messages WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PurgeAll empties the chat table.  Called by the daily retention job.
func (r *ChatRepo) PurgeAll(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM chat_messages")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
