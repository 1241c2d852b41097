package repository

import (
	"context"
	"database/sql"

	"github.com/brotherhood/platform/internal/model"
)

type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// CommentWithAuthor is a comment joined with the author fields clients
// render next to it.
type CommentWithAuthor struct {
	model.Comment
	AuthorName   string
	AuthorAvatar string
	AuthorRole   string
}

// Create inserts a comment and returns its id.
func (r *CommentRepo) Create(ctx context.Context, postID uint64, authorID, content string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (post_id, author_id, content) VALUES (?,?,?)",
		postID, authorID, content)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a comment by id.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (model.Comment, error) {
	var cm model.Comment
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, post_id, author_id, content, created_at FROM comments WHERE id=? LIMIT 1", id).
		Scan(&cm.ID, &cm.PostID, &cm.AuthorID, &cm.Content, &cm.CreatedAt)
	return cm, err
}

// ListByPost returns a post's comments oldest first, with author metadata.
func (r *CommentRepo) ListByPost(ctx context.Context, postID uint64) ([]CommentWithAuthor, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT c.id, c.post_id, c.author_id, c.content, c.created_at,
		        u.name, u.avatar_url, COALESCE(u.role, '')
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.post_id = ?
		 ORDER BY c.id`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CommentWithAuthor
	for rows.Next() {
		var cm CommentWithAuthor
		if err := rows.Scan(&cm.ID, &cm.PostID, &cm.AuthorID, &cm.Content, &cm.CreatedAt,
			&cm.AuthorName, &cm.AuthorAvatar, &cm.AuthorRole); err != nil {
			return nil, err
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

// Delete removes a single comment.  Returns sql.ErrNoRows when it does not
// exist.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
