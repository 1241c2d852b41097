package repository

import (
	"context"
	"database/sql"

	"github.com/brotherhood/platform/internal/model"
)

type PostRepo struct{ DB *sql.DB }

func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{DB: db} }

// PostWithMeta is a post joined with its author and the derived counts the
// feed needs.  Counts are computed by reading the child sets, not from
// maintained counters.
type PostWithMeta struct {
	model.Post
	AuthorName    string
	AuthorAvatar  string
	AuthorRole    string
	LikesCount    int
	CommentsCount int
	LikedByViewer bool
}

// Create inserts a post and returns its id.
func (r *PostRepo) Create(ctx context.Context, authorID, title, content string, isAdminPost bool, fileIDs string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO posts (author_id, title, content, is_admin_post, file_ids) VALUES (?,?,?,?,?)",
		authorID, title, content, isAdminPost, nullable(fileIDs))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a post by id.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (model.Post, error) {
	var p model.Post
	var fileIDs sql.NullString
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, author_id, title, content, is_admin_post, file_ids, created_at
		 FROM posts WHERE id=? LIMIT 1`, id).
		Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.IsAdminPost, &fileIDs, &p.CreatedAt)
	p.FileIDs = fileIDs.String
	return p, err
}

// List returns posts of one kind (feed or announcements), newest first,
// joined with author metadata and the viewer's like state.  before=0 means
// "from the top"; otherwise only posts with a smaller id are returned.
func (r *PostRepo) List(ctx context.Context, viewerID string, adminPosts bool, limit int, before uint64) ([]PostWithMeta, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.author_id, p.title, p.content, p.is_admin_post, p.file_ids, p.created_at,
		        u.name, u.avatar_url, COALESCE(u.role, ''),
		        (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
		        (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
		        EXISTS(SELECT 1 FROM likes v WHERE v.post_id = p.id AND v.user_id = ?)
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.is_admin_post = ? AND (? = 0 OR p.id < ?)
		 ORDER BY p.id DESC
		 LIMIT ?`,
		viewerID, adminPosts, before, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PostWithMeta
	for rows.Next() {
		var p PostWithMeta
		var fileIDs sql.NullString
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.IsAdminPost, &fileIDs, &p.CreatedAt,
			&p.AuthorName, &p.AuthorAvatar, &p.AuthorRole,
			&p.LikesCount, &p.CommentsCount, &p.LikedByViewer); err != nil {
			return nil, err
		}
		p.FileIDs = fileIDs.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a post.  Comments and likes go with it through the schema
// cascade.  Returns sql.ErrNoRows when the post does not exist.
func (r *PostRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM posts WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ToggleLike flips the (post, user) like and reports the resulting state
// together with the fresh like count.  The delete-then-insert sequence
// leans on the primary key: a concurrent duplicate insert loses with a
// duplicate-key error and is reported as already liked.
func (r *PostRepo) ToggleLike(ctx context.Context, postID uint64, userID string) (liked bool, count int, err error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM likes WHERE post_id=? AND user_id=?", postID, userID)
	if err != nil {
		return false, 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = r.DB.ExecContext(ctx,
			"INSERT INTO likes (post_id, user_id) VALUES (?,?)", postID, userID)
		if err != nil && !isDuplicate(err) {
			return false, 0, err
		}
		liked = true
	}
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM likes WHERE post_id=?", postID).Scan(&count)
	return liked, count, err
}

// nullable maps an empty string to SQL NULL so optional text columns stay
// NULL instead of ''.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
